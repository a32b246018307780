// Package api exposes the pipeline over HTTP. It is a thin boundary: the
// core never depends on it.
package api

import (
	"github.com/gin-gonic/gin"

	"platemap/pipeline"
	"platemap/sources"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(p *pipeline.Pipeline, registry *sources.Registry) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	runs := newRunController(p)
	RegisterRunRoutes(r, runs)
	RegisterHealthRoutes(r, registry)
	return r
}
