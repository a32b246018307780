package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"platemap/sources"
)

// RegisterHealthRoutes wires the liveness endpoint onto the engine.
func RegisterHealthRoutes(r *gin.Engine, registry *sources.Registry) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"sources": registry.IDs(),
		})
	})
}
