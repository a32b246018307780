package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"platemap/pipeline"
	"platemap/sources"
	"platemap/types"
)

// runController triggers pipeline runs and serves the last report. Runs are
// serialized with a mutex: the pipeline does not coordinate concurrent runs
// internally, so the API is where that assumption is enforced.
type runController struct {
	pipeline *pipeline.Pipeline

	mu         sync.Mutex
	lastReport *types.RunReport
}

func newRunController(p *pipeline.Pipeline) *runController {
	return &runController{pipeline: p}
}

// RegisterRunRoutes wires the run endpoints onto the engine.
func RegisterRunRoutes(r *gin.Engine, c *runController) {
	r.POST("/api/runs", c.triggerRun)
	r.GET("/api/runs/last", c.lastRun)
}

// TriggerRunRequest selects the sources and parameters for one run.
type TriggerRunRequest struct {
	SourceIDs []string `json:"source_ids"`
	District  string   `json:"district"`
	Limit     int      `json:"limit"`
	Since     string   `json:"since"` // RFC3339; enables incremental extraction
}

func (c *runController) triggerRun(ctx *gin.Context) {
	var req TriggerRunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
		return
	}

	var since time.Time
	if req.Since != "" {
		parsed, err := time.Parse(time.RFC3339, req.Since)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339: " + err.Error()})
			return
		}
		since = parsed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.pipeline.Run(ctx.Request.Context(), req.SourceIDs, sources.Params{
		District: req.District,
		Limit:    req.Limit,
	}, since)
	if result != nil {
		c.lastReport = &result.Report
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":  err.Error(),
			"report": result.Report,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"report": result.Report,
		"venues": result.Records,
	})
}

func (c *runController) lastRun(ctx *gin.Context) {
	c.mu.Lock()
	report := c.lastReport
	c.mu.Unlock()

	if report == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no run has completed yet"})
		return
	}
	ctx.JSON(http.StatusOK, report)
}
