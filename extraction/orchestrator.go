// Package extraction fans extraction calls out across source connectors
// under a fixed concurrency cap, isolating every source's failures from the
// rest of the batch.
package extraction

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"platemap/config"
	"platemap/sources"
	"platemap/types"
)

// Orchestrator coordinates one extraction pass over a set of sources.
type Orchestrator struct {
	registry    *sources.Registry
	concurrency int
	chunkPause  time.Duration
	retryDelay  time.Duration
	healthGate  bool
}

// Result aggregates every source's outcome. Records preserves source-ID
// order so downstream stages are deterministic.
type Result struct {
	Records []types.RawRecord
	Sources []types.SourceResult
}

// NewOrchestrator returns an orchestrator with the configured defaults and
// the health-check gate enabled.
func NewOrchestrator(registry *sources.Registry) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		concurrency: config.ExtractionConcurrency,
		chunkPause:  config.ChunkPause,
		retryDelay:  config.SourceRetryDelay,
		healthGate:  true,
	}
}

// WithConcurrency overrides the number of sources extracted simultaneously.
func (o *Orchestrator) WithConcurrency(n int) *Orchestrator {
	if n > 0 {
		o.concurrency = n
	}
	return o
}

// WithPauses overrides the inter-chunk pause and the failed-source retry
// delay. Tests use zero values to run without waiting.
func (o *Orchestrator) WithPauses(chunkPause, retryDelay time.Duration) *Orchestrator {
	o.chunkPause = chunkPause
	o.retryDelay = retryDelay
	return o
}

// ExtractAll runs extraction for every listed source. Failed sources are
// retried once after a fixed delay; a source that still fails stays in the
// result as a failure with zero records. Cancelling ctx abandons sources not
// yet started.
func (o *Orchestrator) ExtractAll(ctx context.Context, sourceIDs []string, params sources.Params, since time.Time) *Result {
	unhealthy := o.checkHealth(ctx, sourceIDs)

	outcomes := make(map[string]*types.SourceResult, len(sourceIDs))
	records := make(map[string][]types.RawRecord, len(sourceIDs))

	o.runChunks(ctx, sourceIDs, params, since, outcomes, records)

	// One retry pass for sources that failed outright.
	var failed []string
	for _, id := range sourceIDs {
		if outcome := outcomes[id]; outcome != nil && !outcome.Success {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 && ctx.Err() == nil {
		log.Printf("Retrying %d failed source(s) after %s: %v", len(failed), o.retryDelay, failed)
		select {
		case <-time.After(o.retryDelay):
			o.runChunks(ctx, failed, params, since, outcomes, records)
			for _, id := range failed {
				if outcome := outcomes[id]; outcome != nil {
					outcome.Retried = true
				}
			}
		case <-ctx.Done():
		}
	}

	result := &Result{}
	for _, id := range sourceIDs {
		outcome := outcomes[id]
		if outcome == nil {
			msg := "extraction abandoned"
			if err := ctx.Err(); err != nil {
				msg += ": " + err.Error()
			}
			outcome = &types.SourceResult{SourceID: id, Errors: []string{msg}}
		}
		outcome.Unhealthy = unhealthy[id]
		result.Sources = append(result.Sources, *outcome)
		result.Records = append(result.Records, records[id]...)
	}
	return result
}

// checkHealth flags unhealthy sources without excluding them. A failing
// health check is a warning, not a hard stop.
func (o *Orchestrator) checkHealth(ctx context.Context, sourceIDs []string) map[string]bool {
	unhealthy := make(map[string]bool)
	if !o.healthGate {
		return unhealthy
	}

	for _, id := range sourceIDs {
		entry, ok := o.registry.Get(id)
		if !ok {
			continue
		}
		if !entry.Connector.HealthCheck(ctx) {
			log.Printf("Warning: source %s failed its health check, extracting anyway", id)
			unhealthy[id] = true
		}
	}
	return unhealthy
}

// runChunks processes sources in fixed-size concurrency chunks with a short
// pause between chunks.
func (o *Orchestrator) runChunks(ctx context.Context, sourceIDs []string, params sources.Params, since time.Time,
	outcomes map[string]*types.SourceResult, records map[string][]types.RawRecord) {

	var mu sync.Mutex

	for start := 0; start < len(sourceIDs); start += o.concurrency {
		if ctx.Err() != nil {
			return
		}

		end := start + o.concurrency
		if end > len(sourceIDs) {
			end = len(sourceIDs)
		}

		var wg sync.WaitGroup
		for _, id := range sourceIDs[start:end] {
			wg.Add(1)
			go func(sourceID string) {
				defer wg.Done()
				outcome, recs := o.extractOne(ctx, sourceID, params, since)
				mu.Lock()
				outcomes[sourceID] = outcome
				records[sourceID] = recs
				mu.Unlock()
			}(id)
		}
		wg.Wait()

		if end < len(sourceIDs) && o.chunkPause > 0 {
			select {
			case <-time.After(o.chunkPause):
			case <-ctx.Done():
				return
			}
		}
	}
}

// extractOne runs a single source to completion, converting any panic inside
// a connector into a recorded failure so it cannot abort the batch.
func (o *Orchestrator) extractOne(ctx context.Context, sourceID string, params sources.Params, since time.Time) (outcome *types.SourceResult, records []types.RawRecord) {
	outcome = &types.SourceResult{SourceID: sourceID}

	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.Records = 0
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("connector panic: %v", r))
			records = nil
		}
	}()

	entry, ok := o.registry.Get(sourceID)
	if !ok {
		outcome.Errors = []string{"unknown source"}
		return outcome, nil
	}

	result, err := o.extract(ctx, entry.Connector, params, since)
	if err != nil {
		outcome.Errors = []string{err.Error()}
		return outcome, nil
	}

	outcome.Success = true
	outcome.Records = len(result.Records)
	outcome.Errors = result.Errors
	outcome.Metadata = result.Metadata
	log.Printf("✓ Extracted %d record(s) from %s", len(result.Records), sourceID)
	return outcome, result.Records
}

// extract prefers incremental extraction when the connector supports it and
// a since timestamp was given, falling back to a full pull otherwise.
func (o *Orchestrator) extract(ctx context.Context, connector sources.Connector, params sources.Params, since time.Time) (*sources.ExtractionResult, error) {
	if !since.IsZero() {
		if inc, ok := connector.(sources.IncrementalConnector); ok {
			return inc.ExtractIncremental(ctx, since)
		}
	}
	return connector.Extract(ctx, params)
}
