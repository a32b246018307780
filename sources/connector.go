// Package sources defines the extraction contract every venue source
// implements, an explicit connector registry, and adapters for the source
// shapes we ingest today (JSON APIs, HTML directories, editorial feeds).
// The pipeline core only ever sees RawRecord values; everything
// source-specific stays behind the Connector interface.
package sources

import (
	"context"
	"time"

	"platemap/types"
)

// Params narrows an extraction call. Zero values mean "everything the source
// will give us".
type Params struct {
	District string
	Query    string
	Limit    int
}

// ExtractionResult is the uniform per-source return shape.
type ExtractionResult struct {
	Success  bool
	Records  []types.RawRecord
	Errors   []string
	Metadata types.ExtractionMetadata
}

// Connector is implemented once per source and consumed by the extraction
// orchestrator.
type Connector interface {
	// Extract returns every record the source yields for the given params.
	// Per-record mapping problems go into Errors; only a total failure
	// returns a non-nil error.
	Extract(ctx context.Context, params Params) (*ExtractionResult, error)

	// ExtractByID fetches one record by its source-local identifier,
	// returning nil when the source does not know it.
	ExtractByID(ctx context.Context, externalID string) (*types.RawRecord, error)

	// HealthCheck reports whether the source currently looks reachable.
	HealthCheck(ctx context.Context) bool
}

// IncrementalConnector is optionally implemented by sources that support
// change-based extraction. The orchestrator type-asserts for it and falls
// back to a full Extract when absent.
type IncrementalConnector interface {
	Connector
	ExtractIncremental(ctx context.Context, since time.Time) (*ExtractionResult, error)
}
