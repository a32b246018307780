package types

import "time"

// SourceResult is the per-source outcome of one extraction run.
type SourceResult struct {
	SourceID  string             `json:"source_id"`
	Success   bool               `json:"success"`
	Records   int                `json:"records"`
	Errors    []string           `json:"errors,omitempty"`
	Metadata  ExtractionMetadata `json:"metadata"`
	Retried   bool               `json:"retried,omitempty"`
	Unhealthy bool               `json:"unhealthy,omitempty"`
}

// ExtractionMetadata is reported by every connector alongside its records.
type ExtractionMetadata struct {
	TotalExtracted    int     `json:"total_extracted"`
	ProcessingTimeMs  int64   `json:"processing_time_ms"`
	SourceReliability float64 `json:"source_reliability"`
}

// StageError is a record- or source-scoped problem accumulated into the run
// report. Record-level problems never abort the batch.
type StageError struct {
	Stage      string `json:"stage"`
	SourceID   string `json:"source_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	Message    string `json:"message"`
}

// RunReport is the terminal accounting artifact of one pipeline run, handed to
// the persistence collaborator together with the merged catalog.
type RunReport struct {
	RunID             string              `json:"run_id"`
	StartedAt         time.Time           `json:"started_at"`
	FinishedAt        time.Time           `json:"finished_at"`
	TotalExtracted    int                 `json:"total_extracted"`
	TotalNormalized   int                 `json:"total_normalized"`
	TotalDeduplicated int                 `json:"total_deduplicated"`
	Sources           []SourceResult      `json:"sources"`
	Errors            []StageError        `json:"errors,omitempty"`
	Warnings          []ValidationWarning `json:"warnings,omitempty"`
}

// AddError appends a stage-scoped error to the report.
func (r *RunReport) AddError(stage, sourceID, externalID, message string) {
	r.Errors = append(r.Errors, StageError{
		Stage:      stage,
		SourceID:   sourceID,
		ExternalID: externalID,
		Message:    message,
	})
}
