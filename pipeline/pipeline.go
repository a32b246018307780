// Package pipeline wires the ingestion stages in sequence: extraction, raw
// validation, normalization, normalized validation, entity resolution. Each
// stage consumes only the previous stage's valid output and reports its own
// problems into the run report; only a catastrophic pre-stage fault aborts a
// run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"platemap/extraction"
	"platemap/normalize"
	"platemap/resolver"
	"platemap/sources"
	"platemap/types"
	"platemap/validation"
)

// Collaborators are the optional boundary services a run hands results to.
// Any of them may be nil; their failures degrade to report warnings.
type Collaborators struct {
	Seen      SeenFilter
	Publisher Publisher
	Store     Store
	Metrics   Metrics
}

// SeenFilter flags records already ingested in a previous run.
type SeenFilter interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
	Mark(ctx context.Context, fingerprint string) error
}

// Publisher delivers merged records to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, records []types.NormalizedRecord) error
}

// Store persists the merged catalog and the run report.
type Store interface {
	SaveCatalog(ctx context.Context, report *types.RunReport, records []types.NormalizedRecord) error
}

// Metrics receives per-run counters.
type Metrics interface {
	ObserveRun(report *types.RunReport, duration time.Duration)
}

// Result is everything one run produces.
type Result struct {
	Report  types.RunReport
	Records []types.NormalizedRecord
	Groups  []types.DuplicateGroup
}

// Pipeline coordinates one ingestion run end to end.
type Pipeline struct {
	registry     *sources.Registry
	orchestrator *extraction.Orchestrator
	collab       Collaborators
}

// New builds a pipeline over the given registry.
func New(registry *sources.Registry, orchestrator *extraction.Orchestrator, collab Collaborators) *Pipeline {
	return &Pipeline{registry: registry, orchestrator: orchestrator, collab: collab}
}

// Run executes one full pipeline pass over the listed sources. Concurrent
// calls are not internally coordinated: callers either serialize runs or
// accept that overlapping runs resolve the same duplicates independently.
func (p *Pipeline) Run(ctx context.Context, sourceIDs []string, params sources.Params, since time.Time) (*Result, error) {
	started := time.Now()
	report := types.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}

	if p.registry == nil || p.orchestrator == nil {
		report.AddError("pipeline", "", "", "pipeline not configured: registry or orchestrator missing")
		report.FinishedAt = time.Now()
		return &Result{Report: report}, errors.New("pipeline not configured")
	}
	if len(sourceIDs) == 0 {
		sourceIDs = p.registry.IDs()
	}
	if len(sourceIDs) == 0 {
		report.AddError("pipeline", "", "", "no sources registered")
		report.FinishedAt = time.Now()
		return &Result{Report: report}, errors.New("no sources registered")
	}

	log.Printf("=== Pipeline run %s: %d source(s) ===", report.RunID, len(sourceIDs))

	// Stage 1: extraction.
	extracted := p.orchestrator.ExtractAll(ctx, sourceIDs, params, since)
	report.Sources = extracted.Sources
	report.TotalExtracted = len(extracted.Records)
	for _, src := range extracted.Sources {
		if !src.Success {
			for _, msg := range src.Errors {
				report.AddError("extraction", src.SourceID, "", msg)
			}
		}
	}
	log.Printf("Extracted %d record(s) across %d source(s)", report.TotalExtracted, len(sourceIDs))

	// Stages 2-4: validate, normalize, validate again. Grouped by source so
	// one source's bad batch cannot block another's.
	normalized, fingerprints := p.normalizeAll(ctx, extracted.Records, &report, started)
	report.TotalNormalized = len(normalized)
	log.Printf("Normalized %d/%d record(s)", report.TotalNormalized, report.TotalExtracted)

	// Stage 5: entity resolution.
	resolved, groups := resolver.Resolve(normalized, started)
	report.TotalDeduplicated = len(resolved)
	log.Printf("Resolved to %d record(s) (%d duplicate group(s) merged)", len(resolved), len(groups))

	p.handOff(ctx, &report, resolved, fingerprints)

	report.FinishedAt = time.Now()
	if p.collab.Metrics != nil {
		p.collab.Metrics.ObserveRun(&report, report.FinishedAt.Sub(started))
	}

	return &Result{Report: report, Records: resolved, Groups: groups}, nil
}

// normalizeAll runs raw validation and normalization per record, grouped by
// source. Invalid and skipped records are dropped with their reasons kept in
// the report, never silently discarded.
func (p *Pipeline) normalizeAll(ctx context.Context, records []types.RawRecord, report *types.RunReport, now time.Time) ([]types.NormalizedRecord, []string) {
	out := make([]types.NormalizedRecord, 0, len(records))
	fingerprints := make([]string, 0, len(records))

	bySource := make(map[string][]types.RawRecord)
	var order []string
	for _, record := range records {
		if _, ok := bySource[record.SourceID]; !ok {
			order = append(order, record.SourceID)
		}
		bySource[record.SourceID] = append(bySource[record.SourceID], record)
	}

	for _, sourceID := range order {
		entry, _ := p.registry.Get(sourceID)
		opts := normalize.Options{
			SourceName:  entry.SourceName,
			Reliability: entry.Reliability,
			Now:         now,
		}

		for i := range bySource[sourceID] {
			raw := &bySource[sourceID][i]

			result := validation.ValidateRaw(raw, now)
			report.Warnings = append(report.Warnings, result.Warnings...)
			// Every finding lands in the report, severity-tagged; only
			// critical ones drop the record.
			for _, e := range result.Errors {
				report.AddError("raw-validation", raw.SourceID, raw.ExternalID,
					fmt.Sprintf("%s: %s: %s", e.Severity, e.Field, e.Message))
			}
			if !result.IsValid {
				continue
			}

			record, err := normalize.Normalize(raw, opts)
			if err != nil {
				var skip *normalize.SkipError
				if errors.As(err, &skip) {
					log.Printf("Skipping record %s/%s: %s", skip.SourceID, skip.ExternalID, skip.Reason)
					report.AddError("normalization", skip.SourceID, skip.ExternalID, skip.Reason)
				} else {
					report.AddError("normalization", raw.SourceID, raw.ExternalID, err.Error())
				}
				continue
			}

			p.checkSeen(ctx, raw, report)

			normResult := validation.ValidateNormalized(record)
			report.Warnings = append(report.Warnings, normResult.Warnings...)

			out = append(out, *record)
			fingerprints = append(fingerprints, recordFingerprint(raw))
		}
	}

	return out, fingerprints
}

// checkSeen consults the cross-run seen filter when configured. A hit or a
// filter failure is only a warning; within-run duplicates are the resolver's
// job either way.
func (p *Pipeline) checkSeen(ctx context.Context, raw *types.RawRecord, report *types.RunReport) {
	if p.collab.Seen == nil {
		return
	}

	seen, err := p.collab.Seen.Seen(ctx, recordFingerprint(raw))
	if err != nil {
		log.Printf("Warning: seen-filter check failed for %s/%s: %v", raw.SourceID, raw.ExternalID, err)
		report.Warnings = append(report.Warnings, types.ValidationWarning{
			Field:   "seen-filter",
			Message: fmt.Sprintf("check failed for %s/%s: %v", raw.SourceID, raw.ExternalID, err),
		})
		return
	}
	if seen {
		report.Warnings = append(report.Warnings, types.ValidationWarning{
			Field:   "record",
			Message: fmt.Sprintf("record %s/%s was already ingested in a previous run", raw.SourceID, raw.ExternalID),
		})
	}
}

// handOff delivers the resolved catalog to the optional collaborators. Every
// failure degrades to a report warning; persistence is not the core's job.
func (p *Pipeline) handOff(ctx context.Context, report *types.RunReport, resolved []types.NormalizedRecord, fingerprints []string) {
	if p.collab.Seen != nil {
		for _, fp := range fingerprints {
			if err := p.collab.Seen.Mark(ctx, fp); err != nil {
				log.Printf("Warning: seen-filter mark failed: %v", err)
				report.Warnings = append(report.Warnings, types.ValidationWarning{
					Field: "seen-filter", Message: "mark failed: " + err.Error(),
				})
				break
			}
		}
	}

	if p.collab.Publisher != nil {
		if err := p.collab.Publisher.Publish(ctx, resolved); err != nil {
			log.Printf("Warning: publish failed: %v", err)
			report.Warnings = append(report.Warnings, types.ValidationWarning{
				Field: "publish", Message: err.Error(),
			})
		}
	}

	if p.collab.Store != nil {
		if err := p.collab.Store.SaveCatalog(ctx, report, resolved); err != nil {
			log.Printf("Warning: catalog persistence failed: %v", err)
			report.Warnings = append(report.Warnings, types.ValidationWarning{
				Field: "persistence", Message: err.Error(),
			})
		}
	}
}

func recordFingerprint(raw *types.RawRecord) string {
	return types.GenerateID(raw.SourceID + "|" + raw.ExternalID + "|" + raw.Name)
}
