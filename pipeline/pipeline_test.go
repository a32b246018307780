package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"platemap/extraction"
	"platemap/sources"
	"platemap/types"
)

func f64(v float64) *float64 { return &v }

// fakeConnector serves a fixed batch of records.
type fakeConnector struct {
	records []types.RawRecord
	err     error
}

func (f *fakeConnector) Extract(ctx context.Context, params sources.Params) (*sources.ExtractionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sources.ExtractionResult{Success: true, Records: f.records}, nil
}

func (f *fakeConnector) ExtractByID(ctx context.Context, externalID string) (*types.RawRecord, error) {
	return nil, nil
}

func (f *fakeConnector) HealthCheck(ctx context.Context) bool { return true }

// fakeSeen is an in-memory seen filter.
type fakeSeen struct {
	mu      sync.Mutex
	known   map[string]bool
	marked  []string
	seenErr error
	markErr error
}

func newFakeSeen() *fakeSeen { return &fakeSeen{known: make(map[string]bool)} }

func (f *fakeSeen) Seen(ctx context.Context, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seenErr != nil {
		return false, f.seenErr
	}
	return f.known[fingerprint], nil
}

func (f *fakeSeen) Mark(ctx context.Context, fingerprint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, fingerprint)
	return nil
}

type fakePublisher struct {
	published []types.NormalizedRecord
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, records []types.NormalizedRecord) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, records...)
	return nil
}

type fakeStore struct {
	report  *types.RunReport
	records []types.NormalizedRecord
	err     error
}

func (f *fakeStore) SaveCatalog(ctx context.Context, report *types.RunReport, records []types.NormalizedRecord) error {
	if f.err != nil {
		return f.err
	}
	f.report = report
	f.records = records
	return nil
}

type fakeMetrics struct {
	observed int
}

func (f *fakeMetrics) ObserveRun(report *types.RunReport, duration time.Duration) {
	f.observed++
}

var testUpdated = time.Now().Add(-24 * time.Hour)

func goldenDragonRaw(sourceID, externalID, name, address, phone string) types.RawRecord {
	return types.RawRecord{
		SourceID:    sourceID,
		ExternalID:  externalID,
		Name:        name,
		Address:     address,
		Latitude:    f64(22.2783),
		Longitude:   f64(114.1747),
		CuisineType: []string{"cantonese"},
		Rating:      f64(4.5),
		ReviewCount: 100,
		Phone:       phone,
		LastUpdated: testUpdated,
	}
}

func buildTestRegistry(t *testing.T) *sources.Registry {
	t.Helper()

	dinehk := &fakeConnector{records: []types.RawRecord{
		goldenDragonRaw("dinehk", "gd-001", "Golden Dragon Restaurant", "12 Queen's Road, Wan Chai", "12345678"),
		{SourceID: "dinehk", ExternalID: "bad-1", Address: "nameless", LastUpdated: testUpdated},
		{SourceID: "dinehk", ExternalID: "bad-2", Name: "Addressless Cafe", LastUpdated: testUpdated},
	}}
	tablecity := &fakeConnector{records: []types.RawRecord{
		goldenDragonRaw("tablecity", "tc-771", "Golden Dragon", "12 Queens Road, Wan Chai", "+852 1234 5678"),
		{
			SourceID: "tablecity", ExternalID: "hv-002", Name: "Harbour View Cafe",
			Address: "88 Salisbury Road, Tsim Sha Tsui",
			Latitude: f64(22.2940), Longitude: f64(114.1722),
			Phone: "98765432", LastUpdated: testUpdated,
		},
	}}

	registry := sources.NewRegistry()
	for id, c := range map[string]sources.Connector{"dinehk": dinehk, "tablecity": tablecity} {
		if err := registry.Register(id, sources.Entry{Connector: c, SourceName: id, Reliability: 0.9}); err != nil {
			t.Fatalf("Register(%s): %v", id, err)
		}
	}
	return registry
}

func newTestPipeline(registry *sources.Registry, collab Collaborators) *Pipeline {
	orchestrator := extraction.NewOrchestrator(registry).WithPauses(0, 0)
	return New(registry, orchestrator, collab)
}

func TestPipelineRunEndToEnd(t *testing.T) {
	registry := buildTestRegistry(t)
	seen := newFakeSeen()
	publisher := &fakePublisher{}
	store := &fakeStore{}
	metrics := &fakeMetrics{}

	p := newTestPipeline(registry, Collaborators{
		Seen: seen, Publisher: publisher, Store: store, Metrics: metrics,
	})

	result, err := p.Run(context.Background(), nil, sources.Params{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	report := result.Report
	if report.RunID == "" {
		t.Error("report carries no run ID")
	}
	if report.TotalExtracted != 5 {
		t.Errorf("TotalExtracted = %d, want 5", report.TotalExtracted)
	}
	// The nameless and addressless records drop out.
	if report.TotalNormalized != 3 {
		t.Errorf("TotalNormalized = %d, want 3", report.TotalNormalized)
	}
	// The two Golden Dragon observations collapse into one.
	if report.TotalDeduplicated != 2 {
		t.Errorf("TotalDeduplicated = %d, want 2", report.TotalDeduplicated)
	}
	if len(result.Groups) != 1 || len(result.Groups[0].Records) != 2 {
		t.Errorf("groups = %+v, want one group of two", result.Groups)
	}

	stages := make(map[string]int)
	for _, e := range report.Errors {
		stages[e.Stage]++
	}
	if stages["raw-validation"] != 1 {
		t.Errorf("raw-validation errors = %d, want 1 for the nameless record", stages["raw-validation"])
	}
	if stages["normalization"] != 1 {
		t.Errorf("normalization errors = %d, want 1 for the addressless record", stages["normalization"])
	}

	if len(publisher.published) != 2 {
		t.Errorf("published %d record(s), want the 2 resolved", len(publisher.published))
	}
	if store.report == nil || len(store.records) != 2 {
		t.Error("catalog not persisted with the resolved records")
	}
	if len(seen.marked) != 3 {
		t.Errorf("marked %d fingerprint(s), want one per normalized record", len(seen.marked))
	}
	if metrics.observed != 1 {
		t.Errorf("metrics observed %d run(s), want 1", metrics.observed)
	}
}

func TestPipelineWarnsOnPreviouslySeenRecords(t *testing.T) {
	registry := buildTestRegistry(t)
	seen := newFakeSeen()
	seen.known[types.GenerateID("dinehk|gd-001|Golden Dragon Restaurant")] = true

	p := newTestPipeline(registry, Collaborators{Seen: seen})
	result, err := p.Run(context.Background(), nil, sources.Params{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	found := false
	for _, w := range result.Report.Warnings {
		if w.Field == "record" {
			found = true
		}
	}
	if !found {
		t.Errorf("no seen-record warning in %+v", result.Report.Warnings)
	}
	// A seen hit is informational; the record still flows through.
	if result.Report.TotalNormalized != 3 {
		t.Errorf("TotalNormalized = %d, seen records must not be dropped", result.Report.TotalNormalized)
	}
}

func TestPipelineDegradesCollaboratorFailuresToWarnings(t *testing.T) {
	registry := buildTestRegistry(t)
	seen := newFakeSeen()
	seen.seenErr = errors.New("redis down")
	seen.markErr = errors.New("redis down")

	p := newTestPipeline(registry, Collaborators{
		Seen:      seen,
		Publisher: &fakePublisher{err: errors.New("broker unreachable")},
		Store:     &fakeStore{err: errors.New("bucket denied")},
	})

	result, err := p.Run(context.Background(), nil, sources.Params{}, time.Time{})
	if err != nil {
		t.Fatalf("collaborator failures must not fail the run: %v", err)
	}

	fields := make(map[string]bool)
	for _, w := range result.Report.Warnings {
		fields[w.Field] = true
	}
	if !fields["publish"] {
		t.Error("publish failure not downgraded to a warning")
	}
	if !fields["persistence"] {
		t.Error("persistence failure not downgraded to a warning")
	}
	if !fields["seen-filter"] {
		t.Error("seen-filter failure not downgraded to a warning")
	}
	if len(result.Records) != 2 {
		t.Errorf("resolved records = %d, want the run's output intact", len(result.Records))
	}
}

func TestPipelineReportsNonCriticalFindingsOnSurvivingRecords(t *testing.T) {
	overRated := goldenDragonRaw("dinehk", "or-001", "Overrated Noodle Bar", "3 Lockhart Road, Wan Chai", "23456789")
	overRated.Rating = f64(6.0)

	registry := sources.NewRegistry()
	if err := registry.Register("dinehk", sources.Entry{
		Connector: &fakeConnector{records: []types.RawRecord{overRated}}, SourceName: "dinehk", Reliability: 0.9,
	}); err != nil {
		t.Fatal(err)
	}

	p := newTestPipeline(registry, Collaborators{})
	result, err := p.Run(context.Background(), nil, sources.Params{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// A minor finding must not drop the record.
	if result.Report.TotalNormalized != 1 {
		t.Fatalf("TotalNormalized = %d, want the record to survive", result.Report.TotalNormalized)
	}
	found := false
	for _, e := range result.Report.Errors {
		if e.Stage == "raw-validation" && e.ExternalID == "or-001" && strings.Contains(e.Message, "rating") {
			found = true
		}
	}
	if !found {
		t.Errorf("out-of-range rating missing from report errors: %+v", result.Report.Errors)
	}
}

func TestPipelineRunWithoutCollaborators(t *testing.T) {
	p := newTestPipeline(buildTestRegistry(t), Collaborators{})

	result, err := p.Run(context.Background(), nil, sources.Params{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Report.TotalDeduplicated != 2 {
		t.Errorf("TotalDeduplicated = %d, want 2", result.Report.TotalDeduplicated)
	}
}

func TestPipelineSourceSubset(t *testing.T) {
	p := newTestPipeline(buildTestRegistry(t), Collaborators{})

	result, err := p.Run(context.Background(), []string{"tablecity"}, sources.Params{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Report.TotalExtracted != 2 {
		t.Errorf("TotalExtracted = %d, want only tablecity's 2", result.Report.TotalExtracted)
	}
	if len(result.Report.Sources) != 1 || result.Report.Sources[0].SourceID != "tablecity" {
		t.Errorf("sources = %+v", result.Report.Sources)
	}
}

func TestPipelineSourceFailureIsReportedNotFatal(t *testing.T) {
	registry := sources.NewRegistry()
	if err := registry.Register("broken", sources.Entry{
		Connector: &fakeConnector{err: errors.New("upstream gone")}, SourceName: "Broken", Reliability: 0.5,
	}); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register("fine", sources.Entry{
		Connector: &fakeConnector{records: []types.RawRecord{
			goldenDragonRaw("fine", "gd-001", "Golden Dragon Restaurant", "12 Queen's Road", "12345678"),
		}}, SourceName: "Fine", Reliability: 0.9,
	}); err != nil {
		t.Fatal(err)
	}

	p := newTestPipeline(registry, Collaborators{})
	result, err := p.Run(context.Background(), nil, sources.Params{}, time.Time{})
	if err != nil {
		t.Fatalf("a failing source must not fail the run: %v", err)
	}

	if result.Report.TotalNormalized != 1 {
		t.Errorf("TotalNormalized = %d, want the healthy source's 1", result.Report.TotalNormalized)
	}
	found := false
	for _, e := range result.Report.Errors {
		if e.Stage == "extraction" && e.SourceID == "broken" {
			found = true
		}
	}
	if !found {
		t.Errorf("broken source's failure missing from report errors: %+v", result.Report.Errors)
	}
}

func TestPipelineCatastrophicConfigurations(t *testing.T) {
	t.Run("no sources registered", func(t *testing.T) {
		registry := sources.NewRegistry()
		p := newTestPipeline(registry, Collaborators{})

		result, err := p.Run(context.Background(), nil, sources.Params{}, time.Time{})
		if err == nil {
			t.Fatal("Run with no sources returned no error")
		}
		if result == nil || len(result.Report.Errors) != 1 {
			t.Errorf("want a report with exactly one pipeline error, got %+v", result)
		}
	})

	t.Run("missing orchestrator", func(t *testing.T) {
		p := New(sources.NewRegistry(), nil, Collaborators{})

		result, err := p.Run(context.Background(), nil, sources.Params{}, time.Time{})
		if err == nil {
			t.Fatal("Run without an orchestrator returned no error")
		}
		if result == nil || len(result.Report.Errors) != 1 {
			t.Errorf("want a report with exactly one pipeline error, got %+v", result)
		}
	})
}
