// Package observability exposes pipeline counters over Prometheus.
package observability

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"platemap/types"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	recordsExtracted  prometheus.Counter
	recordsNormalized prometheus.Counter
	recordsMerged     prometheus.Counter
	sourceFailures    prometheus.Counter
	runDuration       prometheus.Histogram
}

// New registers the collectors with the default registry.
func New() *Metrics {
	m := &Metrics{
		recordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platemap_records_extracted_total",
			Help: "Raw records extracted across all sources",
		}),
		recordsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platemap_records_normalized_total",
			Help: "Records that survived validation and normalization",
		}),
		recordsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platemap_records_merged_total",
			Help: "Records in the deduplicated output",
		}),
		sourceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platemap_source_failures_total",
			Help: "Sources that failed extraction even after retry",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "platemap_run_duration_seconds",
			Help:    "Wall time of one pipeline run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.recordsExtracted,
		m.recordsNormalized,
		m.recordsMerged,
		m.sourceFailures,
		m.runDuration,
	)
	return m
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(report *types.RunReport, duration time.Duration) {
	m.recordsExtracted.Add(float64(report.TotalExtracted))
	m.recordsNormalized.Add(float64(report.TotalNormalized))
	m.recordsMerged.Add(float64(report.TotalDeduplicated))
	for _, src := range report.Sources {
		if !src.Success {
			m.sourceFailures.Inc()
		}
	}
	m.runDuration.Observe(duration.Seconds())
}

// Serve exposes /metrics on the given port in the background.
func Serve(port string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, nil); err != nil {
			log.Printf("Warning: metrics server stopped: %v", err)
		}
	}()
}
