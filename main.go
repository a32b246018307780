package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"platemap/api"
	"platemap/config"
	"platemap/extraction"
	"platemap/kafka"
	"platemap/observability"
	"platemap/pipeline"
	"platemap/seenfilter"
	"platemap/sources"
	"platemap/storage"
)

func main() {
	serve := flag.Bool("serve", false, "Run the HTTP API instead of a one-shot pipeline run")
	sourceList := flag.String("sources", "", "Comma-separated source IDs (default: all registered)")
	limit := flag.Int("limit", 0, "Max records per source (0 = no limit)")
	sinceHours := flag.Int("since", 0, "Incremental extraction window in hours (0 = full extraction)")
	flag.Parse()

	// Log to stderr so JSON output to stdout is clean
	log.SetOutput(os.Stderr)
	log.Println("=== platemap ingestion ===")

	cfg := config.Load()
	registry := buildRegistry()
	if len(registry.IDs()) == 0 {
		log.Fatal("No sources configured; set SOURCE_*_URL environment variables")
	}
	log.Printf("Registered sources: %v", registry.IDs())

	metrics := observability.New()
	observability.Serve(cfg.MetricsPort)

	collab := buildCollaborators(cfg, metrics)
	orchestrator := extraction.NewOrchestrator(registry)
	p := pipeline.New(registry, orchestrator, collab)

	if *serve {
		log.Printf("API listening on :%s", cfg.APIPort)
		router := api.NewRouter(p, registry)
		if err := router.Run(":" + cfg.APIPort); err != nil {
			log.Fatalf("API server failed: %v", err)
		}
		return
	}

	var sourceIDs []string
	if *sourceList != "" {
		sourceIDs = strings.Split(*sourceList, ",")
	}
	var since time.Time
	if *sinceHours > 0 {
		since = time.Now().Add(-time.Duration(*sinceHours) * time.Hour)
	}

	result, err := p.Run(context.Background(), sourceIDs, sources.Params{Limit: *limit}, since)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	displaySummary(result)

	out, err := json.MarshalIndent(result.Records, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode catalog: %v", err)
	}
	os.Stdout.Write(out)
	os.Stdout.WriteString("\n")
}

// buildCollaborators wires the optional boundary services. Each one is
// enabled only when its configuration is present; a failed initialization
// disables that collaborator with a warning rather than aborting ingestion.
func buildCollaborators(cfg *config.Config, metrics *observability.Metrics) pipeline.Collaborators {
	collab := pipeline.Collaborators{Metrics: metrics}

	if cfg.RedisAddr != "" {
		bloom, err := seenfilter.New(context.Background(), seenfilter.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			Key:      cfg.BloomKey,
		})
		if err != nil {
			log.Printf("Warning: seen filter disabled: %v", err)
		} else {
			collab.Seen = bloom
		}
	}

	if cfg.KafkaBrokers != "" {
		publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers: strings.Split(cfg.KafkaBrokers, ","),
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Printf("Warning: kafka publishing disabled: %v", err)
		} else {
			collab.Publisher = publisher
		}
	}

	if cfg.S3Bucket != "" {
		store, err := storage.New(context.Background(), storage.Config{
			Bucket: cfg.S3Bucket,
			Region: cfg.S3Region,
			Prefix: cfg.S3Prefix,
		})
		if err != nil {
			log.Printf("Warning: S3 persistence disabled: %v", err)
		} else {
			collab.Store = store
		}
	}

	return collab
}

func displaySummary(result *pipeline.Result) {
	report := result.Report

	log.Println("\n=== Run Summary ===")
	log.Printf("Run ID:        %s", report.RunID)
	log.Printf("Extracted:     %d", report.TotalExtracted)
	log.Printf("Normalized:    %d", report.TotalNormalized)
	log.Printf("Deduplicated:  %d", report.TotalDeduplicated)
	log.Printf("Merged groups: %d", len(result.Groups))
	for _, src := range report.Sources {
		status := "✅"
		if !src.Success {
			status = "❌"
		} else if src.Unhealthy {
			status = "⚠️"
		}
		log.Printf("  %s %s: %d record(s), %d error(s)", status, src.SourceID, src.Records, len(src.Errors))
	}
	if len(report.Errors) > 0 {
		log.Printf("Stage errors:  %d", len(report.Errors))
	}
	log.Println("===================")
}
