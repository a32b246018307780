// Package storage persists run artifacts to S3. The pipeline core never
// depends on it; persistence is entirely this collaborator's concern.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"platemap/types"
)

// Config carries the optional S3 settings. Empty values fall back to the
// standard AWS config/credential chain.
type Config struct {
	Bucket string
	Region string
	Prefix string
	// UsePathStyle forces path-style addressing for S3-compatible providers.
	UsePathStyle bool
}

// Catalog writes the merged catalog and run report as JSON snapshots under
// catalog/<runID>/.
type Catalog struct {
	client *s3.Client
	bucket string
	prefix string
}

// New builds a Catalog writer from the default AWS configuration chain.
func New(ctx context.Context, cfg Config) (*Catalog, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	prefix := cfg.Prefix
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}

	return &Catalog{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// SaveCatalog uploads the deduplicated records and the run report.
func (c *Catalog) SaveCatalog(ctx context.Context, report *types.RunReport, records []types.NormalizedRecord) error {
	base := fmt.Sprintf("%scatalog/%s/", c.prefix, report.RunID)

	if err := c.putJSON(ctx, base+"venues.json", records); err != nil {
		return fmt.Errorf("upload catalog: %w", err)
	}
	if err := c.putJSON(ctx, base+"report.json", report); err != nil {
		return fmt.Errorf("upload report: %w", err)
	}
	return nil
}

func (c *Catalog) putJSON(ctx context.Context, key string, payload any) error {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	return err
}
