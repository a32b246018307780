package sources

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"platemap/types"
)

// Selectors holds the CSS selectors one HTML directory source uses for its
// listing markup.
type Selectors struct {
	Item    string
	Name    string
	Address string
	Cuisine string
	Rating  string
	Phone   string
	Website string
}

// DirectoryConnector scrapes venue listings from an HTML directory page.
type DirectoryConnector struct {
	SourceID    string
	ListURL     string
	Selectors   Selectors
	Reliability float64

	client *Client
}

// NewDirectoryConnector builds a connector with a fresh rate-limited client.
func NewDirectoryConnector(sourceID, listURL string, selectors Selectors, reliability float64) *DirectoryConnector {
	return &DirectoryConnector{
		SourceID:    sourceID,
		ListURL:     listURL,
		Selectors:   selectors,
		Reliability: reliability,
		client:      NewClient(),
	}
}

// Extract fetches the listing page and parses every item element into a
// RawRecord. Items without a name become per-record errors.
func (c *DirectoryConnector) Extract(ctx context.Context, params Params) (*ExtractionResult, error) {
	start := time.Now()

	body, err := c.client.Get(ctx, c.ListURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.SourceID, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s listing: %w", c.SourceID, err)
	}

	result := &ExtractionResult{Success: true}
	doc.Find(c.Selectors.Item).Each(func(i int, item *goquery.Selection) {
		if params.Limit > 0 && len(result.Records) >= params.Limit {
			return
		}

		name := strings.TrimSpace(item.Find(c.Selectors.Name).Text())
		if name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d has no name", i))
			return
		}

		record := types.RawRecord{
			SourceID:    c.SourceID,
			ExternalID:  itemID(item, name),
			Name:        name,
			Address:     strings.TrimSpace(item.Find(c.Selectors.Address).Text()),
			Phone:       strings.TrimSpace(item.Find(c.Selectors.Phone).Text()),
			LastUpdated: time.Now(),
			DataQuality: c.Reliability,
		}

		if cuisine := strings.TrimSpace(item.Find(c.Selectors.Cuisine).Text()); cuisine != "" {
			record.CuisineType = splitList(cuisine)
		}
		if ratingText := strings.TrimSpace(item.Find(c.Selectors.Rating).Text()); ratingText != "" {
			if rating, err := strconv.ParseFloat(ratingText, 64); err == nil {
				record.Rating = &rating
			}
		}
		if c.Selectors.Website != "" {
			if href, ok := item.Find(c.Selectors.Website).Attr("href"); ok {
				record.Website = href
			}
		}

		result.Records = append(result.Records, record)
	})

	result.Metadata = types.ExtractionMetadata{
		TotalExtracted:    len(result.Records),
		ProcessingTimeMs:  time.Since(start).Milliseconds(),
		SourceReliability: c.Reliability,
	}
	return result, nil
}

// ExtractByID re-scrapes the listing and returns the matching item. Directory
// pages have no per-venue endpoint, so this is a filtered full extraction.
func (c *DirectoryConnector) ExtractByID(ctx context.Context, externalID string) (*types.RawRecord, error) {
	result, err := c.Extract(ctx, Params{})
	if err != nil {
		return nil, err
	}

	for i := range result.Records {
		if result.Records[i].ExternalID == externalID {
			return &result.Records[i], nil
		}
	}
	return nil, nil
}

// HealthCheck pings the listing page.
func (c *DirectoryConnector) HealthCheck(ctx context.Context) bool {
	return c.client.Ping(ctx, c.ListURL)
}

// itemID prefers the element's data-id attribute and falls back to a hash of
// the venue name so repeated scrapes produce stable identifiers.
func itemID(item *goquery.Selection, name string) string {
	if id, ok := item.Attr("data-id"); ok && id != "" {
		return id
	}
	return types.GenerateID(strings.ToLower(name))
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '/' || r == '|' || r == '·'
	})

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
