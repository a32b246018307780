package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// RawRecord is one venue observation exactly as a source connector produced it.
// (SourceID, ExternalID) uniquely identifies a raw record within one run.
type RawRecord struct {
	SourceID       string            `json:"source_id"`
	ExternalID     string            `json:"external_id"`
	Name           string            `json:"name"`
	Address        string            `json:"address,omitempty"`
	Latitude       *float64          `json:"latitude,omitempty"`
	Longitude      *float64          `json:"longitude,omitempty"`
	CuisineType    []string          `json:"cuisine_type,omitempty"`
	PriceRange     *float64          `json:"price_range,omitempty"`
	Rating         *float64          `json:"rating,omitempty"`
	ReviewCount    int               `json:"review_count,omitempty"`
	OperatingHours map[string]string `json:"operating_hours,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Website        string            `json:"website,omitempty"`
	MenuItems      []string          `json:"menu_items,omitempty"`
	Features       []string          `json:"features,omitempty"`
	Photos         []string          `json:"photos,omitempty"`
	Reviews        []RawReview       `json:"reviews,omitempty"`
	LastUpdated    time.Time         `json:"last_updated"`
	DataQuality    float64           `json:"data_quality,omitempty"`
}

// RawReview is a review attached to a raw record before normalization.
type RawReview struct {
	Author  string   `json:"author,omitempty"`
	Content string   `json:"content"`
	Rating  *float64 `json:"rating,omitempty"`
	Date    string   `json:"date,omitempty"`
}

// Location is a coordinate pair with an inferred district label.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	District  string  `json:"district"`
}

// ContactInfo holds canonicalized contact fields. Empty string means absent.
type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// Review is a normalized venue review.
type Review struct {
	Author  string  `json:"author,omitempty"`
	Content string  `json:"content"`
	Rating  float64 `json:"rating"`
	Date    string  `json:"date,omitempty"`
}

// SourceMetadata records where a normalized record came from. After a merge it
// reflects every contributing source.
type SourceMetadata struct {
	SourceID     string    `json:"source_id"`
	SourceName   string    `json:"source_name"`
	ExtractedAt  time.Time `json:"extracted_at"`
	Reliability  float64   `json:"reliability"`
	Completeness float64   `json:"completeness"`
}

// DataQuality is the composite quality score. Overall is always the arithmetic
// mean of the four sub-scores, each in [0,1].
type DataQuality struct {
	Overall      float64 `json:"overall"`
	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Freshness    float64 `json:"freshness"`
	Consistency  float64 `json:"consistency"`
}

// NormalizedRecord is the canonical venue representation every source is
// mapped into. Location is always populated; when a source omits usable
// coordinates the documented default centroid is substituted and District is
// "Unknown".
type NormalizedRecord struct {
	ExternalID     string            `json:"external_id"`
	Name           string            `json:"name"`
	Address        string            `json:"address"`
	Location       Location          `json:"location"`
	CuisineType    []string          `json:"cuisine_type"`
	PriceRange     int               `json:"price_range"`
	Rating         float64           `json:"rating"`
	ReviewCount    int               `json:"review_count"`
	OperatingHours map[string]string `json:"operating_hours"`
	ContactInfo    ContactInfo       `json:"contact_info"`
	MenuHighlights []string          `json:"menu_highlights"`
	Features       []string          `json:"features"`
	Photos         []string          `json:"photos"`
	Reviews        []Review          `json:"reviews"`
	SourceMetadata SourceMetadata    `json:"source_metadata"`
	DataQuality    DataQuality       `json:"data_quality"`
}

// DuplicateGroup is a set of normalized records believed to denote one real
// venue, with the merged representative and a group confidence score.
type DuplicateGroup struct {
	Records    []NormalizedRecord `json:"records"`
	Confidence float64            `json:"confidence"`
	Merged     NormalizedRecord   `json:"merged"`
}

// GenerateID creates a short, stable ID by hashing the provided string input.
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// ReviewFingerprint returns a stable hash of review content used to
// deduplicate reviews gathered from multiple sources. Whitespace runs are
// collapsed and case is ignored so format variants hash identically.
func ReviewFingerprint(content string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(content), " "))
	return GenerateID(normalized)
}
