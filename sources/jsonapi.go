package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"platemap/types"
)

// FieldMap names the JSON keys one source uses for each raw record field.
// Empty entries mean the source does not carry that field.
type FieldMap struct {
	ID          string
	Name        string
	Address     string
	Latitude    string
	Longitude   string
	Cuisine     string
	PriceRange  string
	Rating      string
	ReviewCount string
	Hours       string
	Phone       string
	Website     string
	MenuItems   string
	Features    string
	Photos      string
	Updated     string
}

// JSONConnector extracts venue records from a JSON HTTP API. Each source gets
// its own instance configured with that source's URL shape and field names,
// so the duck-typed mapping stays out of the pipeline core.
type JSONConnector struct {
	SourceID    string
	BaseURL     string
	RecordsKey  string
	Fields      FieldMap
	Reliability float64

	client *Client
}

// NewJSONConnector builds a connector with a fresh rate-limited client.
func NewJSONConnector(sourceID, baseURL, recordsKey string, fields FieldMap, reliability float64) *JSONConnector {
	return &JSONConnector{
		SourceID:    sourceID,
		BaseURL:     baseURL,
		RecordsKey:  recordsKey,
		Fields:      fields,
		Reliability: reliability,
		client:      NewClient(),
	}
}

// Extract fetches the listing endpoint and maps every entry to a RawRecord.
// Entries that fail to map become per-record errors, not a batch failure.
func (c *JSONConnector) Extract(ctx context.Context, params Params) (*ExtractionResult, error) {
	start := time.Now()

	body, err := c.client.Get(ctx, c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.SourceID, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", c.SourceID, err)
	}

	entries, ok := payload[c.RecordsKey].([]any)
	if !ok {
		return nil, fmt.Errorf("%s response has no %q array", c.SourceID, c.RecordsKey)
	}

	result := &ExtractionResult{Success: true}
	for i, entry := range entries {
		if params.Limit > 0 && len(result.Records) >= params.Limit {
			break
		}

		obj, ok := entry.(map[string]any)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d is not an object", i))
			continue
		}

		record, err := c.mapRecord(obj)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}
		result.Records = append(result.Records, *record)
	}

	result.Metadata = types.ExtractionMetadata{
		TotalExtracted:    len(result.Records),
		ProcessingTimeMs:  time.Since(start).Milliseconds(),
		SourceReliability: c.Reliability,
	}
	return result, nil
}

// ExtractByID fetches one record from the source's detail endpoint.
func (c *JSONConnector) ExtractByID(ctx context.Context, externalID string) (*types.RawRecord, error) {
	body, err := c.client.Get(ctx, c.BaseURL+"/"+externalID)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decode %s record %s: %w", c.SourceID, externalID, err)
	}

	return c.mapRecord(obj)
}

// HealthCheck pings the listing endpoint.
func (c *JSONConnector) HealthCheck(ctx context.Context) bool {
	return c.client.Ping(ctx, c.BaseURL)
}

func (c *JSONConnector) mapRecord(obj map[string]any) (*types.RawRecord, error) {
	externalID := asString(obj[c.Fields.ID])
	if externalID == "" {
		return nil, fmt.Errorf("missing external ID field %q", c.Fields.ID)
	}

	record := &types.RawRecord{
		SourceID:    c.SourceID,
		ExternalID:  externalID,
		Name:        asString(obj[c.Fields.Name]),
		Address:     asString(obj[c.Fields.Address]),
		Latitude:    asFloatPtr(obj[c.Fields.Latitude]),
		Longitude:   asFloatPtr(obj[c.Fields.Longitude]),
		CuisineType: asStringSlice(obj[c.Fields.Cuisine]),
		PriceRange:  asFloatPtr(obj[c.Fields.PriceRange]),
		Rating:      asFloatPtr(obj[c.Fields.Rating]),
		ReviewCount: int(asFloat(obj[c.Fields.ReviewCount])),
		Phone:       asString(obj[c.Fields.Phone]),
		Website:     asString(obj[c.Fields.Website]),
		MenuItems:   asStringSlice(obj[c.Fields.MenuItems]),
		Features:    asStringSlice(obj[c.Fields.Features]),
		Photos:      asStringSlice(obj[c.Fields.Photos]),
		DataQuality: c.Reliability,
	}

	if c.Fields.Hours != "" {
		if hours, ok := obj[c.Fields.Hours].(map[string]any); ok {
			record.OperatingHours = make(map[string]string, len(hours))
			for day, text := range hours {
				record.OperatingHours[day] = asString(text)
			}
		}
	}

	if raw := asString(obj[c.Fields.Updated]); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			record.LastUpdated = ts
		}
	}

	return record, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

func asFloatPtr(v any) *float64 {
	if v == nil {
		return nil
	}

	switch n := v.(type) {
	case float64:
		return &n
	case string:
		// Some sources ship numeric fields as strings.
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
