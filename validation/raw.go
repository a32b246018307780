// Package validation checks venue records at two points in the pipeline: raw
// records exactly as connectors produced them, and normalized records after
// canonicalization. Raw validation can drop a record; normalized validation
// only ever warns.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"platemap/config"
	"platemap/geo"
	"platemap/types"
)

// Loose shape check on raw phone input. Strict canonicalization happens in
// the normalizer; here a mismatch is only a warning.
var rawPhoneRe = regexp.MustCompile(`^\+?[\d\s\-()]{8,16}$`)

// ValidateRaw applies structural and business-rule validation to one raw
// record. IsValid is false only on critical errors; everything else reduces
// the quality score.
func ValidateRaw(record *types.RawRecord, now time.Time) *types.ValidationResult {
	result := &types.ValidationResult{IsValid: true, QualityScore: 1.0}

	if strings.TrimSpace(record.SourceID) == "" {
		result.AddError("sourceId", "source identifier is required", types.SeverityCritical)
	}
	if strings.TrimSpace(record.ExternalID) == "" {
		result.AddError("externalId", "external identifier is required", types.SeverityCritical)
	}
	if strings.TrimSpace(record.Name) == "" {
		result.AddError("name", "venue name is required", types.SeverityCritical)
	}

	validateCoordinates(record, result)

	if record.Rating != nil && (*record.Rating < config.RatingMin || *record.Rating > config.RatingMax) {
		result.AddError("rating",
			fmt.Sprintf("rating %.1f outside [%.0f,%.0f]", *record.Rating, config.RatingMin, config.RatingMax),
			types.SeverityMinor)
	}

	if record.PriceRange != nil {
		if *record.PriceRange < float64(config.PriceRangeMin) || *record.PriceRange > float64(config.PriceRangeMax) {
			result.AddError("priceRange",
				fmt.Sprintf("price range %.1f outside [%d,%d]", *record.PriceRange, config.PriceRangeMin, config.PriceRangeMax),
				types.SeverityMinor)
		}
	}

	if record.ReviewCount < 0 {
		result.AddError("reviewCount", "review count cannot be negative", types.SeverityMinor)
	}

	if phone := strings.TrimSpace(record.Phone); phone != "" && !rawPhoneRe.MatchString(phone) {
		result.AddWarning("phone", "phone does not match the regional format",
			"expected an 8-digit local number or a +852-prefixed number")
	}

	if website := strings.TrimSpace(record.Website); website != "" {
		if u, err := url.Parse(website); err != nil || (u.Scheme != "" && u.Host == "") {
			result.AddWarning("website", "website does not parse as a URL", "")
		}
	}

	if record.LastUpdated.IsZero() {
		result.AddError("lastUpdated", "last updated timestamp is required", types.SeverityMajor)
	} else if now.Sub(record.LastUpdated) > config.StalenessThresholdDays*24*time.Hour {
		result.AddWarning("lastUpdated",
			fmt.Sprintf("record is older than %d days", config.StalenessThresholdDays),
			"prefer a fresher extraction of this source")
	}

	result.QualityScore = scoreFromFindings(result)
	return result
}

func validateCoordinates(record *types.RawRecord, result *types.ValidationResult) {
	if record.Latitude == nil && record.Longitude == nil {
		return
	}

	if record.Latitude == nil || record.Longitude == nil {
		result.AddError("location", "latitude and longitude must both be present", types.SeverityMajor)
		return
	}

	if !geo.InBounds(*record.Latitude, *record.Longitude) {
		result.AddWarning("location",
			fmt.Sprintf("coordinates (%.4f, %.4f) fall outside the service bounding box",
				*record.Latitude, *record.Longitude),
			"the default centroid will be substituted during normalization")
	}
}

// scoreFromFindings starts at 1.0 and deducts per finding, floored at 0.
func scoreFromFindings(result *types.ValidationResult) float64 {
	score := 1.0

	for _, e := range result.Errors {
		switch e.Severity {
		case types.SeverityCritical:
			score -= config.CriticalDeduction
		case types.SeverityMajor:
			score -= config.MajorDeduction
		case types.SeverityMinor:
			score -= config.MinorDeduction
		}
	}
	score -= float64(len(result.Warnings)) * config.WarningDeduction

	if score < 0 {
		score = 0
	}
	return score
}
