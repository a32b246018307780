package validation

import (
	"math"
	"testing"
	"time"

	"platemap/types"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func validRaw() *types.RawRecord {
	return &types.RawRecord{
		SourceID:    "dinehk",
		ExternalID:  "gd-001",
		Name:        "Golden Dragon Restaurant",
		Address:     "12 Queen's Road, Wan Chai",
		Latitude:    f64(22.2783),
		Longitude:   f64(114.1746),
		Rating:      f64(4.5),
		PriceRange:  f64(2),
		ReviewCount: 120,
		Phone:       "+852 1234 5678",
		Website:     "https://goldendragon.hk",
		LastUpdated: testNow.AddDate(0, 0, -1),
	}
}

func TestValidateRawAcceptsCleanRecord(t *testing.T) {
	result := ValidateRaw(validRaw(), testNow)

	if !result.IsValid {
		t.Fatalf("clean record marked invalid: %+v", result.Errors)
	}
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("clean record produced findings: errors=%v warnings=%v", result.Errors, result.Warnings)
	}
	if result.QualityScore != 1.0 {
		t.Errorf("QualityScore = %f, want 1.0", result.QualityScore)
	}
}

func TestValidateRawCriticalFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.RawRecord)
		field  string
	}{
		{"missing source id", func(r *types.RawRecord) { r.SourceID = " " }, "sourceId"},
		{"missing external id", func(r *types.RawRecord) { r.ExternalID = "" }, "externalId"},
		{"missing name", func(r *types.RawRecord) { r.Name = "" }, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)

			result := ValidateRaw(raw, testNow)
			if result.IsValid {
				t.Fatal("record with a missing critical field marked valid")
			}
			found := false
			for _, e := range result.Errors {
				if e.Field == tt.field && e.Severity == types.SeverityCritical {
					found = true
				}
			}
			if !found {
				t.Errorf("no critical error on field %q: %+v", tt.field, result.Errors)
			}
		})
	}
}

func TestValidateRawCoordinates(t *testing.T) {
	t.Run("both absent is fine", func(t *testing.T) {
		raw := validRaw()
		raw.Latitude, raw.Longitude = nil, nil
		result := ValidateRaw(raw, testNow)
		if !result.IsValid || len(result.Errors) != 0 {
			t.Errorf("absent coordinates should not produce errors: %+v", result.Errors)
		}
	})

	t.Run("half missing is a major error", func(t *testing.T) {
		raw := validRaw()
		raw.Longitude = nil
		result := ValidateRaw(raw, testNow)
		if !result.IsValid {
			t.Error("major error should not invalidate the record")
		}
		if len(result.Errors) != 1 || result.Errors[0].Severity != types.SeverityMajor {
			t.Errorf("want one major error on location, got %+v", result.Errors)
		}
	})

	t.Run("out of bounds is only a warning", func(t *testing.T) {
		raw := validRaw()
		raw.Latitude, raw.Longitude = f64(51.5), f64(-0.12)
		result := ValidateRaw(raw, testNow)
		if !result.IsValid || len(result.Errors) != 0 {
			t.Errorf("out-of-bounds coordinates should only warn: %+v", result.Errors)
		}
		if len(result.Warnings) != 1 {
			t.Errorf("want one bounding-box warning, got %+v", result.Warnings)
		}
	})
}

func TestValidateRawRangeChecks(t *testing.T) {
	raw := validRaw()
	raw.Rating = f64(6.0)
	raw.PriceRange = f64(9)
	raw.ReviewCount = -5

	result := ValidateRaw(raw, testNow)
	if !result.IsValid {
		t.Error("minor errors should not invalidate the record")
	}
	if len(result.Errors) != 3 {
		t.Fatalf("want 3 minor errors, got %+v", result.Errors)
	}
	for _, e := range result.Errors {
		if e.Severity != types.SeverityMinor {
			t.Errorf("error on %s has severity %s, want minor", e.Field, e.Severity)
		}
	}
	// 1.0 minus three minor deductions.
	if math.Abs(result.QualityScore-0.7) > 1e-9 {
		t.Errorf("QualityScore = %f, want 0.7", result.QualityScore)
	}
}

func TestValidateRawTimestamps(t *testing.T) {
	t.Run("zero timestamp is a major error", func(t *testing.T) {
		raw := validRaw()
		raw.LastUpdated = time.Time{}
		result := ValidateRaw(raw, testNow)
		if len(result.Errors) != 1 || result.Errors[0].Field != "lastUpdated" ||
			result.Errors[0].Severity != types.SeverityMajor {
			t.Errorf("want one major lastUpdated error, got %+v", result.Errors)
		}
	})

	t.Run("stale record warns", func(t *testing.T) {
		raw := validRaw()
		raw.LastUpdated = testNow.AddDate(0, 0, -120)
		result := ValidateRaw(raw, testNow)
		if len(result.Errors) != 0 {
			t.Errorf("staleness should not be an error: %+v", result.Errors)
		}
		if len(result.Warnings) != 1 || result.Warnings[0].Field != "lastUpdated" {
			t.Errorf("want one staleness warning, got %+v", result.Warnings)
		}
	})
}

func TestValidateRawContactWarnings(t *testing.T) {
	raw := validRaw()
	raw.Phone = "call us!"
	raw.Website = "https://"

	result := ValidateRaw(raw, testNow)
	if !result.IsValid || len(result.Errors) != 0 {
		t.Errorf("contact findings should only warn: %+v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("want phone and website warnings, got %+v", result.Warnings)
	}
}

func TestQualityScoreFloorsAtZero(t *testing.T) {
	raw := &types.RawRecord{
		Rating:      f64(9),
		PriceRange:  f64(9),
		ReviewCount: -1,
		Phone:       "???",
	}

	result := ValidateRaw(raw, testNow)
	if result.QualityScore < 0 {
		t.Errorf("QualityScore = %f, must not go negative", result.QualityScore)
	}
	if result.IsValid {
		t.Error("record missing every critical field marked valid")
	}
}
