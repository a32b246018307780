package validation

import (
	"testing"

	"platemap/types"
)

func normalizedRecord() *types.NormalizedRecord {
	return &types.NormalizedRecord{
		ExternalID:  "gd-001",
		Name:        "Golden Dragon Restaurant",
		Address:     "12 Queen's Road, Wan Chai",
		Location:    types.Location{Latitude: 22.2783, Longitude: 114.1746, District: "Wan Chai"},
		CuisineType: []string{"Cantonese", "Dim Sum"},
		ReviewCount: 120,
		Reviews:     []types.Review{{Content: "Great", Rating: 5}},
		OperatingHours: map[string]string{
			"Monday": "9 AM - 10 PM",
		},
		DataQuality: types.DataQuality{Overall: 0.9},
	}
}

func TestValidateNormalizedCleanRecord(t *testing.T) {
	result := ValidateNormalized(normalizedRecord())
	if !result.IsValid {
		t.Fatal("normalized validation must never invalidate a record")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("clean record produced warnings: %+v", result.Warnings)
	}
}

func TestValidateNormalizedOnlyWarns(t *testing.T) {
	record := normalizedRecord()
	record.Location.District = "Atlantis"
	record.CuisineType = []string{"Cantonese", "Molecular Gastronomy"}
	record.DataQuality.Overall = 0.3
	record.Reviews = nil
	record.OperatingHours = map[string]string{"holidays": "11 AM - 3 PM"}

	result := ValidateNormalized(record)
	if !result.IsValid {
		t.Fatal("normalized validation must never invalidate a record")
	}
	if len(result.Errors) != 0 {
		t.Errorf("normalized validation produced errors: %+v", result.Errors)
	}

	wantFields := map[string]bool{
		"location.district": false,
		"cuisineType":       false,
		"dataQuality":       false,
		"reviews":           false,
		"operatingHours":    false,
	}
	for _, w := range result.Warnings {
		if _, ok := wantFields[w.Field]; ok {
			wantFields[w.Field] = true
		}
	}
	for field, seen := range wantFields {
		if !seen {
			t.Errorf("missing expected warning on %q: %+v", field, result.Warnings)
		}
	}
	if len(result.Warnings) != 5 {
		t.Errorf("want 5 warnings, got %d: %+v", len(result.Warnings), result.Warnings)
	}
}

func TestValidateNormalizedUnknownDistrictIsRecognized(t *testing.T) {
	record := normalizedRecord()
	record.Location.District = "Unknown"

	result := ValidateNormalized(record)
	for _, w := range result.Warnings {
		if w.Field == "location.district" {
			t.Errorf("Unknown is a recognized district, got warning %+v", w)
		}
	}
}
