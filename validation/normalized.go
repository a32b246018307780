package validation

import (
	"fmt"

	"platemap/normalize"
	"platemap/types"
)

// ValidateNormalized sanity-checks a canonical record. It never hard-fails:
// every finding is a warning so imperfect records still reach resolution.
func ValidateNormalized(record *types.NormalizedRecord) *types.ValidationResult {
	result := &types.ValidationResult{IsValid: true, QualityScore: 1.0}

	if !normalize.RecognizedDistricts[record.Location.District] {
		result.AddWarning("location.district",
			fmt.Sprintf("district %q is not in the recognized set", record.Location.District), "")
	}

	for _, cuisine := range record.CuisineType {
		if !normalize.CanonicalCuisines[cuisine] {
			result.AddWarning("cuisineType",
				fmt.Sprintf("cuisine %q is outside the canonical vocabulary", cuisine),
				"consider adding a vocabulary mapping for this token")
		}
	}

	if record.DataQuality.Overall < 0.5 {
		result.AddWarning("dataQuality",
			fmt.Sprintf("overall quality %.2f is below the 0.5 floor", record.DataQuality.Overall), "")
	}

	// A positive review count with no review bodies usually means the
	// connector failed to page through the source's review endpoint.
	if record.ReviewCount > 0 && len(record.Reviews) == 0 {
		result.AddWarning("reviews",
			fmt.Sprintf("review count is %d but no reviews were extracted", record.ReviewCount),
			"check the source connector's review extraction")
	}

	for day := range record.OperatingHours {
		if !normalize.DayNames[day] {
			result.AddWarning("operatingHours",
				fmt.Sprintf("day key %q is not a canonical day name", day), "")
		}
	}

	result.QualityScore = scoreFromFindings(result)
	return result
}
