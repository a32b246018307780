package resolver

import (
	"math"
	"strings"
	"time"

	"platemap/config"
	"platemap/types"
)

// Merge collapses a cluster of duplicate records into one representative.
// The member with the highest overall data quality is primary; its scalar
// fields win, while list fields union across every member and ratings blend
// with review-volume weighting.
func Merge(cluster []types.NormalizedRecord, now time.Time) types.NormalizedRecord {
	primary := cluster[0]
	for _, member := range cluster[1:] {
		if member.DataQuality.Overall > primary.DataQuality.Overall {
			primary = member
		}
	}

	// Primary-first member order drives every first-non-empty and union rule.
	ordered := make([]types.NormalizedRecord, 0, len(cluster))
	ordered = append(ordered, primary)
	for _, member := range cluster {
		if member.ExternalID != primary.ExternalID || member.SourceMetadata.SourceID != primary.SourceMetadata.SourceID {
			ordered = append(ordered, member)
		}
	}

	merged := primary
	merged.CuisineType = unionStrings(ordered, func(r *types.NormalizedRecord) []string { return r.CuisineType }, 0)
	merged.MenuHighlights = unionStrings(ordered, func(r *types.NormalizedRecord) []string { return r.MenuHighlights }, config.MaxMenuHighlights)
	merged.Features = unionStrings(ordered, func(r *types.NormalizedRecord) []string { return r.Features }, config.MaxFeatures)
	merged.Photos = unionStrings(ordered, func(r *types.NormalizedRecord) []string { return r.Photos }, config.MaxPhotos)

	merged.Rating = mergedRating(ordered, primary.Rating)
	merged.ReviewCount = 0
	for _, member := range ordered {
		merged.ReviewCount += member.ReviewCount
	}

	merged.ContactInfo.Phone = firstNonEmpty(ordered, func(r *types.NormalizedRecord) string { return r.ContactInfo.Phone })
	merged.ContactInfo.Website = firstNonEmpty(ordered, func(r *types.NormalizedRecord) string { return r.ContactInfo.Website })

	merged.Reviews = mergeReviews(ordered)
	merged.DataQuality = mergeQuality(ordered)
	merged.SourceMetadata = mergeMetadata(ordered, merged.DataQuality.Completeness, now)

	return merged
}

// mergedRating is the weighted average across members, weighting each by
// sqrt(reviewCount) x overall quality so heavily-reviewed, trusted sources
// dominate. Falls back to the primary's rating when no member carries weight.
func mergedRating(ordered []types.NormalizedRecord, primaryRating float64) float64 {
	var weightedSum, totalWeight float64

	for _, member := range ordered {
		weight := math.Sqrt(float64(member.ReviewCount)) * member.DataQuality.Overall
		weightedSum += weight * member.Rating
		totalWeight += weight
	}

	if totalWeight == 0 {
		return primaryRating
	}
	return math.Round(weightedSum/totalWeight*10) / 10
}

// mergeReviews unions member reviews, deduplicated by content fingerprint.
func mergeReviews(ordered []types.NormalizedRecord) []types.Review {
	seen := make(map[string]bool)
	var out []types.Review

	for _, member := range ordered {
		for _, review := range member.Reviews {
			fp := types.ReviewFingerprint(review.Content)
			if seen[fp] {
				continue
			}
			seen[fp] = true
			out = append(out, review)
			if len(out) == config.MaxMergedReviews {
				return out
			}
		}
	}
	return out
}

// mergeQuality blends the sub-scores: averages where members genuinely
// disagree (overall, accuracy, consistency) and maxima where the best
// observation wins (completeness, freshness).
func mergeQuality(ordered []types.NormalizedRecord) types.DataQuality {
	var q types.DataQuality
	n := float64(len(ordered))

	for _, member := range ordered {
		q.Overall += member.DataQuality.Overall / n
		q.Accuracy += member.DataQuality.Accuracy / n
		q.Consistency += member.DataQuality.Consistency / n
		if member.DataQuality.Completeness > q.Completeness {
			q.Completeness = member.DataQuality.Completeness
		}
		if member.DataQuality.Freshness > q.Freshness {
			q.Freshness = member.DataQuality.Freshness
		}
	}
	return q
}

// mergeMetadata records the multi-source provenance with a fresh timestamp.
func mergeMetadata(ordered []types.NormalizedRecord, completeness float64, now time.Time) types.SourceMetadata {
	ids := make([]string, 0, len(ordered))
	names := make([]string, 0, len(ordered))
	var reliability float64
	seen := make(map[string]bool, len(ordered))

	for _, member := range ordered {
		reliability += member.SourceMetadata.Reliability / float64(len(ordered))
		if seen[member.SourceMetadata.SourceID] {
			continue
		}
		seen[member.SourceMetadata.SourceID] = true
		ids = append(ids, member.SourceMetadata.SourceID)
		if member.SourceMetadata.SourceName != "" {
			names = append(names, member.SourceMetadata.SourceName)
		}
	}

	return types.SourceMetadata{
		SourceID:     "merged:" + strings.Join(ids, "+"),
		SourceName:   strings.Join(names, " + "),
		ExtractedAt:  now,
		Reliability:  reliability,
		Completeness: completeness,
	}
}

func unionStrings(ordered []types.NormalizedRecord, field func(*types.NormalizedRecord) []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string

	for i := range ordered {
		for _, item := range field(&ordered[i]) {
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
			if limit > 0 && len(out) == limit {
				return out
			}
		}
	}
	return out
}

func firstNonEmpty(ordered []types.NormalizedRecord, field func(*types.NormalizedRecord) string) string {
	for i := range ordered {
		if v := field(&ordered[i]); v != "" {
			return v
		}
	}
	return ""
}
