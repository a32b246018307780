// Package normalize transforms validated raw venue records into the canonical
// schema. Every transformation is deterministic: the same raw record and
// options always produce the same normalized record.
package normalize

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"platemap/config"
	"platemap/geo"
	"platemap/types"
)

// Options carries per-source context the normalizer stamps into
// SourceMetadata. Now defaults to time.Now and exists so freshness scoring is
// reproducible in tests.
type Options struct {
	SourceName  string
	Reliability float64
	Now         time.Time
}

// SkipError reports a record dropped because a mandatory field was empty
// after cleanup. It is logged by the pipeline, never propagated as a failure.
type SkipError struct {
	SourceID   string
	ExternalID string
	Reason     string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("record %s/%s skipped: %s", e.SourceID, e.ExternalID, e.Reason)
}

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	nameAllowRe    = regexp.MustCompile(`[^\p{L}\p{N}\s.,'&()\-]`)
	commaRunRe     = regexp.MustCompile(`\s*,[\s,]*`)
	nonPhoneRe     = regexp.MustCompile(`[^\d+]`)
	amPmRe         = regexp.MustCompile(`(?i)(\d)\s*(am|pm)`)
	bareDomainRe   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.\-]*\.[a-zA-Z]{2,}(/\S*)?$`)
	closedVariants = map[string]bool{
		"closed": true, "close": true, "-": true, "n/a": true, "na": true, "rest day": true,
	}
)

// Normalize converts one raw record into its canonical form. It returns a
// *SkipError when name or address is empty after cleanup.
func Normalize(raw *types.RawRecord, opts Options) (*types.NormalizedRecord, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	name := CleanName(raw.Name)
	address := CleanAddress(raw.Address)
	if name == "" {
		return nil, &SkipError{SourceID: raw.SourceID, ExternalID: raw.ExternalID, Reason: "empty name after cleanup"}
	}
	if address == "" {
		return nil, &SkipError{SourceID: raw.SourceID, ExternalID: raw.ExternalID, Reason: "empty address after cleanup"}
	}

	location, coordsUsable := normalizeLocation(raw.Latitude, raw.Longitude)

	record := &types.NormalizedRecord{
		ExternalID:     raw.ExternalID,
		Name:           name,
		Address:        address,
		Location:       location,
		CuisineType:    NormalizeCuisines(raw.CuisineType),
		PriceRange:     NormalizePriceRange(raw.PriceRange),
		Rating:         NormalizeRating(raw.Rating),
		ReviewCount:    raw.ReviewCount,
		OperatingHours: NormalizeHours(raw.OperatingHours),
		ContactInfo: types.ContactInfo{
			Phone:   NormalizePhone(raw.Phone),
			Website: NormalizeWebsite(raw.Website),
		},
		MenuHighlights: mapAndCap(raw.MenuItems, nil, config.MaxMenuHighlights),
		Features:       mapAndCap(raw.Features, featureVocabulary, config.MaxFeatures),
		Photos:         dedupeCap(raw.Photos, config.MaxPhotos),
		Reviews:        NormalizeReviews(raw.Reviews),
		SourceMetadata: types.SourceMetadata{
			SourceID:    raw.SourceID,
			SourceName:  opts.SourceName,
			ExtractedAt: now,
			Reliability: opts.Reliability,
		},
	}

	record.DataQuality = computeQuality(raw, coordsUsable, now)
	record.SourceMetadata.Completeness = record.DataQuality.Completeness

	return record, nil
}

// CleanName trims, collapses whitespace, strips characters outside the
// allow-list, and caps the length.
func CleanName(name string) string {
	cleaned := nameAllowRe.ReplaceAllString(name, "")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
	return capRunes(cleaned, config.MaxNameLength)
}

// CleanAddress trims, collapses whitespace and comma runs, and caps length.
func CleanAddress(address string) string {
	cleaned := commaRunRe.ReplaceAllString(address, ", ")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
	cleaned = strings.Trim(cleaned, ", ")
	return capRunes(cleaned, config.MaxAddressLength)
}

// normalizeLocation keeps in-bounds coordinates and infers the district;
// otherwise it substitutes the documented default centroid with district
// "Unknown". The second return reports whether source coordinates were used.
func normalizeLocation(lat, lon *float64) (types.Location, bool) {
	if lat != nil && lon != nil && geo.InBounds(*lat, *lon) {
		return types.Location{
			Latitude:  *lat,
			Longitude: *lon,
			District:  InferDistrict(*lat, *lon),
		}, true
	}

	return types.Location{
		Latitude:  config.DefaultLatitude,
		Longitude: config.DefaultLongitude,
		District:  "Unknown",
	}, false
}

// NormalizeCuisines maps raw cuisine tokens through the canonical vocabulary,
// title-cases unmapped tokens, and deduplicates.
func NormalizeCuisines(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, token := range raw {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		canonical, ok := cuisineVocabulary[strings.ToLower(token)]
		if !ok {
			canonical = titleCase(token)
		}
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}

	return out
}

// NormalizePriceRange rounds to the nearest integer and clamps to the
// canonical 1-4 scale, defaulting to 2 when missing or out of range.
func NormalizePriceRange(raw *float64) int {
	if raw == nil {
		return 2
	}

	rounded := int(math.Round(*raw))
	if rounded < config.PriceRangeMin || rounded > config.PriceRangeMax {
		return 2
	}
	return rounded
}

// NormalizeRating clamps to [0,5] and rounds to one decimal, defaulting to 0.
func NormalizeRating(raw *float64) float64 {
	if raw == nil {
		return 0
	}

	r := *raw
	if r < config.RatingMin {
		r = config.RatingMin
	}
	if r > config.RatingMax {
		r = config.RatingMax
	}
	return math.Round(r*10) / 10
}

// NormalizeHours maps day keys to full canonical day names and cleans the
// time text. Unrecognized day keys are kept as-is so the normalized validator
// can flag them.
func NormalizeHours(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))

	for day, hours := range raw {
		canonical, ok := canonicalDays[strings.ToLower(strings.TrimSpace(day))]
		if !ok {
			canonical = strings.TrimSpace(day)
		}
		out[canonical] = cleanHoursText(hours)
	}

	return out
}

func cleanHoursText(text string) string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if closedVariants[strings.ToLower(text)] {
		return "Closed"
	}

	return amPmRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := amPmRe.FindStringSubmatch(m)
		return sub[1] + " " + strings.ToUpper(sub[2])
	})
}

// NormalizePhone strips formatting and canonicalizes to the +852-prefixed
// form. Anything that is not an 8-digit local number or an already-prefixed
// number comes back empty.
func NormalizePhone(raw string) string {
	digits := nonPhoneRe.ReplaceAllString(raw, "")
	digits = strings.TrimPrefix(digits, "+")
	if strings.Contains(digits, "+") {
		return ""
	}

	local := config.PhoneCountryCode
	switch {
	case len(digits) == config.PhoneLocalDigits:
		return "+" + local + digits
	case len(digits) == len(local)+config.PhoneLocalDigits && strings.HasPrefix(digits, local):
		return "+" + digits
	default:
		return ""
	}
}

// NormalizeWebsite validates scheme-carrying URLs and upgrades bare domains
// to https. Anything else comes back empty.
func NormalizeWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return ""
		}
		return raw
	}

	if bareDomainRe.MatchString(raw) {
		return "https://" + raw
	}

	return ""
}

// NormalizeReviews keeps reviews carrying both content and a rating,
// truncates content, clamps the rating, and caps the total kept.
func NormalizeReviews(raw []types.RawReview) []types.Review {
	out := make([]types.Review, 0, len(raw))

	for _, r := range raw {
		if strings.TrimSpace(r.Content) == "" || r.Rating == nil {
			continue
		}

		out = append(out, types.Review{
			Author:  r.Author,
			Content: capRunes(r.Content, config.MaxReviewLength),
			Rating:  NormalizeRating(r.Rating),
			Date:    r.Date,
		})

		if len(out) == config.MaxReviews {
			break
		}
	}

	return out
}

// Completeness weights per field tier.
const (
	requiredWeight  = 3.0
	importantWeight = 2.0
	optionalWeight  = 1.0

	// 3 required fields, 6 important, 6 optional.
	totalCompletenessWeight = 3*requiredWeight + 6*importantWeight + 6*optionalWeight
)

func computeQuality(raw *types.RawRecord, coordsUsable bool, now time.Time) types.DataQuality {
	completeness := completenessScore(raw, coordsUsable)

	accuracy := 1.0
	if !coordsUsable {
		accuracy -= 0.2
	}
	if raw.Rating != nil && (*raw.Rating < config.RatingMin || *raw.Rating > config.RatingMax) {
		accuracy -= 0.1
	}
	if raw.PriceRange != nil {
		rounded := int(math.Round(*raw.PriceRange))
		if rounded < config.PriceRangeMin || rounded > config.PriceRangeMax {
			accuracy -= 0.1
		}
	}
	if accuracy < 0 {
		accuracy = 0
	}

	freshness := freshnessScore(raw.LastUpdated, now)

	// Baseline absent deeper cross-field checks.
	consistency := 0.8

	return types.DataQuality{
		Overall:      (completeness + accuracy + freshness + consistency) / 4,
		Completeness: completeness,
		Accuracy:     accuracy,
		Freshness:    freshness,
		Consistency:  consistency,
	}
}

func completenessScore(raw *types.RawRecord, coordsUsable bool) float64 {
	var weight float64

	// Required fields.
	if strings.TrimSpace(raw.Name) != "" {
		weight += requiredWeight
	}
	if strings.TrimSpace(raw.Address) != "" {
		weight += requiredWeight
	}
	if coordsUsable {
		weight += requiredWeight
	}

	// Important fields.
	if len(raw.CuisineType) > 0 {
		weight += importantWeight
	}
	if raw.PriceRange != nil {
		weight += importantWeight
	}
	if raw.Rating != nil {
		weight += importantWeight
	}
	if len(raw.OperatingHours) > 0 {
		weight += importantWeight
	}
	if strings.TrimSpace(raw.Phone) != "" {
		weight += importantWeight
	}
	if strings.TrimSpace(raw.Website) != "" {
		weight += importantWeight
	}

	// Optional fields.
	if raw.ReviewCount > 0 {
		weight += optionalWeight
	}
	if len(raw.MenuItems) > 0 {
		weight += optionalWeight
	}
	if len(raw.Features) > 0 {
		weight += optionalWeight
	}
	if len(raw.Photos) > 0 {
		weight += optionalWeight
	}
	if len(raw.Reviews) > 0 {
		weight += optionalWeight
	}
	if !raw.LastUpdated.IsZero() {
		weight += optionalWeight
	}

	return weight / totalCompletenessWeight
}

// freshnessScore is a step function of record age. A zero timestamp means the
// age is unknowable and scores 0 rather than landing in the stale tail.
func freshnessScore(lastUpdated, now time.Time) float64 {
	if lastUpdated.IsZero() {
		return 0.0
	}

	days := now.Sub(lastUpdated).Hours() / 24
	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.8
	case days <= 90:
		return 0.6
	case days <= 180:
		return 0.4
	default:
		return 0.2
	}
}

func mapAndCap(raw []string, vocabulary map[string]string, limit int) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, token := range raw {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		value := token
		if vocabulary != nil {
			if canonical, ok := vocabulary[strings.ToLower(token)]; ok {
				value = canonical
			} else {
				value = titleCase(token)
			}
		}

		key := strings.ToLower(value)
		if !seen[key] {
			seen[key] = true
			out = append(out, value)
		}

		if len(out) == limit {
			break
		}
	}

	return out
}

func dedupeCap(raw []string, limit int) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}

	return out
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func capRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
