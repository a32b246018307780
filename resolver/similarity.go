// Package resolver detects and merges records that describe the same real
// venue. Similarity is deterministic string and geographic math; no record
// leaves the process.
package resolver

import (
	"regexp"
	"strings"

	"platemap/config"
	"platemap/geo"
	"platemap/textsim"
	"platemap/types"
)

// Similarity holds the per-component scores for one record pair, each in
// [0,1], plus their weighted combination.
type Similarity struct {
	Name     float64
	Location float64
	Address  float64
	Phone    float64
	Overall  float64
}

// Component weights for the overall score.
const (
	nameWeight     = 0.4
	locationWeight = 0.3
	addressWeight  = 0.2
	phoneWeight    = 0.1
)

// genericVenueWords carry no identity signal and are removed before name
// comparison.
var genericVenueWords = map[string]bool{
	"restaurant": true,
	"cafe":       true,
	"kitchen":    true,
	"dining":     true,
	"house":      true,
	"room":       true,
	"bar":        true,
	"grill":      true,
}

// addressNoiseWords are floor/unit/ordinal tokens stripped before address
// comparison, since sources disagree on how much of the building they name.
var addressNoiseWords = map[string]bool{
	"floor": true, "fl": true, "f": true,
	"unit": true, "shop": true, "flat": true, "block": true, "suite": true,
	"gf": true, "g": true, "basement": true, "podium": true,
}

var (
	punctRe   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	ordinalRe = regexp.MustCompile(`^\d+(st|nd|rd|th)$`)
)

// Score computes the full similarity between two normalized records.
func Score(a, b *types.NormalizedRecord) Similarity {
	sim := Similarity{
		Name:     NameSimilarity(a.Name, b.Name),
		Location: LocationSimilarity(a.Location, b.Location),
		Address:  AddressSimilarity(a.Address, b.Address),
		Phone:    PhoneSimilarity(a.ContactInfo.Phone, b.ContactInfo.Phone),
	}

	sim.Overall = nameWeight*sim.Name +
		locationWeight*sim.Location +
		addressWeight*sim.Address +
		phoneWeight*sim.Phone

	return sim
}

// IsDuplicate applies the duplicate decision rules; any one passing rule
// marks the pair as duplicates.
func IsDuplicate(sim Similarity) bool {
	if sim.Overall > config.OverallDuplicateThreshold {
		return true
	}
	if sim.Phone == 1.0 && sim.Name > config.PhoneRuleNameThreshold && sim.Location > config.PhoneRuleLocationThreshold {
		return true
	}
	if sim.Name > config.NameLocationRuleThreshold && sim.Location > config.NameLocationRuleThreshold {
		return true
	}
	if sim.Address > config.AddressRuleThreshold && sim.Name > config.AddressRuleNameThreshold {
		return true
	}
	return false
}

// NameSimilarity blends edit distance, token overlap, and longest common
// subsequence over cleaned names.
func NameSimilarity(a, b string) float64 {
	ca := cleanName(a)
	cb := cleanName(b)

	if ca == "" && cb == "" {
		return 1.0
	}
	if ca == "" || cb == "" {
		return 0.0
	}

	return 0.4*textsim.NormalizedLevenshtein(ca, cb) +
		0.4*textsim.JaccardTokens(ca, cb) +
		0.2*textsim.LCSRatio(ca, cb)
}

// LocationSimilarity maps the great-circle distance between two locations
// through a piecewise function: near-identical coordinates score 1.0, and the
// score decays linearly to 0 between 500m and 1000m.
func LocationSimilarity(a, b types.Location) float64 {
	meters := geo.Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)

	switch {
	case meters <= 10:
		return 1.0
	case meters <= 50:
		return 0.95
	case meters <= 100:
		return 0.9
	case meters <= 200:
		return 0.8
	case meters <= 500:
		return 0.6
	case meters < 1000:
		return 0.6 * (1000 - meters) / 500
	default:
		return 0.0
	}
}

// AddressSimilarity averages edit-distance and token-overlap scores after
// stripping floor/unit noise.
func AddressSimilarity(a, b string) float64 {
	ca := cleanAddress(a)
	cb := cleanAddress(b)

	if ca == "" && cb == "" {
		return 1.0
	}
	if ca == "" || cb == "" {
		return 0.0
	}

	return (textsim.NormalizedLevenshtein(ca, cb) + textsim.JaccardTokens(ca, cb)) / 2
}

// PhoneSimilarity compares digit-only forms: identical scores 1.0, one being
// a substring of the other (format variants) scores 0.9, anything else 0.
// Absent phones never match.
func PhoneSimilarity(a, b string) float64 {
	da := digitsOnly(a)
	db := digitsOnly(b)

	if da == "" || db == "" {
		return 0.0
	}
	if da == db {
		return 1.0
	}
	if strings.Contains(da, db) || strings.Contains(db, da) {
		return 0.9
	}
	return 0.0
}

func cleanName(name string) string {
	lowered := punctRe.ReplaceAllString(strings.ToLower(name), " ")

	kept := make([]string, 0, 8)
	for _, token := range strings.Fields(lowered) {
		if !genericVenueWords[token] {
			kept = append(kept, token)
		}
	}
	return strings.Join(kept, " ")
}

func cleanAddress(address string) string {
	lowered := punctRe.ReplaceAllString(strings.ToLower(address), " ")

	kept := make([]string, 0, 8)
	for _, token := range strings.Fields(lowered) {
		if addressNoiseWords[token] || ordinalRe.MatchString(token) {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
