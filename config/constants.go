package config

import "time"

// Geographic Constants (Hong Kong)
const (
	// BoundingBoxMinLat is the southern edge of the accepted coordinate range
	BoundingBoxMinLat = 22.15

	// BoundingBoxMaxLat is the northern edge of the accepted coordinate range
	BoundingBoxMaxLat = 22.58

	// BoundingBoxMinLon is the western edge of the accepted coordinate range
	BoundingBoxMinLon = 113.83

	// BoundingBoxMaxLon is the eastern edge of the accepted coordinate range
	BoundingBoxMaxLon = 114.41

	// DefaultLatitude is substituted when a source omits usable coordinates
	DefaultLatitude = 22.3193

	// DefaultLongitude is substituted when a source omits usable coordinates
	DefaultLongitude = 114.1694

	// DistrictRadiusMeters is the maximum distance from a district centroid
	// for nearest-centroid district inference
	DistrictRadiusMeters = 2000.0
)

// Extraction Constants
const (
	// ExtractionConcurrency is the number of sources extracted simultaneously
	ExtractionConcurrency = 3

	// ChunkPause is the wait between concurrency chunks to avoid hammering
	// upstream services
	ChunkPause = 500 * time.Millisecond

	// SourceRetryDelay is the wait before re-running sources that failed
	// their first extraction attempt
	SourceRetryDelay = 2 * time.Second

	// MinRequestInterval is the minimum spacing between HTTP requests a
	// single connector may issue
	MinRequestInterval = 200 * time.Millisecond

	// MaxRequestAttempts bounds the per-request backoff retry loop inside a
	// connector before the failure surfaces upward
	MaxRequestAttempts = 3

	// RequestBackoffBase is the initial backoff delay, doubled per attempt
	RequestBackoffBase = 500 * time.Millisecond
)

// Validation Constants
const (
	// StalenessThresholdDays triggers a freshness warning for records whose
	// last update is older than this
	StalenessThresholdDays = 90

	// RatingMin and RatingMax bound the canonical rating scale
	RatingMin = 0.0
	RatingMax = 5.0

	// PriceRangeMin and PriceRangeMax bound the canonical price scale
	PriceRangeMin = 1
	PriceRangeMax = 4

	// PhoneCountryCode is the regional prefix canonical phone numbers carry
	PhoneCountryCode = "852"

	// PhoneLocalDigits is the length of a bare local phone number
	PhoneLocalDigits = 8
)

// Per-Field Caps
const (
	// MaxNameLength caps the cleaned venue name
	MaxNameLength = 100

	// MaxAddressLength caps the cleaned address
	MaxAddressLength = 200

	// MaxMenuHighlights caps menu highlight entries per record
	MaxMenuHighlights = 20

	// MaxFeatures caps feature entries per record
	MaxFeatures = 10

	// MaxPhotos caps photo URLs per record
	MaxPhotos = 10

	// MaxReviews caps reviews kept on a normalized record
	MaxReviews = 50

	// MaxMergedReviews caps reviews kept on a merged record
	MaxMergedReviews = 100

	// MaxReviewLength caps review content characters
	MaxReviewLength = 1000
)

// Duplicate Decision Thresholds
const (
	// OverallDuplicateThreshold alone marks a pair as duplicates
	OverallDuplicateThreshold = 0.85

	// PhoneRuleNameThreshold and PhoneRuleLocationThreshold gate the
	// exact-phone duplicate rule
	PhoneRuleNameThreshold     = 0.6
	PhoneRuleLocationThreshold = 0.8

	// NameLocationRuleThreshold gates the name+location duplicate rule
	NameLocationRuleThreshold = 0.9

	// AddressRuleThreshold and AddressRuleNameThreshold gate the
	// address+name duplicate rule
	AddressRuleThreshold     = 0.95
	AddressRuleNameThreshold = 0.7
)

// Quality Score Deductions
const (
	// CriticalDeduction is subtracted per critical validation error
	CriticalDeduction = 0.3

	// MajorDeduction is subtracted per major validation error
	MajorDeduction = 0.2

	// MinorDeduction is subtracted per minor validation error
	MinorDeduction = 0.1

	// WarningDeduction is subtracted per validation warning
	WarningDeduction = 0.05
)
