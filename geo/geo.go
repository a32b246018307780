// Package geo holds the coordinate math shared by district inference and
// duplicate detection.
package geo

import (
	"math"

	"platemap/config"
)

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two
// latitude/longitude points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// InBounds reports whether the coordinate pair falls inside the configured
// bounding box.
func InBounds(lat, lon float64) bool {
	return lat >= config.BoundingBoxMinLat && lat <= config.BoundingBoxMaxLat &&
		lon >= config.BoundingBoxMinLon && lon <= config.BoundingBoxMaxLon
}
