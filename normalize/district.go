package normalize

import (
	"platemap/config"
	"platemap/geo"
)

type centroid struct {
	name string
	lat  float64
	lon  float64
}

// districtCentroids are named Hong Kong district centers used for
// nearest-centroid inference.
var districtCentroids = []centroid{
	{"Central", 22.2819, 114.1582},
	{"Admiralty", 22.2796, 114.1655},
	{"Wan Chai", 22.2783, 114.1747},
	{"Causeway Bay", 22.2800, 114.1860},
	{"North Point", 22.2910, 114.2000},
	{"Quarry Bay", 22.2880, 114.2170},
	{"Aberdeen", 22.2480, 114.1550},
	{"Stanley", 22.2190, 114.2130},
	{"Tsim Sha Tsui", 22.2976, 114.1722},
	{"Jordan", 22.3049, 114.1717},
	{"Mong Kok", 22.3193, 114.1694},
	{"Sham Shui Po", 22.3307, 114.1622},
	{"Kowloon City", 22.3282, 114.1916},
	{"Kwun Tong", 22.3120, 114.2260},
	{"Sha Tin", 22.3820, 114.1888},
	{"Tsuen Wan", 22.3700, 114.1140},
	{"Tuen Mun", 22.3908, 113.9725},
	{"Yuen Long", 22.4445, 114.0222},
	{"Tai Po", 22.4501, 114.1688},
	{"Sai Kung", 22.3810, 114.2700},
}

// RecognizedDistricts is the set of districts the normalized validator
// accepts: every centroid name, the quadrant fallback labels, and "Unknown".
var RecognizedDistricts = func() map[string]bool {
	set := make(map[string]bool, len(districtCentroids)+4)
	for _, c := range districtCentroids {
		set[c.name] = true
	}
	set["New Territories"] = true
	set["Hong Kong Island"] = true
	set["Kowloon"] = true
	set["Unknown"] = true
	return set
}()

// InferDistrict assigns a district label to an in-bounds coordinate pair:
// nearest named centroid within DistrictRadiusMeters, otherwise a coarse
// quadrant label.
func InferDistrict(lat, lon float64) string {
	best := ""
	bestDist := config.DistrictRadiusMeters

	for _, c := range districtCentroids {
		d := geo.Haversine(lat, lon, c.lat, c.lon)
		if d <= bestDist {
			best = c.name
			bestDist = d
		}
	}

	if best != "" {
		return best
	}

	// Quadrant fallback for coordinates far from every named centroid.
	switch {
	case lat > 22.36:
		return "New Territories"
	case lat < 22.29 && lon < 114.20:
		return "Hong Kong Island"
	default:
		return "Kowloon"
	}
}
