package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	t.Run("zero distance", func(t *testing.T) {
		if d := Haversine(22.3193, 114.1694, 22.3193, 114.1694); d != 0 {
			t.Errorf("distance to self = %f, want 0", d)
		}
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := Haversine(22.0, 114.0, 23.0, 114.0)
		// One degree of latitude on a 6371km sphere is about 111.2km.
		if math.Abs(d-111195) > 100 {
			t.Errorf("distance = %f, want about 111195m", d)
		}
	})

	t.Run("central to tsim sha tsui", func(t *testing.T) {
		d := Haversine(22.2819, 114.1582, 22.2976, 114.1722)
		// Across the harbour, roughly 2.2km.
		if d < 1800 || d > 2800 {
			t.Errorf("distance = %f, want roughly 2.2km", d)
		}
	})

	t.Run("symmetry", func(t *testing.T) {
		a := Haversine(22.28, 114.16, 22.45, 114.02)
		b := Haversine(22.45, 114.02, 22.28, 114.16)
		if math.Abs(a-b) > 1e-6 {
			t.Errorf("not symmetric: %f vs %f", a, b)
		}
	})
}

func TestInBounds(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"central", 22.2819, 114.1582, true},
		{"northern edge inclusive", 22.58, 114.0, true},
		{"southern edge inclusive", 22.15, 114.0, true},
		{"too far north", 22.60, 114.0, false},
		{"too far west", 22.30, 113.50, false},
		{"london", 51.5074, -0.1278, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InBounds(tt.lat, tt.lon); got != tt.want {
				t.Errorf("InBounds(%f, %f) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}
