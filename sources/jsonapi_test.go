package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const dineHKPayload = `{
	"restaurants": [
		{
			"id": "gd-001",
			"name": "Golden Dragon Restaurant",
			"address": "12 Queen's Road, Wan Chai",
			"lat": 22.2783,
			"lng": 114.1746,
			"cuisines": ["Cantonese", "Dim Sum"],
			"price_level": 2,
			"rating": "4.5",
			"review_count": 120,
			"opening_hours": {"mon": "9am-10pm"},
			"phone": "+852 1234 5678",
			"website": "https://goldendragon.hk",
			"popular_dishes": ["Har Gow"],
			"amenities": ["wifi"],
			"photos": ["https://img.example/1.jpg"],
			"updated_at": "2026-07-31T12:00:00Z"
		},
		{
			"name": "No ID Diner",
			"address": "somewhere"
		},
		{
			"id": "min-002",
			"name": "Minimal Noodles",
			"address": "3 Side Street"
		}
	]
}`

func testJSONConnector(url string) *JSONConnector {
	c := NewJSONConnector("dinehk", url, "restaurants", FieldMap{
		ID:          "id",
		Name:        "name",
		Address:     "address",
		Latitude:    "lat",
		Longitude:   "lng",
		Cuisine:     "cuisines",
		PriceRange:  "price_level",
		Rating:      "rating",
		ReviewCount: "review_count",
		Hours:       "opening_hours",
		Phone:       "phone",
		Website:     "website",
		MenuItems:   "popular_dishes",
		Features:    "amenities",
		Photos:      "photos",
		Updated:     "updated_at",
	}, 0.9)
	c.client = testClient()
	return c
}

func TestJSONConnectorExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dineHKPayload))
	}))
	defer server.Close()

	result, err := testJSONConnector(server.URL).Extract(context.Background(), Params{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(result.Records) != 2 {
		t.Fatalf("got %d record(s), want 2", len(result.Records))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "external ID") {
		t.Errorf("want one missing-ID mapping error, got %v", result.Errors)
	}

	record := result.Records[0]
	if record.SourceID != "dinehk" || record.ExternalID != "gd-001" {
		t.Errorf("identity = %s/%s", record.SourceID, record.ExternalID)
	}
	if record.Name != "Golden Dragon Restaurant" {
		t.Errorf("Name = %q", record.Name)
	}
	if record.Latitude == nil || *record.Latitude != 22.2783 {
		t.Errorf("Latitude = %v, want 22.2783", record.Latitude)
	}
	// Rating shipped as a JSON string must still coerce.
	if record.Rating == nil || *record.Rating != 4.5 {
		t.Errorf("Rating = %v, want coerced 4.5", record.Rating)
	}
	if record.PriceRange == nil || *record.PriceRange != 2 {
		t.Errorf("PriceRange = %v, want 2", record.PriceRange)
	}
	if record.ReviewCount != 120 {
		t.Errorf("ReviewCount = %d, want 120", record.ReviewCount)
	}
	if len(record.CuisineType) != 2 || record.CuisineType[0] != "Cantonese" {
		t.Errorf("CuisineType = %v", record.CuisineType)
	}
	if got := record.OperatingHours["mon"]; got != "9am-10pm" {
		t.Errorf("hours[mon] = %q", got)
	}
	want := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	if !record.LastUpdated.Equal(want) {
		t.Errorf("LastUpdated = %v, want %v", record.LastUpdated, want)
	}

	minimal := result.Records[1]
	if minimal.Latitude != nil || minimal.Longitude != nil {
		t.Error("absent coordinates must stay nil, not zero")
	}
	if minimal.Rating != nil || minimal.PriceRange != nil {
		t.Error("absent numeric fields must stay nil")
	}

	if result.Metadata.TotalExtracted != 2 || result.Metadata.SourceReliability != 0.9 {
		t.Errorf("metadata = %+v", result.Metadata)
	}
}

func TestJSONConnectorExtractLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dineHKPayload))
	}))
	defer server.Close()

	result, err := testJSONConnector(server.URL).Extract(context.Background(), Params{Limit: 1})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Records) != 1 {
		t.Errorf("got %d record(s), want limit of 1", len(result.Records))
	}
}

func TestJSONConnectorExtractBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"missing records key", `{"venues": []}`},
		{"records key not an array", `{"restaurants": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			if _, err := testJSONConnector(server.URL).Extract(context.Background(), Params{}); err == nil {
				t.Error("Extract returned no error")
			}
		})
	}
}

func TestJSONConnectorExtractByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/gd-001") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id": "gd-001", "name": "Golden Dragon Restaurant", "address": "12 Queen's Road"}`))
	}))
	defer server.Close()

	record, err := testJSONConnector(server.URL).ExtractByID(context.Background(), "gd-001")
	if err != nil {
		t.Fatalf("ExtractByID: %v", err)
	}
	if record == nil || record.ExternalID != "gd-001" {
		t.Errorf("record = %+v", record)
	}
}

func TestJSONConnectorHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	if !testJSONConnector(server.URL).HealthCheck(context.Background()) {
		t.Error("HealthCheck = false for a healthy endpoint")
	}
	if testJSONConnector("http://127.0.0.1:1").HealthCheck(context.Background()) {
		t.Error("HealthCheck = true for an unreachable endpoint")
	}
}
