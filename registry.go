package main

import (
	"log"

	"platemap/config"
	"platemap/sources"
)

// buildRegistry constructs the connector registry from the environment. Each
// source is registered only when its URL is configured, so deployments pick
// the sources they ingest. The field maps and selectors here are the one
// place each source's shape is known; the pipeline only ever sees RawRecord.
func buildRegistry() *sources.Registry {
	registry := sources.NewRegistry()

	if url := config.GetEnvOrDefault("SOURCE_DINEHK_URL", ""); url != "" {
		connector := sources.NewJSONConnector("dinehk", url, "restaurants", sources.FieldMap{
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
		mustRegister(registry, "dinehk", sources.Entry{
			Connector: connector, SourceName: "DineHK", Reliability: 0.9,
		})
	}

	if url := config.GetEnvOrDefault("SOURCE_TABLECITY_URL", ""); url != "" {
		connector := sources.NewJSONConnector("tablecity", url, "venues", sources.FieldMap{
			ID:          "venue_id",
			Name:        "title",
			Address:     "full_address",
			Latitude:    "latitude",
			Longitude:   "longitude",
			Cuisine:     "categories",
			PriceRange:  "price_tier",
			Rating:      "avg_score",
			ReviewCount: "reviews_total",
			Phone:       "contact_phone",
			Website:     "homepage",
			Updated:     "last_modified",
		}, 0.8)
		mustRegister(registry, "tablecity", sources.Entry{
			Connector: connector, SourceName: "TableCity", Reliability: 0.8,
		})
	}

	if url := config.GetEnvOrDefault("SOURCE_FOODGUIDE_URL", ""); url != "" {
		connector := sources.NewDirectoryConnector("foodguide", url, sources.Selectors{
			Item:    "div.listing-item",
			Name:    "h3.venue-name",
			Address: "span.venue-address",
			Cuisine: "span.venue-cuisine",
			Rating:  "span.venue-rating",
			Phone:   "span.venue-phone",
			Website: "a.venue-link",
		}, 0.7)
		mustRegister(registry, "foodguide", sources.Entry{
			Connector: connector, SourceName: "FoodGuide HK", Reliability: 0.7,
		})
	}

	if url := config.GetEnvOrDefault("SOURCE_EATSFEED_URL", ""); url != "" {
		connector := sources.NewFeedConnector("eatsfeed", url, 0.6)
		mustRegister(registry, "eatsfeed", sources.Entry{
			Connector: connector, SourceName: "Eats Feed", Reliability: 0.6,
		})
	}

	return registry
}

func mustRegister(registry *sources.Registry, id string, entry sources.Entry) {
	if err := registry.Register(id, entry); err != nil {
		log.Fatalf("Failed to register source %s: %v", id, err)
	}
}
