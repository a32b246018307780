package normalize

// cuisineVocabulary maps lowercased raw cuisine tokens to canonical labels.
// Unmapped tokens are title-cased and kept as-is.
var cuisineVocabulary = map[string]string{
	"cantonese":      "Cantonese",
	"canto":          "Cantonese",
	"dim sum":        "Dim Sum",
	"dimsum":         "Dim Sum",
	"yum cha":        "Dim Sum",
	"sichuan":        "Sichuan",
	"szechuan":       "Sichuan",
	"shanghainese":   "Shanghainese",
	"chiu chow":      "Chiu Chow",
	"teochew":        "Chiu Chow",
	"cha chaan teng": "Cha Chaan Teng",
	"hk style":       "Hong Kong Style",
	"hong kong":      "Hong Kong Style",
	"noodle":         "Noodles",
	"noodles":        "Noodles",
	"congee":         "Congee",
	"hot pot":        "Hot Pot",
	"hotpot":         "Hot Pot",
	"seafood":        "Seafood",
	"japanese":       "Japanese",
	"sushi":          "Japanese",
	"ramen":          "Japanese",
	"korean":         "Korean",
	"thai":           "Thai",
	"vietnamese":     "Vietnamese",
	"taiwanese":      "Taiwanese",
	"indian":         "Indian",
	"italian":        "Italian",
	"french":         "French",
	"western":        "Western",
	"fusion":         "Fusion",
	"bbq":            "Barbecue",
	"barbecue":       "Barbecue",
	"veg":            "Vegetarian",
	"veggie":         "Vegetarian",
	"vegetarian":     "Vegetarian",
	"vegan":          "Vegan",
	"dessert":        "Dessert",
	"desserts":       "Dessert",
	"bakery":         "Bakery",
	"cafe":           "Cafe",
	"coffee":         "Cafe",
	"fast food":      "Fast Food",
	"fastfood":       "Fast Food",
}

// featureVocabulary maps lowercased raw feature tokens to canonical labels.
var featureVocabulary = map[string]string{
	"wifi":                  "WiFi",
	"wi-fi":                 "WiFi",
	"free wifi":             "WiFi",
	"outdoor seating":       "Outdoor Seating",
	"alfresco":              "Outdoor Seating",
	"terrace":               "Outdoor Seating",
	"delivery":              "Delivery",
	"takeaway":              "Takeaway",
	"take-away":             "Takeaway",
	"takeout":               "Takeaway",
	"reservations":          "Reservations",
	"booking":               "Reservations",
	"accepts reservations":  "Reservations",
	"wheelchair accessible": "Wheelchair Accessible",
	"accessible":            "Wheelchair Accessible",
	"parking":               "Parking",
	"pet friendly":          "Pet Friendly",
	"pet-friendly":          "Pet Friendly",
	"private room":          "Private Room",
	"private rooms":         "Private Room",
	"live music":            "Live Music",
	"byob":                  "BYOB",
	"air con":               "Air Conditioning",
	"aircon":                "Air Conditioning",
	"air conditioning":      "Air Conditioning",
	"credit cards":          "Credit Cards",
	"card payment":          "Credit Cards",
	"octopus":               "Octopus",
	"cash only":             "Cash Only",
	"kid friendly":          "Kid Friendly",
	"kids menu":             "Kid Friendly",
}

// canonicalDays maps day-key variants to full canonical day names.
var canonicalDays = map[string]string{
	"mon":       "Monday",
	"monday":    "Monday",
	"tue":       "Tuesday",
	"tues":      "Tuesday",
	"tuesday":   "Tuesday",
	"wed":       "Wednesday",
	"weds":      "Wednesday",
	"wednesday": "Wednesday",
	"thu":       "Thursday",
	"thur":      "Thursday",
	"thurs":     "Thursday",
	"thursday":  "Thursday",
	"fri":       "Friday",
	"friday":    "Friday",
	"sat":       "Saturday",
	"saturday":  "Saturday",
	"sun":       "Sunday",
	"sunday":    "Sunday",
}

// DayNames is the canonical day-name set, used by the normalized validator.
var DayNames = map[string]bool{
	"Monday":    true,
	"Tuesday":   true,
	"Wednesday": true,
	"Thursday":  true,
	"Friday":    true,
	"Saturday":  true,
	"Sunday":    true,
}

// CanonicalCuisines is the set of vocabulary-backed cuisine labels, used by
// the normalized validator to flag off-vocabulary entries.
var CanonicalCuisines = func() map[string]bool {
	set := make(map[string]bool, len(cuisineVocabulary))
	for _, v := range cuisineVocabulary {
		set[v] = true
	}
	return set
}()
