// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package places

import (
	"strings"
	"time"

	"github.com/tablepick/tablepick/internal/recommend"
)

// liveIDPrefix marks restaurants imported from live search so they
// never collide with user-entered records.
const liveIDPrefix = "gp_"

// cuisineByType maps provider taxonomy tags to cuisine tags.
var cuisineByType = map[string]string{
	"chinese_restaurant":       "Chinese",
	"italian_restaurant":       "Italian",
	"japanese_restaurant":      "Japanese",
	"indian_restaurant":        "Indian",
	"mexican_restaurant":       "Mexican",
	"thai_restaurant":          "Thai",
	"french_restaurant":        "French",
	"american_restaurant":      "American",
	"mediterranean_restaurant": "Mediterranean",
	"korean_restaurant":        "Korean",
	"vietnamese_restaurant":    "Vietnamese",
	"pizza_restaurant":         "Pizza",
	"seafood_restaurant":       "Seafood",
	"steakhouse":               "Steakhouse",
	"bakery":                   "Bakery",
	"cafe":                     "Cafe",
	"bar":                      "Bar",
	"fast_food_restaurant":     "Fast Food",
}

// vibeByType maps provider taxonomy tags to vibe tags.
var vibeByType = map[string]string{
	"bar":                  "Bar",
	"night_club":           "Nightlife",
	"cafe":                 "Casual",
	"bakery":               "Counter-Service/To-Go",
	"fast_food_restaurant": "Counter-Service/To-Go",
	"meal_takeaway":        "Counter-Service/To-Go",
	"meal_delivery":        "Counter-Service/To-Go",
}

// cuisineByKeyword is the name fallback when no taxonomy tag matched.
// Keys are matched as case-insensitive substrings of the place name.
var cuisineByKeyword = map[string]string{
	"pizza":     "Pizza",
	"pizzeria":  "Pizza",
	"taco":      "Mexican",
	"taqueria":  "Mexican",
	"sushi":     "Sushi",
	"ramen":     "Ramen",
	"pho":       "Vietnamese",
	"thai":      "Thai",
	"bbq":       "BBQ",
	"barbecue":  "BBQ",
	"burger":    "Burgers",
	"deli":      "Sandwiches",
	"bakery":    "Bakery",
	"cafe":      "Cafe",
	"coffee":    "Cafe",
	"trattoria": "Italian",
	"bistro":    "French",
	"cantina":   "Mexican",
	"izakaya":   "Japanese",
	"curry":     "Indian",
}

// ToRestaurants maps raw search candidates into Restaurant records
// owned by the given user, applying the taxonomy tables with a
// name-keyword fallback and parsing addresses into city/state.
func (c *Client) ToRestaurants(candidates []recommend.Candidate, userID string) []recommend.Restaurant {
	out := make([]recommend.Restaurant, 0, len(candidates))
	for _, cand := range candidates {
		if cand.PlaceID == "" {
			continue
		}

		city, state := parseAddress(cand.FormattedAddress)
		features := map[string]any{}
		if cand.OpenNow != nil {
			features["open_now"] = *cand.OpenNow
		}

		out = append(out, recommend.Restaurant{
			ID:           liveIDPrefix + cand.PlaceID,
			Name:         cand.Name,
			CuisineType:  extractCuisines(cand.Types, cand.Name),
			Vibes:        extractVibes(cand.Types),
			PlaceID:      cand.PlaceID,
			GoogleRating: cand.Rating,
			PriceLevel:   cand.PriceLevel,
			Features:     features,
			Location: recommend.Location{
				Lat:     cand.Lat,
				Lng:     cand.Lng,
				Address: cand.FormattedAddress,
				City:    city,
				State:   state,
			},
			LastUpdated: time.Now().UTC(),
		})
	}
	return out
}

// extractCuisines resolves cuisine tags from taxonomy types, falling
// back to name keywords and finally a generic "Restaurant" tag.
func extractCuisines(types []string, name string) []string {
	var cuisines []string
	for _, t := range types {
		if cuisine, ok := cuisineByType[t]; ok {
			cuisines = append(cuisines, cuisine)
		}
	}
	if len(cuisines) > 0 {
		return cuisines
	}

	lower := strings.ToLower(name)
	for keyword, cuisine := range cuisineByKeyword {
		if strings.Contains(lower, keyword) {
			cuisines = append(cuisines, cuisine)
		}
	}
	if len(cuisines) > 1 {
		cuisines = dedupe(cuisines)
	}
	if len(cuisines) > 0 {
		return cuisines
	}

	return []string{"Restaurant"}
}

// extractVibes resolves vibe tags from taxonomy types, defaulting to
// Casual.
func extractVibes(types []string) []string {
	var vibes []string
	for _, t := range types {
		if vibe, ok := vibeByType[t]; ok {
			vibes = append(vibes, vibe)
		}
	}
	if len(vibes) == 0 {
		return []string{"Casual"}
	}
	return dedupe(vibes)
}

// parseAddress extracts city and state from a comma-separated US-style
// address such as "1600 S 1st St, Austin, TX 78704, USA". Unparseable
// addresses yield empty fields.
func parseAddress(address string) (city, state string) {
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	// Drop a trailing country segment.
	if n := len(parts); n > 0 {
		switch strings.ToUpper(parts[n-1]) {
		case "USA", "US", "UNITED STATES":
			parts = parts[:n-1]
		}
	}

	if len(parts) < 2 {
		return "", ""
	}

	// The last remaining segment is "TX 78704" or just "TX"; the one
	// before it is the city.
	stateZip := strings.Fields(parts[len(parts)-1])
	if len(stateZip) == 0 {
		return "", ""
	}
	state = stateZip[0]
	city = parts[len(parts)-2]
	return city, state
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
