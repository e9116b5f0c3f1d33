// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import (
	"time"
)

// Location holds a restaurant's or query's geographic position.
// Lat/Lng are pointers because many imported records carry only an
// address or city without coordinates.
type Location struct {
	// Lat is the latitude in decimal degrees.
	Lat *float64 `json:"lat,omitempty"`

	// Lng is the longitude in decimal degrees.
	Lng *float64 `json:"lng,omitempty"`

	// Address is the street address as imported or returned by the
	// place-search provider.
	Address string `json:"address,omitempty"`

	// City is the city name.
	City string `json:"city,omitempty"`

	// State is the state or region abbreviation.
	State string `json:"state,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lng != nil
}

// Restaurant is the core catalog record. It is owned by the Store; the
// recommendation core only reads and mutates fields it is handed.
type Restaurant struct {
	// ID is the stable restaurant identifier. Live-search results are
	// prefixed so they never collide with imported records.
	ID string `json:"id"`

	// Name is the restaurant name.
	Name string `json:"name"`

	// CuisineType is the set of cuisine tags (e.g. "Thai", "Pizza").
	CuisineType []string `json:"cuisine_type"`

	// Vibes is the set of atmosphere tags (e.g. "Casual", "Date Night").
	Vibes []string `json:"vibes,omitempty"`

	// Location is the restaurant's position and address.
	Location Location `json:"location"`

	// PlaceID is the external place-search provider identifier, when known.
	PlaceID string `json:"place_id,omitempty"`

	// PriceLevel is the 1-4 price bracket, or nil when unknown.
	PriceLevel *int `json:"price_level,omitempty"`

	// UserRating is the user's own 1.0-5.0 rating, or nil when unrated.
	UserRating *float64 `json:"user_rating,omitempty"`

	// GoogleRating is the external aggregate rating, or nil when unknown.
	GoogleRating *float64 `json:"google_rating,omitempty"`

	// Features is a free-form attribute map (website, phone, open_now, ...).
	Features map[string]any `json:"features,omitempty"`

	// MenuItems lists dishes the user recorded for this restaurant.
	MenuItems []string `json:"menu_items,omitempty"`

	// RevisitPreference records whether the user wants to return
	// ("Y"/"Yes"/"yes" are affirmative, anything else is not).
	RevisitPreference string `json:"revisit_preference,omitempty"`

	// IsWishlist marks a restaurant the user intends to try but has not rated.
	IsWishlist bool `json:"is_wishlist,omitempty"`

	// Notes holds free-form user notes.
	Notes string `json:"notes,omitempty"`

	// LastUpdated is when the record was last written.
	LastUpdated time.Time `json:"last_updated"`
}

// WantsRevisit reports whether the revisit preference is affirmative.
func (r *Restaurant) WantsRevisit() bool {
	switch r.RevisitPreference {
	case "Y", "Yes", "yes":
		return true
	}
	return false
}

// HasFeature reports whether a feature key is present with a truthy value.
// String values are truthy when non-empty; bools when true; anything else
// non-nil counts as present.
func (r *Restaurant) HasFeature(key string) bool {
	v, ok := r.Features[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	return true
}

// RatingPatterns summarizes a user's rating behavior.
type RatingPatterns struct {
	// AverageRating is the mean of all user ratings, rounded to 2 decimals.
	AverageRating float64 `json:"average_rating"`

	// RatingStd is the population standard deviation, rounded to 2 decimals.
	RatingStd float64 `json:"rating_std"`

	// TotalRestaurants is the number of rated restaurants.
	TotalRestaurants int `json:"total_restaurants"`

	// Distribution buckets ratings by their integer part.
	Distribution map[int]int `json:"rating_distribution"`

	// HighRatedCount is the number of ratings >= 4.0.
	HighRatedCount int `json:"high_rated_count"`

	// LowRatedCount is the number of ratings <= 2.0.
	LowRatedCount int `json:"low_rated_count"`

	// RatingRange is max - min, rounded to 1 decimal.
	RatingRange float64 `json:"rating_range"`

	// Tendency classifies the mean: "generous" (>=4.0), "critical" (<=2.5),
	// else "balanced".
	Tendency string `json:"rating_tendency"`

	// Consistency classifies the stddev: "very_consistent" (<=0.5),
	// "consistent" (<=1.0), else "variable".
	Consistency string `json:"rating_consistency"`
}

// CityStats records per-city visit history.
type CityStats struct {
	// City is the city name as stored.
	City string `json:"city"`

	// VisitCount is the number of rated restaurants in the city.
	VisitCount int `json:"visit_count"`

	// AverageRating is the mean rating across the city's restaurants.
	AverageRating float64 `json:"average_rating"`

	// TopCuisines lists the city's three most frequent cuisine tags.
	TopCuisines []string `json:"top_cuisines"`
}

// UserPreferenceProfile is a user's learned taste model. It is rebuilt
// wholesale on every analysis pass, never patched incrementally.
type UserPreferenceProfile struct {
	// UserID identifies the profile owner.
	UserID string `json:"user_id"`

	// CuisinePreferences maps cuisine tag to a signed preference score.
	// Scores are bounded to roughly [-1, 1] by construction.
	CuisinePreferences map[string]float64 `json:"cuisine_preferences"`

	// PricePreferences maps price level (1-4) to a signed preference score.
	PricePreferences map[int]float64 `json:"price_preferences"`

	// VibePreferences maps vibe tag to a signed preference score.
	VibePreferences map[string]float64 `json:"vibe_preferences"`

	// FavoriteDishes lists recurring dishes from highly rated restaurants,
	// ordered by descending frequency.
	FavoriteDishes []string `json:"favorite_dishes"`

	// RatingPatterns summarizes rating behavior.
	RatingPatterns RatingPatterns `json:"rating_patterns"`

	// LocationHistory lists per-city stats sorted by visit count descending.
	LocationHistory []CityStats `json:"location_history"`

	// LastUpdated is when the profile was built.
	LastUpdated time.Time `json:"last_updated"`
}

// IsEmpty reports whether the profile carries no learned preferences,
// which is the case when the user has no rated restaurants.
func (p *UserPreferenceProfile) IsEmpty() bool {
	return len(p.CuisinePreferences) == 0 &&
		len(p.PricePreferences) == 0 &&
		len(p.VibePreferences) == 0
}

// Recommendation pairs a restaurant with its score and explanation.
type Recommendation struct {
	// Restaurant is the recommended restaurant.
	Restaurant Restaurant `json:"restaurant"`

	// Score is the weighted preference score, rounded to 3 decimals.
	// It is theoretically unbounded below; session and wishlist contexts
	// clip it at 1.0 from above only.
	Score float64 `json:"score"`

	// Reasoning is a human-readable justification.
	Reasoning string `json:"reasoning"`

	// DistanceKM is the great-circle distance from the query point,
	// or nil when either side lacks coordinates.
	DistanceKM *float64 `json:"distance_km,omitempty"`
}

// SessionPreferences holds per-session taste overrides supplied through
// feedback. Each key is replaced wholesale when new values arrive
// (last write wins), never merged.
type SessionPreferences struct {
	// PreferredCuisines lists cuisines the user asked for this session.
	PreferredCuisines []string `json:"preferred_cuisines,omitempty"`

	// PreferredVibes lists vibes the user asked for this session.
	PreferredVibes []string `json:"preferred_vibes,omitempty"`
}

// RecommendationSession is the persisted state of one interactive
// multi-round recommendation conversation.
type RecommendationSession struct {
	// SessionID uniquely identifies the session.
	SessionID string `json:"session_id"`

	// UserID is the session owner.
	UserID string `json:"user_id"`

	// Location anchors the session geographically (city or coordinates).
	Location Location `json:"location"`

	// ShownRestaurantIDs is append-only: once shown, a restaurant is
	// never returned again in the same session.
	ShownRestaurantIDs []string `json:"shown_restaurant_ids"`

	// LikedRestaurantIDs is append-only and not deduplicated; repeat
	// likes compound the similarity boost.
	LikedRestaurantIDs []string `json:"liked_restaurant_ids"`

	// DislikedRestaurantIDs is append-only and not deduplicated.
	DislikedRestaurantIDs []string `json:"disliked_restaurant_ids"`

	// SessionPreferences holds the latest requested cuisines and vibes.
	SessionPreferences SessionPreferences `json:"session_preferences"`

	// CachedLiveRestaurantIDs records ids fetched from the live supplier.
	// Populated at most once per session; later rounds reuse it instead
	// of calling the supplier again.
	CachedLiveRestaurantIDs []string `json:"cached_live_restaurant_ids"`

	// CreatedAt is when the session was started.
	CreatedAt time.Time `json:"created_at"`

	// LastActivity is updated by every feedback or recommendation round.
	LastActivity time.Time `json:"last_activity"`
}

// FeedbackKind classifies a feedback-log entry.
type FeedbackKind string

const (
	// FeedbackLiked records a thumbs-up on a shown restaurant.
	FeedbackLiked FeedbackKind = "liked"

	// FeedbackDisliked records a thumbs-down on a shown restaurant.
	FeedbackDisliked FeedbackKind = "disliked"
)

// Candidate is a raw result from the live place-search provider before
// taxonomy mapping. The supplier converts candidates to Restaurants.
type Candidate struct {
	// PlaceID is the provider's stable place identifier.
	PlaceID string `json:"place_id"`

	// Name is the place name.
	Name string `json:"name"`

	// Types is the provider's taxonomy tags for the place.
	Types []string `json:"types,omitempty"`

	// Lat/Lng are the place coordinates when returned.
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`

	// FormattedAddress is the provider's free-text address.
	FormattedAddress string `json:"formatted_address,omitempty"`

	// Rating is the provider's aggregate rating.
	Rating *float64 `json:"rating,omitempty"`

	// PriceLevel is the provider's 1-4 price bracket.
	PriceLevel *int `json:"price_level,omitempty"`

	// OpenNow reports current open status when the provider returned it.
	OpenNow *bool `json:"open_now,omitempty"`
}

// Insights is a human-readable digest of a preference profile.
type Insights struct {
	// Personality is a one-line dining personality classification.
	Personality string `json:"personality"`

	// TopCuisines lists up to five cuisines with positive preference.
	TopCuisines []RankedPreference `json:"top_cuisines"`

	// PreferredVibes lists up to five vibes with positive preference.
	PreferredVibes []RankedPreference `json:"preferred_vibes"`

	// PriceComfortZone describes the best-liked price bracket.
	PriceComfortZone string `json:"price_comfort_zone"`

	// Adventurousness describes cuisine and city diversity.
	Adventurousness string `json:"adventurousness"`

	// Consistency echoes the profile's rating consistency class.
	Consistency string `json:"consistency"`

	// FavoriteCities lists up to five most-visited cities.
	FavoriteCities []string `json:"favorite_cities"`
}

// RankedPreference is a named preference with its learned score.
type RankedPreference struct {
	Name  string  `json:"name"`
	Score float64 `json:"preference_score"`
}
