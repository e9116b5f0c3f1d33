// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import "fmt"

// Config contains all tunables for the recommendation core.
type Config struct {
	// Weights defines the contribution of each scoring dimension.
	Weights ScoreWeights `json:"weights" koanf:"weights"`

	// Similarity contains parameters for restaurant-to-restaurant similarity.
	Similarity SimilarityConfig `json:"similarity" koanf:"similarity"`

	// Session contains parameters for session learning boosts.
	Session SessionConfig `json:"session" koanf:"session"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`
}

// ScoreWeights defines the contribution of each scoring dimension.
// The weighted sum is the recommendation score.
type ScoreWeights struct {
	// Cuisine is the weight of the best cuisine-preference match.
	// Default: 0.40.
	Cuisine float64 `json:"cuisine" koanf:"cuisine"`

	// Price is the weight of the price-level preference.
	// Default: 0.20.
	Price float64 `json:"price" koanf:"price"`

	// Vibe is the weight of the best vibe-preference match.
	// Default: 0.20.
	Vibe float64 `json:"vibe" koanf:"vibe"`

	// Quality is the weight of external rating and feature signals.
	// Default: 0.15.
	Quality float64 `json:"quality" koanf:"quality"`

	// Special is the weight of revisit and favorite-dish bonuses.
	// Default: 0.05.
	Special float64 `json:"special" koanf:"special"`
}

// SimilarityConfig contains parameters for the similarity engine.
type SimilarityConfig struct {
	// CuisineWeight is the weight of cuisine-set Jaccard overlap.
	// Default: 0.4.
	CuisineWeight float64 `json:"cuisine_weight" koanf:"cuisine_weight"`

	// VibeWeight is the weight of vibe-set Jaccard overlap.
	// Default: 0.3.
	VibeWeight float64 `json:"vibe_weight" koanf:"vibe_weight"`

	// PriceWeight is the weight of price-level proximity.
	// Default: 0.2.
	PriceWeight float64 `json:"price_weight" koanf:"price_weight"`

	// CityWeight is the weight of same-city matching.
	// Default: 0.1.
	CityWeight float64 `json:"city_weight" koanf:"city_weight"`

	// Threshold is the minimum similarity for a candidate to be retained.
	// Default: 0.3.
	Threshold float64 `json:"threshold" koanf:"threshold"`

	// UserBlend is the user-score fraction when re-ranking similar
	// restaurants for a known user: 0.7·similarity + UserBlend·score.
	// Default: 0.3.
	UserBlend float64 `json:"user_blend" koanf:"user_blend"`
}

// SessionConfig contains session-learning boost magnitudes.
type SessionConfig struct {
	// CuisineMatchBoost applies when a candidate cuisine directly matches
	// a requested session cuisine. Default: 0.5.
	CuisineMatchBoost float64 `json:"cuisine_match_boost" koanf:"cuisine_match_boost"`

	// CategoryMatchBoost applies when the match is only through the fixed
	// cuisine-category table. Default: 0.4.
	CategoryMatchBoost float64 `json:"category_match_boost" koanf:"category_match_boost"`

	// VibeMatchBoost applies when a candidate vibe matches a requested
	// session vibe. Default: 0.3.
	VibeMatchBoost float64 `json:"vibe_match_boost" koanf:"vibe_match_boost"`

	// LikedCuisineBoost applies once per previously liked restaurant that
	// shares a cuisine tag with the candidate. Default: 0.2.
	LikedCuisineBoost float64 `json:"liked_cuisine_boost" koanf:"liked_cuisine_boost"`

	// LikedVibeBoost applies once per previously liked restaurant that
	// shares a vibe tag with the candidate. Default: 0.1.
	LikedVibeBoost float64 `json:"liked_vibe_boost" koanf:"liked_vibe_boost"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxCandidates bounds the per-round candidate pool.
	// Default: 200.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`

	// DefaultLimit is the number of recommendations returned when the
	// caller does not specify one. Default: 10.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit is the maximum recommendations per round. Default: 50.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// LiveSearchLimit bounds results requested from the live supplier.
	// Default: 20.
	LiveSearchLimit int `json:"live_search_limit" koanf:"live_search_limit"`

	// DefaultRadiusKM is the search radius for location queries.
	// Default: 25.
	DefaultRadiusKM float64 `json:"default_radius_km" koanf:"default_radius_km"`

	// WishlistRadiusKM is the wider radius used for wishlist queries.
	// Default: 50.
	WishlistRadiusKM float64 `json:"wishlist_radius_km" koanf:"wishlist_radius_km"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: ScoreWeights{
			Cuisine: 0.40,
			Price:   0.20,
			Vibe:    0.20,
			Quality: 0.15,
			Special: 0.05,
		},
		Similarity: SimilarityConfig{
			CuisineWeight: 0.4,
			VibeWeight:    0.3,
			PriceWeight:   0.2,
			CityWeight:    0.1,
			Threshold:     0.3,
			UserBlend:     0.3,
		},
		Session: SessionConfig{
			CuisineMatchBoost:  0.5,
			CategoryMatchBoost: 0.4,
			VibeMatchBoost:     0.3,
			LikedCuisineBoost:  0.2,
			LikedVibeBoost:     0.1,
		},
		Limits: LimitsConfig{
			MaxCandidates:    200,
			DefaultLimit:     10,
			MaxLimit:         50,
			LiveSearchLimit:  20,
			DefaultRadiusKM:  25,
			WishlistRadiusKM: 50,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.Cuisine < 0 || c.Weights.Price < 0 || c.Weights.Vibe < 0 ||
		c.Weights.Quality < 0 || c.Weights.Special < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", c.Weights)
	}

	sum := c.Weights.Cuisine + c.Weights.Price + c.Weights.Vibe + c.Weights.Quality + c.Weights.Special
	if sum == 0 {
		return fmt.Errorf("at least one score weight must be positive")
	}

	if c.Similarity.Threshold < 0 || c.Similarity.Threshold > 1 {
		return fmt.Errorf("similarity.threshold must be in [0, 1], got %f", c.Similarity.Threshold)
	}
	if c.Similarity.UserBlend < 0 || c.Similarity.UserBlend > 1 {
		return fmt.Errorf("similarity.user_blend must be in [0, 1], got %f", c.Similarity.UserBlend)
	}

	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d",
			c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.DefaultRadiusKM <= 0 {
		return fmt.Errorf("limits.default_radius_km must be positive, got %f", c.Limits.DefaultRadiusKM)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - all nested structs contain only value types
	cp := *c
	return &cp
}
