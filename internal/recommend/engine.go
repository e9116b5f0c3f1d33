// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Engine ranks candidate restaurants for a user by combining a learned
// preference profile with stored and live candidate data. It holds no
// cross-call mutable state and is safe for concurrent use; concurrent
// access to the same session record is the Store's responsibility.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	scorer   *Scorer
	store    Store
	supplier Supplier
}

// NewEngine creates a recommendation engine. The supplier may be nil,
// in which case all operations degrade to stored candidates only.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger, store Store, supplier Supplier) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		scorer:   NewScorer(cfg.Weights),
		store:    store,
		supplier: supplier,
	}, nil
}

// ProfileFor returns the user's preference profile, building and
// persisting one from rating history when none is stored. Building
// never fails: an empty history yields an empty profile.
func (e *Engine) ProfileFor(ctx context.Context, userID string) (*UserPreferenceProfile, error) {
	profile, err := e.store.ProfileFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile != nil {
		return profile, nil
	}
	return e.RefreshProfile(ctx, userID)
}

// RefreshProfile rebuilds the profile wholesale from rating history and
// persists it. A save failure is logged but does not discard the
// freshly built profile.
func (e *Engine) RefreshProfile(ctx context.Context, userID string) (*UserPreferenceProfile, error) {
	all, err := e.store.AllRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rating history: %w", err)
	}

	rated := make([]Restaurant, 0, len(all))
	for i := range all {
		if all[i].UserRating != nil {
			rated = append(rated, all[i])
		}
	}

	profile := BuildProfile(userID, rated)
	if err := e.store.SaveProfile(ctx, profile); err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to persist rebuilt profile")
	}

	e.logger.Debug().
		Str("user_id", userID).
		Int("rated_restaurants", len(rated)).
		Int("cuisine_prefs", len(profile.CuisinePreferences)).
		Msg("preference profile rebuilt")

	return profile, nil
}

// RecommendNearby ranks unrated restaurants within radiusKM of a point.
// radiusKM and limit fall back to configured defaults when zero. When
// live is set and a supplier is configured, the stored candidates are
// extended with a live search; supplier failures degrade to stored
// candidates only.
func (e *Engine) RecommendNearby(ctx context.Context, userID string, lat, lng, radiusKM float64, limit int, live bool) ([]Recommendation, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("%w: coordinates (%f, %f) out of range", ErrInvalidInput, lat, lng)
	}
	if radiusKM <= 0 {
		radiusKM = e.config.Limits.DefaultRadiusKM
	}
	limit = e.clampLimit(limit)

	candidates, err := e.store.RestaurantsNear(ctx, lat, lng, radiusKM)
	if err != nil {
		return nil, fmt.Errorf("query nearby restaurants: %w", err)
	}
	candidates = unrated(candidates)

	profile, err := e.ProfileFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if live {
		candidates = e.extendLive(ctx, candidates, userID, func() ([]Candidate, error) {
			return e.supplier.SearchNear(ctx, lat, lng, radiusKM, "", e.config.Limits.LiveSearchLimit)
		})
	}

	recs := e.rank(candidates, profile, &lat, &lng)
	return truncate(recs, limit), nil
}

// RecommendByCity ranks unrated restaurants in a city. State is
// optional and matches any state when empty. When live is set and a
// supplier is configured, a live text search extends the candidates.
func (e *Engine) RecommendByCity(ctx context.Context, userID, city, state string, limit int, live bool) ([]Recommendation, error) {
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", ErrInvalidInput)
	}
	limit = e.clampLimit(limit)

	candidates, err := e.store.RestaurantsInCity(ctx, city, state)
	if err != nil {
		return nil, fmt.Errorf("query city restaurants: %w", err)
	}
	candidates = unrated(candidates)

	profile, err := e.ProfileFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if live {
		hint := city
		if state != "" {
			hint = city + ", " + state
		}
		candidates = e.extendLive(ctx, candidates, userID, func() ([]Candidate, error) {
			return e.supplier.SearchByText(ctx, "restaurants in "+city, hint, e.config.Limits.LiveSearchLimit)
		})
	}

	recs := e.rank(candidates, profile, nil, nil)
	return truncate(recs, limit), nil
}

// extendLive appends live search results to the candidate pool,
// deduplicated against stored ids and place ids. Fetched restaurants
// are persisted so ratings can reference them later. A missing supplier
// or a failed search leaves the pool unchanged.
func (e *Engine) extendLive(ctx context.Context, pool []Restaurant, userID string, fetch func() ([]Candidate, error)) []Restaurant {
	if e.supplier == nil {
		return pool
	}

	found, err := fetch()
	if err != nil {
		e.logger.Warn().Err(err).Msg("live search failed; serving stored candidates")
		return pool
	}

	seen := make(map[string]struct{}, len(pool)*2)
	for i := range pool {
		seen[pool[i].ID] = struct{}{}
		if pool[i].PlaceID != "" {
			seen[pool[i].PlaceID] = struct{}{}
		}
	}

	for _, r := range e.supplier.ToRestaurants(found, userID) {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		if r.PlaceID != "" {
			if _, dup := seen[r.PlaceID]; dup {
				continue
			}
		}
		if err := e.store.SaveRestaurant(ctx, &r); err != nil {
			e.logger.Warn().Err(err).Str("restaurant_id", r.ID).Msg("failed to persist live restaurant")
		}
		pool = append(pool, r)
	}
	return pool
}

// WishlistRecommendations ranks the user's wishlist. Each entry gets a
// +0.3 boost (clipped at 1.0) and a wishlist reasoning prefix. When a
// query point is given, entries are restricted to the wishlist radius
// and annotated with distance.
func (e *Engine) WishlistRecommendations(ctx context.Context, userID string, lat, lng *float64, limit int) ([]Recommendation, error) {
	limit = e.clampLimit(limit)

	all, err := e.store.AllRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("query wishlist: %w", err)
	}

	profile, err := e.ProfileFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	wishlist := make([]Restaurant, 0)
	for i := range all {
		r := &all[i]
		if !r.IsWishlist || r.UserRating != nil {
			continue
		}
		if lat != nil && lng != nil && r.Location.HasCoordinates() {
			if HaversineKM(*lat, *lng, *r.Location.Lat, *r.Location.Lng) > e.config.Limits.WishlistRadiusKM {
				continue
			}
		}
		wishlist = append(wishlist, *r)
	}

	recs := e.rank(wishlist, profile, lat, lng)
	for i := range recs {
		recs[i].Score = clipUpper(recs[i].Score+0.3, 1.0)
		recs[i].Reasoning = "From your wishlist; " + recs[i].Reasoning
	}
	sortByScore(recs)
	return truncate(recs, limit), nil
}

// AddRating records a 1.0-5.0 rating for a restaurant and rebuilds the
// profile. Rating a wishlist entry clears its wishlist flag.
func (e *Engine) AddRating(ctx context.Context, userID, restaurantID string, rating float64, notes, revisit string) error {
	if rating < 1.0 || rating > 5.0 {
		return fmt.Errorf("%w: rating %.1f outside [1.0, 5.0]", ErrInvalidInput, rating)
	}

	r, err := e.store.RestaurantByID(ctx, restaurantID)
	if err != nil {
		return fmt.Errorf("load restaurant %s: %w", restaurantID, err)
	}

	r.UserRating = &rating
	r.IsWishlist = false
	if notes != "" {
		r.Notes = notes
	}
	if revisit != "" {
		r.RevisitPreference = revisit
	}
	r.LastUpdated = time.Now().UTC()

	if err := e.store.SaveRestaurant(ctx, r); err != nil {
		return fmt.Errorf("%w: save rating: %w", ErrPersistence, err)
	}

	if _, err := e.RefreshProfile(ctx, userID); err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("profile refresh after rating failed")
	}

	e.logger.Info().
		Str("restaurant_id", restaurantID).
		Float64("rating", rating).
		Msg("rating recorded")

	return nil
}

// FindSimilar returns restaurants similar to the target, most similar
// first. When userID is non-empty the results are re-ranked by blending
// similarity with the user's preference score.
func (e *Engine) FindSimilar(ctx context.Context, restaurantID, userID string, limit int) ([]Recommendation, error) {
	limit = e.clampLimit(limit)

	target, err := e.store.RestaurantByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("load restaurant %s: %w", restaurantID, err)
	}

	all, err := e.store.AllRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}

	type scored struct {
		restaurant Restaurant
		similarity float64
	}
	matches := make([]scored, 0)
	for i := range all {
		if all[i].ID == target.ID {
			continue
		}
		sim := e.config.Similarity.Score(target, &all[i])
		if sim > e.config.Similarity.Threshold {
			matches = append(matches, scored{restaurant: all[i], similarity: sim})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].similarity > matches[j].similarity })

	var profile *UserPreferenceProfile
	if userID != "" {
		profile, err = e.ProfileFor(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	recs := make([]Recommendation, 0, len(matches))
	for _, m := range matches {
		rec := Recommendation{
			Restaurant: m.restaurant,
			Score:      m.similarity,
			Reasoning:  fmt.Sprintf("Similar to %s", target.Name),
		}
		if profile != nil {
			userScore := e.scorer.Score(&m.restaurant, profile)
			rec.Score = round3((1-e.config.Similarity.UserBlend)*m.similarity + e.config.Similarity.UserBlend*userScore)
		}
		recs = append(recs, rec)
	}
	if profile != nil {
		sortByScore(recs)
	}
	return truncate(recs, limit), nil
}

// rank scores and sorts candidates against the profile, highest first.
// A query point, when given, annotates each result with distance.
func (e *Engine) rank(candidates []Restaurant, profile *UserPreferenceProfile, lat, lng *float64) []Recommendation {
	recs := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		r := candidates[i]
		score := e.scorer.Score(&r, profile)
		rec := Recommendation{
			Restaurant: r,
			Score:      score,
			Reasoning:  e.scorer.Reasoning(&r, profile, score),
		}
		if lat != nil && lng != nil {
			rec.DistanceKM = distanceFrom(&r, *lat, *lng)
		}
		recs = append(recs, rec)
	}
	sortByScore(recs)
	return recs
}

func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.config.Limits.DefaultLimit
	}
	if limit > e.config.Limits.MaxLimit {
		return e.config.Limits.MaxLimit
	}
	return limit
}

func unrated(rs []Restaurant) []Restaurant {
	out := rs[:0]
	for i := range rs {
		if rs[i].UserRating == nil {
			out = append(out, rs[i])
		}
	}
	return out
}

func sortByScore(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
}

func truncate(recs []Recommendation, limit int) []Recommendation {
	if len(recs) > limit {
		return recs[:limit]
	}
	return recs
}

func clipUpper(x, ceil float64) float64 {
	if x > ceil {
		return ceil
	}
	return x
}
