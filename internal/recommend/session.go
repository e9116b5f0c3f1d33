// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionManager drives interactive multi-round recommendation
// sessions. Each round narrows and reorders results from accumulated
// feedback while suppressing already-shown restaurants, and the live
// supplier is consulted at most once per session.
type SessionManager struct {
	config *Config
	logger zerolog.Logger
	engine *Engine
	store  Store
}

// NewSessionManager creates a session manager on top of an engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSessionManager(engine *Engine, logger zerolog.Logger) *SessionManager {
	return &SessionManager{
		config: engine.config,
		logger: logger.With().Str("component", "session").Logger(),
		engine: engine,
		store:  engine.store,
	}
}

// StartSession creates and persists a session anchored at the given
// location. The location needs either coordinates or a city.
func (m *SessionManager) StartSession(ctx context.Context, userID string, location Location) (*RecommendationSession, error) {
	if !location.HasCoordinates() && location.City == "" {
		return nil, fmt.Errorf("%w: location needs coordinates or a city", ErrInvalidInput)
	}

	now := time.Now().UTC()
	session := &RecommendationSession{
		SessionID:               uuid.NewString(),
		UserID:                  userID,
		Location:                location,
		ShownRestaurantIDs:      []string{},
		LikedRestaurantIDs:      []string{},
		DislikedRestaurantIDs:   []string{},
		CachedLiveRestaurantIDs: []string{},
		CreatedAt:               now,
		LastActivity:            now,
	}

	if err := m.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: save session: %w", ErrPersistence, err)
	}

	m.logger.Info().
		Str("session_id", session.SessionID).
		Str("user_id", userID).
		Msg("session started")

	return session, nil
}

// CollectFeedback appends liked/disliked ids (without deduplication)
// and optionally replaces the session's requested cuisines or vibes.
// Preference slices are replaced wholesale when non-nil, never merged.
func (m *SessionManager) CollectFeedback(ctx context.Context, sessionID string, liked, disliked, cuisines, vibes []string) error {
	session, err := m.store.SessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}

	session.LikedRestaurantIDs = append(session.LikedRestaurantIDs, liked...)
	session.DislikedRestaurantIDs = append(session.DislikedRestaurantIDs, disliked...)
	if cuisines != nil {
		session.SessionPreferences.PreferredCuisines = cuisines
	}
	if vibes != nil {
		session.SessionPreferences.PreferredVibes = vibes
	}
	session.LastActivity = time.Now().UTC()

	if err := m.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("%w: save session: %w", ErrPersistence, err)
	}

	// Audit trail only; a failed log entry does not fail the feedback.
	for _, id := range liked {
		if err := m.store.LogFeedback(ctx, sessionID, id, FeedbackLiked); err != nil {
			m.logger.Warn().Err(err).Str("restaurant_id", id).Msg("feedback log write failed")
		}
	}
	for _, id := range disliked {
		if err := m.store.LogFeedback(ctx, sessionID, id, FeedbackDisliked); err != nil {
			m.logger.Warn().Err(err).Str("restaurant_id", id).Msg("feedback log write failed")
		}
	}

	m.logger.Debug().
		Str("session_id", sessionID).
		Int("liked", len(liked)).
		Int("disliked", len(disliked)).
		Msg("feedback collected")

	return nil
}

// GetSessionRecommendations runs one recommendation round: build a
// candidate pool, apply session learning, suppress shown ids, record
// the returned ids, and persist the session.
func (m *SessionManager) GetSessionRecommendations(ctx context.Context, sessionID string, limit int) ([]Recommendation, error) {
	session, err := m.store.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	limit = m.engine.clampLimit(limit)

	pool, err := m.buildCandidatePool(ctx, session)
	if err != nil {
		return nil, err
	}

	profile, err := m.engine.ProfileFor(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	var lat, lng *float64
	if session.Location.HasCoordinates() {
		lat, lng = session.Location.Lat, session.Location.Lng
	}
	recs := m.engine.rank(pool, profile, lat, lng)
	recs = m.applySessionLearning(ctx, session, recs)

	recs = truncate(recs, limit)
	for i := range recs {
		session.ShownRestaurantIDs = append(session.ShownRestaurantIDs, recs[i].Restaurant.ID)
	}
	session.LastActivity = time.Now().UTC()

	if err := m.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: save session: %w", ErrPersistence, err)
	}

	m.logger.Debug().
		Str("session_id", sessionID).
		Int("pool", len(pool)).
		Int("returned", len(recs)).
		Msg("recommendation round completed")

	return recs, nil
}

// buildCandidatePool gathers up to MaxCandidates restaurants from the
// session's location path, extended by live search on the first round
// only. Supplier failures degrade to stored candidates.
func (m *SessionManager) buildCandidatePool(ctx context.Context, session *RecommendationSession) ([]Restaurant, error) {
	var pool []Restaurant
	var err error

	if session.Location.HasCoordinates() {
		pool, err = m.store.RestaurantsNear(ctx, *session.Location.Lat, *session.Location.Lng, m.config.Limits.DefaultRadiusKM)
	} else {
		pool, err = m.store.RestaurantsInCity(ctx, session.Location.City, session.Location.State)
	}
	if err != nil {
		return nil, fmt.Errorf("query stored candidates: %w", err)
	}
	pool = unrated(pool)

	if len(session.CachedLiveRestaurantIDs) > 0 {
		pool = m.appendCachedLive(ctx, session, pool)
	} else {
		pool = m.appendFreshLive(ctx, session, pool)
	}

	if len(pool) > m.config.Limits.MaxCandidates {
		pool = pool[:m.config.Limits.MaxCandidates]
	}
	return pool, nil
}

// appendCachedLive resolves previously fetched live ids from the store
// instead of calling the supplier again.
func (m *SessionManager) appendCachedLive(ctx context.Context, session *RecommendationSession, pool []Restaurant) []Restaurant {
	seen := idSet(pool)
	for _, id := range session.CachedLiveRestaurantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		r, err := m.store.RestaurantByID(ctx, id)
		if err != nil {
			m.logger.Warn().Err(err).Str("restaurant_id", id).Msg("cached live restaurant missing")
			continue
		}
		if r.UserRating == nil {
			pool = append(pool, *r)
			seen[id] = struct{}{}
		}
	}
	return pool
}

// appendFreshLive performs the session's single live search, persists
// the fetched restaurants, and records their ids in the session cache.
func (m *SessionManager) appendFreshLive(ctx context.Context, session *RecommendationSession, pool []Restaurant) []Restaurant {
	if m.engine.supplier == nil {
		return pool
	}

	var candidates []Candidate
	var err error
	if session.Location.HasCoordinates() {
		cuisine := ""
		if len(session.SessionPreferences.PreferredCuisines) > 0 {
			cuisine = session.SessionPreferences.PreferredCuisines[0]
		}
		candidates, err = m.engine.supplier.SearchNear(ctx,
			*session.Location.Lat, *session.Location.Lng,
			m.config.Limits.DefaultRadiusKM, cuisine, m.config.Limits.LiveSearchLimit)
	} else {
		hint := session.Location.City
		if session.Location.State != "" {
			hint += ", " + session.Location.State
		}
		candidates, err = m.engine.supplier.SearchByText(ctx,
			"restaurants in "+session.Location.City, hint, m.config.Limits.LiveSearchLimit)
	}
	if err != nil {
		// Degrade to stored candidates; the round still proceeds.
		m.logger.Warn().Err(err).Str("session_id", session.SessionID).Msg("live search failed")
		return pool
	}

	seen := idSet(pool)
	for _, r := range m.engine.supplier.ToRestaurants(candidates, session.UserID) {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		if err := m.store.SaveRestaurant(ctx, &r); err != nil {
			m.logger.Warn().Err(err).Str("restaurant_id", r.ID).Msg("failed to persist live restaurant")
			continue
		}
		session.CachedLiveRestaurantIDs = append(session.CachedLiveRestaurantIDs, r.ID)
		pool = append(pool, r)
		seen[r.ID] = struct{}{}
	}

	m.logger.Debug().
		Str("session_id", session.SessionID).
		Int("live_candidates", len(session.CachedLiveRestaurantIDs)).
		Msg("live search cached for session")

	return pool
}

// applySessionLearning filters out shown and disliked restaurants and
// boosts candidates matching session preferences or prior likes.
// Boosts compound once per prior liked restaurant and the adjusted
// score is clipped at 1.0 from above only.
func (m *SessionManager) applySessionLearning(ctx context.Context, session *RecommendationSession, recs []Recommendation) []Recommendation {
	excluded := make(map[string]struct{}, len(session.ShownRestaurantIDs)+len(session.DislikedRestaurantIDs))
	for _, id := range session.ShownRestaurantIDs {
		excluded[id] = struct{}{}
	}
	for _, id := range session.DislikedRestaurantIDs {
		excluded[id] = struct{}{}
	}

	liked := make([]*Restaurant, 0, len(session.LikedRestaurantIDs))
	for _, id := range session.LikedRestaurantIDs {
		r, err := m.store.RestaurantByID(ctx, id)
		if err != nil {
			m.logger.Warn().Err(err).Str("restaurant_id", id).Msg("liked restaurant unresolvable")
			continue
		}
		liked = append(liked, r)
	}

	out := make([]Recommendation, 0, len(recs))
	for _, rec := range recs {
		if _, skip := excluded[rec.Restaurant.ID]; skip {
			continue
		}

		boost, extras := m.preferenceBoost(&rec.Restaurant, session.SessionPreferences)

		likedCuisine, likedVibe := false, false
		for _, lr := range liked {
			if sharesTag(rec.Restaurant.CuisineType, lr.CuisineType) {
				boost += m.config.Session.LikedCuisineBoost
				likedCuisine = true
			}
			if sharesTag(rec.Restaurant.Vibes, lr.Vibes) {
				boost += m.config.Session.LikedVibeBoost
				likedVibe = true
			}
		}
		if likedCuisine {
			extras = append(extras, "similar cuisine to restaurants you liked")
		}
		if likedVibe {
			extras = append(extras, "similar vibe to your preferences")
		}

		if boost != 0 {
			rec.Score = clipUpper(round3(rec.Score+boost), 1.0)
		}
		if len(extras) > 0 {
			rec.Reasoning = rec.Reasoning + "; " + strings.Join(extras, "; ")
		}
		out = append(out, rec)
	}

	sortByScore(out)
	return out
}

// preferenceBoost computes the requested-preference boost for one
// candidate: a direct cuisine match beats a category match, and a vibe
// match is additive on top of either.
func (m *SessionManager) preferenceBoost(r *Restaurant, prefs SessionPreferences) (float64, []string) {
	boost := 0.0
	var extras []string

	cuisineBoost := 0.0
	matched := ""
	for _, preferred := range prefs.PreferredCuisines {
		for _, tag := range r.CuisineType {
			if matchesCuisine(tag, preferred) {
				cuisineBoost = m.config.Session.CuisineMatchBoost
				matched = preferred
				break
			}
		}
		if cuisineBoost > 0 {
			break
		}
	}
	if cuisineBoost == 0 {
		for _, preferred := range prefs.PreferredCuisines {
			for _, tag := range r.CuisineType {
				if matchesCategory(tag, preferred) {
					cuisineBoost = m.config.Session.CategoryMatchBoost
					matched = preferred
					break
				}
			}
			if cuisineBoost > 0 {
				break
			}
		}
	}
	if cuisineBoost > 0 {
		boost += cuisineBoost
		extras = append(extras, fmt.Sprintf("matches your requested %s preference", matched))
	}

	for _, preferred := range prefs.PreferredVibes {
		vibeMatched := false
		for _, tag := range r.Vibes {
			if matchesCuisine(tag, preferred) {
				boost += m.config.Session.VibeMatchBoost
				extras = append(extras, fmt.Sprintf("matches your requested %s preference", preferred))
				vibeMatched = true
				break
			}
		}
		if vibeMatched {
			break
		}
	}

	return boost, extras
}

// RecentSessions returns the user's most recently active sessions.
func (m *SessionManager) RecentSessions(ctx context.Context, userID string, limit int) ([]RecommendationSession, error) {
	if limit <= 0 {
		limit = m.config.Limits.DefaultLimit
	}
	sessions, err := m.store.RecentSessions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return sessions, nil
}

func idSet(rs []Restaurant) map[string]struct{} {
	set := make(map[string]struct{}, len(rs))
	for i := range rs {
		set[rs[i].ID] = struct{}{}
	}
	return set
}
