// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import "context"

// Note: This package has no dependencies on other internal packages to
// maintain clean separation. The Store and Supplier interfaces allow
// integration with the storage and places packages without creating
// circular imports.

// Store is the persistence boundary consumed by the recommendation core.
// Implementations are responsible for serializing concurrent access to
// a given session record; the core itself takes no locks.
type Store interface {
	// RestaurantsNear returns restaurants within radiusKM of the point.
	RestaurantsNear(ctx context.Context, lat, lng, radiusKM float64) ([]Restaurant, error)

	// RestaurantsInCity returns unrated restaurants in the given city.
	// State is optional; empty matches any state. Rated restaurants are
	// excluded per the recommendation call-site contract.
	RestaurantsInCity(ctx context.Context, city, state string) ([]Restaurant, error)

	// AllRestaurants returns the full corpus.
	AllRestaurants(ctx context.Context) ([]Restaurant, error)

	// RestaurantByID returns a restaurant, or ErrNotFound.
	RestaurantByID(ctx context.Context, id string) (*Restaurant, error)

	// SaveRestaurant upserts a restaurant record.
	SaveRestaurant(ctx context.Context, r *Restaurant) error

	// ProfileFor returns the stored profile, or (nil, nil) when absent.
	ProfileFor(ctx context.Context, userID string) (*UserPreferenceProfile, error)

	// SaveProfile upserts a preference profile.
	SaveProfile(ctx context.Context, p *UserPreferenceProfile) error

	// SaveSession upserts a recommendation session.
	SaveSession(ctx context.Context, s *RecommendationSession) error

	// SessionByID returns a session, or ErrSessionNotFound.
	SessionByID(ctx context.Context, id string) (*RecommendationSession, error)

	// RecentSessions returns up to limit sessions for the user, most
	// recently active first.
	RecentSessions(ctx context.Context, userID string, limit int) ([]RecommendationSession, error)

	// LogFeedback appends one audit entry for a feedback event.
	LogFeedback(ctx context.Context, sessionID, restaurantID string, kind FeedbackKind) error

	// FeedbackForSession returns the kinds and restaurant ids logged for
	// a session, in append order.
	FeedbackForSession(ctx context.Context, sessionID string) ([]FeedbackKind, []string, error)
}

// Supplier is the live place-search boundary. All methods may return
// partial or empty results without that being an error; callers treat
// supplier failures as zero additional candidates.
type Supplier interface {
	// SearchNear finds places around a point. Cuisine is an optional
	// keyword filter; limit bounds the result count.
	SearchNear(ctx context.Context, lat, lng, radiusKM float64, cuisine string, limit int) ([]Candidate, error)

	// SearchByText finds places matching a free-text query, optionally
	// biased by a location hint such as "Austin, TX".
	SearchByText(ctx context.Context, query, locationHint string, limit int) ([]Candidate, error)

	// ToRestaurants maps raw candidates into Restaurant records, using
	// the provider taxonomy tables with a name-keyword fallback and
	// parsing free-text addresses into city/state.
	ToRestaurants(candidates []Candidate, userID string) []Restaurant
}
