// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeStore implements Store in memory for testing.
type fakeStore struct {
	restaurants map[string]*Restaurant
	profiles    map[string]*UserPreferenceProfile
	sessions    map[string]*RecommendationSession
	feedback    []string

	saveSessionErr error
}

func newFakeStore(restaurants ...*Restaurant) *fakeStore {
	s := &fakeStore{
		restaurants: map[string]*Restaurant{},
		profiles:    map[string]*UserPreferenceProfile{},
		sessions:    map[string]*RecommendationSession{},
	}
	for _, r := range restaurants {
		cp := *r
		s.restaurants[r.ID] = &cp
	}
	return s
}

func (s *fakeStore) RestaurantsNear(ctx context.Context, lat, lng, radiusKM float64) ([]Restaurant, error) {
	var out []Restaurant
	for _, r := range s.restaurants {
		if r.Location.HasCoordinates() && HaversineKM(lat, lng, *r.Location.Lat, *r.Location.Lng) <= radiusKM {
			out = append(out, *r)
		}
	}
	sortRestaurants(out)
	return out, nil
}

func (s *fakeStore) RestaurantsInCity(ctx context.Context, city, state string) ([]Restaurant, error) {
	var out []Restaurant
	for _, r := range s.restaurants {
		if r.Location.City != city || r.UserRating != nil {
			continue
		}
		if state != "" && r.Location.State != state {
			continue
		}
		out = append(out, *r)
	}
	sortRestaurants(out)
	return out, nil
}

func (s *fakeStore) AllRestaurants(ctx context.Context) ([]Restaurant, error) {
	var out []Restaurant
	for _, r := range s.restaurants {
		out = append(out, *r)
	}
	sortRestaurants(out)
	return out, nil
}

func (s *fakeStore) RestaurantByID(ctx context.Context, id string) (*Restaurant, error) {
	r, ok := s.restaurants[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) SaveRestaurant(ctx context.Context, r *Restaurant) error {
	cp := *r
	s.restaurants[r.ID] = &cp
	return nil
}

func (s *fakeStore) ProfileFor(ctx context.Context, userID string) (*UserPreferenceProfile, error) {
	return s.profiles[userID], nil
}

func (s *fakeStore) SaveProfile(ctx context.Context, p *UserPreferenceProfile) error {
	s.profiles[p.UserID] = p
	return nil
}

func (s *fakeStore) SaveSession(ctx context.Context, sess *RecommendationSession) error {
	if s.saveSessionErr != nil {
		return s.saveSessionErr
	}
	cp := *sess
	s.sessions[sess.SessionID] = &cp
	return nil
}

func (s *fakeStore) SessionByID(ctx context.Context, id string) (*RecommendationSession, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *fakeStore) RecentSessions(ctx context.Context, userID string, limit int) ([]RecommendationSession, error) {
	var out []RecommendationSession
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, *sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) LogFeedback(ctx context.Context, sessionID, restaurantID string, kind FeedbackKind) error {
	s.feedback = append(s.feedback, sessionID+"/"+restaurantID+"/"+string(kind))
	return nil
}

func (s *fakeStore) FeedbackForSession(ctx context.Context, sessionID string) ([]FeedbackKind, []string, error) {
	var kinds []FeedbackKind
	var ids []string
	for _, entry := range s.feedback {
		parts := strings.SplitN(entry, "/", 3)
		if parts[0] != sessionID {
			continue
		}
		ids = append(ids, parts[1])
		kinds = append(kinds, FeedbackKind(parts[2]))
	}
	return kinds, ids, nil
}

func sortRestaurants(rs []Restaurant) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
}

// fakeSupplier implements Supplier and counts search invocations.
type fakeSupplier struct {
	candidates []Candidate
	searchErr  error
	calls      atomic.Int32
}

func (f *fakeSupplier) SearchNear(ctx context.Context, lat, lng, radiusKM float64, cuisine string, limit int) ([]Candidate, error) {
	f.calls.Add(1)
	return f.candidates, f.searchErr
}

func (f *fakeSupplier) SearchByText(ctx context.Context, query, locationHint string, limit int) ([]Candidate, error) {
	f.calls.Add(1)
	return f.candidates, f.searchErr
}

func (f *fakeSupplier) ToRestaurants(candidates []Candidate, userID string) []Restaurant {
	out := make([]Restaurant, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Restaurant{
			ID:           "live_" + c.PlaceID,
			Name:         c.Name,
			CuisineType:  c.Types,
			PlaceID:      c.PlaceID,
			GoogleRating: c.Rating,
			PriceLevel:   c.PriceLevel,
			Location:     Location{Lat: c.Lat, Lng: c.Lng, Address: c.FormattedAddress},
			LastUpdated:  time.Now().UTC(),
		})
	}
	return out
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func testEngine(t *testing.T, store Store, supplier Supplier) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), zerolog.Nop(), store, supplier)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(DefaultConfig(), zerolog.Nop(), nil, nil); err == nil {
		t.Fatal("expected error for nil store")
	}

	bad := DefaultConfig()
	bad.Limits.MaxCandidates = 0
	if _, err := NewEngine(bad, zerolog.Nop(), newFakeStore(), nil); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestAddRatingValidation(t *testing.T) {
	store := newFakeStore(&Restaurant{ID: "r1", Name: "Thai Garden", CuisineType: []string{"Thai"}})
	engine := testEngine(t, store, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		rating  float64
		wantErr bool
	}{
		{"below minimum", 0.5, true},
		{"above maximum", 5.5, true},
		{"at minimum", 1.0, false},
		{"at maximum", 5.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.AddRating(ctx, "u1", "r1", tt.rating, "", "")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddRating(%.1f): %v", tt.rating, err)
			}
		})
	}
}

func TestAddRatingUnknownRestaurant(t *testing.T) {
	engine := testEngine(t, newFakeStore(), nil)

	err := engine.AddRating(context.Background(), "u1", "missing", 4.0, "", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddRatingClearsWishlistAndRefreshesProfile(t *testing.T) {
	store := newFakeStore(&Restaurant{
		ID:          "r1",
		Name:        "Thai Garden",
		CuisineType: []string{"Thai"},
		IsWishlist:  true,
	})
	engine := testEngine(t, store, nil)
	ctx := context.Background()

	if err := engine.AddRating(ctx, "u1", "r1", 4.5, "great noodles", "Y"); err != nil {
		t.Fatalf("AddRating: %v", err)
	}

	saved := store.restaurants["r1"]
	if saved.IsWishlist {
		t.Error("wishlist flag should be cleared after rating")
	}
	if saved.UserRating == nil || *saved.UserRating != 4.5 {
		t.Errorf("rating not persisted: %v", saved.UserRating)
	}
	if saved.RevisitPreference != "Y" {
		t.Errorf("revisit preference not persisted: %q", saved.RevisitPreference)
	}

	profile := store.profiles["u1"]
	if profile == nil {
		t.Fatal("profile should be rebuilt after rating")
	}
	if profile.RatingPatterns.TotalRestaurants != 1 {
		t.Errorf("TotalRestaurants = %d, want 1", profile.RatingPatterns.TotalRestaurants)
	}
}

func TestRecommendNearbyExcludesRatedAndSorts(t *testing.T) {
	store := newFakeStore(
		&Restaurant{
			ID: "rated", Name: "Old Favorite", CuisineType: []string{"Thai"},
			UserRating: ptrF(5.0),
			Location:   Location{Lat: ptrF(30.27), Lng: ptrF(-97.74), City: "Austin"},
		},
		&Restaurant{
			ID: "good", Name: "Highly Rated", CuisineType: []string{"Thai"},
			GoogleRating: ptrF(4.8),
			Location:     Location{Lat: ptrF(30.28), Lng: ptrF(-97.75), City: "Austin"},
		},
		&Restaurant{
			ID: "plain", Name: "No Signals", CuisineType: []string{"Pizza"},
			Location: Location{Lat: ptrF(30.26), Lng: ptrF(-97.73), City: "Austin"},
		},
		&Restaurant{
			ID: "far", Name: "Other Town", CuisineType: []string{"Thai"},
			Location: Location{Lat: ptrF(32.78), Lng: ptrF(-96.80), City: "Dallas"},
		},
	)
	engine := testEngine(t, store, nil)

	recs, err := engine.RecommendNearby(context.Background(), "u1", 30.27, -97.74, 25, 10, false)
	if err != nil {
		t.Fatalf("RecommendNearby: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2 (rated and distant excluded)", len(recs))
	}
	if recs[0].Restaurant.ID != "good" {
		t.Errorf("top recommendation = %s, want good (higher quality score)", recs[0].Restaurant.ID)
	}
	for _, rec := range recs {
		if rec.DistanceKM == nil {
			t.Errorf("%s: distance should be set for coordinate queries", rec.Restaurant.ID)
		}
	}
}

func TestRecommendNearbyInvalidCoordinates(t *testing.T) {
	engine := testEngine(t, newFakeStore(), nil)

	_, err := engine.RecommendNearby(context.Background(), "u1", 91.0, 0, 25, 10, false)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecommendNearbyLiveExtension(t *testing.T) {
	stored := &Restaurant{
		ID:          "r1",
		Name:        "Stored Thai",
		CuisineType: []string{"Thai"},
		PlaceID:     "p1",
		Location:    Location{Lat: ptrF(30.27), Lng: ptrF(-97.74)},
	}
	store := newFakeStore(stored)
	supplier := &fakeSupplier{candidates: []Candidate{
		{PlaceID: "p1", Name: "Stored Thai", Types: []string{"Thai"}},
		{PlaceID: "p2", Name: "Fresh Tacos", Types: []string{"Mexican"}},
	}}
	engine := testEngine(t, store, supplier)

	recs, err := engine.RecommendNearby(context.Background(), "u1", 30.27, -97.74, 25, 10, true)
	if err != nil {
		t.Fatalf("RecommendNearby: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recs, want 2 (stored + one deduplicated live)", len(recs))
	}
	if _, ok := store.restaurants["live_p2"]; !ok {
		t.Error("expected live result to be persisted")
	}
	if _, ok := store.restaurants["live_p1"]; ok {
		t.Error("duplicate live result should not be persisted")
	}
}

func TestRecommendNearbyLiveDegradesOnError(t *testing.T) {
	stored := &Restaurant{
		ID:       "r1",
		Name:     "Stored Thai",
		Location: Location{Lat: ptrF(30.27), Lng: ptrF(-97.74)},
	}
	supplier := &fakeSupplier{searchErr: errors.New("quota exceeded")}
	engine := testEngine(t, newFakeStore(stored), supplier)

	recs, err := engine.RecommendNearby(context.Background(), "u1", 30.27, -97.74, 25, 10, true)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("got %d recs, want 1 stored candidate", len(recs))
	}
}

func TestRecommendByCityRequiresCity(t *testing.T) {
	engine := testEngine(t, newFakeStore(), nil)

	_, err := engine.RecommendByCity(context.Background(), "u1", "", "", 10, false)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWishlistRecommendations(t *testing.T) {
	store := newFakeStore(
		&Restaurant{ID: "w1", Name: "Wishlist Spot", CuisineType: []string{"Thai"}, IsWishlist: true},
		&Restaurant{ID: "r1", Name: "Already Rated", CuisineType: []string{"Thai"}, UserRating: ptrF(4.0)},
		&Restaurant{ID: "n1", Name: "Regular", CuisineType: []string{"Pizza"}},
	)
	engine := testEngine(t, store, nil)

	recs, err := engine.WishlistRecommendations(context.Background(), "u1", nil, nil, 10)
	if err != nil {
		t.Fatalf("WishlistRecommendations: %v", err)
	}

	if len(recs) != 1 {
		t.Fatalf("got %d wishlist recommendations, want 1", len(recs))
	}
	if recs[0].Restaurant.ID != "w1" {
		t.Errorf("got %s, want w1", recs[0].Restaurant.ID)
	}
	if !strings.HasPrefix(recs[0].Reasoning, "From your wishlist; ") {
		t.Errorf("reasoning missing wishlist prefix: %q", recs[0].Reasoning)
	}
	// Empty profile: base score for a signal-less restaurant is 0, so
	// the wishlist boost alone determines the score.
	if recs[0].Score != 0.3 {
		t.Errorf("score = %v, want 0.3 (wishlist boost on zero base)", recs[0].Score)
	}
}

func TestFindSimilar(t *testing.T) {
	store := newFakeStore(
		&Restaurant{
			ID: "target", Name: "Luigi's", CuisineType: []string{"Italian", "Pizza"},
			Vibes: []string{"Casual"}, PriceLevel: ptrI(2),
			Location: Location{City: "Austin"},
		},
		&Restaurant{
			ID: "close", Name: "Mario's", CuisineType: []string{"Italian"},
			Vibes: []string{"Casual"}, PriceLevel: ptrI(2),
			Location: Location{City: "Austin"},
		},
		&Restaurant{
			ID: "unrelated", Name: "Pho Haus", CuisineType: []string{"Vietnamese"},
			Vibes: []string{"Trendy"}, PriceLevel: ptrI(1),
			Location: Location{City: "Portland"},
		},
	)
	engine := testEngine(t, store, nil)

	recs, err := engine.FindSimilar(context.Background(), "target", "", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}

	if len(recs) != 1 {
		t.Fatalf("got %d similar restaurants, want 1", len(recs))
	}
	if recs[0].Restaurant.ID != "close" {
		t.Errorf("got %s, want close", recs[0].Restaurant.ID)
	}
	// cuisine 0.5×0.4 + vibe 1.0×0.3 + price 1.0×0.2 + city 1.0×0.1
	if recs[0].Score != 0.8 {
		t.Errorf("similarity = %v, want 0.8", recs[0].Score)
	}
}

func TestFindSimilarUnknownRestaurant(t *testing.T) {
	engine := testEngine(t, newFakeStore(), nil)

	_, err := engine.FindSimilar(context.Background(), "missing", "", 10)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileForBuildsOnDemand(t *testing.T) {
	store := newFakeStore(
		&Restaurant{ID: "r1", CuisineType: []string{"Thai"}, UserRating: ptrF(5.0)},
	)
	engine := testEngine(t, store, nil)

	profile, err := engine.ProfileFor(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ProfileFor: %v", err)
	}
	if profile == nil || profile.IsEmpty() {
		t.Fatal("expected profile built from rating history")
	}
	if store.profiles["u1"] == nil {
		t.Error("on-demand profile should be persisted")
	}
}
