// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testSessionManager(t *testing.T, store Store, supplier Supplier) *SessionManager {
	t.Helper()
	return NewSessionManager(testEngine(t, store, supplier), zerolog.Nop())
}

func austinLocation() Location {
	return Location{City: "Austin", State: "TX"}
}

func austinRestaurant(id string, cuisines ...string) *Restaurant {
	return &Restaurant{
		ID:          id,
		Name:        id,
		CuisineType: cuisines,
		Location:    Location{City: "Austin", State: "TX"},
	}
}

func TestStartSession(t *testing.T) {
	store := newFakeStore()
	mgr := testSessionManager(t, store, nil)

	session, err := mgr.StartSession(context.Background(), "u1", austinLocation())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if session.SessionID == "" {
		t.Error("session id should be assigned")
	}
	if len(session.ShownRestaurantIDs) != 0 || len(session.CachedLiveRestaurantIDs) != 0 {
		t.Error("new session should start with empty tracking sets")
	}
	if store.sessions[session.SessionID] == nil {
		t.Error("session should be persisted")
	}
}

func TestStartSessionRequiresLocation(t *testing.T) {
	mgr := testSessionManager(t, newFakeStore(), nil)

	_, err := mgr.StartSession(context.Background(), "u1", Location{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSessionRecommendationsUnknownSession(t *testing.T) {
	mgr := testSessionManager(t, newFakeStore(), nil)

	_, err := mgr.GetSessionRecommendations(context.Background(), "nope", 10)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCollectFeedbackUnknownSession(t *testing.T) {
	mgr := testSessionManager(t, newFakeStore(), nil)

	err := mgr.CollectFeedback(context.Background(), "nope", []string{"r1"}, nil, nil, nil)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionIdempotentExclusion(t *testing.T) {
	store := newFakeStore(
		austinRestaurant("r1", "Thai"),
		austinRestaurant("r2", "Pizza"),
		austinRestaurant("r3", "Sushi"),
		austinRestaurant("r4", "BBQ"),
	)
	mgr := testSessionManager(t, store, nil)
	ctx := context.Background()

	session, err := mgr.StartSession(ctx, "u1", austinLocation())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	first, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 2)
	if err != nil {
		t.Fatalf("first round: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first round returned %d, want 2", len(first))
	}

	second, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 2)
	if err != nil {
		t.Fatalf("second round: %v", err)
	}

	shown := map[string]bool{}
	for _, rec := range first {
		shown[rec.Restaurant.ID] = true
	}
	for _, rec := range second {
		if shown[rec.Restaurant.ID] {
			t.Errorf("restaurant %s returned twice across rounds", rec.Restaurant.ID)
		}
	}

	// Third round: everything has been shown.
	third, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 2)
	if err != nil {
		t.Fatalf("third round: %v", err)
	}
	if len(third) != 0 {
		t.Errorf("third round returned %d, want 0", len(third))
	}
}

func TestSessionLiveSearchCalledAtMostOnce(t *testing.T) {
	store := newFakeStore(austinRestaurant("r1", "Thai"))
	supplier := &fakeSupplier{
		candidates: []Candidate{
			{PlaceID: "p1", Name: "Fresh Spot", Types: []string{"Mexican"}},
			{PlaceID: "p2", Name: "New Place", Types: []string{"Sushi"}},
		},
	}
	mgr := testSessionManager(t, store, supplier)
	ctx := context.Background()

	session, err := mgr.StartSession(ctx, "u1", austinLocation())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if _, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 1); err != nil {
		t.Fatalf("first round: %v", err)
	}
	if got := supplier.calls.Load(); got != 1 {
		t.Fatalf("supplier called %d times after first round, want 1", got)
	}

	saved := store.sessions[session.SessionID]
	if len(saved.CachedLiveRestaurantIDs) != 2 {
		t.Fatalf("cached live ids = %v, want 2 entries", saved.CachedLiveRestaurantIDs)
	}

	for round := 0; round < 3; round++ {
		if _, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 1); err != nil {
			t.Fatalf("round %d: %v", round+2, err)
		}
	}
	if got := supplier.calls.Load(); got != 1 {
		t.Errorf("supplier called %d times across rounds, want 1", got)
	}
}

func TestSessionLiveSearchFailureDegrades(t *testing.T) {
	store := newFakeStore(austinRestaurant("r1", "Thai"))
	supplier := &fakeSupplier{searchErr: errors.New("quota exceeded")}
	mgr := testSessionManager(t, store, supplier)
	ctx := context.Background()

	session, err := mgr.StartSession(ctx, "u1", austinLocation())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	recs, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 10)
	if err != nil {
		t.Fatalf("round should degrade to stored candidates, got %v", err)
	}
	if len(recs) != 1 || recs[0].Restaurant.ID != "r1" {
		t.Errorf("expected stored candidate r1, got %v", recs)
	}
}

func TestSessionCuisinePreferenceBoost(t *testing.T) {
	store := newFakeStore(
		austinRestaurant("thai", "Thai"),
		austinRestaurant("pizza", "Pizza"),
	)
	mgr := testSessionManager(t, store, nil)
	ctx := context.Background()

	session, err := mgr.StartSession(ctx, "u1", austinLocation())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := mgr.CollectFeedback(ctx, session.SessionID, nil, nil, []string{"Thai"}, nil); err != nil {
		t.Fatalf("CollectFeedback: %v", err)
	}

	recs, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 10)
	if err != nil {
		t.Fatalf("GetSessionRecommendations: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}

	// No rating history, so base scores are 0: the Thai candidate's
	// score is exactly the direct-match boost.
	if recs[0].Restaurant.ID != "thai" {
		t.Fatalf("top recommendation = %s, want thai", recs[0].Restaurant.ID)
	}
	if recs[0].Score != 0.5 {
		t.Errorf("boosted score = %v, want 0.5", recs[0].Score)
	}
	if !strings.Contains(recs[0].Reasoning, "matches your requested Thai preference") {
		t.Errorf("reasoning missing preference note: %q", recs[0].Reasoning)
	}
	if recs[1].Score != 0 {
		t.Errorf("unboosted score = %v, want 0", recs[1].Score)
	}
}

func TestSessionCategoryBoost(t *testing.T) {
	store := newFakeStore(austinRestaurant("thai", "Thai"))
	mgr := testSessionManager(t, store, nil)
	ctx := context.Background()

	session, _ := mgr.StartSession(ctx, "u1", austinLocation())
	if err := mgr.CollectFeedback(ctx, session.SessionID, nil, nil, []string{"asian"}, nil); err != nil {
		t.Fatalf("CollectFeedback: %v", err)
	}

	recs, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 10)
	if err != nil {
		t.Fatalf("GetSessionRecommendations: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	// "asian" is not a substring match for "Thai", so the weaker
	// category-table boost applies.
	if recs[0].Score != 0.4 {
		t.Errorf("category-boosted score = %v, want 0.4", recs[0].Score)
	}
}

func TestSessionDislikedExcluded(t *testing.T) {
	store := newFakeStore(
		austinRestaurant("r1", "Thai"),
		austinRestaurant("r2", "Pizza"),
	)
	mgr := testSessionManager(t, store, nil)
	ctx := context.Background()

	session, _ := mgr.StartSession(ctx, "u1", austinLocation())
	if err := mgr.CollectFeedback(ctx, session.SessionID, nil, []string{"r1"}, nil, nil); err != nil {
		t.Fatalf("CollectFeedback: %v", err)
	}

	recs, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 10)
	if err != nil {
		t.Fatalf("GetSessionRecommendations: %v", err)
	}
	for _, rec := range recs {
		if rec.Restaurant.ID == "r1" {
			t.Error("disliked restaurant returned")
		}
	}
}

func TestSessionRepeatLikesCompound(t *testing.T) {
	store := newFakeStore(
		austinRestaurant("liked", "Thai"),
		austinRestaurant("candidate", "Thai"),
	)
	mgr := testSessionManager(t, store, nil)
	ctx := context.Background()

	session, _ := mgr.StartSession(ctx, "u1", austinLocation())

	// The same restaurant liked twice: the shared-cuisine boost is
	// accumulated once per list entry, not per distinct id.
	if err := mgr.CollectFeedback(ctx, session.SessionID, []string{"liked", "liked"}, nil, nil, nil); err != nil {
		t.Fatalf("CollectFeedback: %v", err)
	}

	// Mark the liked restaurant itself as shown so only the candidate returns.
	if err := mgr.CollectFeedback(ctx, session.SessionID, nil, []string{"liked"}, nil, nil); err != nil {
		t.Fatalf("CollectFeedback: %v", err)
	}

	recs, err := mgr.GetSessionRecommendations(ctx, session.SessionID, 10)
	if err != nil {
		t.Fatalf("GetSessionRecommendations: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	if recs[0].Score != 0.4 {
		t.Errorf("compounded score = %v, want 0.4 (two 0.2 boosts)", recs[0].Score)
	}
	if !strings.Contains(recs[0].Reasoning, "similar cuisine to restaurants you liked") {
		t.Errorf("reasoning missing liked-similarity note: %q", recs[0].Reasoning)
	}
}

func TestCollectFeedbackReplacesPreferences(t *testing.T) {
	store := newFakeStore()
	mgr := testSessionManager(t, store, nil)
	ctx := context.Background()

	session, _ := mgr.StartSession(ctx, "u1", austinLocation())

	if err := mgr.CollectFeedback(ctx, session.SessionID, nil, nil, []string{"Thai", "Sushi"}, nil); err != nil {
		t.Fatalf("CollectFeedback: %v", err)
	}
	if err := mgr.CollectFeedback(ctx, session.SessionID, nil, nil, []string{"Pizza"}, []string{"Casual"}); err != nil {
		t.Fatalf("CollectFeedback: %v", err)
	}

	saved := store.sessions[session.SessionID]
	if len(saved.SessionPreferences.PreferredCuisines) != 1 || saved.SessionPreferences.PreferredCuisines[0] != "Pizza" {
		t.Errorf("cuisines = %v, want replaced with [Pizza]", saved.SessionPreferences.PreferredCuisines)
	}
	if len(saved.SessionPreferences.PreferredVibes) != 1 {
		t.Errorf("vibes = %v, want [Casual]", saved.SessionPreferences.PreferredVibes)
	}

	// Nil leaves the previous value untouched.
	if err := mgr.CollectFeedback(ctx, session.SessionID, []string{"r1"}, nil, nil, nil); err != nil {
		t.Fatalf("CollectFeedback: %v", err)
	}
	saved = store.sessions[session.SessionID]
	if len(saved.SessionPreferences.PreferredCuisines) != 1 {
		t.Errorf("cuisines = %v, want unchanged", saved.SessionPreferences.PreferredCuisines)
	}
}

func TestCollectFeedbackWritesAuditLog(t *testing.T) {
	store := newFakeStore()
	mgr := testSessionManager(t, store, nil)
	ctx := context.Background()

	session, _ := mgr.StartSession(ctx, "u1", austinLocation())
	if err := mgr.CollectFeedback(ctx, session.SessionID, []string{"a", "b"}, []string{"c"}, nil, nil); err != nil {
		t.Fatalf("CollectFeedback: %v", err)
	}

	if len(store.feedback) != 3 {
		t.Fatalf("got %d audit entries, want 3: %v", len(store.feedback), store.feedback)
	}
	if store.feedback[0] != session.SessionID+"/a/liked" {
		t.Errorf("unexpected first audit entry: %q", store.feedback[0])
	}
	if store.feedback[2] != session.SessionID+"/c/disliked" {
		t.Errorf("unexpected last audit entry: %q", store.feedback[2])
	}
}

func TestCollectFeedbackAppendsWithoutDeduplication(t *testing.T) {
	store := newFakeStore()
	mgr := testSessionManager(t, store, nil)
	ctx := context.Background()

	session, _ := mgr.StartSession(ctx, "u1", austinLocation())
	for i := 0; i < 3; i++ {
		if err := mgr.CollectFeedback(ctx, session.SessionID, []string{"same"}, nil, nil, nil); err != nil {
			t.Fatalf("CollectFeedback: %v", err)
		}
	}

	saved := store.sessions[session.SessionID]
	if len(saved.LikedRestaurantIDs) != 3 {
		t.Errorf("liked ids = %v, want 3 entries", saved.LikedRestaurantIDs)
	}
}
