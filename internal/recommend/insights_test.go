// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import (
	"context"
	"testing"
)

func TestTopRankedThreshold(t *testing.T) {
	prefs := map[string]float64{
		"Thai":    0.3,
		"Sushi":   0.11,
		"Pizza":   0.1,
		"Burgers": 0.05,
		"Diner":   -0.2,
	}

	got := topRanked(prefs, 5)
	if len(got) != 2 {
		t.Fatalf("got %d preferences, want 2 (only scores above 0.1): %v", len(got), got)
	}
	if got[0].Name != "Thai" || got[1].Name != "Sushi" {
		t.Errorf("got %v, want [Thai Sushi] strongest first", got)
	}
}

func TestTopRankedLimit(t *testing.T) {
	prefs := map[string]float64{
		"A": 0.9, "B": 0.8, "C": 0.7, "D": 0.6, "E": 0.5, "F": 0.4,
	}

	got := topRanked(prefs, 5)
	if len(got) != 5 {
		t.Fatalf("got %d preferences, want 5", len(got))
	}
	if got[0].Name != "A" || got[4].Name != "E" {
		t.Errorf("got %v, want A..E by descending score", got)
	}
}

func TestPreferenceInsights(t *testing.T) {
	store := newFakeStore(
		&Restaurant{
			ID:          "r1",
			Name:        "Thai Palace",
			CuisineType: []string{"Thai"},
			Vibes:       []string{"Casual"},
			Location:    Location{City: "Austin", State: "TX"},
			PriceLevel:  ptrI(2),
			UserRating:  ptrF(5.0),
		},
		&Restaurant{
			ID:          "r2",
			Name:        "Pizza Corner",
			CuisineType: []string{"Pizza"},
			Location:    Location{City: "Austin", State: "TX"},
			PriceLevel:  ptrI(1),
			UserRating:  ptrF(2.0),
		},
	)
	engine := testEngine(t, store, nil)

	insights, err := engine.PreferenceInsights(context.Background(), "u1")
	if err != nil {
		t.Fatalf("PreferenceInsights: %v", err)
	}

	if insights.Personality == "" {
		t.Error("expected a personality classification")
	}
	for _, c := range insights.TopCuisines {
		if c.Score <= 0.1 {
			t.Errorf("top cuisine %s scored %v, should be above 0.1", c.Name, c.Score)
		}
	}
	if len(insights.FavoriteCities) != 1 || insights.FavoriteCities[0] != "Austin" {
		t.Errorf("favorite cities = %v, want [Austin]", insights.FavoriteCities)
	}
	if insights.PriceComfortZone == "" {
		t.Error("expected a price comfort zone")
	}
}
