// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import (
	"context"
	"fmt"
	"sort"
)

// PreferenceInsights digests a user's profile into a human-readable
// summary of their dining personality and strongest preferences.
func (e *Engine) PreferenceInsights(ctx context.Context, userID string) (*Insights, error) {
	profile, err := e.ProfileFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	insights := &Insights{
		Personality:    personality(profile),
		TopCuisines:    topRanked(profile.CuisinePreferences, 5),
		PreferredVibes: topRanked(profile.VibePreferences, 5),
		Consistency:    profile.RatingPatterns.Consistency,
	}

	insights.PriceComfortZone = priceComfortZone(profile.PricePreferences)
	insights.Adventurousness = adventurousness(profile)

	for i, cs := range profile.LocationHistory {
		if i == 5 {
			break
		}
		insights.FavoriteCities = append(insights.FavoriteCities, cs.City)
	}

	return insights, nil
}

func personality(p *UserPreferenceProfile) string {
	if p.IsEmpty() {
		return "Still discovering your taste - rate a few restaurants to get started"
	}

	switch p.RatingPatterns.Tendency {
	case "generous":
		return "An enthusiastic diner who finds something to love almost everywhere"
	case "critical":
		return "A discerning diner with exacting standards"
	}

	if len(p.CuisinePreferences) >= 8 {
		return "An adventurous eater who ranges widely across cuisines"
	}
	return "A balanced diner with a few well-loved favorites"
}

// topRanked keeps preferences scoring above 0.1, strongest first.
func topRanked(prefs map[string]float64, limit int) []RankedPreference {
	ranked := make([]RankedPreference, 0, len(prefs))
	for name, score := range prefs {
		if score > 0.1 {
			ranked = append(ranked, RankedPreference{Name: name, Score: score})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

var priceLabels = map[int]string{
	1: "budget-friendly ($)",
	2: "moderate ($$)",
	3: "upscale ($$$)",
	4: "fine dining ($$$$)",
}

func priceComfortZone(prefs map[int]float64) string {
	bestLevel, bestScore := 0, 0.0
	for level, score := range prefs {
		if score > bestScore || (score == bestScore && bestLevel != 0 && level < bestLevel) {
			bestLevel, bestScore = level, score
		}
	}
	if bestLevel == 0 {
		return "No clear price preference yet"
	}
	return fmt.Sprintf("Most comfortable with %s spots", priceLabels[bestLevel])
}

func adventurousness(p *UserPreferenceProfile) string {
	cuisines := len(p.CuisinePreferences)
	cities := len(p.LocationHistory)
	switch {
	case cuisines >= 10 || cities >= 5:
		return "highly adventurous"
	case cuisines >= 5 || cities >= 3:
		return "moderately adventurous"
	default:
		return "creature of habit"
	}
}
