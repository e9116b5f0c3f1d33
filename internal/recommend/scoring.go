// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import (
	"fmt"
	"math"
	"strings"
)

// Scorer evaluates restaurants against a preference profile. It is
// stateless and safe for concurrent use.
type Scorer struct {
	weights ScoreWeights
}

// NewScorer returns a Scorer with the given weights.
func NewScorer(weights ScoreWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score computes the weighted preference score of a restaurant against
// a profile, rounded to 3 decimals. It is a pure function of its inputs
// and never fails: unknown attributes contribute 0.
func (s *Scorer) Score(r *Restaurant, profile *UserPreferenceProfile) float64 {
	score := s.weights.Cuisine*cuisineScore(r, profile) +
		s.weights.Price*priceScore(r, profile) +
		s.weights.Vibe*vibeScore(r, profile) +
		s.weights.Quality*qualityScore(r) +
		s.weights.Special*specialScore(r, profile)
	return round3(score)
}

// cuisineScore is the best preference among the restaurant's cuisine tags.
func cuisineScore(r *Restaurant, profile *UserPreferenceProfile) float64 {
	if len(r.CuisineType) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, tag := range r.CuisineType {
		if v := profile.CuisinePreferences[tag]; v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

func priceScore(r *Restaurant, profile *UserPreferenceProfile) float64 {
	if r.PriceLevel == nil {
		return 0
	}
	return profile.PricePreferences[*r.PriceLevel]
}

// vibeScore is the best preference among the restaurant's vibe tags.
func vibeScore(r *Restaurant, profile *UserPreferenceProfile) float64 {
	if len(r.Vibes) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, tag := range r.Vibes {
		if v := profile.VibePreferences[tag]; v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// qualityScore rewards external rating plus contactability signals,
// capped at 1.0.
func qualityScore(r *Restaurant) float64 {
	score := 0.0
	if r.GoogleRating != nil {
		normalized := (*r.GoogleRating - 3.0) / 2.0
		if normalized < 0 {
			normalized = 0
		}
		if normalized > 1 {
			normalized = 1
		}
		score += 0.8 * normalized
	}
	if r.HasFeature("website") {
		score += 0.1
	}
	if r.HasFeature("phone") {
		score += 0.1
	}
	return math.Min(score, 1.0)
}

// specialScore rewards an affirmative revisit preference and, once, a
// favorite dish appearing on the menu; capped at 1.0.
func specialScore(r *Restaurant, profile *UserPreferenceProfile) float64 {
	score := 0.0
	if r.WantsRevisit() {
		score += 1.0
	}
	if hasFavoriteDish(r, profile) {
		score += 0.3
	}
	return math.Min(score, 1.0)
}

// hasFavoriteDish reports whether any favorite dish is a case-insensitive
// substring of any menu item.
func hasFavoriteDish(r *Restaurant, profile *UserPreferenceProfile) bool {
	for _, dish := range profile.FavoriteDishes {
		d := strings.ToLower(dish)
		for _, item := range r.MenuItems {
			if strings.Contains(strings.ToLower(item), d) {
				return true
			}
		}
	}
	return false
}

// Reasoning builds a human-readable justification for a recommendation.
// Applicable reasons are collected in priority order and joined with
// "; "; a score-banded generic statement covers the rest.
func (s *Scorer) Reasoning(r *Restaurant, profile *UserPreferenceProfile, score float64) string {
	var reasons []string

	if tag, pref, ok := bestCuisine(r, profile); ok {
		if pref > 0.2 {
			reasons = append(reasons, fmt.Sprintf("You love %s cuisine", tag))
		} else {
			reasons = append(reasons, fmt.Sprintf("Serves %s cuisine", tag))
		}
	}

	if r.GoogleRating != nil && *r.GoogleRating >= 4.0 {
		reasons = append(reasons, fmt.Sprintf("Highly rated (%.1f stars)", *r.GoogleRating))
	}

	if r.PriceLevel != nil && profile.PricePreferences[*r.PriceLevel] > 0.2 {
		reasons = append(reasons, "Matches your preferred price range")
	}

	if tag, ok := preferredVibe(r, profile); ok {
		reasons = append(reasons, fmt.Sprintf("Has the %s atmosphere you enjoy", strings.ToLower(tag)))
	}

	if r.WantsRevisit() {
		reasons = append(reasons, "You previously marked this as a place to revisit")
	}

	if len(reasons) > 0 {
		return strings.Join(reasons, "; ")
	}

	switch {
	case score > 0.5:
		return "Strongly matches your dining preferences"
	case score > 0:
		return "Good match based on your dining history"
	default:
		return "Worth trying something new"
	}
}

// bestCuisine returns the restaurant's cuisine tag with the highest
// profile preference. Tags absent from the profile count as 0, so a
// restaurant with only unknown cuisines still gets the neutral mention.
// ok is false only when the restaurant has no cuisine tags at all.
func bestCuisine(r *Restaurant, profile *UserPreferenceProfile) (string, float64, bool) {
	best := ""
	bestPref := math.Inf(-1)
	for _, tag := range r.CuisineType {
		if pref := profile.CuisinePreferences[tag]; pref > bestPref {
			best, bestPref = tag, pref
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, bestPref, true
}

// preferredVibe returns the restaurant's best-scoring vibe tag with
// preference above 0.2.
func preferredVibe(r *Restaurant, profile *UserPreferenceProfile) (string, bool) {
	best := ""
	bestPref := 0.2
	for _, tag := range r.Vibes {
		if pref := profile.VibePreferences[tag]; pref > bestPref {
			best, bestPref = tag, pref
		}
	}
	return best, best != ""
}

const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance between two points in
// kilometers.
func HaversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// distanceFrom returns the distance from a query point to the
// restaurant, or nil when the restaurant has no coordinates.
func distanceFrom(r *Restaurant, lat, lng float64) *float64 {
	if !r.Location.HasCoordinates() {
		return nil
	}
	d := round2(HaversineKM(lat, lng, *r.Location.Lat, *r.Location.Lng))
	return &d
}
