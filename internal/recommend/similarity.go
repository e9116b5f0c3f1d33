// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import "math"

// Score computes how alike two restaurants are, in [0, 1], rounded to
// 3 decimals. It combines cuisine and vibe tag overlap with price
// proximity and city equality using the configured weights.
func (sc SimilarityConfig) Score(a, b *Restaurant) float64 {
	return round3(sc.rawScore(a, b))
}

// rawScore is Score without the final rounding, for callers that blend
// it into a larger expression first.
func (sc SimilarityConfig) rawScore(a, b *Restaurant) float64 {
	score := sc.CuisineWeight*jaccard(a.CuisineType, b.CuisineType) +
		sc.VibeWeight*jaccard(a.Vibes, b.Vibes)

	if a.PriceLevel != nil && b.PriceLevel != nil {
		diff := math.Abs(float64(*a.PriceLevel - *b.PriceLevel))
		score += sc.PriceWeight * math.Max(0, 1-diff/3)
	}

	if a.Location.City != "" && a.Location.City == b.Location.City {
		score += sc.CityWeight
	}

	return score
}

// jaccard is |A∩B| / |A∪B| over tag sets. Two empty sets match fully
// (1.0); exactly one empty set is a complete mismatch (0.0).
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// sharesTag reports whether two tag slices have at least one exact
// common element.
func sharesTag(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
