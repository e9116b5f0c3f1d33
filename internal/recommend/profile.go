// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Confidence denominators: how many ratings of a given attribute value
// are needed before its preference score carries full weight.
const (
	cuisineConfidenceN = 5
	priceConfidenceN   = 3
	vibeConfidenceN    = 3
)

// BuildProfile derives a preference profile from the user's rated
// restaurants. It is pure: the caller decides whether to persist the
// result. An empty history yields an empty profile, never an error.
func BuildProfile(userID string, rated []Restaurant) *UserPreferenceProfile {
	profile := &UserPreferenceProfile{
		UserID:             userID,
		CuisinePreferences: map[string]float64{},
		PricePreferences:   map[int]float64{},
		VibePreferences:    map[string]float64{},
		FavoriteDishes:     []string{},
		LocationHistory:    []CityStats{},
		LastUpdated:        time.Now().UTC(),
	}

	ratings := make([]float64, 0, len(rated))
	for i := range rated {
		if rated[i].UserRating != nil {
			ratings = append(ratings, *rated[i].UserRating)
		}
	}
	if len(ratings) == 0 {
		return profile
	}

	overallMean := mean(ratings)

	profile.CuisinePreferences = cuisineScores(rated, overallMean)
	profile.PricePreferences = priceScores(rated, overallMean)
	profile.VibePreferences = vibeScores(rated, overallMean)
	profile.FavoriteDishes = favoriteDishes(rated)
	profile.RatingPatterns = ratingPatterns(ratings)
	profile.LocationHistory = locationHistory(rated)

	return profile
}

// preferenceScore is the confidence-weighted deviation of a value's mean
// rating from the overall mean, halved to bound it near [-1, 1].
func preferenceScore(valueMean, overallMean float64, count, confidenceN int) float64 {
	weight := math.Min(float64(count)/float64(confidenceN), 1.0)
	return round3((valueMean - overallMean) / 2 * weight)
}

func cuisineScores(rated []Restaurant, overallMean float64) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for i := range rated {
		r := &rated[i]
		if r.UserRating == nil {
			continue
		}
		for _, tag := range r.CuisineType {
			sums[tag] += *r.UserRating
			counts[tag]++
		}
	}

	scores := make(map[string]float64, len(sums))
	for tag, sum := range sums {
		scores[tag] = preferenceScore(sum/float64(counts[tag]), overallMean, counts[tag], cuisineConfidenceN)
	}
	return scores
}

func priceScores(rated []Restaurant, overallMean float64) map[int]float64 {
	sums := map[int]float64{}
	counts := map[int]int{}
	for i := range rated {
		r := &rated[i]
		if r.UserRating == nil || r.PriceLevel == nil {
			continue
		}
		sums[*r.PriceLevel] += *r.UserRating
		counts[*r.PriceLevel]++
	}

	scores := make(map[int]float64, len(sums))
	for level, sum := range sums {
		scores[level] = preferenceScore(sum/float64(counts[level]), overallMean, counts[level], priceConfidenceN)
	}
	return scores
}

func vibeScores(rated []Restaurant, overallMean float64) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for i := range rated {
		r := &rated[i]
		if r.UserRating == nil {
			continue
		}
		for _, tag := range r.Vibes {
			sums[tag] += *r.UserRating
			counts[tag]++
		}
	}

	scores := make(map[string]float64, len(sums))
	for tag, sum := range sums {
		scores[tag] = preferenceScore(sum/float64(counts[tag]), overallMean, counts[tag], vibeConfidenceN)
	}
	return scores
}

// favoriteDishes collects menu items from highly rated restaurants and
// keeps those recorded more than once, most frequent first. Ties break
// alphabetically so repeated builds are stable.
func favoriteDishes(rated []Restaurant) []string {
	counts := map[string]int{}
	canonical := map[string]string{}
	for i := range rated {
		r := &rated[i]
		if r.UserRating == nil || *r.UserRating < 4.0 {
			continue
		}
		for _, item := range r.MenuItems {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			key := strings.ToLower(item)
			counts[key]++
			if _, ok := canonical[key]; !ok {
				canonical[key] = item
			}
		}
	}

	dishes := make([]string, 0, len(counts))
	for key, n := range counts {
		if n > 1 {
			dishes = append(dishes, canonical[key])
		}
	}
	sort.Slice(dishes, func(i, j int) bool {
		ci := counts[strings.ToLower(dishes[i])]
		cj := counts[strings.ToLower(dishes[j])]
		if ci != cj {
			return ci > cj
		}
		return dishes[i] < dishes[j]
	})
	return dishes
}

func ratingPatterns(ratings []float64) RatingPatterns {
	m := mean(ratings)
	std := stddev(ratings, m)

	patterns := RatingPatterns{
		AverageRating:    round2(m),
		RatingStd:        round2(std),
		TotalRestaurants: len(ratings),
		Distribution:     map[int]int{},
	}

	minR, maxR := ratings[0], ratings[0]
	for _, r := range ratings {
		patterns.Distribution[int(r)]++
		if r >= 4.0 {
			patterns.HighRatedCount++
		}
		if r <= 2.0 {
			patterns.LowRatedCount++
		}
		if r < minR {
			minR = r
		}
		if r > maxR {
			maxR = r
		}
	}
	patterns.RatingRange = round1(maxR - minR)

	switch {
	case m >= 4.0:
		patterns.Tendency = "generous"
	case m <= 2.5:
		patterns.Tendency = "critical"
	default:
		patterns.Tendency = "balanced"
	}

	switch {
	case std <= 0.5:
		patterns.Consistency = "very_consistent"
	case std <= 1.0:
		patterns.Consistency = "consistent"
	default:
		patterns.Consistency = "variable"
	}

	return patterns
}

func locationHistory(rated []Restaurant) []CityStats {
	type cityAgg struct {
		sum      float64
		count    int
		cuisines map[string]int
	}
	byCity := map[string]*cityAgg{}
	for i := range rated {
		r := &rated[i]
		if r.UserRating == nil || r.Location.City == "" {
			continue
		}
		agg, ok := byCity[r.Location.City]
		if !ok {
			agg = &cityAgg{cuisines: map[string]int{}}
			byCity[r.Location.City] = agg
		}
		agg.sum += *r.UserRating
		agg.count++
		for _, tag := range r.CuisineType {
			agg.cuisines[tag]++
		}
	}

	stats := make([]CityStats, 0, len(byCity))
	for city, agg := range byCity {
		stats = append(stats, CityStats{
			City:          city,
			VisitCount:    agg.count,
			AverageRating: round2(agg.sum / float64(agg.count)),
			TopCuisines:   topCuisines(agg.cuisines, 3),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].VisitCount != stats[j].VisitCount {
			return stats[i].VisitCount > stats[j].VisitCount
		}
		return stats[i].City < stats[j].City
	})
	return stats
}

func topCuisines(counts map[string]int, limit int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
