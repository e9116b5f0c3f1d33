// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import "strings"

// cuisineCategories groups cuisine tags into broad families. A session
// request for a category name matches any of its representative tags,
// at a weaker boost than a direct tag match.
var cuisineCategories = map[string][]string{
	"asian":          {"Chinese", "Japanese", "Thai", "Vietnamese", "Korean", "Indian", "Sushi", "Ramen"},
	"european":       {"Italian", "French", "Spanish", "Greek", "German", "Mediterranean", "Pizza"},
	"american":       {"American", "BBQ", "Burgers", "Southern", "Steakhouse", "Diner"},
	"latin":          {"Mexican", "Tex-Mex", "Peruvian", "Brazilian", "Cuban", "Tacos"},
	"middle-eastern": {"Middle Eastern", "Lebanese", "Turkish", "Israeli", "Falafel"},
	"casual":         {"Cafe", "Sandwiches", "Breakfast", "Brunch", "Food Truck", "Bakery"},
}

// matchesCuisine reports whether a candidate cuisine tag matches a
// requested preference by case-insensitive substring in either
// direction.
func matchesCuisine(candidateTag, preferred string) bool {
	a := strings.ToLower(candidateTag)
	b := strings.ToLower(preferred)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// matchesCategory reports whether a candidate cuisine tag falls under a
// requested category name (e.g. preferred "asian" matches tag "Thai").
func matchesCategory(candidateTag, preferred string) bool {
	members, ok := cuisineCategories[strings.ToLower(preferred)]
	if !ok {
		return false
	}
	for _, m := range members {
		if matchesCuisine(candidateTag, m) {
			return true
		}
	}
	return false
}
