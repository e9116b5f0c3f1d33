// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tablepick/tablepick/internal/metrics"
)

// RecommendNearby ranks unrated restaurants around a point.
func (h *Handler) RecommendNearby(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "user_id is required")
		return
	}
	lat, err := queryFloat(r, "lat")
	if err != nil || lat == nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "lat is required and must be a number")
		return
	}
	lng, err := queryFloat(r, "lng")
	if err != nil || lng == nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "lng is required and must be a number")
		return
	}
	radius, err := queryFloat(r, "radius_km")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "radius_km must be a number")
		return
	}
	radiusKM := 0.0
	if radius != nil {
		radiusKM = *radius
	}
	limit := queryInt(r, "limit", 0)
	live := r.URL.Query().Get("live") == "true"

	recs, err := h.engine.RecommendNearby(r.Context(), userID, *lat, *lng, radiusKM, limit, live)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	metrics.RecommendationRounds.WithLabelValues("nearby").Inc()
	respondSuccessMeta(w, r, recs, &APIMeta{Count: len(recs)})
}

// RecommendByCity ranks unrated restaurants in a city.
func (h *Handler) RecommendByCity(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "user_id is required")
		return
	}
	city := r.URL.Query().Get("city")
	state := r.URL.Query().Get("state")
	limit := queryInt(r, "limit", 0)
	live := r.URL.Query().Get("live") == "true"

	recs, err := h.engine.RecommendByCity(r.Context(), userID, city, state, limit, live)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	metrics.RecommendationRounds.WithLabelValues("city").Inc()
	respondSuccessMeta(w, r, recs, &APIMeta{Count: len(recs)})
}

// Wishlist ranks the user's wishlist entries, optionally restricted to
// a radius around a query point.
func (h *Handler) Wishlist(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "user_id is required")
		return
	}
	lat, err := queryFloat(r, "lat")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "lat must be a number")
		return
	}
	lng, err := queryFloat(r, "lng")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "lng must be a number")
		return
	}
	limit := queryInt(r, "limit", 0)

	recs, err := h.engine.WishlistRecommendations(r.Context(), userID, lat, lng, limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	metrics.RecommendationRounds.WithLabelValues("wishlist").Inc()
	respondSuccessMeta(w, r, recs, &APIMeta{Count: len(recs)})
}

// FindSimilar returns restaurants similar to the given one. A user_id
// query parameter blends personal preference into the ordering.
func (h *Handler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")
	userID := r.URL.Query().Get("user_id")
	limit := queryInt(r, "limit", 0)

	recs, err := h.engine.FindSimilar(r.Context(), restaurantID, userID, limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	metrics.RecommendationRounds.WithLabelValues("similar").Inc()
	respondSuccessMeta(w, r, recs, &APIMeta{Count: len(recs)})
}
