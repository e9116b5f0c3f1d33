// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tablepick/tablepick/internal/metrics"
	"github.com/tablepick/tablepick/internal/recommend"
)

// addRatingRequest records a user's rating of a restaurant.
type addRatingRequest struct {
	UserID       string  `json:"user_id" validate:"required"`
	RestaurantID string  `json:"restaurant_id" validate:"required"`
	Rating       float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Notes        string  `json:"notes,omitempty"`
	Revisit      string  `json:"revisit,omitempty"`
}

// AddRating records a rating and rebuilds the user's profile.
func (h *Handler) AddRating(w http.ResponseWriter, r *http.Request) {
	var req addRatingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}

	err := h.engine.AddRating(r.Context(), req.UserID, req.RestaurantID, req.Rating, req.Notes, req.Revisit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	metrics.ProfileRebuilds.Inc()
	respondSuccess(w, r, map[string]string{"restaurant_id": req.RestaurantID})
}

// SaveRestaurant upserts a restaurant record. Wishlist entries arrive
// through this endpoint with is_wishlist set.
func (h *Handler) SaveRestaurant(w http.ResponseWriter, r *http.Request) {
	var restaurant recommend.Restaurant
	if err := decodeJSON(r, &restaurant); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if restaurant.ID == "" || restaurant.Name == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "id and name are required")
		return
	}
	if restaurant.PriceLevel != nil && (*restaurant.PriceLevel < 1 || *restaurant.PriceLevel > 4) {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "price_level must be 1-4")
		return
	}
	restaurant.LastUpdated = time.Now()

	if err := h.store.SaveRestaurant(r.Context(), &restaurant); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, r, map[string]string{"id": restaurant.ID})
}

// GetRestaurant returns one restaurant by id.
func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.store.RestaurantByID(r.Context(), chi.URLParam(r, "restaurantID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, r, restaurant)
}

// GetProfile returns the user's preference profile, deriving it from
// rating history when no stored profile exists.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.engine.ProfileFor(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, r, profile)
}

// RefreshProfile rebuilds the profile from current rating history.
func (h *Handler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.engine.RefreshProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	metrics.ProfileRebuilds.Inc()
	respondSuccess(w, r, profile)
}

// GetInsights returns a human-readable digest of the user's profile.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.engine.PreferenceInsights(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, r, insights)
}
