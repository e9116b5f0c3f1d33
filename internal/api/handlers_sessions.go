// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tablepick/tablepick/internal/metrics"
	"github.com/tablepick/tablepick/internal/recommend"
)

// startSessionRequest begins an interactive recommendation session.
// Either coordinates or a city anchor the session geographically.
type startSessionRequest struct {
	UserID string   `json:"user_id" validate:"required"`
	Lat    *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng    *float64 `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	City   string   `json:"city,omitempty"`
	State  string   `json:"state,omitempty"`
}

// StartSession creates a new recommendation session.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}

	session, err := h.sessions.StartSession(r.Context(), req.UserID, recommend.Location{
		Lat:   req.Lat,
		Lng:   req.Lng,
		City:  req.City,
		State: req.State,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	metrics.SessionsStarted.Inc()
	respondSuccess(w, r, session)
}

// feedbackRequest carries one round of session feedback. Liked and
// disliked ids accumulate; preferred cuisines and vibes replace any
// previously requested values when present.
type feedbackRequest struct {
	Liked             []string `json:"liked,omitempty"`
	Disliked          []string `json:"disliked,omitempty"`
	PreferredCuisines []string `json:"preferred_cuisines,omitempty"`
	PreferredVibes    []string `json:"preferred_vibes,omitempty"`
}

// CollectFeedback records feedback against a session.
func (h *Handler) CollectFeedback(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.sessions.CollectFeedback(r.Context(), sessionID,
		req.Liked, req.Disliked, req.PreferredCuisines, req.PreferredVibes)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	metrics.SessionFeedback.WithLabelValues(string(recommend.FeedbackLiked)).Add(float64(len(req.Liked)))
	metrics.SessionFeedback.WithLabelValues(string(recommend.FeedbackDisliked)).Add(float64(len(req.Disliked)))
	h.logger.Debug().
		Str("session_id", sessionID).
		Int("liked", len(req.Liked)).
		Int("disliked", len(req.Disliked)).
		Msg("feedback collected")
	respondSuccess(w, r, map[string]string{"session_id": sessionID})
}

// SessionRecommendations returns the next round of recommendations for
// a session, excluding everything already shown.
func (h *Handler) SessionRecommendations(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	limit := queryInt(r, "limit", 0)

	recs, err := h.sessions.GetSessionRecommendations(r.Context(), sessionID, limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	metrics.RecommendationRounds.WithLabelValues("session").Inc()
	respondSuccessMeta(w, r, recs, &APIMeta{Count: len(recs)})
}

// feedbackLogEntry is one audit record from a session's feedback log.
type feedbackLogEntry struct {
	RestaurantID string `json:"restaurant_id"`
	Kind         string `json:"kind"`
}

// SessionFeedbackLog returns the session's feedback audit trail in
// append order.
func (h *Handler) SessionFeedbackLog(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	// Resolve the session first so an unknown id is a 404, not an
	// empty log.
	if _, err := h.store.SessionByID(r.Context(), sessionID); err != nil {
		respondDomainError(w, r, err)
		return
	}

	kinds, ids, err := h.store.FeedbackForSession(r.Context(), sessionID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	entries := make([]feedbackLogEntry, 0, len(ids))
	for i := range ids {
		entries = append(entries, feedbackLogEntry{RestaurantID: ids[i], Kind: string(kinds[i])})
	}
	respondSuccessMeta(w, r, entries, &APIMeta{Count: len(entries)})
}

// RecentSessions lists a user's most recently active sessions.
func (h *Handler) RecentSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "user_id is required")
		return
	}
	limit := queryInt(r, "limit", 10)

	sessions, err := h.sessions.RecentSessions(r.Context(), userID, limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccessMeta(w, r, sessions, &APIMeta{Count: len(sessions)})
}
