// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

// Package api provides the HTTP presentation layer: the session
// contract, recommendation and similarity endpoints, rating ingestion,
// and profile insights.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/tablepick/tablepick/internal/logging"
	"github.com/tablepick/tablepick/internal/recommend"
)

// APIResponse is the standardized response wrapper for all endpoints.
type APIResponse struct {
	// Success indicates whether the request was successful.
	Success bool `json:"success"`

	// Data contains the response payload (null on error).
	Data any `json:"data,omitempty"`

	// Error contains error details (null on success).
	Error *APIError `json:"error,omitempty"`

	// Meta contains optional metadata about the response.
	Meta *APIMeta `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// RequestID is the request ID for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta contains optional response metadata.
type APIMeta struct {
	// RequestID is the unique request identifier for tracing.
	RequestID string `json:"request_id,omitempty"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`

	// Count is the number of items in a list response.
	Count int `json:"count,omitempty"`
}

// Error codes for API responses.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// respondSuccess writes a 200 envelope with data.
func respondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	respondSuccessMeta(w, r, data, &APIMeta{})
}

// respondSuccessMeta writes a 200 envelope with data and caller metadata.
func respondSuccessMeta(w http.ResponseWriter, r *http.Request, data any, meta *APIMeta) {
	meta.Timestamp = time.Now()
	meta.RequestID = middleware.GetReqID(r.Context())
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

// respondError writes an error envelope with the given status and code.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetReqID(r.Context()),
		},
	})
}

// respondDomainError maps recommendation-core sentinel errors onto HTTP
// statuses. Unknown errors become 500 without leaking internals.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, recommend.ErrNotFound),
		errors.Is(err, recommend.ErrSessionNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, recommend.ErrExternalUnavailable):
		respondError(w, r, http.StatusBadGateway, ErrCodeServiceUnavailable, err.Error())
	default:
		logging.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}

// writeJSON serializes the envelope. Encoding failures after the header
// is written can only be logged.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}

// decodeJSON decodes a request body into dst. Unknown fields are
// ignored.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
