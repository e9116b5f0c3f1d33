// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/tablepick/tablepick/internal/recommend"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	engine   *recommend.Engine
	sessions *recommend.SessionManager
	store    recommend.Store
	validate *validator.Validate
	logger   zerolog.Logger
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]string{"status": "ok"})
}

// queryInt parses an optional integer query parameter, returning def
// when absent or malformed.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
