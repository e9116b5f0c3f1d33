// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package recommend

import "errors"

// Sentinel errors returned by the recommendation core. Callers match
// them with errors.Is; the API layer maps them to response codes.
var (
	// ErrNotFound indicates an unknown restaurant id.
	ErrNotFound = errors.New("restaurant not found")

	// ErrSessionNotFound indicates an unknown session id. Operations
	// fail without any partial mutation.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidInput indicates a caller-supplied value outside its
	// contract, e.g. a rating outside [1.0, 5.0] or a request with
	// neither coordinates nor a city.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExternalUnavailable indicates the live candidate supplier is
	// absent or failing. Recommendation rounds degrade to stored
	// candidates instead of failing; this sentinel is surfaced only
	// when the caller explicitly requested live-only behavior.
	ErrExternalUnavailable = errors.New("live search unavailable")

	// ErrPersistence wraps Store write failures. No partial state is
	// left committed when it is returned.
	ErrPersistence = errors.New("persistence failure")
)
