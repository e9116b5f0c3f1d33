// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

// Package recommend implements preference-driven restaurant
// recommendation with interactive session learning.
//
// # Architecture
//
// The package is built from four cooperating pieces:
//
//   - Preference profile builder: derives a UserPreferenceProfile from
//     the user's rating history (confidence-weighted deviations from
//     the user's mean rating, per cuisine, price level, and vibe).
//   - Scoring engine: a pure weighted sum over cuisine, price, vibe,
//     quality, and special sub-scores, with human-readable reasoning.
//   - Similarity engine: Jaccard tag overlap plus price and city terms
//     for restaurant-to-restaurant matching.
//   - Session manager: a multi-round feedback loop that suppresses
//     already-shown restaurants, boosts candidates matching requested
//     or previously liked attributes, and caches live-search results
//     so the external supplier is called at most once per session.
//
// # Boundaries
//
// The package depends on no other internal packages. Persistence and
// live search are consumed through the Store and Supplier interfaces,
// implemented by the storage and places packages respectively.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger, store, supplier)
//	sessions := recommend.NewSessionManager(engine, logger)
//
//	session, err := sessions.StartSession(ctx, userID, loc)
//	recs, err := sessions.GetSessionRecommendations(ctx, session.SessionID, 10)
//	err = sessions.CollectFeedback(ctx, session.SessionID, liked, nil, []string{"Thai"}, nil)
//
// # Thread Safety
//
// The engine and session manager hold no cross-call mutable state and
// are safe for concurrent use. Serializing concurrent access to a
// single session record is the Store's responsibility.
package recommend
