// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tablepick/tablepick/internal/recommend"
)

// RouterConfig holds the HTTP-level settings the router needs.
type RouterConfig struct {
	// RateLimitReqs is the per-IP request allowance per window.
	RateLimitReqs int

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration

	// CORSOrigins lists allowed cross-origin hosts.
	CORSOrigins []string
}

// Router wires the recommendation core to HTTP routes.
type Router struct {
	config  RouterConfig
	handler *Handler
	logger  zerolog.Logger
}

// NewRouter creates a router over the recommendation engine, session
// manager, and store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(cfg RouterConfig, logger zerolog.Logger, engine *recommend.Engine, sessions *recommend.SessionManager, store recommend.Store) *Router {
	if cfg.RateLimitReqs <= 0 {
		cfg.RateLimitReqs = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return &Router{
		config: cfg,
		handler: &Handler{
			engine:   engine,
			sessions: sessions,
			store:    store,
			validate: validator.New(),
			logger:   logger.With().Str("component", "api").Logger(),
		},
		logger: logger,
	}
}

// Routes builds the full route tree with the global middleware stack.
func (router *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(requestLogging(router.logger))

	r.Get("/api/v1/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.config.RateLimitReqs, router.config.RateLimitWindow))
		r.Use(metricsMiddleware)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", router.handler.StartSession)
			r.Get("/", router.handler.RecentSessions)
			r.Post("/{sessionID}/feedback", router.handler.CollectFeedback)
			r.Get("/{sessionID}/feedback", router.handler.SessionFeedbackLog)
			r.Get("/{sessionID}/recommendations", router.handler.SessionRecommendations)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/nearby", router.handler.RecommendNearby)
			r.Get("/city", router.handler.RecommendByCity)
			r.Get("/wishlist", router.handler.Wishlist)
		})

		r.Route("/restaurants", func(r chi.Router) {
			r.Post("/", router.handler.SaveRestaurant)
			r.Get("/{restaurantID}", router.handler.GetRestaurant)
			r.Get("/{restaurantID}/similar", router.handler.FindSimilar)
		})

		r.Post("/ratings", router.handler.AddRating)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/profile", router.handler.GetProfile)
			r.Post("/profile/refresh", router.handler.RefreshProfile)
			r.Get("/insights", router.handler.GetInsights)
		})
	})

	return r
}
