// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

// Command server runs the TablePick recommendation service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tablepick/tablepick/internal/api"
	"github.com/tablepick/tablepick/internal/config"
	"github.com/tablepick/tablepick/internal/logging"
	"github.com/tablepick/tablepick/internal/places"
	"github.com/tablepick/tablepick/internal/recommend"
	"github.com/tablepick/tablepick/internal/storage"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()
	logging.Info().Msg("Starting TablePick")

	store, err := storage.Open(&cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open storage")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()
	logging.Info().Str("path", cfg.Storage.Path).Msg("Storage opened")

	// Live search is optional: without an API key the engine serves
	// stored restaurants only.
	var supplier recommend.Supplier
	if cfg.Places.APIKey != "" {
		client, err := places.NewClient(&cfg.Places, logger)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create places client")
		}
		supplier = client
		logging.Info().Msg("Live place search enabled")
	} else {
		logging.Info().Msg("No places API key configured - running on stored data only")
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, logger, store, supplier)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	sessions := recommend.NewSessionManager(engine, logger)

	router := api.NewRouter(api.RouterConfig{
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
		CORSOrigins:     cfg.Server.CORSOrigins,
	}, logger, engine, sessions, store)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		logging.Error().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("TablePick stopped")
}
