// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

// Package storage persists restaurants, preference profiles, and
// recommendation sessions in BadgerDB. It implements recommend.Store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tablepick/tablepick/internal/recommend"
)

// Key prefixes for BadgerDB storage
const (
	restaurantKeyPrefix  = "restaurant:"
	profileKeyPrefix     = "profile:"
	sessionKeyPrefix     = "session:"
	sessionUserKeyPrefix = "session_user:"
	feedbackKeyPrefix    = "feedback:"
)

// Config holds BadgerDB settings.
type Config struct {
	// Path is the on-disk database directory. Ignored when InMemory is set.
	Path string `json:"path" koanf:"path"`

	// InMemory runs the database without persistence, for tests and
	// ephemeral deployments.
	InMemory bool `json:"in_memory" koanf:"in_memory"`

	// SyncWrites forces fsync on every write at a throughput cost.
	SyncWrites bool `json:"sync_writes" koanf:"sync_writes"`
}

// DefaultConfig returns storage defaults.
func DefaultConfig() *Config {
	return &Config{
		Path: "./data/tablepick",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("storage path is required for on-disk databases")
	}
	return nil
}

// BadgerStore is a BadgerDB-backed implementation of recommend.Store.
// Badger transactions give each operation read-your-writes isolation,
// which also serializes concurrent updates to a single session record.
type BadgerStore struct {
	db *badger.DB
}

// Open opens (or creates) the database described by cfg.
func Open(cfg *Config) (*BadgerStore, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Suppress BadgerDB logs
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// SaveRestaurant upserts a restaurant record.
func (s *BadgerStore) SaveRestaurant(ctx context.Context, r *recommend.Restaurant) error {
	if r.ID == "" {
		return fmt.Errorf("restaurant id is required")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal restaurant: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(restaurantKeyPrefix+r.ID), data)
	})
}

// RestaurantByID returns a restaurant, or recommend.ErrNotFound.
func (s *BadgerStore) RestaurantByID(ctx context.Context, id string) (*recommend.Restaurant, error) {
	var r recommend.Restaurant
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(restaurantKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return recommend.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get restaurant: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// AllRestaurants returns the full corpus, ordered by id.
func (s *BadgerStore) AllRestaurants(ctx context.Context) ([]recommend.Restaurant, error) {
	return s.scanRestaurants(func(*recommend.Restaurant) bool { return true })
}

// RestaurantsNear returns restaurants with coordinates within radiusKM
// of the point.
func (s *BadgerStore) RestaurantsNear(ctx context.Context, lat, lng, radiusKM float64) ([]recommend.Restaurant, error) {
	return s.scanRestaurants(func(r *recommend.Restaurant) bool {
		if !r.Location.HasCoordinates() {
			return false
		}
		return recommend.HaversineKM(lat, lng, *r.Location.Lat, *r.Location.Lng) <= radiusKM
	})
}

// RestaurantsInCity returns unrated restaurants in the given city.
// City and state compare case-insensitively; an empty state matches any.
func (s *BadgerStore) RestaurantsInCity(ctx context.Context, city, state string) ([]recommend.Restaurant, error) {
	return s.scanRestaurants(func(r *recommend.Restaurant) bool {
		if r.UserRating != nil {
			return false
		}
		if !strings.EqualFold(r.Location.City, city) {
			return false
		}
		return state == "" || strings.EqualFold(r.Location.State, state)
	})
}

func (s *BadgerStore) scanRestaurants(keep func(*recommend.Restaurant) bool) ([]recommend.Restaurant, error) {
	var out []recommend.Restaurant
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(restaurantKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var r recommend.Restaurant
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			})
			if err != nil {
				return fmt.Errorf("unmarshal restaurant: %w", err)
			}
			if keep(&r) {
				out = append(out, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveProfile upserts a preference profile.
func (s *BadgerStore) SaveProfile(ctx context.Context, p *recommend.UserPreferenceProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+p.UserID), data)
	})
}

// ProfileFor returns the stored profile, or (nil, nil) when absent.
func (s *BadgerStore) ProfileFor(ctx context.Context, userID string) (*recommend.UserPreferenceProfile, error) {
	var p recommend.UserPreferenceProfile
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// SaveSession upserts a session and its user lookup entry.
func (s *BadgerStore) SaveSession(ctx context.Context, sess *recommend.RecommendationSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(sessionKeyPrefix+sess.SessionID), data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		userKey := []byte(sessionUserKeyPrefix + sess.UserID + ":" + sess.SessionID)
		if err := txn.Set(userKey, []byte(sess.SessionID)); err != nil {
			return fmt.Errorf("set user mapping: %w", err)
		}
		return nil
	})
}

// SessionByID returns a session, or recommend.ErrSessionNotFound.
func (s *BadgerStore) SessionByID(ctx context.Context, id string) (*recommend.RecommendationSession, error) {
	var sess recommend.RecommendationSession
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return recommend.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sess)
		})
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// RecentSessions returns up to limit sessions for the user, most
// recently active first.
func (s *BadgerStore) RecentSessions(ctx context.Context, userID string, limit int) ([]recommend.RecommendationSession, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionUserKeyPrefix + userID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan user sessions: %w", err)
	}

	sessions := make([]recommend.RecommendationSession, 0, len(ids))
	for _, id := range ids {
		sess, err := s.SessionByID(ctx, id)
		if errors.Is(err, recommend.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// feedbackEntry is the persisted audit record for one feedback event.
type feedbackEntry struct {
	SessionID    string    `json:"session_id"`
	RestaurantID string    `json:"restaurant_id"`
	Kind         string    `json:"kind"`
	Timestamp    time.Time `json:"timestamp"`
}

// LogFeedback appends one audit entry for a feedback event.
func (s *BadgerStore) LogFeedback(ctx context.Context, sessionID, restaurantID string, kind recommend.FeedbackKind) error {
	entry := feedbackEntry{
		SessionID:    sessionID,
		RestaurantID: restaurantID,
		Kind:         string(kind),
		Timestamp:    time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	key := []byte(feedbackKeyPrefix + sessionID + ":" + uuid.NewString())
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// FeedbackForSession returns the audit entries recorded for a session,
// oldest first.
func (s *BadgerStore) FeedbackForSession(ctx context.Context, sessionID string) ([]recommend.FeedbackKind, []string, error) {
	var kinds []recommend.FeedbackKind
	var restaurantIDs []string
	var entries []feedbackEntry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(feedbackKeyPrefix + sessionID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var entry feedbackEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return fmt.Errorf("unmarshal feedback: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
	for _, e := range entries {
		kinds = append(kinds, recommend.FeedbackKind(e.Kind))
		restaurantIDs = append(restaurantIDs, e.RestaurantID)
	}
	return kinds, restaurantIDs, nil
}
