// Package tokenstore persists the session artifacts (access token, refresh token, user profile)
// in a namespaced key/value backend: memory, JSON file, Redis or Postgres.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"event-admin-console/internal/logging"
	"event-admin-console/internal/session/domain"
)

// Storage keys shared with the browser console.
const (
	KeyAccessToken  = "authToken"
	KeyRefreshToken = "refreshToken"
	KeyUserProfile  = "userProfile"
)

// sweepMarkers select the extra keys removed by Clear (matched case-insensitively).
var sweepMarkers = []string{"auth", "token", "user"}

// ErrNotFound is returned by a Backend when the key is absent.
var ErrNotFound = errors.New("tokenstore: key not found")

// Backend is a namespaced string key/value store.
type Backend interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Keys lists every key in the namespace.
	Keys(ctx context.Context) ([]string, error)
}

// Store reads and writes session artifacts. It never panics; backend failures are logged
// and read paths degrade to "no session".
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New returns a Store over backend. A nil logger uses slog.Default().
func New(backend Backend, logger *slog.Logger) *Store {
	return &Store{backend: backend, logger: logging.Or(logger)}
}

// Save overwrites all three artifacts. The error is for logging only.
func (s *Store) Save(ctx context.Context, a domain.Artifacts) error {
	profile, err := json.Marshal(a.Profile)
	if err != nil {
		s.logger.Warn("tokenstore: encode profile failed", "error", err)
		return err
	}
	var errs []error
	for _, kv := range [][2]string{
		{KeyAccessToken, a.Access},
		{KeyRefreshToken, a.Refresh},
		{KeyUserProfile, string(profile)},
	} {
		if err := s.backend.Set(ctx, kv[0], kv[1]); err != nil {
			s.logger.Warn("tokenstore: save failed", "key", kv[0], "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load returns the stored artifacts. ok is false when any entry is missing, empty or undecodable.
func (s *Store) Load(ctx context.Context) (domain.Artifacts, bool) {
	access, ok := s.get(ctx, KeyAccessToken)
	if !ok {
		return domain.Artifacts{}, false
	}
	refresh, ok := s.get(ctx, KeyRefreshToken)
	if !ok {
		return domain.Artifacts{}, false
	}
	raw, ok := s.get(ctx, KeyUserProfile)
	if !ok {
		return domain.Artifacts{}, false
	}
	var profile domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Warn("tokenstore: stored profile is not valid JSON", "error", err)
		return domain.Artifacts{}, false
	}
	return domain.Artifacts{Access: access, Refresh: refresh, Profile: profile}, true
}

// Tokens returns the raw access and refresh tokens; either may be empty.
func (s *Store) Tokens(ctx context.Context) (access, refresh string) {
	access, _ = s.get(ctx, KeyAccessToken)
	refresh, _ = s.get(ctx, KeyRefreshToken)
	return access, refresh
}

// Clear removes the three artifacts and every other key whose name mentions auth, token or user.
func (s *Store) Clear(ctx context.Context) {
	keys := []string{KeyAccessToken, KeyRefreshToken, KeyUserProfile}
	all, err := s.backend.Keys(ctx)
	if err != nil {
		s.logger.Warn("tokenstore: list keys failed", "error", err)
	}
	for _, k := range all {
		if sweepable(k) && !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		s.logger.Warn("tokenstore: clear failed", "error", err)
	}
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	v, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("tokenstore: read failed", "key", key, "error", err)
		}
		return "", false
	}
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func sweepable(key string) bool {
	k := strings.ToLower(key)
	for _, m := range sweepMarkers {
		if strings.Contains(k, m) {
			return true
		}
	}
	return false
}
