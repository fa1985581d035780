// Package directory is the public profile directory. Profiles are
// self-asserted by their owners: every write replaces the record and the
// last writer wins.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/neochat/relay/internal/apperr"
	"github.com/neochat/relay/internal/kv"
	"github.com/neochat/relay/internal/models"
)

const namespace = "profile"

// UpsertInput is the caller-supplied part of a profile.
type UpsertInput struct {
	ID        string
	Username  string
	Status    models.UserStatus // empty: offline
	AvatarURL *string
}

// Service reads and writes profile:{id} records.
type Service struct {
	store kv.Store
	now   func() time.Time
}

// NewService creates a directory over store.
func NewService(store kv.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source used for last_seen.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// UpsertProfile replaces the profile for in.ID and stamps last_seen.
func (s *Service) UpsertProfile(ctx context.Context, in UpsertInput) (models.Profile, error) {
	if in.ID == "" || in.Username == "" {
		return models.Profile{}, apperr.Validation("Missing required fields: id, username")
	}

	key := kv.Key(namespace, in.ID)
	lastSeen, err := s.nextLastSeen(ctx, key)
	if err != nil {
		return models.Profile{}, err
	}

	profile := models.Profile{
		ID:        in.ID,
		Username:  in.Username,
		Status:    in.Status,
		AvatarURL: in.AvatarURL,
		LastSeen:  lastSeen,
	}
	if profile.Status == "" {
		profile.Status = models.StatusOffline
	}
	if profile.AvatarURL != nil && *profile.AvatarURL == "" {
		profile.AvatarURL = nil
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return models.Profile{}, apperr.Storage("failed to encode profile", err)
	}
	if err := s.store.Put(ctx, key, data, 0); err != nil {
		return models.Profile{}, apperr.Storage("failed to store profile", err)
	}
	return profile, nil
}

// nextLastSeen returns the clock in milliseconds, bumped past the stored
// record's last_seen so repeated upserts within one millisecond still move
// it forward.
func (s *Service) nextLastSeen(ctx context.Context, key string) (int64, error) {
	now := s.now().UnixMilli()

	data, err := s.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return now, nil
	}
	if err != nil {
		return 0, apperr.Storage("failed to read profile", err)
	}

	var prev models.Profile
	if err := json.Unmarshal(data, &prev); err != nil {
		// A corrupted record is overwritten.
		return now, nil
	}
	if prev.LastSeen >= now {
		return prev.LastSeen + 1, nil
	}
	return now, nil
}

// GetProfile returns the stored profile as last written.
func (s *Service) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	if id == "" {
		return models.Profile{}, apperr.NotFound("Invalid user ID")
	}

	data, err := s.store.Get(ctx, kv.Key(namespace, id))
	if errors.Is(err, kv.ErrNotFound) {
		return models.Profile{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return models.Profile{}, apperr.Storage("failed to read profile", err)
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return models.Profile{}, apperr.Storage("stored profile is corrupted", err)
	}
	return profile, nil
}
