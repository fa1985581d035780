package kv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/neochat/relay/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore keeps entries in the kv_entries table. Expired rows are
// invisible to reads immediately and physically removed by PurgeExpired.
// Values must be JSON documents (the column is json).
type PostgresStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPostgresStore wraps an open gorm connection.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) live(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.KVEntry{}).
		Where("expires_at IS NULL OR expires_at > ?", s.now().UTC())
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := models.KVEntry{
		Key:   key,
		Value: datatypes.JSON(value),
	}
	if ttl > 0 {
		expiresAt := s.now().UTC().Add(ttl)
		entry.ExpiresAt = &expiresAt
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := s.live(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, prefix string, limit int) ([]string, error) {
	keys := make([]string, 0)
	query := s.live(ctx).Where("key LIKE ?", escapeLike(prefix)+"%").Order("key")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("kv list %s: %w", prefix, err)
	}
	return keys, nil
}

// PurgeExpired deletes rows whose TTL has elapsed and reports how many.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&models.KVEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("kv purge: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RunPurger calls PurgeExpired every interval until ctx is done.
func (s *PostgresStore) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				log.Printf("KV purge error: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("🧹 Purged %d expired entries", n)
			}
		}
	}
}

// escapeLike escapes LIKE metacharacters using PostgreSQL's default '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ Store = (*PostgresStore)(nil)
