package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvEntry is one key-value pair in the SQL-backed store
type kvEntry struct {
	Key       string     `gorm:"primaryKey;size:255"`
	Value     string     `gorm:"not null;type:text"`
	ExpiresAt *time.Time `gorm:"index"` // Nullable for keys that never expire
}

// TableName specifies the table name for GORM
func (kvEntry) TableName() string {
	return "kv_entries"
}

// liveScope filters out rows whose TTL has elapsed
func liveScope(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at IS NULL OR expires_at > NOW()")
}

// PostgresStore implements KeyValueStore on a single PostgreSQL table.
// Expired rows are treated as absent and removed by PurgeExpired.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore wraps db and migrates the kv_entries table
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// GetString retrieves a live value by key
func (s *PostgresStore) GetString(ctx context.Context, key string) (string, error) {
	var entry kvEntry

	result := s.db.WithContext(ctx).
		Scopes(liveScope).
		Where("key = ?", key).
		First(&entry)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("postgres get failed: %w", result.Error)
	}

	return entry.Value, nil
}

// GetBool retrieves a live value and parses it as a boolean
func (s *PostgresStore) GetBool(ctx context.Context, key string) (bool, error) {
	val, err := s.GetString(ctx, key)
	if err != nil {
		return false, err
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("postgres get bool failed: %w", err)
	}

	return b, nil
}

// Exists checks if a live key exists without loading the value
func (s *PostgresStore) Exists(ctx context.Context, key string) (bool, error) {
	var count int64

	result := s.db.WithContext(ctx).
		Model(&kvEntry{}).
		Scopes(liveScope).
		Where("key = ?", key).
		Count(&count)

	if result.Error != nil {
		return false, fmt.Errorf("postgres exists check failed: %w", result.Error)
	}

	return count > 0, nil
}

// incrementSQL upserts the counter in one statement. An expired row
// restarts at 1 and loses its TTL, like a fresh key in Redis.
const incrementSQL = `
INSERT INTO kv_entries (key, value, expires_at) VALUES (?, '1', NULL)
ON CONFLICT (key) DO UPDATE SET
	value = CASE
		WHEN kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= NOW() THEN '1'
		ELSE (kv_entries.value::bigint + 1)::text
	END,
	expires_at = CASE
		WHEN kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= NOW() THEN NULL
		ELSE kv_entries.expires_at
	END
RETURNING value`

// Increment atomically increments the counter at key
func (s *PostgresStore) Increment(ctx context.Context, key string) (int64, error) {
	var value string

	if err := s.db.WithContext(ctx).Raw(incrementSQL, key).Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("postgres incr failed: %w", err)
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("postgres incr failed: %w", err)
	}

	return n, nil
}

// Expire sets expires_at on a live key. The deadline is computed by the
// database so it shares a clock with liveScope and incrementSQL.
func (s *PostgresStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	result := s.db.WithContext(ctx).
		Model(&kvEntry{}).
		Scopes(liveScope).
		Where("key = ?", key).
		Update("expires_at", gorm.Expr("NOW() + make_interval(secs => ?)", ttl.Seconds()))

	if result.Error != nil {
		return fmt.Errorf("postgres expire failed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}

	return nil
}

// Set upserts value at key and clears any TTL
func (s *PostgresStore) Set(ctx context.Context, key string, value string) error {
	entry := kvEntry{Key: key, Value: value}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":      value,
				"expires_at": nil,
			}),
		}).
		Create(&entry)

	if result.Error != nil {
		return fmt.Errorf("postgres set failed: %w", result.Error)
	}

	return nil
}

// PurgeExpired removes all rows that have passed their expiration date
// This should be called periodically by a cleanup job
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= NOW()").
		Delete(&kvEntry{})

	if result.Error != nil {
		return 0, fmt.Errorf("postgres purge failed: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// Ping checks the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
