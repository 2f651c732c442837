package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Cache stores JSON-encoded analysis results keyed by content hash. Entries
// expire after ttl.
type Cache struct {
	db  *DB
	ttl time.Duration
}

// CacheStats summarises the cache table.
type CacheStats struct {
	Entries   int   `json:"entries"`
	Expired   int   `json:"expired"`
	SizeBytes int64 `json:"sizeBytes"`
}

// NewCache creates a cache over db. A non-positive ttl disables it: Get
// always misses and Set is a no-op.
func NewCache(db *DB, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl}
}

// Enabled reports whether entries are stored.
func (c *Cache) Enabled() bool {
	return c != nil && c.ttl > 0
}

// Get returns the cached value for key. Expired entries are deleted and
// reported as misses.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	if !c.Enabled() {
		return "", false, nil
	}

	var valueJSON, expiresAt string
	err := c.db.conn.QueryRowContext(ctx,
		"SELECT value_json, expires_at FROM analysis_cache WHERE key = ?", key,
	).Scan(&valueJSON, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup failed: %w", err)
	}

	expires, err := time.Parse(timeLayout, expiresAt)
	if err != nil {
		return "", false, fmt.Errorf("invalid expires_at format: %w", err)
	}
	if time.Now().UTC().After(expires) {
		if _, err := c.db.conn.ExecContext(ctx, "DELETE FROM analysis_cache WHERE key = ?", key); err != nil {
			c.db.logger.Debug("Failed to delete expired cache entry", "key", key, "error", err.Error())
		}
		return "", false, nil
	}
	return valueJSON, true, nil
}

// Set stores valueJSON under key, replacing any earlier entry.
func (c *Cache) Set(ctx context.Context, key, valueJSON string) error {
	if !c.Enabled() {
		return nil
	}

	now := time.Now().UTC()
	_, err := c.db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO analysis_cache (key, value_json, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, key, valueJSON, now.Add(c.ttl).Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// CleanupExpired removes expired entries and returns how many were deleted.
func (c *Cache) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := c.db.conn.ExecContext(ctx,
		"DELETE FROM analysis_cache WHERE expires_at < ?", time.Now().UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup cache: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		c.db.logger.Debug("Cleaned up expired cache entries", "count", n)
	}
	return n, nil
}

// Stats counts live and expired entries.
func (c *Cache) Stats(ctx context.Context) (*CacheStats, error) {
	var stats CacheStats
	err := c.db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN expires_at < ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(LENGTH(value_json)), 0)
		FROM analysis_cache
	`, time.Now().UTC().Format(timeLayout)).Scan(&stats.Entries, &stats.Expired, &stats.SizeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to get cache stats: %w", err)
	}
	return &stats, nil
}
