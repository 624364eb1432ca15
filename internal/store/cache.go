/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CacheTable is a key-value cache backend over the CacheEntry table.
// Expired rows are treated as missing and removed on read.
type CacheTable struct {
	db  *sql.DB
	now func() time.Time
}

// Cache returns the store's cache backend.
func (s *Store) Cache() *CacheTable {
	return &CacheTable{db: s.db, now: time.Now}
}

func (c *CacheTable) Get(ctx context.Context, key string) (string, bool, error) {
	row := c.db.QueryRowContext(ctx, "SELECT value, expires_at FROM CacheEntry WHERE key = ?", key)
	var value string
	var expires sql.NullInt64
	err := row.Scan(&value, &expires)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache entry %q: %w", key, err)
	}
	if expires.Valid && c.now().UnixMilli() >= expires.Int64 {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM CacheEntry WHERE key = ?", key); err != nil {
			return "", false, fmt.Errorf("deleting expired cache entry %q: %w", key, err)
		}
		return "", false, nil
	}
	return value, true, nil
}

// Set stores value under key. A non-positive ttl never expires.
func (c *CacheTable) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var expires sql.NullInt64
	if ttl > 0 {
		expires = sql.NullInt64{Int64: c.now().Add(ttl).UnixMilli(), Valid: true}
	}
	_, err := c.db.ExecContext(ctx, "INSERT OR REPLACE INTO CacheEntry (key, value, expires_at) VALUES (?, ?, ?)", key, value, expires)
	if err != nil {
		return fmt.Errorf("writing cache entry %q: %w", key, err)
	}
	return nil
}

// Clear removes every entry.
func (c *CacheTable) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM CacheEntry"); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Purge removes expired entries and reports how many were deleted.
func (c *CacheTable) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM CacheEntry WHERE expires_at IS NOT NULL AND expires_at <= ?", c.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}
