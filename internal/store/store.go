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

// Package store persists listening history in SQLite and feeds it to the
// insight engine. It also backs the remote cache tier.
package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS User (
  name TEXT PRIMARY KEY,
  last_updated DATETIME
);

CREATE TABLE IF NOT EXISTS Artist (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  popularity INTEGER NOT NULL DEFAULT 0,
  followers INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ArtistGenre (
  artist_id TEXT NOT NULL,
  genre TEXT NOT NULL,
  position INTEGER NOT NULL,
  FOREIGN KEY (artist_id) REFERENCES Artist(id),
  PRIMARY KEY (artist_id, genre)
);

CREATE TABLE IF NOT EXISTS Track (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  popularity INTEGER NOT NULL DEFAULT 0,
  explicit INTEGER NOT NULL DEFAULT 0,
  release_year INTEGER NOT NULL DEFAULT 0,
  valence REAL,
  energy REAL,
  danceability REAL,
  tempo REAL
);

CREATE TABLE IF NOT EXISTS TrackArtist (
  track_id TEXT NOT NULL,
  artist_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  FOREIGN KEY (track_id) REFERENCES Track(id),
  FOREIGN KEY (artist_id) REFERENCES Artist(id),
  PRIMARY KEY (track_id, artist_id)
);

CREATE TABLE IF NOT EXISTS Play (
  id INTEGER PRIMARY KEY,
  user TEXT NOT NULL,
  track_id TEXT NOT NULL,
  played_at INTEGER,
  FOREIGN KEY (user) REFERENCES User(name),
  FOREIGN KEY (track_id) REFERENCES Track(id),
  UNIQUE (user, track_id, played_at)
);

CREATE INDEX IF NOT EXISTS PlayByUserDate ON Play (user, played_at);

CREATE TABLE IF NOT EXISTS Report (
  user TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  run_day INTEGER NOT NULL,
  variant TEXT NOT NULL DEFAULT 'witty',
  sent DATETIME,
  FOREIGN KEY (user) REFERENCES User(name),
  PRIMARY KEY (user, name, email)
);

CREATE TABLE IF NOT EXISTS CacheEntry (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  expires_at INTEGER
);
`

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema adds columns and indexes introduced after the initial table
// layout.
func ensureSchema(db *sql.DB) error {
	if err := addColumnIfNotExists(db, "Artist", "tags_last_updated", "DATETIME"); err != nil {
		return err
	}
	if err := addColumnIfNotExists(db, "User", "session_key", "TEXT"); err != nil {
		return err
	}
	return ensureUndatedPlayIndex(db)
}

// ensureUndatedPlayIndex keeps one undated play per user and track. NULLs are
// distinct under the Play UNIQUE constraint, so without this index every
// re-import would duplicate them.
func ensureUndatedPlayIndex(db *sql.DB) error {
	_, err := db.Exec(`
	DELETE FROM Play
	WHERE played_at IS NULL AND id NOT IN (
		SELECT MIN(id) FROM Play WHERE played_at IS NULL GROUP BY user, track_id
	)`)
	if err != nil {
		return fmt.Errorf("removing duplicate undated plays: %w", err)
	}
	_, err = db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS PlayUndated ON Play (user, track_id) WHERE played_at IS NULL")
	if err != nil {
		return fmt.Errorf("creating undated play index: %w", err)
	}
	return nil
}

func addColumnIfNotExists(db *sql.DB, table, column, typeDef string) error {
	exists, err := columnExists(db, table, column)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if !exists {
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typeDef)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", table, column, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, tableName string, columnName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dfltValue interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	return false, rows.Err()
}

// playRange builds the played_at filter for [start, end). A zero start also
// admits plays with an unknown timestamp; a zero end is unbounded.
func playRange(column string, start, end time.Time) (string, []any) {
	endUTS := int64(math.MaxInt64)
	if !end.IsZero() {
		endUTS = end.Unix()
	}
	if start.IsZero() {
		return fmt.Sprintf("(%[1]s IS NULL OR %[1]s < ?)", column), []any{endUTS}
	}
	return fmt.Sprintf("(%[1]s >= ? AND %[1]s < ?)", column), []any{start.Unix(), endUTS}
}
