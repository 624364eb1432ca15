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
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ademuri/listening-insights/internal/analysis"
)

// CreateUser ensures a user exists in the database.
func (s *Store) CreateUser(user string) error {
	row := s.db.QueryRow("SELECT name FROM User WHERE name = ?", user)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec("INSERT INTO User (name) VALUES (?)", user)
		if err != nil {
			return fmt.Errorf("inserting user %q: %w", user, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking user %q: %w", user, err)
	}
	return nil
}

func (s *Store) SetLastUpdated(user string, updated time.Time) error {
	_, err := s.db.Exec("UPDATE User SET last_updated = ? WHERE name = ?", updated, user)
	if err != nil {
		return fmt.Errorf("updating last_updated for %q: %w", user, err)
	}
	return nil
}

func (s *Store) SetSessionKey(user, key string) error {
	_, err := s.db.Exec("UPDATE User SET session_key = ? WHERE name = ?", key, user)
	if err != nil {
		return fmt.Errorf("updating session key for %q: %w", user, err)
	}
	return nil
}

// artistID is the stored id for ref, matching PlayEvent.ArtistKey.
func artistID(ref analysis.ArtistRef) string {
	if ref.ID != "" {
		return ref.ID
	}
	return strings.ToLower(ref.Name)
}

// AddPlays inserts a batch of plays transactionally. Repeating a play (same
// user, track and instant) is a no-op. Track metadata is merged: known values
// are never overwritten by unknown ones.
func (s *Store) AddPlays(user string, plays []analysis.PlayEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range plays {
		trackID := p.TrackKey()
		if err := upsertTrack(tx, trackID, p); err != nil {
			return err
		}
		for i, ref := range p.ArtistRefs {
			id := artistID(ref)
			if err := createArtist(tx, id, ref.Name); err != nil {
				return err
			}
			if _, err := tx.Exec("INSERT OR REPLACE INTO TrackArtist (track_id, artist_id, position) VALUES (?, ?, ?)", trackID, id, i); err != nil {
				return fmt.Errorf("linking artist %q to track %q: %w", ref.Name, p.TrackName, err)
			}
		}
		if err := createPlay(tx, user, trackID, p.PlayedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func createArtist(tx *sql.Tx, id, name string) error {
	_, err := tx.Exec("INSERT INTO Artist (id, name) VALUES (?, ?) ON CONFLICT(id) DO NOTHING", id, name)
	if err != nil {
		return fmt.Errorf("inserting artist %q: %w", name, err)
	}
	return nil
}

func upsertTrack(tx *sql.Tx, id string, p analysis.PlayEvent) error {
	var valence, energy, dance, tempo sql.NullFloat64
	if f := p.Features; f != nil {
		valence = sql.NullFloat64{Float64: f.Valence, Valid: true}
		energy = sql.NullFloat64{Float64: f.Energy, Valid: true}
		dance = sql.NullFloat64{Float64: f.Danceability, Valid: true}
		tempo = sql.NullFloat64{Float64: f.Tempo, Valid: true}
	}
	query := `
	INSERT INTO Track (id, name, duration_ms, popularity, explicit, release_year, valence, energy, danceability, tempo)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		duration_ms = CASE WHEN excluded.duration_ms > 0 THEN excluded.duration_ms ELSE Track.duration_ms END,
		popularity = CASE WHEN excluded.popularity > 0 THEN excluded.popularity ELSE Track.popularity END,
		explicit = excluded.explicit OR Track.explicit,
		release_year = CASE WHEN excluded.release_year > 0 THEN excluded.release_year ELSE Track.release_year END,
		valence = COALESCE(excluded.valence, Track.valence),
		energy = COALESCE(excluded.energy, Track.energy),
		danceability = COALESCE(excluded.danceability, Track.danceability),
		tempo = COALESCE(excluded.tempo, Track.tempo)
	`
	_, err := tx.Exec(query, id, p.TrackName, p.DurationMs, p.Popularity, p.Explicit, p.ReleaseYear, valence, energy, dance, tempo)
	if err != nil {
		return fmt.Errorf("upserting track %q: %w", p.TrackName, err)
	}
	return nil
}

func createPlay(tx *sql.Tx, user, trackID string, playedAt time.Time) error {
	var uts sql.NullInt64
	if !playedAt.IsZero() {
		uts = sql.NullInt64{Int64: playedAt.Unix(), Valid: true}
	}
	_, err := tx.Exec("INSERT OR IGNORE INTO Play (user, track_id, played_at) VALUES (?, ?, ?)", user, trackID, uts)
	if err != nil {
		return fmt.Errorf("inserting play: %w", err)
	}
	return nil
}

// SaveArtists upserts artist profiles, replacing their genre lists.
func (s *Store) SaveArtists(artists []analysis.ArtistProfile) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range artists {
		id := artistID(analysis.ArtistRef{ID: a.ID, Name: a.Name})
		query := `
		INSERT INTO Artist (id, name, popularity, followers) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, popularity = excluded.popularity, followers = excluded.followers
		`
		if _, err := tx.Exec(query, id, a.Name, a.Popularity, a.FollowerCount); err != nil {
			return fmt.Errorf("upserting artist %q: %w", a.Name, err)
		}
		if err := replaceGenres(tx, id, a.Genres); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveArtistTags stores tags (e.g. last.fm top tags) as the artist's genres,
// in order, and marks them fresh.
func (s *Store) SaveArtistTags(artistID string, tags []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := replaceGenres(tx, artistID, tags); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE Artist SET tags_last_updated = ? WHERE id = ?", time.Now(), artistID); err != nil {
		return fmt.Errorf("updating artist tag timestamp: %w", err)
	}
	return tx.Commit()
}

func replaceGenres(tx *sql.Tx, artistID string, genres []string) error {
	if _, err := tx.Exec("DELETE FROM ArtistGenre WHERE artist_id = ?", artistID); err != nil {
		return fmt.Errorf("clearing genres for %q: %w", artistID, err)
	}
	for i, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		_, err := tx.Exec("INSERT OR IGNORE INTO ArtistGenre (artist_id, genre, position) VALUES (?, ?, ?)", artistID, g, i)
		if err != nil {
			return fmt.Errorf("linking genre %q to artist %q: %w", g, artistID, err)
		}
	}
	return nil
}
