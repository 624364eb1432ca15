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
	"time"

	"github.com/ademuri/listening-insights/internal/analysis"
)

func (s *Store) GetSessionKey(user string) (string, error) {
	row := s.db.QueryRow("SELECT session_key FROM User WHERE name = ? AND session_key <> ''", user)
	var key string
	err := row.Scan(&key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting session key: %w", err)
	}
	return key, nil
}

func (s *Store) GetLastUpdated(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_updated FROM User WHERE name = ?", user)
	var t sql.NullTime
	err := row.Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last updated: %w", err)
	}
	return t.Time, nil
}

// GetLatestPlay returns the newest timestamped play for user, or the zero
// time when there is none.
func (s *Store) GetLatestPlay(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT MAX(played_at) FROM Play WHERE user = ?", user)
	var uts sql.NullInt64
	if err := row.Scan(&uts); err != nil {
		return time.Time{}, fmt.Errorf("scanning latest play: %w", err)
	}
	if !uts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(uts.Int64, 0), nil
}

// GetArtistsNeedingTagUpdate lists artists with more than minPlays plays
// whose tags are missing or older than interval.
func (s *Store) GetArtistsNeedingTagUpdate(interval time.Duration, minPlays int) ([]analysis.ArtistRef, error) {
	threshold := time.Now().Add(-interval)
	query := `
		SELECT a.id, a.name
		FROM Play p
		JOIN TrackArtist ta ON ta.track_id = p.track_id AND ta.position = 0
		JOIN Artist a ON a.id = ta.artist_id
		WHERE (a.tags_last_updated IS NULL OR a.tags_last_updated < ?)
		GROUP BY a.id
		HAVING COUNT(*) > ?
		ORDER BY COUNT(*) DESC
	`
	rows, err := s.db.Query(query, threshold, minPlays)
	if err != nil {
		return nil, fmt.Errorf("querying artists for tag update: %w", err)
	}
	defer rows.Close()

	var artists []analysis.ArtistRef
	for rows.Next() {
		var a analysis.ArtistRef
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// GetPlays returns the user's plays in [start, end), newest first.
func (s *Store) GetPlays(user string, start, end time.Time) ([]analysis.PlayEvent, error) {
	where, args := playRange("p.played_at", start, end)
	query := `
	SELECT p.played_at, t.id, t.name, t.duration_ms, t.popularity, t.explicit, t.release_year,
		t.valence, t.energy, t.danceability, t.tempo
	FROM Play p
	INNER JOIN Track t ON t.id = p.track_id
	WHERE p.user = ? AND ` + where + `
	ORDER BY p.played_at DESC, p.id DESC
	`
	rows, err := s.db.Query(query, append([]any{user}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("querying plays: %w", err)
	}
	defer rows.Close()

	var plays []analysis.PlayEvent
	for rows.Next() {
		var p analysis.PlayEvent
		var uts sql.NullInt64
		var valence, energy, dance, tempo sql.NullFloat64
		err := rows.Scan(&uts, &p.TrackID, &p.TrackName, &p.DurationMs, &p.Popularity, &p.Explicit, &p.ReleaseYear,
			&valence, &energy, &dance, &tempo)
		if err != nil {
			return nil, err
		}
		if uts.Valid {
			p.PlayedAt = time.Unix(uts.Int64, 0)
		}
		if valence.Valid && energy.Valid {
			p.Features = &analysis.AudioFeatures{
				Valence:      valence.Float64,
				Energy:       energy.Float64,
				Danceability: dance.Float64,
				Tempo:        tempo.Float64,
			}
		}
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs, err := s.trackArtists(user)
	if err != nil {
		return nil, err
	}
	for i := range plays {
		plays[i].ArtistRefs = refs[plays[i].TrackID]
	}
	return plays, nil
}

// trackArtists maps every track the user has played to its ordered artists.
func (s *Store) trackArtists(user string) (map[string][]analysis.ArtistRef, error) {
	query := `
	SELECT ta.track_id, a.id, a.name
	FROM TrackArtist ta
	INNER JOIN Artist a ON a.id = ta.artist_id
	WHERE ta.track_id IN (SELECT DISTINCT track_id FROM Play WHERE user = ?)
	ORDER BY ta.track_id, ta.position
	`
	rows, err := s.db.Query(query, user)
	if err != nil {
		return nil, fmt.Errorf("querying track artists: %w", err)
	}
	defer rows.Close()

	refs := make(map[string][]analysis.ArtistRef)
	for rows.Next() {
		var trackID string
		var ref analysis.ArtistRef
		if err := rows.Scan(&trackID, &ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		refs[trackID] = append(refs[trackID], ref)
	}
	return refs, rows.Err()
}

// GetArtists returns profiles for ids, in the same order. Unknown ids are
// skipped.
func (s *Store) GetArtists(ids []string) ([]analysis.ArtistProfile, error) {
	artists := make([]analysis.ArtistProfile, 0, len(ids))
	for _, id := range ids {
		var a analysis.ArtistProfile
		row := s.db.QueryRow("SELECT id, name, popularity, followers FROM Artist WHERE id = ?", id)
		err := row.Scan(&a.ID, &a.Name, &a.Popularity, &a.FollowerCount)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("getting artist %q: %w", id, err)
		}
		genres, err := s.artistGenres(id)
		if err != nil {
			return nil, err
		}
		a.Genres = genres
		artists = append(artists, a)
	}
	return artists, nil
}

func (s *Store) artistGenres(id string) ([]string, error) {
	rows, err := s.db.Query("SELECT genre FROM ArtistGenre WHERE artist_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("querying genres for %q: %w", id, err)
	}
	defer rows.Close()

	var genres []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// History loads the plays in [start, end) together with the profiles of the
// topArtists most played primary artists (all of them when topArtists <= 0).
func (s *Store) History(user string, start, end time.Time, topArtists int) (analysis.History, error) {
	plays, err := s.GetPlays(user, start, end)
	if err != nil {
		return analysis.History{}, err
	}
	top, err := s.GetTopArtists(user, start, end, topArtists)
	if err != nil {
		return analysis.History{}, err
	}
	ids := make([]string, 0, len(top))
	for _, a := range top {
		ids = append(ids, a.ID)
	}
	artists, err := s.GetArtists(ids)
	if err != nil {
		return analysis.History{}, err
	}
	return analysis.History{Plays: plays, Artists: artists}, nil
}
