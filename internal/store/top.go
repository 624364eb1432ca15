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
	"fmt"
	"time"
)

type ArtistPlayCount struct {
	ID     string
	Artist string
	Count  int64
}

type TrackPlayCount struct {
	ID     string
	Track  string
	Artist string
	Count  int64
}

// GetTopArtists ranks primary artists by plays in [start, end).
// A limit <= 0 returns every artist.
func (s *Store) GetTopArtists(user string, start, end time.Time, limit int) ([]ArtistPlayCount, error) {
	if limit <= 0 {
		limit = -1
	}
	where, args := playRange("Play.played_at", start, end)
	query := `
	SELECT Artist.id, Artist.name, COUNT(Play.id)
	FROM Play
	INNER JOIN TrackArtist ON TrackArtist.track_id = Play.track_id AND TrackArtist.position = 0
	INNER JOIN Artist ON Artist.id = TrackArtist.artist_id
	WHERE user = ? AND ` + where + `
	GROUP BY Artist.id
	ORDER BY COUNT(*) DESC, Artist.name
	LIMIT ?
	`
	args = append(append([]any{user}, args...), limit)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying top artists: %w", err)
	}
	defer rows.Close()

	var results []ArtistPlayCount
	for rows.Next() {
		var apc ArtistPlayCount
		if err := rows.Scan(&apc.ID, &apc.Artist, &apc.Count); err != nil {
			return nil, err
		}
		results = append(results, apc)
	}
	return results, rows.Err()
}

// GetTopTracks ranks tracks by plays in [start, end).
func (s *Store) GetTopTracks(user string, start, end time.Time, limit int) ([]TrackPlayCount, error) {
	if limit <= 0 {
		limit = -1
	}
	where, args := playRange("Play.played_at", start, end)
	query := `
	SELECT Track.id, Track.name, COALESCE(Artist.name, ''), COUNT(Play.id)
	FROM Play
	INNER JOIN Track ON Track.id = Play.track_id
	LEFT JOIN TrackArtist ON TrackArtist.track_id = Track.id AND TrackArtist.position = 0
	LEFT JOIN Artist ON Artist.id = TrackArtist.artist_id
	WHERE user = ? AND ` + where + `
	GROUP BY Track.id
	ORDER BY COUNT(*) DESC, Track.name
	LIMIT ?
	`
	args = append(append([]any{user}, args...), limit)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying top tracks: %w", err)
	}
	defer rows.Close()

	var results []TrackPlayCount
	for rows.Next() {
		var tpc TrackPlayCount
		if err := rows.Scan(&tpc.ID, &tpc.Track, &tpc.Artist, &tpc.Count); err != nil {
			return nil, err
		}
		results = append(results, tpc)
	}
	return results, rows.Err()
}
