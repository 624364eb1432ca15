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

	"github.com/ademuri/listening-insights/internal/analysis"
)

// GetArtistActivity aggregates the user's timestamped plays per primary
// artist. Artists with fewer than minPlays plays are omitted.
func (s *Store) GetArtistActivity(user string, minPlays int) ([]analysis.ArtistActivity, error) {
	query := `
		SELECT
			a.id,
			a.name,
			COUNT(*) AS plays,
			MIN(p.played_at) AS first_play,
			MAX(p.played_at) AS last_play
		FROM Play p
		JOIN TrackArtist ta ON ta.track_id = p.track_id AND ta.position = 0
		JOIN Artist a ON a.id = ta.artist_id
		WHERE p.user = ? AND p.played_at IS NOT NULL
		GROUP BY a.id
		HAVING plays >= ?
		ORDER BY a.name
	`
	rows, err := s.db.Query(query, user, minPlays)
	if err != nil {
		return nil, fmt.Errorf("querying artist activity: %w", err)
	}
	defer rows.Close()

	var stats []analysis.ArtistActivity
	for rows.Next() {
		var a analysis.ArtistActivity
		var first, last int64
		if err := rows.Scan(&a.ID, &a.Artist, &a.Plays, &first, &last); err != nil {
			return nil, err
		}
		a.FirstPlay = time.Unix(first, 0)
		a.LastPlay = time.Unix(last, 0)
		stats = append(stats, a)
	}
	return stats, rows.Err()
}
