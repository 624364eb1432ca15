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

package analysis

import (
	"fmt"
	"time"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return time.Date(2024, time.June, 10, hour, 30, 0, 0, time.UTC)
}

func newPlay(id, artist string, year int, playedAt time.Time) PlayEvent {
	return PlayEvent{
		TrackID:     id,
		TrackName:   "Track " + id,
		ArtistRefs:  []ArtistRef{{ID: "artist:" + artist, Name: artist}},
		DurationMs:  200_000,
		ReleaseYear: year,
		PlayedAt:    playedAt,
	}
}

func newArtist(name string, genres ...string) ArtistProfile {
	return ArtistProfile{ID: "artist:" + name, Name: name, Genres: genres}
}

// genrePlays returns one distinct track per genre entry, each by an artist
// whose only genre is that entry.
func genrePlays(genres ...string) ([]PlayEvent, []ArtistProfile) {
	var plays []PlayEvent
	var artists []ArtistProfile
	for i, g := range genres {
		name := fmt.Sprintf("a%d", i)
		plays = append(plays, newPlay(fmt.Sprintf("t%d", i), name, 2000, testNow.Add(-time.Duration(i)*time.Hour)))
		artists = append(artists, newArtist(name, g))
	}
	return plays, artists
}
