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

package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/store"
)

func testDbPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "insights.db")
}

// resetConfig restores viper to the command defaults with generation turned
// off, so tests never reach a model server.
func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	viper.Set("ai.enabled", false)
	viper.Set("timezone", "UTC")
	t.Cleanup(viper.Reset)
}

func play(track, artist string, at time.Time) analysis.PlayEvent {
	return analysis.PlayEvent{
		TrackID:     "track:" + track,
		TrackName:   track,
		ArtistRefs:  []analysis.ArtistRef{{ID: "artist:" + artist, Name: artist}},
		ReleaseYear: 2001,
		PlayedAt:    at,
	}
}

// repeatPlays returns n plays of one track, a minute apart, ending at last.
func repeatPlays(track, artist string, n int, last time.Time) []analysis.PlayEvent {
	plays := make([]analysis.PlayEvent, 0, n)
	for i := 0; i < n; i++ {
		plays = append(plays, play(track, artist, last.Add(-time.Duration(i)*time.Minute)))
	}
	return plays
}

func seedPlays(t *testing.T, dbPath, user string, plays []analysis.PlayEvent) {
	t.Helper()
	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer db.Close()
	if err := db.CreateUser(user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := db.AddPlays(user, plays); err != nil {
		t.Fatalf("AddPlays: %v", err)
	}
}
