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
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/store"
)

func openSeeded(t *testing.T, plays []analysis.PlayEvent) *store.Store {
	t.Helper()
	dbPath := testDbPath(t)
	seedPlays(t, dbPath, "u", plays)
	db, err := store.New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTopArtistsAnalysis(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	var plays []analysis.PlayEvent
	plays = append(plays, repeatPlays("One", "Alpha", 3, at)...)
	plays = append(plays, repeatPlays("Two", "Beta", 5, at)...)
	plays = append(plays, repeatPlays("Three", "Gamma", 1, at)...)
	db := openSeeded(t, plays)

	a, err := topArtistsAnalysis(db, "u", time.Time{}, time.Time{}, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"Artist", "Plays"}, {"Beta", "5"}, {"Alpha", "3"}}
	if !reflect.DeepEqual(a.results, want) {
		t.Errorf("results = %v, want %v", a.results, want)
	}
	if a.summary != "Found 2 artists and 8 plays from all time" {
		t.Errorf("summary = %q", a.summary)
	}

	a, err = topTracksAnalysis(db, "u", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.results) != 4 || a.results[1][0] != "Two" || a.results[1][1] != "Beta" {
		t.Errorf("track results = %v", a.results)
	}
	if !strings.Contains(a.summary, "2024-03-01 to 2024-04-01") {
		t.Errorf("summary = %q", a.summary)
	}
}

func TestNewArtistsAnalysis(t *testing.T) {
	before := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	during := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	var plays []analysis.PlayEvent
	plays = append(plays, repeatPlays("Old", "Familiar", 10, before)...)
	plays = append(plays, repeatPlays("Old again", "Familiar", 10, during)...)
	plays = append(plays, repeatPlays("Fresh", "Discovery", 8, during)...)
	plays = append(plays, repeatPlays("Once", "Passing", 2, during)...)
	plays = append(plays, repeatPlays("Early", "Returning", 2, before)...)
	plays = append(plays, repeatPlays("Later", "Returning", 6, during)...)
	db := openSeeded(t, plays)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := newArtistsAnalysis(db, "u", start, end, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"Artist", "Plays"}, {"Discovery", "8"}, {"Returning", "6"}}
	if !reflect.DeepEqual(a.results, want) {
		t.Errorf("results = %v, want %v", a.results, want)
	}

	a, err = newArtistsAnalysis(db, "u", start, end, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.results) != 2 || !strings.HasPrefix(a.summary, "Found 2 new artists with 14 plays") {
		t.Errorf("limited results = %v, summary %q", a.results, a.summary)
	}
}

func TestPrintTopInvalidDateString(t *testing.T) {
	err := printTop(testDbPath(t), "u", 10, []string{"derp"}, topArtistsAnalysis)
	if err == nil {
		t.Fatalf("printTop should have errored with an invalid date string")
	}
}
