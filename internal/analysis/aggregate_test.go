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
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"", VariantWitty, false},
		{"witty", VariantWitty, false},
		{" Poetic ", VariantPoetic, false},
		{"snarky", "", true},
	}
	for _, test := range tests {
		got, err := ParseVariant(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseVariant(%q) error = %v, wantErr %v", test.in, err, test.wantErr)
			continue
		}
		if got != test.want {
			t.Errorf("ParseVariant(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestAggregateFallbacks(t *testing.T) {
	got := Aggregate(History{}, Insights{}, "")
	if got.TopGenre != DefaultTopGenre {
		t.Errorf("TopGenre = %q, want %q", got.TopGenre, DefaultTopGenre)
	}
	if got.SampleTrack.Name != UnknownTrack || got.SampleTrack.Artist != UnknownArtist {
		t.Errorf("SampleTrack = %+v, want unknown placeholders", got.SampleTrack)
	}
	if got.Variant != VariantWitty {
		t.Errorf("Variant = %q, want witty", got.Variant)
	}
}

func TestBuildHype(t *testing.T) {
	plays, artists := genrePlays("metal", "jazz", "metal")
	h := History{Now: testNow, Plays: plays, Artists: artists}

	got := BuildHype(h, DefaultPsychoConfig(), VariantPoetic)
	if got.Variant != VariantPoetic {
		t.Errorf("Variant = %q, want poetic", got.Variant)
	}
	if got.TopGenre != "metal" {
		t.Errorf("TopGenre = %q, want metal", got.TopGenre)
	}
	want := Counts{Tracks: 3, Artists: 3, Genres: 2, Weeks: 1}
	if got.Counts != want {
		t.Errorf("Counts = %+v, want %+v", got.Counts, want)
	}
}

func TestBuildHypeIsDeterministic(t *testing.T) {
	plays, artists := genrePlays("metal", "jazz", "latin", "folk")
	h := History{Now: testNow, Plays: plays, Artists: artists}

	a, err := json.Marshal(BuildHype(h, DefaultPsychoConfig(), VariantWitty))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(BuildHype(h, DefaultPsychoConfig(), VariantWitty))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("payload encodings differ:\n%s\n%s", a, b)
	}
}

func TestCountHistoryWeeks(t *testing.T) {
	tests := []struct {
		name  string
		times []time.Time
		want  int
	}{
		{"no timestamps", []time.Time{{}}, 0},
		{"single play", []time.Time{testNow}, 1},
		{"exactly one week", []time.Time{testNow, testNow.AddDate(0, 0, -7)}, 1},
		{"fifteen days", []time.Time{testNow, testNow.AddDate(0, 0, -15), {}}, 3},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var plays []PlayEvent
			for _, ts := range test.times {
				plays = append(plays, newPlay("a", "x", 2000, ts))
			}
			if got := CountHistory(History{Plays: plays}).Weeks; got != test.want {
				t.Errorf("Weeks = %d, want %d", got, test.want)
			}
		})
	}
}
