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
	"math"
	"math/rand"
	"testing"
	"time"
)

// volatilityHistory builds n distinct tracks alternating between a low and a
// high valence genre.
func volatilityHistory(n int) History {
	var plays []PlayEvent
	for i := 0; i < n; i++ {
		artist := "metalhead"
		if i%2 == 1 {
			artist = "dancer"
		}
		plays = append(plays, newPlay(fmt.Sprintf("t%d", i), artist, 2000, testNow))
	}
	return History{
		Now:     testNow,
		Plays:   plays,
		Artists: []ArtistProfile{newArtist("metalhead", "metal"), newArtist("dancer", "latin")},
	}
}

func TestPsychoEmpty(t *testing.T) {
	got := Psycho(History{Now: testNow})
	for name, m := range map[string]Metric{
		"diversity":   got.MusicalDiversity,
		"exploration": got.ExplorationRate,
		"temporal":    got.TemporalConsistency,
	} {
		if m.Score != 0 || m.Confidence != ConfidenceInsufficient {
			t.Errorf("%s = %+v, want score 0 and insufficient", name, m)
		}
	}
	if got.MainstreamAffinity.Confidence != ConfidenceHigh {
		t.Errorf("mainstream confidence = %q, want high", got.MainstreamAffinity.Confidence)
	}
	v := got.EmotionalVolatility
	if v.Confidence != ConfidenceInsufficient || v.MappedTrackCount != 0 || v.MinRequired != DefaultVolatilityMinMapped {
		t.Errorf("volatility = %+v, want insufficient with 0/%d", v, DefaultVolatilityMinMapped)
	}
}

func TestEmotionalVolatilityConfidence(t *testing.T) {
	tests := []struct {
		tracks int
		want   Confidence
	}{
		{9, ConfidenceInsufficient},
		{10, ConfidenceLow},
		{24, ConfidenceLow},
		{25, ConfidenceMedium},
		{40, ConfidenceHigh},
		{60, ConfidenceHigh},
	}
	for _, test := range tests {
		got := Psycho(volatilityHistory(test.tracks)).EmotionalVolatility
		if got.Confidence != test.want {
			t.Errorf("%d tracks: confidence = %q, want %q", test.tracks, got.Confidence, test.want)
		}
		if got.MappedTrackCount != test.tracks {
			t.Errorf("%d tracks: MappedTrackCount = %d", test.tracks, got.MappedTrackCount)
		}
		if test.want == ConfidenceInsufficient && got.Score != 0 {
			t.Errorf("%d tracks: score = %v, want 0 below the floor", test.tracks, got.Score)
		}
	}
}

func TestEmotionalVolatilityScore(t *testing.T) {
	// Alternating 0.30 and 0.75 valence: std-dev 0.225, over 0.4.
	got := Psycho(volatilityHistory(40)).EmotionalVolatility
	if math.Abs(got.Score-0.5625) > 1e-4 {
		t.Errorf("Score = %v, want 0.5625", got.Score)
	}
}

func TestEmotionalVolatilityIgnoresUnmapped(t *testing.T) {
	h := volatilityHistory(12)
	h.Artists = []ArtistProfile{newArtist("metalhead", "vaporwave"), newArtist("dancer", "latin")}
	got := Psycho(h).EmotionalVolatility
	if got.MappedTrackCount != 6 {
		t.Errorf("MappedTrackCount = %d, want 6", got.MappedTrackCount)
	}
	if got.Confidence != ConfidenceInsufficient {
		t.Errorf("Confidence = %q, want insufficient", got.Confidence)
	}
}

func TestPsychoConfigOverride(t *testing.T) {
	cfg := PsychoConfig{VolatilityMinMapped: 4, VolatilityMedium: 5, VolatilityHigh: 6, MaxVolatility: 0.9}
	got := PsychoWithConfig(volatilityHistory(5), cfg).EmotionalVolatility
	if got.Confidence != ConfidenceMedium {
		t.Errorf("Confidence = %q, want medium", got.Confidence)
	}
	if got.MinRequired != 4 {
		t.Errorf("MinRequired = %d, want 4", got.MinRequired)
	}
}

func TestExplorationRate(t *testing.T) {
	repeat := make([]PlayEvent, 10)
	for i := range repeat {
		repeat[i] = newPlay("same", "x", 2000, testNow)
	}
	got := Psycho(History{Now: testNow, Plays: repeat}).ExplorationRate
	if got.Score != 0.1 || got.Confidence != ConfidenceLow {
		t.Errorf("repeat: %+v, want 0.1 low", got)
	}

	varied := volatilityHistory(40)
	got = Psycho(varied).ExplorationRate
	// 2 artists of 40 plays, 40 tracks of 40 plays.
	if got.Score != 0.525 || got.Confidence != ConfidenceHigh {
		t.Errorf("varied: %+v, want 0.525 high", got)
	}
}

func TestTemporalConsistency(t *testing.T) {
	var spread, bunched []PlayEvent
	for hour := 0; hour < 24; hour++ {
		spread = append(spread, newPlay(fmt.Sprintf("s%d", hour), "x", 2000, at(hour)))
		bunched = append(bunched, newPlay(fmt.Sprintf("b%d", hour), "x", 2000, at(21)))
	}

	even := Psycho(History{Now: testNow, Plays: spread}).TemporalConsistency
	if even.Score != 1 {
		t.Errorf("spread score = %v, want 1", even.Score)
	}
	if even.Confidence != ConfidenceLow {
		t.Errorf("spread confidence = %q, want low for 24 plays", even.Confidence)
	}

	peaked := Psycho(History{Now: testNow, Plays: bunched}).TemporalConsistency
	// Variance of one bucket of 24 among 24 buckets is 23.
	if math.Abs(peaked.Score-1/1.23) > 1e-4 {
		t.Errorf("bunched score = %v, want %v", peaked.Score, 1/1.23)
	}
}

func TestMainstreamAffinity(t *testing.T) {
	p := newPlay("a", "star", 2000, testNow)
	p.Popularity = 100
	star := newArtist("star", "pop")
	star.FollowerCount = 99_999_999

	got := Psycho(History{Now: testNow, Plays: []PlayEvent{p}, Artists: []ArtistProfile{star}}).MainstreamAffinity
	if got.Score != 1 {
		t.Errorf("Score = %v, want 1", got.Score)
	}

	p.Popularity = 50
	got = Psycho(History{Now: testNow, Plays: []PlayEvent{p}}).MainstreamAffinity
	if got.Score != 0.25 || got.Confidence != ConfidenceHigh {
		t.Errorf("no artists: %+v, want 0.25 high", got)
	}
}

func TestMusicalDiversity(t *testing.T) {
	var artists []ArtistProfile
	for i := 0; i < 20; i++ {
		artists = append(artists, newArtist(fmt.Sprintf("a%d", i), []string{"rock", "jazz", "folk", "pop"}[i%4]))
	}
	got := Psycho(History{Now: testNow, Artists: artists}).MusicalDiversity
	if got.Score != 1 || got.Confidence != ConfidenceHigh {
		t.Errorf("even spread: %+v, want 1 high", got)
	}

	got = Psycho(History{Now: testNow, Artists: artists[:10]}).MusicalDiversity
	if got.Confidence != ConfidenceMedium {
		t.Errorf("10 tokens: confidence = %q, want medium", got.Confidence)
	}
}

func TestPsychoScoresInRange(t *testing.T) {
	genres := []string{"metal", "jazz", "latin", "ambient", "vaporwave", ""}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		var h History
		h.Now = testNow
		for j := r.Intn(60); j > 0; j-- {
			g := genres[r.Intn(len(genres))]
			p := newPlay(fmt.Sprintf("t%d", r.Intn(30)), g, 2000, testNow.Add(-time.Duration(r.Intn(500))*time.Hour))
			p.Popularity = r.Intn(101)
			h.Plays = append(h.Plays, p)
			a := newArtist(g, g)
			a.FollowerCount = r.Int63n(1_000_000_000)
			h.Artists = append(h.Artists, a)
		}
		got := Psycho(h)
		for _, m := range []Metric{got.MusicalDiversity, got.ExplorationRate, got.TemporalConsistency, got.MainstreamAffinity, got.EmotionalVolatility.Metric} {
			if math.IsNaN(m.Score) || m.Score < 0 || m.Score > 1 {
				t.Fatalf("iteration %d: score out of range: %+v", i, m)
			}
		}
	}
}
