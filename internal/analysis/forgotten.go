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
	"sort"
	"time"
)

// ArtistActivity summarizes every timestamped play of one primary artist.
type ArtistActivity struct {
	ID        string
	Artist    string
	Plays     int64
	FirstPlay time.Time
	LastPlay  time.Time
}

// ForgottenConfig bounds which artists count as having fallen out of
// rotation. Zero times leave that side of a window open.
type ForgottenConfig struct {
	LastListenAfter   time.Time
	LastListenBefore  time.Time
	FirstListenAfter  time.Time
	FirstListenBefore time.Time
	MinPlays          int
	ResultsPerBand    int
	SortBy            string // "dormancy" or "plays"
}

type ForgottenArtist struct {
	ArtistActivity
	DaysSinceLast int
	Band          string
}

const (
	BandObsession = "Obsession"
	BandStrong    = "Strong"
	BandModerate  = "Moderate"

	ThresholdObsession = 120
	ThresholdStrong    = 50
	ThresholdModerate  = 15

	SortDormancy = "dormancy"
	SortPlays    = "plays"
)

// Bands lists interest bands strongest first.
var Bands = []string{BandObsession, BandStrong, BandModerate}

// Threshold returns the minimum plays for band.
func Threshold(band string) int {
	switch band {
	case BandObsession:
		return ThresholdObsession
	case BandStrong:
		return ThresholdStrong
	case BandModerate:
		return ThresholdModerate
	}
	return 0
}

// BandFor returns the interest band for a play count, or "" below the
// moderate threshold.
func BandFor(plays int64) string {
	for _, b := range Bands {
		if plays >= int64(Threshold(b)) {
			return b
		}
	}
	return ""
}

func within(t, after, before time.Time) bool {
	if !after.IsZero() && t.Before(after) {
		return false
	}
	if !before.IsZero() && t.After(before) {
		return false
	}
	return true
}

// ForgottenArtists groups dormant artists into interest bands. Each band is
// sorted per cfg.SortBy and capped at cfg.ResultsPerBand when that is
// positive.
func ForgottenArtists(activity []ArtistActivity, cfg ForgottenConfig, now time.Time) map[string][]ForgottenArtist {
	results := make(map[string][]ForgottenArtist)
	for _, a := range activity {
		if a.Plays < int64(cfg.MinPlays) {
			continue
		}
		if !within(a.LastPlay, cfg.LastListenAfter, cfg.LastListenBefore) ||
			!within(a.FirstPlay, cfg.FirstListenAfter, cfg.FirstListenBefore) {
			continue
		}
		band := BandFor(a.Plays)
		if band == "" {
			continue
		}
		results[band] = append(results[band], ForgottenArtist{
			ArtistActivity: a,
			DaysSinceLast:  int(now.Sub(a.LastPlay).Hours() / 24),
			Band:           band,
		})
	}

	for band, artists := range results {
		sortForgotten(artists, cfg.SortBy)
		if cfg.ResultsPerBand > 0 && len(artists) > cfg.ResultsPerBand {
			results[band] = artists[:cfg.ResultsPerBand]
		}
	}
	return results
}

func sortForgotten(artists []ForgottenArtist, sortBy string) {
	sort.SliceStable(artists, func(i, j int) bool {
		a, b := artists[i], artists[j]
		if sortBy == SortPlays && a.Plays != b.Plays {
			return a.Plays > b.Plays
		}
		if a.DaysSinceLast != b.DaysSinceLast {
			return a.DaysSinceLast > b.DaysSinceLast
		}
		return a.Artist < b.Artist
	})
}
