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
	"strings"
)

// Variant is the tone preset for composite copy.
type Variant string

const (
	VariantWitty  Variant = "witty"
	VariantPoetic Variant = "poetic"
)

// ParseVariant accepts "witty" or "poetic", case-insensitively. The empty
// string selects witty.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(VariantWitty):
		return VariantWitty, nil
	case string(VariantPoetic):
		return VariantPoetic, nil
	}
	return "", fmt.Errorf("unknown variant %q: must be witty or poetic", s)
}

// Insights bundles the output of every selector for one history.
type Insights struct {
	MusicalAge    MusicalAgePayload    `json:"musicalAge" yaml:"musical_age"`
	MoodRing      MoodRingPayload      `json:"moodRing" yaml:"mood_ring"`
	GenrePassport GenrePassportPayload `json:"genrePassport" yaml:"genre_passport"`
	NightOwl      NightOwlPayload      `json:"nightOwl" yaml:"night_owl"`
	Radar         RadarPayload         `json:"radar" yaml:"radar"`
	Psycho        PsychoPayload        `json:"psycho" yaml:"psycho"`
}

// ComputeAll runs every selector over h.
func ComputeAll(h History, cfg PsychoConfig) Insights {
	return Insights{
		MusicalAge:    MusicalAge(h),
		MoodRing:      MoodRing(h),
		GenrePassport: GenrePassport(h),
		NightOwl:      NightOwl(h),
		Radar:         Radar(h),
		Psycho:        PsychoWithConfig(h, cfg),
	}
}

// Counts are the headline totals of a history.
type Counts struct {
	Tracks  int `json:"tracks" yaml:"tracks"`
	Artists int `json:"artists" yaml:"artists"`
	Genres  int `json:"genres" yaml:"genres"`
	Weeks   int `json:"weeks" yaml:"weeks"`
}

// HypePayload is the composite input for hype copy. Its JSON encoding is
// part of the cache key, so every field has a stable, non-empty value.
type HypePayload struct {
	MusicalAge    MusicalAgePayload    `json:"musicalAge" yaml:"musical_age"`
	MoodRing      MoodRingPayload      `json:"moodRing" yaml:"mood_ring"`
	GenrePassport GenrePassportPayload `json:"genrePassport" yaml:"genre_passport"`
	NightOwl      NightOwlPayload      `json:"nightOwl" yaml:"night_owl"`
	Radar         RadarPayload         `json:"radar" yaml:"radar"`
	Psycho        PsychoPayload        `json:"psycho" yaml:"psycho"`
	Counts        Counts               `json:"counts" yaml:"counts"`
	TopGenre      string               `json:"topGenre" yaml:"top_genre"`
	SampleTrack   TrackRef             `json:"sampleTrack" yaml:"sample_track"`
	Variant       Variant              `json:"variant" yaml:"variant"`
}

// Aggregate merges precomputed insights with counts derived from h.
func Aggregate(h History, in Insights, variant Variant) HypePayload {
	if variant == "" {
		variant = VariantWitty
	}
	top := in.Radar.TopGenre
	if top == "" {
		top = DefaultTopGenre
	}
	sample := in.Radar.SampleTrack
	if sample.Name == "" {
		sample.Name = UnknownTrack
	}
	if sample.Artist == "" {
		sample.Artist = UnknownArtist
	}

	return HypePayload{
		MusicalAge:    in.MusicalAge,
		MoodRing:      in.MoodRing,
		GenrePassport: in.GenrePassport,
		NightOwl:      in.NightOwl,
		Radar:         in.Radar,
		Psycho:        in.Psycho,
		Counts:        CountHistory(h),
		TopGenre:      top,
		SampleTrack:   sample,
		Variant:       variant,
	}
}

// BuildHype computes every selector and aggregates them in one step.
func BuildHype(h History, cfg PsychoConfig, variant Variant) HypePayload {
	return Aggregate(h, ComputeAll(h, cfg), variant)
}

// CountHistory counts unique tracks, artists and genres, and the number of
// calendar weeks spanned by timestamped plays (at least one when any play
// has a timestamp).
func CountHistory(h History) Counts {
	tracks := make(map[string]struct{})
	artists := make(map[string]struct{})
	var first, last int64
	seen := false
	for _, p := range h.Plays {
		tracks[p.TrackKey()] = struct{}{}
		if k := p.ArtistKey(); k != "" {
			artists[k] = struct{}{}
		}
		if p.PlayedAt.IsZero() {
			continue
		}
		ts := p.PlayedAt.Unix()
		if !seen || ts < first {
			first = ts
		}
		if !seen || ts > last {
			last = ts
		}
		seen = true
	}

	nArtists := len(artists)
	if len(h.Artists) > nArtists {
		nArtists = len(h.Artists)
	}

	weeks := 0
	if seen {
		const week = 7 * 24 * 60 * 60
		weeks = int(math.Ceil(float64(last-first) / week))
		if weeks < 1 {
			weeks = 1
		}
	}

	return Counts{
		Tracks:  len(tracks),
		Artists: nArtists,
		Genres:  len(rankGenres(genreTokens(h.Artists))),
		Weeks:   weeks,
	}
}
