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
	"sort"
	"time"

	"github.com/ademuri/listening-insights/internal/stats"
)

const (
	minTrackDurationMs = 30_000
	maxAgeTracks       = 200
)

// Era names by median release year.
const (
	EraVinyl     = "Vinyl"
	EraAnalog    = "Analog"
	EraDigital   = "Digital"
	EraStreaming = "Streaming"
)

// EraForYear classifies a median release year.
func EraForYear(year int) string {
	switch {
	case year < 1970:
		return EraVinyl
	case year < 1990:
		return EraAnalog
	case year < 2010:
		return EraDigital
	default:
		return EraStreaming
	}
}

type trackGroup struct {
	first      PlayEvent
	playCount  int
	lastPlayed time.Time
	weight     float64
}

// groupPlays collapses repeated plays of a track, preserving first-seen order.
func groupPlays(plays []PlayEvent) []*trackGroup {
	byKey := make(map[string]*trackGroup)
	var groups []*trackGroup
	for _, p := range plays {
		key := p.TrackKey()
		g, ok := byKey[key]
		if !ok {
			g = &trackGroup{first: p}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.playCount++
		if p.PlayedAt.After(g.lastPlayed) {
			g.lastPlayed = p.PlayedAt
		}
	}
	return groups
}

// MusicalAge estimates how old the user's recent listening "sounds".
//
// Plays shorter than 30s are dropped (unknown durations are kept), as are
// plays without a release year. The most recent 200 remaining plays are
// grouped by track and weighted by playCount times a 60-day recency weight.
func MusicalAge(h History) MusicalAgePayload {
	now := h.now()
	currentYear := h.currentYear()

	var eligible []PlayEvent
	for _, p := range h.Plays {
		if p.DurationMs > 0 && p.DurationMs < minTrackDurationMs {
			continue
		}
		if p.ReleaseYear <= 0 {
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return emptyMusicalAge()
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].PlayedAt.After(eligible[j].PlayedAt)
	})
	if len(eligible) > maxAgeTracks {
		eligible = eligible[:maxAgeTracks]
	}

	groups := groupPlays(eligible)
	samples := make([]stats.WeightedSample, 0, len(groups))
	for _, g := range groups {
		g.weight = float64(g.playCount) * stats.RecencyWeight(g.lastPlayed, now, stats.MusicalAgeHalfLifeDays)
		samples = append(samples, stats.WeightedSample{Year: g.first.ReleaseYear, Weight: g.weight})
	}

	median := stats.WeightedMedian(samples, currentYear)
	mean, ok := stats.WeightedMean(samples)
	if !ok {
		mean = float64(median)
	}
	age := currentYear - median
	if age < 0 {
		age = 0
	}

	era := EraForYear(median)
	oldest, newest := oldestNewest(groups)
	return MusicalAgePayload{
		Age:         age,
		MedianYear:  median,
		MeanYear:    stats.Round(mean, 1),
		StdDevYears: stats.Round(stats.WeightedStdDev(samples, mean), 1),
		TrackCount:  len(groups),
		PlayCount:   len(eligible),
		Era:         era,
		Decades:     decadeShares(samples),
		Oldest:      oldest,
		Newest:      newest,
		Description: fmt.Sprintf("Your recent listening centers on %d, a %s era sound %d years old", median, era, age),
	}
}

func emptyMusicalAge() MusicalAgePayload {
	return MusicalAgePayload{
		Era:         UnknownEra,
		Decades:     []DecadeShare{},
		Oldest:      unknownTrack(),
		Newest:      unknownTrack(),
		Description: NoTracksAvailable,
	}
}

func oldestNewest(groups []*trackGroup) (TrackRef, TrackRef) {
	if len(groups) == 0 {
		return unknownTrack(), unknownTrack()
	}
	oldest, newest := groups[0], groups[0]
	for _, g := range groups[1:] {
		if g.first.ReleaseYear < oldest.first.ReleaseYear {
			oldest = g
		}
		if g.first.ReleaseYear > newest.first.ReleaseYear {
			newest = g
		}
	}
	return trackRefOf(oldest.first), trackRefOf(newest.first)
}

func decadeShares(samples []stats.WeightedSample) []DecadeShare {
	total := stats.TotalWeight(samples)
	byDecade := make(map[int]float64)
	for _, s := range samples {
		byDecade[s.Year/10*10] += s.Weight
	}
	decades := make([]int, 0, len(byDecade))
	for d := range byDecade {
		decades = append(decades, d)
	}
	sort.Ints(decades)

	shares := make([]DecadeShare, 0, len(decades))
	for _, d := range decades {
		pct := 0.0
		if total > 0 {
			pct = stats.Round(100*byDecade[d]/total, 1)
		}
		shares = append(shares, DecadeShare{Decade: d, Percent: pct})
	}
	return shares
}
