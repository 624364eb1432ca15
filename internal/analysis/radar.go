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
	"strings"

	"github.com/ademuri/listening-insights/internal/genreproxy"
	"github.com/ademuri/listening-insights/internal/stats"
)

const nostalgiaFullAgeYears = 40.0

// weightedMean falls back to the plain mean when every weight underflowed.
func weightedMean(values, weights []float64) float64 {
	var sum, total float64
	for i, v := range values {
		sum += v * weights[i]
		total += weights[i]
	}
	if total <= 0 {
		return stats.Mean(values)
	}
	return sum / total
}

// Radar scores five axes from 0 to 100. Empty play input produces an
// all-zero payload with IsDefault set.
func Radar(h History) RadarPayload {
	if len(h.Plays) == 0 {
		return RadarPayload{
			TopGenre:    DefaultTopGenre,
			SampleTrack: unknownTrack(),
			IsDefault:   true,
		}
	}

	now := h.now()
	loc := h.location()
	currentYear := h.currentYear()
	idx := NewArtistIndex(h.Artists)

	n := len(h.Plays)
	valences := make([]float64, 0, n)
	energies := make([]float64, 0, n)
	tempos := make([]float64, 0, n)
	weights := make([]float64, 0, n)
	var ages []float64
	var st RadarStats
	genreWeight := make(map[string]int)

	for _, p := range h.Plays {
		genres := idx.PrimaryGenres(p)
		m := genreproxy.LookupFirst(genres)
		if m.Mapped {
			st.MappedPlays++
		}
		if len(genres) > 0 {
			genreWeight[strings.ToLower(strings.TrimSpace(genres[0]))]++
		}

		valences = append(valences, genreproxy.TrackValence(m.Proxy, p.Popularity, p.Explicit))
		energies = append(energies, genreproxy.TrackEnergy(m.Proxy))
		tempos = append(tempos, genreproxy.NormalizeTempo(m.Proxy.Tempo))
		weights = append(weights, stats.RecencyWeight(p.PlayedAt, now, stats.RadarHalfLifeDays))

		if p.ReleaseYear > 0 {
			age := currentYear - p.ReleaseYear
			if age < 0 {
				age = 0
			}
			ages = append(ages, float64(age))
		}
		if !p.PlayedAt.IsZero() {
			st.TimestampedPlays++
			hour := p.PlayedAt.In(loc).Hour()
			if hour >= 22 || hour < 4 {
				st.NightPlays++
			}
		}
	}

	st.MeanValence = stats.Round(weightedMean(valences, weights), 4)
	st.MeanEnergy = stats.Round(weightedMean(energies, weights), 4)
	st.MeanTempoNorm = stats.Round(weightedMean(tempos, weights), 4)

	tokens := genreTokens(h.Artists)
	st.GenreTokens = len(tokens)
	st.GenreEntropy = stats.Round(stats.NormalizedEntropy(tokens), 4)

	st.DatedTracks = len(ages)
	st.MedianTrackAge = stats.Median(ages)

	var axes RadarAxes
	axes.Positivity = score100(st.MeanValence)
	axes.Energy = score100((st.MeanEnergy + st.MeanTempoNorm) / 2)
	axes.Exploration = score100(st.GenreEntropy)
	axes.Nostalgia = stats.Round(stats.Clamp(100*st.MedianTrackAge/nostalgiaFullAgeYears, 0, 100), 1)
	if st.TimestampedPlays > 0 {
		axes.NightOwl = stats.Round(100*float64(st.NightPlays)/float64(st.TimestampedPlays), 1)
	}

	return RadarPayload{
		Axes:        axes,
		Stats:       st,
		TopGenre:    topGenre(genreWeight, tokens),
		SampleTrack: sampleTrack(h.Plays),
		PlayCount:   n,
	}
}

func score100(unit float64) float64 {
	return stats.Round(stats.Clamp(unit*100, 0, 100), 1)
}

// topGenre picks the primary genre heard most often, falling back to the
// most common genre across artists, then to the default.
func topGenre(playGenres map[string]int, artistTokens []string) string {
	best, bestCount := "", 0
	keys := make([]string, 0, len(playGenres))
	for g := range playGenres {
		keys = append(keys, g)
	}
	sort.Strings(keys)
	for _, g := range keys {
		if g != "" && playGenres[g] > bestCount {
			best, bestCount = g, playGenres[g]
		}
	}
	if best != "" {
		return best
	}
	if ranked := rankGenres(artistTokens); len(ranked) > 0 {
		return ranked[0].Genre
	}
	return DefaultTopGenre
}

// sampleTrack is the most played track, ties going to the most recently played.
func sampleTrack(plays []PlayEvent) TrackRef {
	groups := groupPlays(plays)
	if len(groups) == 0 {
		return unknownTrack()
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if g.playCount > best.playCount ||
			(g.playCount == best.playCount && g.lastPlayed.After(best.lastPlayed)) {
			best = g
		}
	}
	ref := trackRefOf(best.first)
	ref.Year = 0
	return ref
}
