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

	"github.com/ademuri/listening-insights/internal/genreproxy"
	"github.com/ademuri/listening-insights/internal/stats"
)

// ClassifyMood applies the mood rules in order; the first match wins.
func ClassifyMood(valence, energy float64) string {
	switch {
	case valence > 0.6 && energy > 0.6:
		return MoodHappy
	case energy > 0.7:
		return MoodEnergetic
	case energy < 0.4 && valence > 0.4:
		return MoodChill
	default:
		return MoodMelancholy
	}
}

// trackFeatures returns measured features when present, otherwise the genre
// proxy of the track's primary artist. measured reports which one was used.
func trackFeatures(p PlayEvent, idx ArtistIndex) (valence, energy, dance float64, measured bool) {
	if p.Features != nil {
		f := p.Features
		return stats.Clamp(f.Valence, 0, 1), stats.Clamp(f.Energy, 0, 1), stats.Clamp(f.Danceability, 0, 1), true
	}
	m := genreproxy.LookupFirst(idx.PrimaryGenres(p))
	return genreproxy.TrackValence(m.Proxy, p.Popularity, p.Explicit), genreproxy.TrackEnergy(m.Proxy), 0, false
}

// MoodRing classifies each unique track into one of four moods.
func MoodRing(h History) MoodRingPayload {
	idx := NewArtistIndex(h.Artists)
	groups := groupPlays(h.Plays)

	counts := make(map[string]int, len(Moods))
	var valences, energies, dances []float64
	for _, g := range groups {
		v, e, d, measured := trackFeatures(g.first, idx)
		counts[ClassifyMood(v, e)]++
		valences = append(valences, v)
		energies = append(energies, e)
		if measured {
			dances = append(dances, d)
		}
	}

	total := len(groups)
	raw := make([]int, len(Moods))
	for i, m := range Moods {
		raw[i] = counts[m]
	}
	pcts := percentages(raw)

	shares := make([]MoodShare, len(Moods))
	dominant := UnknownDominantMood
	best := 0
	for i, m := range Moods {
		shares[i] = MoodShare{Mood: m, Count: raw[i], Percent: pcts[i]}
		if raw[i] > best {
			best = raw[i]
			dominant = m
		}
	}

	payload := MoodRingPayload{
		Moods:           shares,
		Dominant:        dominant,
		TrackCount:      total,
		AvgValence:      stats.Round(stats.Mean(valences), 3),
		AvgEnergy:       stats.Round(stats.Mean(energies), 3),
		AvgDanceability: stats.Round(stats.Mean(dances), 3),
		MeasuredCount:   len(dances),
	}
	if total == 0 {
		payload.Description = NoTracksAvailable
		return payload
	}
	payload.Description = fmt.Sprintf("Mostly %s: %d%% of %d tracks", dominant, pcts[indexOf(Moods, dominant)], total)
	return payload
}

// percentages converts counts into integer percentages that sum to exactly
// 100 (largest remainder). All-zero counts give all-zero percentages.
func percentages(counts []int) []int {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make([]int, len(counts))
	if total == 0 {
		return out
	}

	type rem struct {
		i    int
		frac float64
	}
	rems := make([]rem, len(counts))
	assigned := 0
	for i, c := range counts {
		exact := float64(c) * 100 / float64(total)
		out[i] = int(exact)
		assigned += out[i]
		rems[i] = rem{i: i, frac: exact - float64(out[i])}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; assigned < 100 && k < len(rems); k++ {
		out[rems[k].i]++
		assigned++
	}
	return out
}

func indexOf(items []string, want string) int {
	for i, it := range items {
		if it == want {
			return i
		}
	}
	return 0
}
