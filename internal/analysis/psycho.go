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
	"math"

	"github.com/ademuri/listening-insights/internal/genreproxy"
	"github.com/ademuri/listening-insights/internal/stats"
)

// Default emotional-volatility thresholds. These are empirical and kept
// overridable through PsychoConfig.
const (
	DefaultVolatilityMinMapped = 10
	DefaultVolatilityMedium    = 25
	DefaultVolatilityHigh      = 40
	DefaultMaxVolatility       = 0.4
)

// log10 of the follower count treated as fully mainstream (100M).
const maxFollowerLog = 8.0

// PsychoConfig holds the sample-size breakpoints for the metrics.
type PsychoConfig struct {
	VolatilityMinMapped int
	VolatilityMedium    int
	VolatilityHigh      int
	MaxVolatility       float64
}

// DefaultPsychoConfig returns the standard thresholds.
func DefaultPsychoConfig() PsychoConfig {
	return PsychoConfig{
		VolatilityMinMapped: DefaultVolatilityMinMapped,
		VolatilityMedium:    DefaultVolatilityMedium,
		VolatilityHigh:      DefaultVolatilityHigh,
		MaxVolatility:       DefaultMaxVolatility,
	}
}

func (c PsychoConfig) withDefaults() PsychoConfig {
	d := DefaultPsychoConfig()
	if c.VolatilityMinMapped <= 0 {
		c.VolatilityMinMapped = d.VolatilityMinMapped
	}
	if c.VolatilityMedium <= 0 {
		c.VolatilityMedium = d.VolatilityMedium
	}
	if c.VolatilityHigh <= 0 {
		c.VolatilityHigh = d.VolatilityHigh
	}
	if c.MaxVolatility <= 0 {
		c.MaxVolatility = d.MaxVolatility
	}
	return c
}

// confidenceFor grades n against high/medium breakpoints; anything below
// medium is low.
func confidenceFor(n, high, medium int) Confidence {
	switch {
	case n >= high:
		return ConfidenceHigh
	case n >= medium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Psycho computes the five psychometric metrics with default thresholds.
func Psycho(h History) PsychoPayload {
	return PsychoWithConfig(h, DefaultPsychoConfig())
}

// PsychoWithConfig computes the five psychometric metrics.
func PsychoWithConfig(h History, cfg PsychoConfig) PsychoPayload {
	cfg = cfg.withDefaults()
	return PsychoPayload{
		MusicalDiversity:    musicalDiversity(h),
		ExplorationRate:     explorationRate(h),
		TemporalConsistency: temporalConsistency(h),
		MainstreamAffinity:  mainstreamAffinity(h),
		EmotionalVolatility: emotionalVolatility(h, cfg),
	}
}

func musicalDiversity(h History) Metric {
	tokens := genreTokens(h.Artists)
	m := Metric{
		Formula:    "normalized Shannon entropy of genre tokens across top artists",
		SampleSize: len(tokens),
	}
	if len(tokens) == 0 {
		m.Confidence = ConfidenceInsufficient
		return m
	}
	m.Score = stats.Round(stats.NormalizedEntropy(tokens), 4)
	m.Confidence = confidenceFor(len(tokens), 20, 10)
	return m
}

func explorationRate(h History) Metric {
	m := Metric{
		Formula:    "mean(unique artist ratio, unique track ratio) over recent plays",
		SampleSize: len(h.Plays),
	}
	if len(h.Plays) == 0 {
		m.Confidence = ConfidenceInsufficient
		return m
	}
	artistKeys := make([]string, 0, len(h.Plays))
	trackKeys := make([]string, 0, len(h.Plays))
	for _, p := range h.Plays {
		artistKeys = append(artistKeys, p.ArtistKey())
		trackKeys = append(trackKeys, p.TrackKey())
	}
	score := (stats.UniqueRatio(artistKeys) + stats.UniqueRatio(trackKeys)) / 2
	m.Score = stats.Round(stats.Clamp(score, 0, 1), 4)
	m.Confidence = confidenceFor(len(h.Plays), 40, 20)
	return m
}

func temporalConsistency(h History) Metric {
	hist, skipped := HourHistogram(h)
	valid := len(h.Plays) - skipped
	m := Metric{
		Formula:    "1 / (1 + variance(hourly play counts) / 100)",
		SampleSize: valid,
	}
	if valid == 0 {
		m.Confidence = ConfidenceInsufficient
		return m
	}
	counts := make([]float64, len(hist))
	for i, c := range hist {
		counts[i] = float64(c)
	}
	m.Score = stats.Round(1/(1+stats.Variance(counts)/100), 4)
	m.Confidence = confidenceFor(valid, 40, 25)
	return m
}

func mainstreamAffinity(h History) Metric {
	m := Metric{
		Formula:    "mean(mean track popularity / 100, mean log10(followers) / 8)",
		SampleSize: len(h.Plays) + len(h.Artists),
		// Popularity is always structurally present, so this metric is never
		// downgraded.
		Confidence: ConfidenceHigh,
	}

	pops := make([]float64, 0, len(h.Plays))
	for _, p := range h.Plays {
		pops = append(pops, stats.Clamp(float64(p.Popularity)/100, 0, 1))
	}
	followers := make([]float64, 0, len(h.Artists))
	for _, a := range h.Artists {
		f := float64(a.FollowerCount)
		if f < 0 {
			f = 0
		}
		followers = append(followers, stats.Clamp(math.Log10(f+1)/maxFollowerLog, 0, 1))
	}
	m.Score = stats.Round(stats.Clamp((stats.Mean(pops)+stats.Mean(followers))/2, 0, 1), 4)
	return m
}

func emotionalVolatility(h History, cfg PsychoConfig) VolatilityMetric {
	idx := NewArtistIndex(h.Artists)
	var valences []float64
	for _, g := range groupPlays(h.Plays) {
		m := genreproxy.LookupFirst(idx.PrimaryGenres(g.first))
		if !m.Mapped {
			continue
		}
		valences = append(valences, genreproxy.TrackValence(m.Proxy, g.first.Popularity, g.first.Explicit))
	}

	v := VolatilityMetric{
		Metric: Metric{
			Formula:    "std-dev of per-track genre-proxy valence / max volatility",
			SampleSize: len(valences),
		},
		MappedTrackCount: len(valences),
		MinRequired:      cfg.VolatilityMinMapped,
	}
	if len(valences) < cfg.VolatilityMinMapped {
		v.Confidence = ConfidenceInsufficient
		return v
	}
	v.Score = stats.Round(stats.Clamp(stats.StdDev(valences)/cfg.MaxVolatility, 0, 1), 4)
	v.Confidence = confidenceFor(len(valences), cfg.VolatilityHigh, cfg.VolatilityMedium)
	return v
}
