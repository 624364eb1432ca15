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

// Package genreproxy approximates audio features from free-text genre strings.
//
// Real audio features are frequently unavailable, so each artist's first
// listed genre is canonicalized into a small fixed set of buckets, and each
// bucket carries a static (valence, energy, tempo) triple. Anything that does
// not match falls back to the pop bucket.
package genreproxy

import (
	"strings"

	"github.com/ademuri/listening-insights/internal/stats"
)

// Bucket names.
const (
	Ambient    = "ambient"
	Classical  = "classical"
	Jazz       = "jazz"
	Metal      = "metal"
	HipHop     = "hip-hop"
	RnB        = "r&b"
	Electronic = "electronic"
	Folk       = "folk"
	Latin      = "latin"
	Rock       = "rock"
	Pop        = "pop"
)

// Tempo normalization range in BPM.
const (
	MinTempo = 50.0
	MaxTempo = 220.0
)

// Track-level valence nudges.
const (
	popularValenceBoost    = 0.05
	explicitValencePenalty = 0.05
	popularityThreshold    = 70
)

// Proxy is a static audio-feature approximation.
type Proxy struct {
	Valence float64
	Energy  float64
	Tempo   float64
}

type bucket struct {
	name   string
	tokens []string
	// exact names match only the whole genre, for tags too broad to use as
	// substrings.
	exact []string
	proxy Proxy
}

// Order matters: the first bucket with a matching token wins, so compound
// genres like "synthpop" or "pop punk" land in the more specific bucket.
var buckets = []bucket{
	{Ambient, []string{"ambient", "drone", "new age", "chillout"}, nil, Proxy{Valence: 0.35, Energy: 0.20, Tempo: 85}},
	{Classical, []string{"classical", "orchestra", "baroque", "opera", "soundtrack", "score"}, nil, Proxy{Valence: 0.30, Energy: 0.25, Tempo: 95}},
	{Jazz, []string{"jazz", "bebop", "swing", "bossa"}, nil, Proxy{Valence: 0.55, Energy: 0.40, Tempo: 110}},
	{Metal, []string{"metal", "deathcore", "grindcore", "mathcore", "thrash", "doom"}, nil, Proxy{Valence: 0.30, Energy: 0.90, Tempo: 150}},
	{HipHop, []string{"hip hop", "hip-hop", "rap", "trap", "drill", "grime"}, nil, Proxy{Valence: 0.50, Energy: 0.70, Tempo: 95}},
	{RnB, []string{"r&b", "rnb", "soul", "funk", "motown"}, nil, Proxy{Valence: 0.60, Energy: 0.55, Tempo: 100}},
	{Electronic, []string{"electronic", "edm", "house", "techno", "trance", "dubstep", "electro", "synth", "drum and bass", "dnb", "nightcore"}, nil, Proxy{Valence: 0.55, Energy: 0.80, Tempo: 126}},
	{Folk, []string{"folk", "acoustic", "singer-songwriter", "country", "bluegrass", "americana"}, nil, Proxy{Valence: 0.45, Energy: 0.35, Tempo: 100}},
	{Latin, []string{"latin", "reggaeton", "salsa", "bachata", "cumbia"}, nil, Proxy{Valence: 0.75, Energy: 0.75, Tempo: 105}},
	{Rock, []string{"rock", "punk", "grunge", "alternative", "shoegaze"}, []string{"indie"}, Proxy{Valence: 0.45, Energy: 0.75, Tempo: 125}},
	{Pop, []string{"pop"}, nil, Proxy{Valence: 0.65, Energy: 0.65, Tempo: 118}},
}

var fallback = buckets[len(buckets)-1]

// Match is the result of a lookup.
type Match struct {
	Bucket string
	Proxy  Proxy
	// Mapped is false when the genre matched no bucket and the pop default
	// was used instead.
	Mapped bool
}

// Lookup canonicalizes genre and returns its proxy triple. Unmatched or
// empty genres return the pop triple with Mapped=false.
func Lookup(genre string) Match {
	g := strings.ToLower(strings.TrimSpace(genre))
	if g != "" {
		for _, b := range buckets {
			for _, name := range b.exact {
				if g == name {
					return Match{Bucket: b.name, Proxy: b.proxy, Mapped: true}
				}
			}
			for _, tok := range b.tokens {
				if strings.Contains(g, tok) {
					return Match{Bucket: b.name, Proxy: b.proxy, Mapped: true}
				}
			}
		}
	}
	return Match{Bucket: fallback.name, Proxy: fallback.proxy, Mapped: false}
}

// LookupFirst looks up the first entry of genres, the convention for
// attributing an artist to a single bucket.
func LookupFirst(genres []string) Match {
	if len(genres) == 0 {
		return Lookup("")
	}
	return Lookup(genres[0])
}

// Canonicalize returns the bucket name for genre.
func Canonicalize(genre string) string {
	return Lookup(genre).Bucket
}

// Buckets lists the canonical bucket names in match order.
func Buckets() []string {
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.name)
	}
	return names
}

// TrackValence nudges the bucket valence up for popular tracks and down for
// explicit ones, clamped to [0, 1].
func TrackValence(p Proxy, popularity int, explicit bool) float64 {
	v := p.Valence
	if popularity > popularityThreshold {
		v += popularValenceBoost
	}
	if explicit {
		v -= explicitValencePenalty
	}
	return stats.Clamp(v, 0, 1)
}

// NormalizeTempo maps BPM linearly from [MinTempo, MaxTempo] onto [0, 1].
func NormalizeTempo(bpm float64) float64 {
	return stats.Clamp((bpm-MinTempo)/(MaxTempo-MinTempo), 0, 1)
}

// TrackEnergy blends bucket energy (70%) with normalized tempo (30%).
func TrackEnergy(p Proxy) float64 {
	return stats.Clamp(0.7*p.Energy+0.3*NormalizeTempo(p.Tempo), 0, 1)
}
