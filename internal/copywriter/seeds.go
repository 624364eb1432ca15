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

package copywriter

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness used for seed selection.
type Rand interface {
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewRand returns a deterministic, concurrency-safe source.
func NewRand(seed int64) Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func defaultRand() Rand {
	return NewRand(time.Now().UnixNano())
}

// Bucket is a coarse score band.
type Bucket string

const (
	Low    Bucket = "low"
	Medium Bucket = "medium"
	High   Bucket = "high"
)

// BucketFor bands a 0-1 score.
func BucketFor(score float64) Bucket {
	switch {
	case score < 0.34:
		return Low
	case score < 0.67:
		return Medium
	default:
		return High
	}
}

// Metric keys with seed pools.
const (
	KeyDiversity   = "musical_diversity"
	KeyExploration = "exploration_rate"
	KeyConsistency = "temporal_consistency"
	KeyMainstream  = "mainstream_affinity"
	KeyVolatility  = "emotional_volatility"
	KeyPositivity  = "positivity"
	KeyEnergy      = "energy"
	KeyGenreRange  = "exploration"
	KeyNostalgia   = "nostalgia"
	KeyNightOwl    = "night_owl"
)

// Some words appear in more than one pool; the picker keeps them unique
// within a prompt.
var seedPools = map[string]map[Bucket][]string{
	KeyDiversity: {
		Low:    {"focused", "devoted", "single-minded", "loyal", "laser-focused", "committed"},
		Medium: {"curious", "balanced", "versatile", "open", "flexible", "well-rounded"},
		High:   {"eclectic", "omnivorous", "kaleidoscopic", "boundless", "sprawling", "genre-fluid"},
	},
	KeyExploration: {
		Low:    {"comfort-seeking", "loyal", "rooted", "familiar", "homebound", "steadfast"},
		Medium: {"wandering", "inquisitive", "browsing", "roaming", "sampling", "casual"},
		High:   {"restless", "adventurous", "trailblazing", "nomadic", "intrepid", "hungry"},
	},
	KeyConsistency: {
		Low:    {"spontaneous", "erratic", "freewheeling", "unpredictable", "impulsive", "scattered"},
		Medium: {"rhythmic", "habitual", "grooved", "patterned", "settled", "regular"},
		High:   {"clockwork", "ritual", "disciplined", "methodical", "metronomic", "devoted"},
	},
	KeyMainstream: {
		Low:    {"underground", "obscure", "niche", "cult", "hidden", "crate-digging"},
		Medium: {"crossover", "in-between", "selective", "discerning", "hybrid", "mixed"},
		High:   {"chart-savvy", "popular", "radio-ready", "anthemic", "trend-aware", "mainstream"},
	},
	KeyVolatility: {
		Low:    {"steady", "even-keeled", "calm", "grounded", "serene", "consistent"},
		Medium: {"shifting", "textured", "layered", "dynamic", "moody", "nuanced"},
		High:   {"rollercoaster", "stormy", "volatile", "mercurial", "dramatic", "tempestuous"},
	},
	KeyPositivity: {
		Low:    {"brooding", "wistful", "somber", "melancholic", "moody", "bittersweet"},
		Medium: {"mellow", "balanced", "even", "easygoing", "warm", "hopeful"},
		High:   {"sunny", "radiant", "upbeat", "joyful", "bright", "buoyant"},
	},
	KeyEnergy: {
		Low:    {"hushed", "languid", "drowsy", "gentle", "slow-burning", "calm"},
		Medium: {"steady", "grooving", "lively", "swaying", "cruising", "warm"},
		High:   {"electric", "explosive", "frantic", "turbo", "blazing", "kinetic"},
	},
	KeyGenreRange: {
		Low:    {"focused", "loyal", "narrow", "devoted", "rooted", "single-lane"},
		Medium: {"curious", "wandering", "versatile", "open", "roaming", "mixed"},
		High:   {"eclectic", "boundless", "sprawling", "omnivorous", "globe-trotting", "kaleidoscopic"},
	},
	KeyNostalgia: {
		Low:    {"fresh", "current", "modern", "of-the-moment", "futuristic", "cutting-edge"},
		Medium: {"retro-curious", "timeless", "vintage-leaning", "classic", "bridging", "throwback"},
		High:   {"vintage", "old-soul", "archival", "nostalgic", "time-traveling", "golden-age"},
	},
	KeyNightOwl: {
		Low:    {"sunlit", "daytime", "early", "morning", "bright", "diurnal"},
		Medium: {"twilight", "dusk", "evening", "crepuscular", "sunset", "after-hours"},
		High:   {"nocturnal", "midnight", "moonlit", "insomniac", "after-dark", "small-hours"},
	},
}

// Coaching tips are "<verb> <noun>".
var (
	tipVerbs = []string{"explore", "queue up", "chase", "sample", "revisit", "dig into", "wander into", "spin"}
	tipNouns = []string{"deep cuts", "new genres", "fresh releases", "ritual", "b-sides", "live sessions", "wandering", "curious detours"}
)

// weakThreshold marks a metric for a coaching tip.
const weakThreshold = 0.35

// seedPicker hands out words without repeating any within one prompt.
type seedPicker struct {
	rnd  Rand
	used map[string]bool
	all  []string
}

func newSeedPicker(r Rand) *seedPicker {
	return &seedPicker{rnd: r, used: make(map[string]bool)}
}

// pick returns a random unused word from pool, or "" when every word has
// already been used.
func (p *seedPicker) pick(pool []string) string {
	var free []string
	for _, w := range pool {
		if !p.used[w] {
			free = append(free, w)
		}
	}
	if len(free) == 0 {
		return ""
	}
	w := free[p.rnd.Intn(len(free))]
	p.used[w] = true
	p.all = append(p.all, w)
	return w
}

// seed picks a descriptor for metric at score (0-1).
func (p *seedPicker) seed(metric string, score float64) string {
	return p.pick(seedPools[metric][BucketFor(score)])
}

// tip assembles a coaching tip, or "" if the pools are exhausted.
func (p *seedPicker) tip() string {
	verb := p.pick(tipVerbs)
	noun := p.pick(tipNouns)
	if verb == "" || noun == "" {
		return ""
	}
	return verb + " " + noun
}
