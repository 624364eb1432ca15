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
	"sort"
	"strings"
)

const (
	passportTopGenres       = 8
	passportFullExploration = 20
)

// genreTokens returns every normalized genre string across artists, one per
// artist occurrence.
func genreTokens(artists []ArtistProfile) []string {
	var tokens []string
	for _, a := range artists {
		for _, g := range a.Genres {
			g = strings.ToLower(strings.TrimSpace(g))
			if g == "" {
				continue
			}
			tokens = append(tokens, g)
		}
	}
	return tokens
}

// rankGenres orders genres by frequency, then alphabetically.
func rankGenres(tokens []string) []GenreCount {
	counts := make(map[string]int)
	for _, t := range tokens {
		counts[t]++
	}
	ranked := make([]GenreCount, 0, len(counts))
	for g, c := range counts {
		ranked = append(ranked, GenreCount{Genre: g, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Genre < ranked[j].Genre
	})
	return ranked
}

// GenrePassport measures how many distinct genres the supplied artists span.
// Twenty distinct genres is a full exploration score.
func GenrePassport(h History) GenrePassportPayload {
	ranked := rankGenres(genreTokens(h.Artists))
	distinct := len(ranked)

	top := ranked
	if len(top) > passportTopGenres {
		top = top[:passportTopGenres]
	}

	score := int(math.Round(float64(distinct) / passportFullExploration * 100))
	if score > 100 {
		score = 100
	}

	payload := GenrePassportPayload{
		DistinctGenres:   distinct,
		ExplorationScore: score,
		TopGenres:        top,
		ArtistCount:      len(h.Artists),
	}
	if distinct == 0 {
		payload.TopGenres = []GenreCount{}
		payload.Description = NoGenresAvailable
		return payload
	}
	payload.Description = fmt.Sprintf("%d genres stamped across %d artists, led by %s", distinct, len(h.Artists), top[0].Genre)
	return payload
}
