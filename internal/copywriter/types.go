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

// Package copywriter turns insight payloads into short generated commentary.
//
// Each call runs the same state machine: disabled check, cache lookup,
// prompt construction, a bounded generator call, response validation and a
// cache write. Generator failures never surface as errors; they produce
// deterministic fallback copy instead.
package copywriter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ademuri/listening-insights/internal/analysis"
)

// InsightType names a kind of generated copy.
type InsightType string

const (
	MusicalAge    InsightType = "musical_age"
	MoodRing      InsightType = "mood_ring"
	GenrePassport InsightType = "genre_passport"
	NightOwl      InsightType = "night_owl"
	Radar         InsightType = "radar"
	Psycho        InsightType = "psycho"
	Hype          InsightType = "hype"
)

// Generation settings for structured and free-text types.
const (
	jsonMaxTokens   = 400
	jsonTemperature = 0.7
	textMaxTokens   = 150
	textTemperature = 0.9
)

type typeInfo struct {
	json bool
	// requiredKeys must be present as non-empty strings in a structured
	// response.
	requiredKeys []string
}

var typeInfos = map[InsightType]typeInfo{
	MusicalAge:    {},
	MoodRing:      {},
	GenrePassport: {},
	NightOwl:      {},
	Radar:         {json: true, requiredKeys: []string{"headline", "summary"}},
	Psycho:        {json: true, requiredKeys: []string{"archetype", "summary"}},
	Hype:          {json: true, requiredKeys: []string{"headline", "body"}},
}

// infoFor panics on an unrecognized type: that is a programming error, not
// a runtime condition.
func infoFor(t InsightType) typeInfo {
	info, ok := typeInfos[t]
	if !ok {
		panic(fmt.Sprintf("copywriter: unknown insight type %q", string(t)))
	}
	return info
}

// ExpectsJSON reports whether copy for t is a JSON document.
func (t InsightType) ExpectsJSON() bool {
	return infoFor(t).json
}

// Types lists every insight type in a stable order.
func Types() []InsightType {
	types := make([]InsightType, 0, len(typeInfos))
	for t := range typeInfos {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ParseInsightType validates user input such as a command-line argument.
func ParseInsightType(s string) (InsightType, error) {
	t := InsightType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := typeInfos[t]; !ok {
		return "", fmt.Errorf("unknown insight type %q", s)
	}
	return t, nil
}

// PayloadFor picks the payload matching t out of a full set of insights.
// Hype needs the aggregate and is built from h and variant.
func PayloadFor(t InsightType, in analysis.Insights, h analysis.History, variant analysis.Variant) any {
	switch t {
	case MusicalAge:
		return in.MusicalAge
	case MoodRing:
		return in.MoodRing
	case GenrePassport:
		return in.GenrePassport
	case NightOwl:
		return in.NightOwl
	case Radar:
		return in.Radar
	case Psycho:
		return in.Psycho
	case Hype:
		return analysis.Aggregate(h, in, variant)
	}
	infoFor(t)
	return nil
}

// Source tags where a piece of copy came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
	SourceDisabled Source = "disabled"
)

// Parsed is the outcome of validating a structured response: either
// ParsedOK or ParseFailed. It is nil for free-text types.
type Parsed interface {
	isParsed()
}

// ParsedOK holds the decoded JSON object.
type ParsedOK struct {
	Fields map[string]any
}

// ParseFailed keeps the raw text that could not be validated.
type ParseFailed struct {
	Raw string
	Err error
}

func (ParsedOK) isParsed()    {}
func (ParseFailed) isParsed() {}

// String returns a string field, or "" when it is missing or not a string.
func (p ParsedOK) String(key string) string {
	s, _ := p.Fields[key].(string)
	return s
}

// Result is generated copy and its provenance.
type Result struct {
	Type InsightType
	Text string
	// Source is SourceCache for any cache hit; Fallback reports whether the
	// text itself is fallback copy, cached or not.
	Source    Source
	FromCache bool
	Fallback  bool
	Parsed    Parsed
	RequestID string
}
