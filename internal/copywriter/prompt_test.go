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
	"reflect"
	"strings"
	"testing"

	"github.com/ademuri/listening-insights/internal/analysis"
)

func metric(score float64, c analysis.Confidence) analysis.Metric {
	return analysis.Metric{Score: score, Confidence: c, SampleSize: 50}
}

func samplePsycho() analysis.PsychoPayload {
	return analysis.PsychoPayload{
		MusicalDiversity:    metric(0.8, analysis.ConfidenceHigh),
		ExplorationRate:     metric(0.2, analysis.ConfidenceMedium),
		TemporalConsistency: metric(0.1, analysis.ConfidenceHigh),
		MainstreamAffinity:  metric(0.5, analysis.ConfidenceHigh),
		EmotionalVolatility: analysis.VolatilityMetric{
			Metric:           metric(0, analysis.ConfidenceInsufficient),
			MappedTrackCount: 3,
			MinRequired:      10,
		},
	}
}

func sampleRadar() analysis.RadarPayload {
	return analysis.RadarPayload{
		Axes:        analysis.RadarAxes{Positivity: 72, Energy: 40, Exploration: 90, Nostalgia: 10, NightOwl: 55},
		TopGenre:    "indie",
		SampleTrack: analysis.TrackRef{Name: "Song", Artist: "Band"},
		PlayCount:   120,
	}
}

func sampleHype(v analysis.Variant) analysis.HypePayload {
	return analysis.HypePayload{
		Radar:       sampleRadar(),
		Psycho:      samplePsycho(),
		Counts:      analysis.Counts{Tracks: 80, Artists: 30, Genres: 12, Weeks: 4},
		TopGenre:    "indie",
		SampleTrack: analysis.TrackRef{Name: "Song", Artist: "Band"},
		Variant:     v,
	}
}

func TestBuildSettingsPerType(t *testing.T) {
	b := NewPromptBuilder(NewRand(1))
	tests := []struct {
		typ     InsightType
		payload any
		json    bool
	}{
		{MusicalAge, analysis.MusicalAgePayload{}, false},
		{MoodRing, analysis.MoodRingPayload{}, false},
		{GenrePassport, analysis.GenrePassportPayload{}, false},
		{NightOwl, analysis.NightOwlPayload{}, false},
		{Radar, sampleRadar(), true},
		{Psycho, samplePsycho(), true},
		{Hype, sampleHype(analysis.VariantWitty), true},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			p := b.Build(tt.typ, tt.payload)
			if p.JSON != tt.json {
				t.Errorf("JSON = %v, want %v", p.JSON, tt.json)
			}
			wantTokens, wantTemp := textMaxTokens, textTemperature
			if tt.json {
				wantTokens, wantTemp = jsonMaxTokens, jsonTemperature
			}
			if p.MaxTokens != wantTokens || p.Temperature != wantTemp {
				t.Errorf("settings = %d/%v, want %d/%v", p.MaxTokens, p.Temperature, wantTokens, wantTemp)
			}
			if p.User == "" || p.System == "" {
				t.Error("empty prompt")
			}
			if len([]rune(p.User)) > maxPromptRunes {
				t.Errorf("user prompt has %d runes", len([]rune(p.User)))
			}
			if req := p.Request(); req.JSON != p.JSON || req.User != p.User {
				t.Errorf("Request() = %+v", req)
			}
		})
	}
}

func TestBuildAcceptsPointerPayload(t *testing.T) {
	r := sampleRadar()
	p := NewPromptBuilder(NewRand(1)).Build(Radar, &r)
	if !strings.Contains(p.User, "indie") {
		t.Errorf("prompt missing top genre: %q", p.User)
	}
}

func TestBuildPanicsOnMismatchedPayload(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewPromptBuilder(nil).Build(Radar, analysis.PsychoPayload{})
}

func TestBuildPanicsOnUnknownType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewPromptBuilder(nil).Build(InsightType("horoscope"), nil)
}

func TestSeedsDeterministicWithSeededSource(t *testing.T) {
	a := NewPromptBuilder(NewRand(42)).Build(Hype, sampleHype(analysis.VariantWitty))
	b := NewPromptBuilder(NewRand(42)).Build(Hype, sampleHype(analysis.VariantWitty))
	if !reflect.DeepEqual(a.Seeds, b.Seeds) || a.User != b.User {
		t.Errorf("same seed gave different prompts: %v vs %v", a.Seeds, b.Seeds)
	}
}

func TestSeedsVaryWithDefaultSource(t *testing.T) {
	b := NewPromptBuilder(nil)
	first := b.Build(Psycho, samplePsycho())
	for i := 0; i < 50; i++ {
		if !reflect.DeepEqual(b.Build(Psycho, samplePsycho()).Seeds, first.Seeds) {
			return
		}
	}
	t.Errorf("seeds never varied: %v", first.Seeds)
}

func TestSeedsUniqueWithinPrompt(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		p := NewPromptBuilder(NewRand(seed)).Build(Hype, sampleHype(analysis.VariantPoetic))
		seen := make(map[string]bool)
		for _, s := range p.Seeds {
			if seen[s] {
				t.Fatalf("seed %d: %q repeated in %v", seed, s, p.Seeds)
			}
			seen[s] = true
		}
	}
}

func TestPsychoPromptSkipsInsufficientAndAddsTips(t *testing.T) {
	p := NewPromptBuilder(NewRand(7)).Build(Psycho, samplePsycho())
	if !strings.Contains(p.User, "Emotional volatility: not enough data") {
		t.Errorf("insufficient metric not marked:\n%s", p.User)
	}
	// Four scored metrics get a descriptor; two weak ones get a two-word tip.
	if len(p.Seeds) != 4+2*2 {
		t.Errorf("seeds = %v, want 8", p.Seeds)
	}
	if n := strings.Count(p.User, "Coaching tip"); n != 2 {
		t.Errorf("coaching tips = %d, want 2", n)
	}
}

func TestHypeVariantContract(t *testing.T) {
	b := NewPromptBuilder(NewRand(3))
	witty := b.Build(Hype, sampleHype(analysis.VariantWitty))
	poetic := b.Build(Hype, sampleHype(analysis.VariantPoetic))

	if !strings.Contains(witty.System, "at most 90 characters") || !strings.Contains(witty.System, "280") {
		t.Errorf("witty limits missing: %s", witty.System)
	}
	if !strings.Contains(poetic.System, "at most 85 characters") || !strings.Contains(poetic.System, "No emoji") {
		t.Errorf("poetic contract missing: %s", poetic.System)
	}
}

func TestEmptyPayloadPrompts(t *testing.T) {
	p := NewPromptBuilder(NewRand(1)).Build(Radar, analysis.RadarPayload{IsDefault: true})
	if len(p.Seeds) != 0 {
		t.Errorf("default radar should not draw seeds, got %v", p.Seeds)
	}
	if !strings.Contains(p.User, "no listening data") {
		t.Errorf("unexpected prompt %q", p.User)
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Bucket
	}{
		{0, Low},
		{0.339, Low},
		{0.34, Medium},
		{0.669, Medium},
		{0.67, High},
		{1, High},
	}
	for _, tt := range tests {
		if got := BucketFor(tt.score); got != tt.want {
			t.Errorf("BucketFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestPickerExhaustsPool(t *testing.T) {
	p := newSeedPicker(NewRand(1))
	pool := []string{"a", "b"}
	got := map[string]bool{p.pick(pool): true, p.pick(pool): true}
	if !got["a"] || !got["b"] {
		t.Errorf("picked %v", got)
	}
	if w := p.pick(pool); w != "" {
		t.Errorf("exhausted pool returned %q", w)
	}
}
