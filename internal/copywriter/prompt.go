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
	"fmt"
	"strings"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/llm"
)

// maxPromptRunes bounds the user prompt.
const maxPromptRunes = 2000

const baseSystem = "You write short commentary about one person's music listening stats. " +
	"Speak to them directly in the second person. Use only the numbers you are given; never invent statistics."

// variantStyle is the tone contract for hype copy.
type variantStyle struct {
	headlineMax int
	bodyMax     int
	style       string
}

var variantStyles = map[analysis.Variant]variantStyle{
	analysis.VariantWitty: {
		headlineMax: 90,
		bodyMax:     280,
		style:       "Witty, playful, Gen-Z tone. Up to two emoji are welcome. Roast gently, never mean.",
	},
	analysis.VariantPoetic: {
		headlineMax: 85,
		bodyMax:     260,
		style:       "Poetic and metaphor-driven, like liner notes. No emoji and no text emoticons.",
	},
}

// Prompt is a fully built generator request.
type Prompt struct {
	Type        InsightType
	System      string
	User        string
	JSON        bool
	MaxTokens   int
	Temperature float64
	// Seeds lists every seed word placed in the prompt, tips included.
	Seeds []string
}

// Request converts p to a generator request.
func (p Prompt) Request() llm.Request {
	return llm.Request{
		System:      p.System,
		User:        p.User,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		JSON:        p.JSON,
	}
}

// PromptBuilder builds prompts with randomized seed words.
type PromptBuilder struct {
	rnd Rand
}

// NewPromptBuilder returns a builder drawing seeds from r, or from a
// time-seeded source when r is nil.
func NewPromptBuilder(r Rand) *PromptBuilder {
	if r == nil {
		r = defaultRand()
	}
	return &PromptBuilder{rnd: r}
}

// Build constructs the prompt for payload, which must be the payload type
// matching t. A mismatch panics.
func (b *PromptBuilder) Build(t InsightType, payload any) Prompt {
	info := infoFor(t)
	picker := newSeedPicker(b.rnd)

	var sb strings.Builder
	system := baseSystem
	switch t {
	case MusicalAge:
		writeMusicalAge(&sb, mustPayload[analysis.MusicalAgePayload](t, payload))
	case MoodRing:
		writeMoodRing(&sb, mustPayload[analysis.MoodRingPayload](t, payload))
	case GenrePassport:
		writeGenrePassport(&sb, mustPayload[analysis.GenrePassportPayload](t, payload))
	case NightOwl:
		writeNightOwl(&sb, mustPayload[analysis.NightOwlPayload](t, payload))
	case Radar:
		writeRadar(&sb, picker, mustPayload[analysis.RadarPayload](t, payload))
		system += ` Respond with only a JSON object: {"headline": string of at most 60 characters, "summary": string of at most 240 characters}.`
	case Psycho:
		writePsycho(&sb, picker, mustPayload[analysis.PsychoPayload](t, payload))
		system += ` Respond with only a JSON object: {"archetype": string of at most 40 characters, "summary": string of at most 280 characters, "tips": array of at most 3 short strings}.`
	case Hype:
		p := mustPayload[analysis.HypePayload](t, payload)
		style := styleFor(p.Variant)
		writeHype(&sb, picker, p)
		system += fmt.Sprintf(` %s Respond with only a JSON object: {"headline": string of at most %d characters, "body": string of at most %d characters}.`,
			style.style, style.headlineMax, style.bodyMax)
	}

	prompt := Prompt{
		Type:        t,
		System:      system,
		User:        truncateRunes(sb.String(), maxPromptRunes),
		JSON:        info.json,
		MaxTokens:   textMaxTokens,
		Temperature: textTemperature,
		Seeds:       picker.all,
	}
	if info.json {
		prompt.MaxTokens = jsonMaxTokens
		prompt.Temperature = jsonTemperature
	}
	return prompt
}

func mustPayload[T any](t InsightType, payload any) T {
	switch v := payload.(type) {
	case T:
		return v
	case *T:
		if v != nil {
			return *v
		}
	}
	var zero T
	panic(fmt.Sprintf("copywriter: %s needs a %T payload, got %T", string(t), zero, payload))
}

func styleFor(v analysis.Variant) variantStyle {
	if s, ok := variantStyles[v]; ok {
		return s
	}
	return variantStyles[analysis.VariantWitty]
}

func writeMusicalAge(sb *strings.Builder, p analysis.MusicalAgePayload) {
	if p.TrackCount == 0 {
		sb.WriteString("There is no dated listening history yet.\n")
		sb.WriteString("Write one friendly sentence, at most 160 characters, inviting them to play more music. Plain text only.")
		return
	}
	fmt.Fprintf(sb, "Musical age: %d years (median release year %d, %s era).\n", p.Age, p.MedianYear, p.Era)
	fmt.Fprintf(sb, "Tracks analysed: %d. Oldest: %q by %s (%d). Newest: %q by %s (%d).\n",
		p.TrackCount, p.Oldest.Name, p.Oldest.Artist, p.Oldest.Year, p.Newest.Name, p.Newest.Artist, p.Newest.Year)
	sb.WriteString("Write one or two sentences, at most 220 characters, about how old their taste sounds. Plain text only, no hashtags.")
}

func writeMoodRing(sb *strings.Builder, p analysis.MoodRingPayload) {
	if p.TrackCount == 0 {
		sb.WriteString("There are no tracks to read a mood from yet.\n")
		sb.WriteString("Write one friendly sentence, at most 160 characters, inviting them to play more music. Plain text only.")
		return
	}
	shares := make([]string, 0, len(p.Moods))
	for _, m := range p.Moods {
		shares = append(shares, fmt.Sprintf("%s %d%%", m.Mood, m.Percent))
	}
	fmt.Fprintf(sb, "Dominant mood: %s across %d tracks (%s).\n", p.Dominant, p.TrackCount, strings.Join(shares, ", "))
	sb.WriteString("Write one or two sentences, at most 220 characters, reading their mood ring. Plain text only.")
}

func writeGenrePassport(sb *strings.Builder, p analysis.GenrePassportPayload) {
	if p.DistinctGenres == 0 {
		sb.WriteString("No genres are known for their artists yet.\n")
		sb.WriteString("Write one friendly sentence, at most 160 characters, about their passport still being blank. Plain text only.")
		return
	}
	top := make([]string, 0, len(p.TopGenres))
	for _, g := range p.TopGenres {
		top = append(top, g.Genre)
	}
	fmt.Fprintf(sb, "Genre passport: %d distinct genres across %d artists, exploration score %d/100.\n", p.DistinctGenres, p.ArtistCount, p.ExplorationScore)
	fmt.Fprintf(sb, "Most stamped: %s.\n", strings.Join(top, ", "))
	sb.WriteString("Write one or two sentences, at most 220 characters, as if stamping their music passport. Plain text only.")
}

func writeNightOwl(sb *strings.Builder, p analysis.NightOwlPayload) {
	if p.TotalPlays == 0 {
		sb.WriteString("There are no timestamped plays yet.\n")
		sb.WriteString("Write one friendly sentence, at most 160 characters, inviting them to play more music. Plain text only.")
		return
	}
	fmt.Fprintf(sb, "Listening clock: %s. Peak hour %02d:00. %.0f%% of %d plays land between 22:00 and 05:00.\n",
		p.Label, p.PeakHour, p.Score, p.TotalPlays)
	sb.WriteString("Write one or two sentences, at most 220 characters, about when they listen. Plain text only.")
}

type axis struct {
	key   string
	label string
	score float64
}

func radarAxes(a analysis.RadarAxes) []axis {
	return []axis{
		{KeyPositivity, "Positivity", a.Positivity},
		{KeyEnergy, "Energy", a.Energy},
		{KeyGenreRange, "Exploration", a.Exploration},
		{KeyNostalgia, "Nostalgia", a.Nostalgia},
		{KeyNightOwl, "Night owl", a.NightOwl},
	}
}

func writeAxes(sb *strings.Builder, picker *seedPicker, a analysis.RadarAxes) {
	for _, ax := range radarAxes(a) {
		fmt.Fprintf(sb, "- %s %.0f/100", ax.label, ax.score)
		if w := picker.seed(ax.key, ax.score/100); w != "" {
			fmt.Fprintf(sb, " (vibe word: %s)", w)
		}
		sb.WriteString("\n")
	}
}

func writeRadar(sb *strings.Builder, picker *seedPicker, p analysis.RadarPayload) {
	if p.IsDefault {
		sb.WriteString("There is no listening data yet, so every axis is empty.\n")
		sb.WriteString("Keep the headline and summary light and inviting.")
		return
	}
	fmt.Fprintf(sb, "Listening radar over %d plays. Top genre: %s. Signature track: %q by %s.\n",
		p.PlayCount, p.TopGenre, p.SampleTrack.Name, p.SampleTrack.Artist)
	writeAxes(sb, picker, p.Axes)
	sb.WriteString("Use each vibe word at most once. Name the strongest and weakest axis.")
}

type psychoMetric struct {
	key   string
	label string
	m     analysis.Metric
}

func psychoMetrics(p analysis.PsychoPayload) []psychoMetric {
	return []psychoMetric{
		{KeyDiversity, "Musical diversity", p.MusicalDiversity},
		{KeyExploration, "Exploration rate", p.ExplorationRate},
		{KeyConsistency, "Temporal consistency", p.TemporalConsistency},
		{KeyMainstream, "Mainstream affinity", p.MainstreamAffinity},
		{KeyVolatility, "Emotional volatility", p.EmotionalVolatility.Metric},
	}
}

// writeMetrics lists psycho metrics with seeds and returns coaching tips for
// the weak ones.
func writeMetrics(sb *strings.Builder, picker *seedPicker, p analysis.PsychoPayload) []string {
	var tips []string
	for _, pm := range psychoMetrics(p) {
		if pm.m.Confidence == analysis.ConfidenceInsufficient {
			fmt.Fprintf(sb, "- %s: not enough data\n", pm.label)
			continue
		}
		fmt.Fprintf(sb, "- %s %.2f (%s confidence)", pm.label, pm.m.Score, pm.m.Confidence)
		if w := picker.seed(pm.key, pm.m.Score); w != "" {
			fmt.Fprintf(sb, ", descriptor: %s", w)
		}
		sb.WriteString("\n")
		if pm.m.Score < weakThreshold {
			if tip := picker.tip(); tip != "" {
				tips = append(tips, fmt.Sprintf("- Coaching tip for %s: %s", strings.ToLower(pm.label), tip))
			}
		}
	}
	return tips
}

func writePsycho(sb *strings.Builder, picker *seedPicker, p analysis.PsychoPayload) {
	sb.WriteString("Listening psychometrics (0 to 1):\n")
	tips := writeMetrics(sb, picker, p)
	for _, t := range tips {
		sb.WriteString(t + "\n")
	}
	sb.WriteString("Give them a playful archetype name. Fold any coaching tips into the tips array. Do not mention metrics with not enough data.")
}

func writeHype(sb *strings.Builder, picker *seedPicker, p analysis.HypePayload) {
	fmt.Fprintf(sb, "Hype card (%s).\n", p.Variant)
	fmt.Fprintf(sb, "Top genre: %s. Signature track: %q by %s.\n", p.TopGenre, p.SampleTrack.Name, p.SampleTrack.Artist)
	fmt.Fprintf(sb, "Counts: %d tracks, %d artists, %d genres over %d weeks.\n", p.Counts.Tracks, p.Counts.Artists, p.Counts.Genres, p.Counts.Weeks)
	if p.MusicalAge.TrackCount > 0 {
		fmt.Fprintf(sb, "Musical age %d (%s era). ", p.MusicalAge.Age, p.MusicalAge.Era)
	}
	if p.MoodRing.TrackCount > 0 {
		fmt.Fprintf(sb, "Mostly %s. ", p.MoodRing.Dominant)
	}
	if p.NightOwl.TotalPlays > 0 {
		fmt.Fprintf(sb, "%s, peaking at %02d:00.", p.NightOwl.Label, p.NightOwl.PeakHour)
	}
	sb.WriteString("\n")
	if !p.Radar.IsDefault {
		sb.WriteString("Radar:\n")
		writeAxes(sb, picker, p.Radar.Axes)
	}
	sb.WriteString("Traits:\n")
	tips := writeMetrics(sb, picker, p.Psycho)
	if len(tips) > 0 {
		tip := strings.TrimPrefix(tips[0], "- ")
		fmt.Fprintf(sb, "Close the body with this nudge: %s\n", tip)
	}
	sb.WriteString("Make it feel like a year-in-review card they would screenshot.")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// checkPayload panics when payload does not match t.
func checkPayload(t InsightType, payload any) {
	switch t {
	case MusicalAge:
		mustPayload[analysis.MusicalAgePayload](t, payload)
	case MoodRing:
		mustPayload[analysis.MoodRingPayload](t, payload)
	case GenrePassport:
		mustPayload[analysis.GenrePassportPayload](t, payload)
	case NightOwl:
		mustPayload[analysis.NightOwlPayload](t, payload)
	case Radar:
		mustPayload[analysis.RadarPayload](t, payload)
	case Psycho:
		mustPayload[analysis.PsychoPayload](t, payload)
	case Hype:
		mustPayload[analysis.HypePayload](t, payload)
	}
}
