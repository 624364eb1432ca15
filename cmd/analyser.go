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

package cmd

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/listening-insights/internal/analysis"
)

// Analysis is one titled table of results.
type Analysis struct {
	Name    string
	results [][]string
	summary string
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	fmt.Fprintf(out, "%s\n", a.Name)
	if len(a.results) == 0 {
		fmt.Fprintf(out, "%s\n", a.summary)
		return out.String()
	}
	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func musicalAgeAnalysis(p analysis.MusicalAgePayload) Analysis {
	a := Analysis{Name: "Musical age", summary: p.Description}
	if p.TrackCount == 0 {
		return a
	}
	a.results = [][]string{{"Decade", "Share"}}
	for _, d := range p.Decades {
		a.results = append(a.results, []string{fmt.Sprintf("%ds", d.Decade), pct(d.Percent)})
	}
	a.summary = fmt.Sprintf("%s\nAge %d, median year %d, %s era, %d tracks", p.Description, p.Age, p.MedianYear, p.Era, p.TrackCount)
	return a
}

func moodRingAnalysis(p analysis.MoodRingPayload) Analysis {
	a := Analysis{Name: "Mood ring", summary: p.Description}
	if p.TrackCount == 0 {
		return a
	}
	a.results = [][]string{{"Mood", "Tracks", "Share"}}
	for _, m := range p.Moods {
		a.results = append(a.results, []string{m.Mood, strconv.Itoa(m.Count), strconv.Itoa(m.Percent) + "%"})
	}
	a.summary = fmt.Sprintf("%s\nDominant mood: %s (%d of %d tracks measured)", p.Description, p.Dominant, p.MeasuredCount, p.TrackCount)
	return a
}

func genrePassportAnalysis(p analysis.GenrePassportPayload) Analysis {
	a := Analysis{Name: "Genre passport", summary: p.Description}
	if p.DistinctGenres == 0 {
		return a
	}
	a.results = [][]string{{"Genre", "Artists"}}
	for _, g := range p.TopGenres {
		a.results = append(a.results, []string{g.Genre, strconv.Itoa(g.Count)})
	}
	a.summary = fmt.Sprintf("%d genres across %d artists, exploration score %d", p.DistinctGenres, p.ArtistCount, p.ExplorationScore)
	return a
}

func nightOwlAnalysis(p analysis.NightOwlPayload) Analysis {
	a := Analysis{Name: "Night owl", summary: p.Description}
	if p.TotalPlays == 0 {
		return a
	}
	a.results = [][]string{{"Hour", "Plays"}}
	for hour, c := range p.Histogram {
		if c > 0 {
			a.results = append(a.results, []string{fmt.Sprintf("%02d:00", hour), strconv.Itoa(c)})
		}
	}
	a.summary = fmt.Sprintf("%s: %s", p.Label, p.Description)
	return a
}

func radarAnalysis(p analysis.RadarPayload) Analysis {
	a := Analysis{Name: "Radar"}
	a.results = [][]string{
		{"Axis", "Score"},
		{"Positivity", score(p.Axes.Positivity)},
		{"Energy", score(p.Axes.Energy)},
		{"Exploration", score(p.Axes.Exploration)},
		{"Nostalgia", score(p.Axes.Nostalgia)},
		{"Night owl", score(p.Axes.NightOwl)},
	}
	a.summary = fmt.Sprintf("Top genre %s, signature track %q by %s, %d plays", p.TopGenre, p.SampleTrack.Name, p.SampleTrack.Artist, p.PlayCount)
	if p.IsDefault {
		a.summary = analysis.NoListeningData
	}
	return a
}

func psychoAnalysis(p analysis.PsychoPayload) Analysis {
	a := Analysis{Name: "Psychometrics"}
	a.results = [][]string{{"Metric", "Score", "Confidence", "Sample"}}
	row := func(name string, m analysis.Metric) {
		a.results = append(a.results, []string{name, score(m.Score), string(m.Confidence), strconv.Itoa(m.SampleSize)})
	}
	row("Musical diversity", p.MusicalDiversity)
	row("Exploration rate", p.ExplorationRate)
	row("Temporal consistency", p.TemporalConsistency)
	row("Mainstream affinity", p.MainstreamAffinity)
	row("Emotional volatility", p.EmotionalVolatility.Metric)

	a.summary = fmt.Sprintf("Volatility needs %d mapped tracks, found %d", p.EmotionalVolatility.MinRequired, p.EmotionalVolatility.MappedTrackCount)
	return a
}

// insightAnalyses renders every insight as a table, in display order.
func insightAnalyses(in analysis.Insights) []Analysis {
	return []Analysis{
		musicalAgeAnalysis(in.MusicalAge),
		moodRingAnalysis(in.MoodRing),
		genrePassportAnalysis(in.GenrePassport),
		nightOwlAnalysis(in.NightOwl),
		radarAnalysis(in.Radar),
		psychoAnalysis(in.Psycho),
	}
}

// countsSummary is a one-line overview of a history.
func countsSummary(c analysis.Counts) string {
	parts := []string{
		fmt.Sprintf("%d tracks", c.Tracks),
		fmt.Sprintf("%d artists", c.Artists),
		fmt.Sprintf("%d genres", c.Genres),
		fmt.Sprintf("%d weeks", c.Weeks),
	}
	return strings.Join(parts, ", ")
}
