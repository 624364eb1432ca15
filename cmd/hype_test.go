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
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/copywriter"
	"github.com/ademuri/listening-insights/internal/store"
)

func TestParseInsightTypes(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []copywriter.InsightType
		wantErr bool
	}{
		{"Default", nil, []copywriter.InsightType{copywriter.Hype}, false},
		{"Several", []string{"radar", "Psycho"}, []copywriter.InsightType{copywriter.Radar, copywriter.Psycho}, false},
		{"Unknown", []string{"radar", "horoscope"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInsightTypes(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInsightTypes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseInsightTypes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHypeConfigFromArgs(t *testing.T) {
	resetConfig(t)
	config, err := hypeConfigFromArgs([]string{"radar", "2024-01", "2024-03"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(config.Types, []copywriter.InsightType{copywriter.Radar}) {
		t.Errorf("Types = %v", config.Types)
	}
	if !reflect.DeepEqual(config.DateArgs, []string{"2024-01", "2024-03"}) {
		t.Errorf("DateArgs = %v", config.DateArgs)
	}
	if config.Variant != analysis.VariantWitty {
		t.Errorf("Variant = %v", config.Variant)
	}
}

func TestDisplayText(t *testing.T) {
	tests := []struct {
		name string
		r    copywriter.Result
		want string
	}{
		{"Free text", copywriter.Result{Text: "You are 40 at heart."}, "You are 40 at heart."},
		{"Failed parse", copywriter.Result{Text: "raw", Parsed: copywriter.ParseFailed{Raw: "raw"}}, "raw"},
		{
			"Psycho",
			copywriter.Result{Parsed: copywriter.ParsedOK{Fields: map[string]any{
				"archetype": "The Explorer",
				"summary":   "Always digging.",
				"tips":      []any{"Revisit a favorite", ""},
			}}},
			"The Explorer\nAlways digging.\n  * Revisit a favorite",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayText(tt.r); got != tt.want {
				t.Errorf("displayText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeSource(t *testing.T) {
	if got := describeSource(copywriter.Result{Source: copywriter.SourceCache, FromCache: true, Fallback: true}); got != "cache, fallback" {
		t.Errorf("describeSource() = %q", got)
	}
	if got := describeSource(copywriter.Result{Source: copywriter.SourceAI}); got != string(copywriter.SourceAI) {
		t.Errorf("describeSource() = %q", got)
	}
}

func TestGenerateCopyDisabled(t *testing.T) {
	resetConfig(t)
	dbPath := testDbPath(t)
	seedPlays(t, dbPath, "u", repeatPlays("Song", "Band", 5, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	config := HypeConfig{
		User:    "u",
		Types:   copywriter.Types(),
		Variant: analysis.VariantPoetic,
	}
	results, report, err := generateCopy(context.Background(), db, config)
	if err != nil {
		t.Fatalf("generateCopy() error: %v", err)
	}
	if len(results) != len(copywriter.Types()) {
		t.Fatalf("got %d results", len(results))
	}
	for _, r := range results {
		if r.Source != copywriter.SourceDisabled || r.Text == "" {
			t.Errorf("%s: result = %+v", r.Type, r)
		}
		if r.Type == copywriter.Hype && !strings.Contains(displayText(r), "Commentary is off") {
			t.Errorf("hype display = %q", displayText(r))
		}
	}
	if report.Counts.Tracks != 1 {
		t.Errorf("counts = %+v", report.Counts)
	}
}
