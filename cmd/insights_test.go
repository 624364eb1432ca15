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
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ademuri/listening-insights/internal/analysis"
)

func seededInsights(t *testing.T) (string, InsightsReport) {
	t.Helper()
	resetConfig(t)
	dbPath := testDbPath(t)
	at := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	var plays []analysis.PlayEvent
	plays = append(plays, repeatPlays("Song", "Band", 6, at)...)
	plays = append(plays, repeatPlays("Tune", "Group", 4, at.Add(-24*time.Hour))...)
	seedPlays(t, dbPath, "u", plays)

	report, h, err := buildInsightsReport(dbPath, "u", []string{"2024-03"})
	if err != nil {
		t.Fatalf("buildInsightsReport() error: %v", err)
	}
	if len(h.Plays) != 10 {
		t.Fatalf("history has %d plays, want 10", len(h.Plays))
	}
	if h.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", h.Location)
	}
	return dbPath, report
}

func TestBuildInsightsReport(t *testing.T) {
	_, report := seededInsights(t)
	if report.Counts.Tracks != 2 || report.Counts.Artists != 2 {
		t.Errorf("counts = %+v", report.Counts)
	}
	if !report.Start.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", report.Start)
	}
	if report.Insights.MusicalAge.TrackCount == 0 {
		t.Error("musical age saw no tracks")
	}
}

func TestWriteReportFormats(t *testing.T) {
	_, report := seededInsights(t)

	var out bytes.Buffer
	if err := writeReport(&out, report, "json"); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("json output does not decode: %v", err)
	}
	if decoded["user"] != "u" {
		t.Errorf("json user = %v", decoded["user"])
	}
	if _, ok := decoded["insights"].(map[string]any)["musicalAge"]; !ok {
		t.Error("json missing musicalAge")
	}

	out.Reset()
	if err := writeReport(&out, report, "yaml"); err != nil {
		t.Fatal(err)
	}
	decoded = nil
	if err := yaml.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("yaml output does not decode: %v", err)
	}
	if _, ok := decoded["insights"].(map[string]any)["musical_age"]; !ok {
		t.Error("yaml missing musical_age")
	}

	out.Reset()
	if err := writeReport(&out, report, "table"); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Insights for u: 2 tracks", "Musical age", "Radar", "Psychometrics"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table output missing %q", want)
		}
	}

	if err := writeReport(&out, report, "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestPrintInsightsBadRange(t *testing.T) {
	resetConfig(t)
	var out bytes.Buffer
	if err := printInsights(&out, testDbPath(t), "u", "table", []string{"2024-05", "2024-01"}); err == nil {
		t.Error("end before start should fail")
	}
}
