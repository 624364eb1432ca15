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
	"testing"
	"time"
)

func playsAtHours(hours ...int) []PlayEvent {
	plays := make([]PlayEvent, 0, len(hours))
	for i, h := range hours {
		plays = append(plays, newPlay(string(rune('a'+i)), "x", 2000, at(h)))
	}
	return plays
}

func TestNightOwl(t *testing.T) {
	tests := []struct {
		name      string
		hours     []int
		wantPeak  int
		wantLabel string
		wantScore float64
	}{
		{"late night", []int{23, 23, 1, 14}, 23, LabelNightOwl, 75},
		{"morning", []int{8, 8, 9, 23}, 8, LabelEarlyBird, 25},
		{"afternoon", []int{15, 15, 16}, 15, LabelDaytime, 0},
		{"tie goes to lowest hour", []int{14, 3}, 3, LabelNightOwl, 50},
		{"four is night, five is not", []int{4, 5, 5}, 5, LabelEarlyBird, 33.33},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := NightOwl(History{Now: testNow, Plays: playsAtHours(test.hours...)})
			if got.PeakHour != test.wantPeak {
				t.Errorf("PeakHour = %d, want %d", got.PeakHour, test.wantPeak)
			}
			if got.Label != test.wantLabel {
				t.Errorf("Label = %q, want %q", got.Label, test.wantLabel)
			}
			if got.Score != test.wantScore {
				t.Errorf("Score = %v, want %v", got.Score, test.wantScore)
			}
			if got.TotalPlays != len(test.hours) {
				t.Errorf("TotalPlays = %d, want %d", got.TotalPlays, len(test.hours))
			}
		})
	}
}

func TestNightOwlSkipsUnknownTimestamps(t *testing.T) {
	plays := playsAtHours(10)
	plays = append(plays, newPlay("z", "x", 2000, time.Time{}))
	got := NightOwl(History{Now: testNow, Plays: plays})
	if got.SkippedPlays != 1 || got.TotalPlays != 1 {
		t.Errorf("SkippedPlays, TotalPlays = %d, %d, want 1, 1", got.SkippedPlays, got.TotalPlays)
	}
}

func TestNightOwlUsesLocation(t *testing.T) {
	plays := playsAtHours(3)
	got := NightOwl(History{Now: testNow, Plays: plays, Location: time.FixedZone("UTC+10", 10*60*60)})
	if got.PeakHour != 13 {
		t.Errorf("PeakHour = %d, want 13", got.PeakHour)
	}
}

func TestNightOwlEmpty(t *testing.T) {
	got := NightOwl(History{Now: testNow})
	if got.Label != NoListeningData || got.Description != NoListeningData {
		t.Errorf("Label, Description = %q, %q, want %q", got.Label, got.Description, NoListeningData)
	}
	if got.IsNightOwl {
		t.Error("IsNightOwl = true for empty input")
	}
}
