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

package stats

import (
	"math"
	"testing"
	"time"
)

func TestRecencyWeight(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		playedAt time.Time
		halfLife float64
		want     float64
	}{
		{"now", now, 10, 1},
		{"ten days with ten day half-life", now.AddDate(0, 0, -10), 10, math.Exp(-1)},
		{"sixty days with sixty day half-life", now.AddDate(0, 0, -60), 60, math.Exp(-1)},
		{"future play", now.Add(48 * time.Hour), 10, 1},
		{"unknown timestamp", time.Time{}, 10, 1},
		{"no decay", now.AddDate(-5, 0, 0), 0, 1},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := RecencyWeight(tc.playedAt, now, tc.halfLife)
			if !floatEquals(got, tc.want, 1e-9) {
				t.Fatalf("RecencyWeight() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRecencyHalfLifeChangesMeaning(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	played := now.AddDate(0, 0, -30)
	radar := RecencyWeight(played, now, RadarHalfLifeDays)
	age := RecencyWeight(played, now, MusicalAgeHalfLifeDays)
	if radar >= age {
		t.Fatalf("shorter half-life should decay faster: radar=%v age=%v", radar, age)
	}
}
