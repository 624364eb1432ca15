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
	"time"
)

// Half-lives used by the selectors. They are parameters of RecencyWeight,
// not constants of it: a shorter half-life narrows what counts as recent.
const (
	RadarHalfLifeDays      = 10.0
	MusicalAgeHalfLifeDays = 60.0
)

// DaysBetween returns the fractional number of days from t to now.
func DaysBetween(t, now time.Time) float64 {
	return now.Sub(t).Hours() / 24
}

// RecencyWeight is exp(-daysAgo/halfLifeDays).
//
// A zero playedAt means the timestamp is unknown and the play keeps full
// weight. Plays in the future are treated as happening now, and a
// non-positive half-life disables decay.
func RecencyWeight(playedAt, now time.Time, halfLifeDays float64) float64 {
	if playedAt.IsZero() || halfLifeDays <= 0 {
		return 1
	}
	daysAgo := DaysBetween(playedAt, now)
	if daysAgo < 0 {
		daysAgo = 0
	}
	return math.Exp(-daysAgo / halfLifeDays)
}
