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

	"github.com/ademuri/listening-insights/internal/stats"
)

// Night owl labels.
const (
	LabelNightOwl  = "Night Owl"
	LabelEarlyBird = "Early Bird"
	LabelDaytime   = "Daytime Listener"
)

// inNightWindow reports whether hour falls in 22:00-04:59.
func inNightWindow(hour int) bool {
	return hour >= 22 || hour <= 4
}

// HourHistogram buckets timestamped plays by local hour of day. Plays with
// an unknown timestamp are counted in skipped.
func HourHistogram(h History) (hist [24]int, skipped int) {
	loc := h.location()
	for _, p := range h.Plays {
		if p.PlayedAt.IsZero() {
			skipped++
			continue
		}
		hist[p.PlayedAt.In(loc).Hour()]++
	}
	return hist, skipped
}

// NightOwl builds the hour-of-day profile. The peak hour is the busiest
// bucket, ties going to the lowest hour.
func NightOwl(h History) NightOwlPayload {
	hist, skipped := HourHistogram(h)

	total, night, peak := 0, 0, 0
	for hour, c := range hist {
		total += c
		if inNightWindow(hour) {
			night += c
		}
		if c > hist[peak] {
			peak = hour
		}
	}

	payload := NightOwlPayload{
		Histogram:    hist,
		TotalPlays:   total,
		NightPlays:   night,
		SkippedPlays: skipped,
	}
	if total == 0 {
		payload.Label = NoListeningData
		payload.Description = NoListeningData
		return payload
	}

	payload.PeakHour = peak
	payload.IsNightOwl = inNightWindow(peak)
	payload.Score = stats.Round(100*float64(night)/float64(total), 2)
	switch {
	case payload.IsNightOwl:
		payload.Label = LabelNightOwl
	case peak >= 5 && peak <= 11:
		payload.Label = LabelEarlyBird
	default:
		payload.Label = LabelDaytime
	}
	payload.Description = fmt.Sprintf("Peak listening at %02d:00; %.0f%% of plays land between 22:00 and 05:00", peak, payload.Score)
	return payload
}
