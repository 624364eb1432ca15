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
	"time"

	"github.com/ademuri/listening-insights/internal/analysis"
)

var fallbacks = map[InsightType][]string{
	MusicalAge: {
		"Your playlist has a birth certificate, and it is older than some of your friends.",
		"Somewhere between the cassette and the cloud, your taste found its era.",
		"Your ears keep their own calendar, and it does not match the one on your wall.",
	},
	MoodRing: {
		"Your mood ring is glowing. The color says you pick songs with feelings.",
		"Happy, chill, a little stormy: your queue wears its heart on its sleeve.",
		"Your listening has weather, and today's forecast is tracks on repeat.",
	},
	GenrePassport: {
		"Your music passport has a few stamps already, and room for plenty more.",
		"Border control waved your playlists through. Genre travel looks good on you.",
		"Every artist is a new country, and you keep booking trips.",
	},
	NightOwl: {
		"The clock says one thing, your queue says another.",
		"Some people keep office hours. You keep listening hours.",
		"Whatever the time, there is a song for it, and you found it.",
	},
	Radar: {
		`{"headline":"Your listening radar is up","summary":"Five signals, one unmistakable taste. Keep spinning and the picture gets sharper."}`,
		`{"headline":"Signal locked","summary":"Mood, energy, range, nostalgia and night hours all point to someone who takes music seriously."}`,
	},
	Psycho: {
		`{"archetype":"The Curious Listener","summary":"Your habits mix comfort picks with the occasional leap into the unknown.","tips":["Queue up one album you have never heard this week."]}`,
		`{"archetype":"The Steady Explorer","summary":"You know what you like and still leave the door open for surprises.","tips":["Dig into a genre your favorite artist borrows from."]}`,
	},
}

var hypeFallbacks = map[analysis.Variant][]string{
	analysis.VariantWitty: {
		`{"headline":"Main character soundtrack unlocked 🎧","body":"Your queue has range, your repeat button has stamina, and your taste is honestly kind of iconic."}`,
		`{"headline":"Certified aux cord champion","body":"Nobody asked for your playlist and everybody is better for it. Keep the hits coming."}`,
	},
	analysis.VariantPoetic: {
		`{"headline":"A year written in melody","body":"Between the first note and the last, your days found their rhythm, one song at a time."}`,
		`{"headline":"The soundtrack of your seasons","body":"Your listening is a map of quiet mornings and loud nights, drawn in chords and refrains."}`,
	},
}

// disabledText is served when generation is turned off.
var disabledText = map[InsightType]string{
	Radar:  `{"headline":"Commentary is off","summary":"Your listening radar is ready below."}`,
	Psycho: `{"archetype":"Commentary is off","summary":"Your psychometrics are ready below.","tips":[]}`,
	Hype:   `{"headline":"Commentary is off","body":"Your stats are ready below."}`,
}

const disabledPlain = "Commentary is off."

// fallbackText picks a canned line for t that rotates every minute.
func fallbackText(t InsightType, payload any, now time.Time) string {
	pool := fallbacks[t]
	if t == Hype {
		pool = hypeFallbacks[variantOf(payload)]
	}
	idx := (now.Unix() / 60) % int64(len(pool))
	if idx < 0 {
		idx = -idx
	}
	return pool[idx]
}

func variantOf(payload any) analysis.Variant {
	switch p := payload.(type) {
	case analysis.HypePayload:
		if _, ok := hypeFallbacks[p.Variant]; ok {
			return p.Variant
		}
	case *analysis.HypePayload:
		if p != nil {
			if _, ok := hypeFallbacks[p.Variant]; ok {
				return p.Variant
			}
		}
	}
	return analysis.VariantWitty
}

func disabledFor(t InsightType) string {
	if s, ok := disabledText[t]; ok {
		return s
	}
	return disabledPlain
}
