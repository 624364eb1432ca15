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
	"encoding/json"
	"testing"
	"time"

	"github.com/ademuri/listening-insights/internal/analysis"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", `{"a":1}`, `{"a":1}`},
		{"Fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Fenced", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"Chatter", `Sure! Here you go: {"a":{"b":2}} Enjoy.`, `{"a":{"b":2}}`},
		{"No object", "just words", "just words"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.in); got != tt.want {
				t.Errorf("cleanJSONResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name   string
		typ    InsightType
		text   string
		wantOK bool
		isNil  bool
	}{
		{"Free text", MusicalAge, "You are 42 at heart.", false, true},
		{"Radar ok", Radar, `{"headline":"h","summary":"s"}`, true, false},
		{"Radar missing summary", Radar, `{"headline":"h"}`, false, false},
		{"Psycho blank archetype", Psycho, `{"archetype":" ","summary":"s"}`, false, false},
		{"Hype fenced", Hype, "```json\n{\"headline\":\"h\",\"body\":\"b\"}\n```", true, false},
		{"Hype wrong type", Hype, `{"headline":"h","body":3}`, false, false},
		{"Not JSON", Hype, "headline: h", false, false},
		{"JSON null", Hype, "null", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStructured(tt.typ, tt.text)
			if tt.isNil {
				if got != nil {
					t.Errorf("parseStructured = %#v, want nil", got)
				}
				return
			}
			switch p := got.(type) {
			case ParsedOK:
				if !tt.wantOK {
					t.Errorf("parsed ok, want failure: %v", p.Fields)
				}
			case ParseFailed:
				if tt.wantOK {
					t.Errorf("parse failed: %v", p.Err)
				}
				if p.Raw != tt.text {
					t.Errorf("Raw = %q, want original text", p.Raw)
				}
			default:
				t.Fatalf("unexpected result %#v", got)
			}
		})
	}
}

func TestFallbacksAreValid(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	for _, typ := range Types() {
		var payload any
		if typ == Hype {
			payload = sampleHype(analysis.VariantPoetic)
		}
		for i := 0; i < 5; i++ {
			text := fallbackText(typ, payload, now.Add(time.Duration(i)*time.Minute))
			if text == "" {
				t.Fatalf("%s: empty fallback", typ)
			}
			if typ.ExpectsJSON() {
				if _, ok := parseStructured(typ, text).(ParsedOK); !ok {
					t.Errorf("%s fallback does not validate: %s", typ, text)
				}
			}
		}
		if d := disabledFor(typ); typ.ExpectsJSON() {
			if _, ok := parseStructured(typ, d).(ParsedOK); !ok {
				t.Errorf("%s disabled text does not validate: %s", typ, d)
			}
		}
	}
}

func TestFallbackRotatesByMinute(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	a := fallbackText(MusicalAge, nil, now)
	if b := fallbackText(MusicalAge, nil, now.Add(30*time.Second)); a != b {
		t.Error("fallback changed within the same minute")
	}
	if b := fallbackText(MusicalAge, nil, now.Add(time.Minute)); a == b {
		t.Error("fallback did not rotate after a minute")
	}
}

func TestHypeFallbackFollowsVariant(t *testing.T) {
	now := time.Unix(0, 0)
	poetic := fallbackText(Hype, sampleHype(analysis.VariantPoetic), now)
	var fields map[string]string
	if err := json.Unmarshal([]byte(poetic), &fields); err != nil {
		t.Fatal(err)
	}
	if fields["headline"] != "A year written in melody" {
		t.Errorf("poetic fallback = %q", fields["headline"])
	}
	if got := fallbackText(Hype, nil, now); got != hypeFallbacks[analysis.VariantWitty][0] {
		t.Errorf("unknown variant fallback = %q, want witty", got)
	}
}
