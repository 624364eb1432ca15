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
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestGetImplicitDateRange_year(t *testing.T) {
	doTestGetImplicitDateRange(t, "2020", "2021", "2006")
}

func TestGetImplicitDateRange_month(t *testing.T) {
	doTestGetImplicitDateRange(t, "2020-01", "2020-02", "2006-01")
}

func TestGetImplicitDateRange_day(t *testing.T) {
	doTestGetImplicitDateRange(t, "2020-01-01", "2020-01-02", "2006-01-02")
}

func TestGetImplicitDateRange_invalid(t *testing.T) {
	for _, ds := range []string{"2020-01-0123", "not_real", "12x"} {
		_, _, err := getImplicitDateRange(ds)
		if err == nil {
			t.Fatalf("Expected error parsing %q", ds)
		}
		if !strings.Contains(err.Error(), "Invalid format") {
			t.Fatalf("Should have error with invalid format: %v", err)
		}
	}
}

func doTestGetImplicitDateRange(t *testing.T, startString string, endString string, format string) {
	t.Helper()
	start, end, err := getImplicitDateRange(startString)
	if err != nil {
		t.Fatalf("Parsing %q: %v", startString, err)
	}

	expectedStart, err := time.Parse(format, startString)
	if err != nil {
		t.Fatalf("Constructing expectedStart: %v", err)
	}

	expectedEnd, err := time.Parse(format, endString)
	if err != nil {
		t.Fatalf("Constructing expectedEnd: %v", err)
	}

	if start != expectedStart {
		t.Fatalf("Expected start to be %q, got %q", expectedStart, start)
	}

	if end != expectedEnd {
		t.Fatalf("Expected end to be %q, got %q", expectedEnd, end)
	}
}

func TestGetExplicitDateRange_valid(t *testing.T) {
	const startString = "2020"
	const endString = "2020-02-01"
	expectedStart, _ := time.Parse("2006", startString)
	expectedEnd, _ := time.Parse("2006-01-02", endString)

	start, end, err := getExplicitDateRange(startString, endString)
	if err != nil {
		t.Fatalf("getExplicitDateRange(%q, %q): %v", startString, endString, err)
	}
	if start != expectedStart || end != expectedEnd {
		t.Fatalf("got %v - %v, want %v - %v", start, end, expectedStart, expectedEnd)
	}
}

func TestGetExplicitDateRange_invalid(t *testing.T) {
	if _, _, err := getExplicitDateRange("2020", "abc"); err == nil {
		t.Fatalf("Expected error when parsing invalid datestring")
	}
	if _, _, err := getExplicitDateRange("2021", "2020"); err == nil {
		t.Fatalf("Expected error when end is before start")
	}
}

func TestParseSingleDatestring_Relative(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	defer func(orig func() time.Time) { now = orig }(now)
	now = func() time.Time { return fixed }

	tests := []struct {
		input string
		want  time.Time
	}{
		{"30d", fixed.AddDate(0, 0, -30)},
		{"12w", fixed.AddDate(0, 0, -84)},
		{"6m", fixed.AddDate(0, -6, 0)},
		{"10y", fixed.AddDate(-10, 0, 0)},
	}

	for _, tc := range tests {
		pd, err := parseSingleDatestring(tc.input)
		if err != nil {
			t.Errorf("parseSingleDatestring(%q) returned error: %v", tc.input, err)
			continue
		}
		if !pd.Relative || !pd.Date.Equal(tc.want) {
			t.Errorf("parseSingleDatestring(%q) = %+v; want %v", tc.input, pd, tc.want)
		}
	}

	start, end, err := getImplicitDateRange("30d")
	if err != nil || !end.Equal(fixed) || !start.Equal(fixed.AddDate(0, 0, -30)) {
		t.Errorf("getImplicitDateRange(30d) = %v, %v, %v", start, end, err)
	}
}

func TestParseDateRangeFromArgs_allTime(t *testing.T) {
	start, end, err := parseDateRangeFromArgs(nil)
	if err != nil || !start.IsZero() || !end.IsZero() {
		t.Errorf("parseDateRangeFromArgs(nil) = %v, %v, %v", start, end, err)
	}
	if _, _, err := parseDateRangeFromArgs([]string{"2020", "2021", "2022"}); err == nil {
		t.Error("Expected error for three dates")
	}
}

func TestSplitDateArgs(t *testing.T) {
	tests := []struct {
		args      []string
		wantRest  []string
		wantDates []string
	}{
		{[]string{"radar", "hype"}, []string{"radar", "hype"}, nil},
		{[]string{"radar", "2023"}, []string{"radar"}, []string{"2023"}},
		{[]string{"radar", "2023-01", "2023-06"}, []string{"radar"}, []string{"2023-01", "2023-06"}},
		{[]string{"2023", "2024"}, []string{}, []string{"2023", "2024"}},
	}
	for _, tt := range tests {
		rest, dates := splitDateArgs(tt.args)
		if !reflect.DeepEqual(rest, tt.wantRest) || !reflect.DeepEqual(dates, tt.wantDates) {
			t.Errorf("splitDateArgs(%v) = %v, %v; want %v, %v", tt.args, rest, dates, tt.wantRest, tt.wantDates)
		}
	}
}
