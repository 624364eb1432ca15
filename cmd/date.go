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
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ParsedDate is a date argument and the precision it was given at.
type ParsedDate struct {
	Date     time.Time
	Year     bool
	Month    bool
	Day      bool
	Relative bool
}

var relativeDate = regexp.MustCompile(`^(\d+)([dwmy])$`)

// now is swapped out by tests.
var now = time.Now

// parseDateRangeFromArgs turns zero, one or two date arguments into a
// half-open range. No arguments means all time, returned as zero times.
func parseDateRangeFromArgs(args []string) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 0:

	case 1:
		start, end, err = getImplicitDateRange(args[0])

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1])

	default:
		err = fmt.Errorf("Expected at most two date arguments")
	}
	return
}

func getImplicitDateRange(ds string) (start time.Time, end time.Time, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	start = date.Date
	switch {
	case date.Year:
		end = start.AddDate(1, 0, 0)

	case date.Month:
		end = start.AddDate(0, 1, 0)

	case date.Day:
		end = start.AddDate(0, 0, 1)

	case date.Relative:
		end = now()

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}

	return
}

func getExplicitDateRange(startString, endString string) (start time.Time, end time.Time, err error) {
	startParsed, err := parseSingleDatestring(startString)
	if err != nil {
		return
	}
	start = startParsed.Date

	endParsed, err := parseSingleDatestring(endString)
	if err != nil {
		return
	}
	end = endParsed.Date

	if !end.After(start) {
		err = fmt.Errorf("End date %q is not after start date %q", endString, startString)
	}
	return
}

func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	if m := relativeDate.FindStringSubmatch(ds); m != nil {
		amount, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			err = fmt.Errorf("Parsing relative datestring: %w", convErr)
			return
		}
		t := now()
		switch m[2] {
		case "d":
			date.Date = t.AddDate(0, 0, -amount)
		case "w":
			date.Date = t.AddDate(0, 0, -7*amount)
		case "m":
			date.Date = t.AddDate(0, -amount, 0)
		case "y":
			date.Date = t.AddDate(-amount, 0, 0)
		}
		date.Relative = true
		return
	}

	layouts := []struct {
		pattern *regexp.Regexp
		layout  string
		name    string
		mark    *bool
	}{
		{regexp.MustCompile(`^\d{4}$`), "2006", "year", &date.Year},
		{regexp.MustCompile(`^\d{4}-\d{2}$`), "2006-01", "month", &date.Month},
		{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02", "day", &date.Day},
	}
	for _, l := range layouts {
		if !l.pattern.MatchString(ds) {
			continue
		}
		date.Date, err = time.Parse(l.layout, ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as %s: %w", l.name, err)
			return
		}
		*l.mark = true
		return
	}

	err = fmt.Errorf("Invalid format: %q", ds)
	return
}

// splitDateArgs peels up to two trailing date arguments off args.
func splitDateArgs(args []string) (rest []string, dates []string) {
	rest = args
	for i := 0; i < 2 && len(rest) > 0; i++ {
		last := rest[len(rest)-1]
		if _, err := parseSingleDatestring(last); err != nil {
			break
		}
		dates = append([]string{last}, dates...)
		rest = rest[:len(rest)-1]
	}
	return rest, dates
}
