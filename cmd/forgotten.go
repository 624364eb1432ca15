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
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/store"
)

// ForgottenFlags holds the raw flag values; dates are parsed at run time so
// relative values like 90d are measured from now.
type ForgottenFlags struct {
	MinPlays          int
	Results           int
	SortBy            string
	LastListenAfter   string
	LastListenBefore  string
	FirstListenAfter  string
	FirstListenBefore string
}

var forgottenFlags ForgottenFlags

var forgottenCmd = &cobra.Command{
	Use:   "forgotten",
	Short: "Surfaces artists heavily listened to in the past but not recently",
	Long:  `Identifies artists that have fallen out of rotation based on dormancy and historical play counts.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := printForgotten(os.Stdout, viper.GetString("database"), currentUser(), forgottenFlags)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(forgottenCmd)

	f := forgottenCmd.Flags()
	f.IntVar(&forgottenFlags.MinPlays, "min-plays", analysis.ThresholdModerate, "Minimum plays for artist inclusion")
	f.IntVar(&forgottenFlags.Results, "results", 10, "Max results shown per interest band")
	f.StringVar(&forgottenFlags.SortBy, "sort", analysis.SortDormancy, "Sort order: 'dormancy' or 'plays'")
	f.StringVar(&forgottenFlags.LastListenAfter, "last_listen_after", "", "Only include artists last played after this date (yyyy-mm-dd or relative like 2y)")
	f.StringVar(&forgottenFlags.LastListenBefore, "last_listen_before", "90d", "Only include artists last played before this date (yyyy-mm-dd or relative like 90d)")
	f.StringVar(&forgottenFlags.FirstListenAfter, "first_listen_after", "", "Only include artists first played after this date")
	f.StringVar(&forgottenFlags.FirstListenBefore, "first_listen_before", "", "Only include artists first played before this date")
}

func forgottenConfig(flags ForgottenFlags) (analysis.ForgottenConfig, error) {
	cfg := analysis.ForgottenConfig{
		MinPlays:       flags.MinPlays,
		ResultsPerBand: flags.Results,
		SortBy:         flags.SortBy,
	}
	if cfg.SortBy != analysis.SortDormancy && cfg.SortBy != analysis.SortPlays {
		return cfg, fmt.Errorf("invalid sort %q: want %q or %q", cfg.SortBy, analysis.SortDormancy, analysis.SortPlays)
	}

	dates := []struct {
		name  string
		value string
		dest  *time.Time
	}{
		{"last_listen_after", flags.LastListenAfter, &cfg.LastListenAfter},
		{"last_listen_before", flags.LastListenBefore, &cfg.LastListenBefore},
		{"first_listen_after", flags.FirstListenAfter, &cfg.FirstListenAfter},
		{"first_listen_before", flags.FirstListenBefore, &cfg.FirstListenBefore},
	}
	for _, d := range dates {
		if d.value == "" {
			continue
		}
		pd, err := parseSingleDatestring(d.value)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dest = pd.Date
	}
	return cfg, nil
}

func forgottenAnalyses(db *store.Store, user string, cfg analysis.ForgottenConfig, at time.Time) ([]Analysis, error) {
	activity, err := db.GetArtistActivity(user, cfg.MinPlays)
	if err != nil {
		return nil, fmt.Errorf("getting artist activity: %w", err)
	}
	results := analysis.ForgottenArtists(activity, cfg, at)

	var out []Analysis
	for _, band := range analysis.Bands {
		artists := results[band]
		if len(artists) == 0 {
			continue
		}
		a := Analysis{
			Name:    fmt.Sprintf("%s interest (%d+ plays)", band, analysis.Threshold(band)),
			results: [][]string{{"Artist", "Plays", "Last listen", "Days dormant"}},
		}
		for _, fa := range artists {
			a.results = append(a.results, []string{
				fa.Artist,
				strconv.FormatInt(fa.Plays, 10),
				fa.LastPlay.Format("2006-01-02"),
				strconv.Itoa(fa.DaysSinceLast),
			})
		}
		out = append(out, a)
	}
	return out, nil
}

func printForgotten(w io.Writer, dbPath, user string, flags ForgottenFlags) error {
	cfg, err := forgottenConfig(flags)
	if err != nil {
		return err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	analyses, err := forgottenAnalyses(db, user, cfg, now())
	if err != nil {
		return err
	}
	if len(analyses) == 0 {
		fmt.Fprintln(w, "No forgotten artists found")
		return nil
	}
	fmt.Fprintln(w, "Forgotten artists")
	for _, a := range analyses {
		fmt.Fprintln(w, a)
	}
	return nil
}
