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
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/store"
)

var topNumber int

var topArtistsCmd = &cobra.Command{
	Use:   "top-artists [from] [to (optional)]",
	Short: "Gets the user's top artists",
	Long:  `Uses the specified date or date range. Date strings look like 'yyyy', 'yyyy-mm', or 'yyyy-mm-dd'.`,
	Args:  cobra.RangeArgs(0, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := printTop(viper.GetString("database"), currentUser(), topNumber, args, topArtistsAnalysis)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var topTracksCmd = &cobra.Command{
	Use:   "top-tracks [from] [to (optional)]",
	Short: "Gets the user's top tracks",
	Long:  `Uses the specified date or date range. Date strings look like 'yyyy', 'yyyy-mm', or 'yyyy-mm-dd'.`,
	Args:  cobra.RangeArgs(0, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := printTop(viper.GetString("database"), currentUser(), topNumber, args, topTracksAnalysis)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)
	rootCmd.AddCommand(topTracksCmd)

	topArtistsCmd.Flags().IntVarP(&topNumber, "number", "n", 10, "number of results to return")
	topTracksCmd.Flags().IntVarP(&topNumber, "number", "n", 10, "number of results to return")
}

type topFunc func(db *store.Store, user string, start, end time.Time, limit int) (Analysis, error)

func printTop(dbPath, user string, numToReturn int, args []string, top topFunc) error {
	start, end, err := parseDateRangeFromArgs(args)
	if err != nil {
		return err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	out, err := top(db, user, start, end, numToReturn)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func rangeSummary(start, end time.Time) string {
	const dateFormat = "2006-01-02"
	if start.IsZero() && end.IsZero() {
		return "all time"
	}
	return fmt.Sprintf("%s to %s", start.Format(dateFormat), end.Format(dateFormat))
}

func topArtistsAnalysis(db *store.Store, user string, start, end time.Time, limit int) (Analysis, error) {
	artists, err := db.GetTopArtists(user, start, end, limit)
	if err != nil {
		return Analysis{}, fmt.Errorf("topArtists: %w", err)
	}

	a := Analysis{Name: "Top artists", results: [][]string{{"Artist", "Plays"}}}
	var plays int64
	for _, artist := range artists {
		a.results = append(a.results, []string{artist.Artist, strconv.FormatInt(artist.Count, 10)})
		plays += artist.Count
	}
	a.summary = fmt.Sprintf("Found %d artists and %d plays from %s", len(artists), plays, rangeSummary(start, end))
	return a, nil
}

func topTracksAnalysis(db *store.Store, user string, start, end time.Time, limit int) (Analysis, error) {
	tracks, err := db.GetTopTracks(user, start, end, limit)
	if err != nil {
		return Analysis{}, fmt.Errorf("topTracks: %w", err)
	}

	a := Analysis{Name: "Top tracks", results: [][]string{{"Track", "Artist", "Plays"}}}
	var plays int64
	for _, t := range tracks {
		a.results = append(a.results, []string{t.Track, t.Artist, strconv.FormatInt(t.Count, 10)})
		plays += t.Count
	}
	a.summary = fmt.Sprintf("Found %d tracks and %d plays from %s", len(tracks), plays, rangeSummary(start, end))
	return a, nil
}
