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
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/store"
)

// newArtistMinPlays is how many plays make an artist count as discovered, and
// how few earlier plays still count as new.
const newArtistMinPlays = 5

var newArtistsNumber int

var newArtistsCmd = &cobra.Command{
	Use:   "new-artists [from] [to (optional)]",
	Short: "Gets new artists for the given time period",
	Long:  `Uses the specified date or date range. Date strings look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd', or relative like '30d'.`,
	Args:  cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := printTop(viper.GetString("database"), currentUser(), newArtistsNumber, args, newArtistsAnalysis)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(newArtistsCmd)

	newArtistsCmd.Flags().IntVarP(&newArtistsNumber, "number", "n", 0, "number of results to return")
}

// newArtistsAnalysis lists artists played more than newArtistMinPlays times in
// [start, end) that had fewer than newArtistMinPlays plays before start.
func newArtistsAnalysis(db *store.Store, user string, start, end time.Time, limit int) (Analysis, error) {
	var a Analysis
	prev, err := db.GetTopArtists(user, time.Unix(0, 0), start, 0)
	if err != nil {
		return a, fmt.Errorf("newArtists: %w", err)
	}
	cur, err := db.GetTopArtists(user, start, end, 0)
	if err != nil {
		return a, fmt.Errorf("newArtists: %w", err)
	}

	prevCounts := make(map[string]int64, len(prev))
	for _, p := range prev {
		prevCounts[p.ID] = p.Count
	}
	var found []store.ArtistPlayCount
	for _, c := range cur {
		if prevCounts[c.ID] < newArtistMinPlays && c.Count > newArtistMinPlays {
			found = append(found, c)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Count > found[j].Count
	})

	a.Name = "New artists"
	a.results = [][]string{{"Artist", "Plays"}}
	var plays int64
	for i, artist := range found {
		if limit <= 0 || i < limit {
			a.results = append(a.results, []string{artist.Artist, strconv.FormatInt(artist.Count, 10)})
		}
		plays += artist.Count
	}
	a.summary = fmt.Sprintf("Found %d new artists with %d plays from %s", len(found), plays, rangeSummary(start, end))
	return a, nil
}
