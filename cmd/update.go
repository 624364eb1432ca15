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
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/store"
)

// maxArtistTags caps how many last.fm tags become genres.
const maxArtistTags = 5

type UpdateConfig struct {
	DbPath            string
	User              string
	After             string
	Force             bool
	TagUpdateInterval time.Duration
	TagMinPlays       int
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetches listening history from last.fm",
	Long:  `Stores scrobbles and artist tags in the local SQLite database. Tags become artist genres.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("user", "api_key", "secret")
	},
	Run: func(cmd *cobra.Command, args []string) {
		intervalStr := viper.GetString("tag-update-interval")
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			fmt.Printf("Invalid tag-update-interval: %v. Using default 1 year.\n", err)
			interval = 24 * 365 * time.Hour
		}

		config := UpdateConfig{
			DbPath:            viper.GetString("database"),
			User:              currentUser(),
			After:             viper.GetString("after"),
			Force:             viper.GetBool("force"),
			TagUpdateInterval: interval,
			TagMinPlays:       viper.GetInt("tag-min-plays"),
		}

		err = updateDatabase(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	var afterString string
	updateCmd.Flags().StringVar(&afterString, "after", "", "Only get listening data after this date, in yyyy-mm-dd format")
	viper.BindPFlag("after", updateCmd.Flags().Lookup("after"))

	var force bool
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Get all listening data, regardless of what's already present (idempotent)")
	viper.BindPFlag("force", updateCmd.Flags().Lookup("force"))

	var tagUpdateInterval string
	updateCmd.Flags().StringVar(&tagUpdateInterval, "tag-update-interval", "8760h", "Time duration after which to re-fetch tags (e.g., 24h)")
	viper.BindPFlag("tag-update-interval", updateCmd.Flags().Lookup("tag-update-interval"))

	var tagMinPlays int
	updateCmd.Flags().IntVar(&tagMinPlays, "tag-min-plays", 2, "Only fetch tags for artists with more plays than this")
	viper.BindPFlag("tag-min-plays", updateCmd.Flags().Lookup("tag-min-plays"))
}

func updateDatabase(config UpdateConfig) error {
	var after time.Time
	var err error
	if len(config.After) > 0 {
		after, err = time.Parse("2006-01-02", config.After)
		if err != nil {
			return fmt.Errorf("--after: %w", err)
		}
	}

	user := strings.ToLower(config.User)
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	lastfmClient := lastfm.New(lastFmApiKey, lastFmSecret)
	lastfmClient.SetUserAgent("listening-insights/1.0")

	err = db.CreateUser(user)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	lastUpdated, err := db.GetLastUpdated(user)
	if err != nil {
		return err
	}
	started := now()
	if !lastUpdated.IsZero() && started.Sub(lastUpdated).Hours() < 24 && !config.Force {
		fmt.Printf("User data was already updated in the past 24 hours\n")
		return nil
	}
	fmt.Printf("User data was last updated: %s\n", lastUpdated.Format("2006-01-02"))

	sessionKey, err := db.GetSessionKey(user)
	if err != nil {
		return err
	}
	if sessionKey != "" {
		lastfmClient.SetSession(sessionKey)
		fmt.Printf("Using session key for user %q\n", user)
	}

	latestPlay, err := db.GetLatestPlay(user)
	if err != nil {
		return fmt.Errorf("getting latest play: %w", err)
	}
	fmt.Printf("Latest local listening data is from: %s\n", latestPlay.Format("2006-01-02"))

	fmt.Printf("Updating database for %q\n", user)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)
	page := 1 // First page is 1
	pages := 0
	for {
		var recentTracks lastfm.UserGetRecentTracks
		err := retry.Do(
			func() error {
				var err error
				recentTracks, err = lastfmClient.User.GetRecentTracks(lastfm.P{
					"limit": 200,
					"page":  page,
					"user":  user,
				})
				return err
			},
			retry.RetryIf(isServerError),
		)
		if err != nil {
			return fmt.Errorf("fetching recent tracks: %w", err)
		}

		if pages == 0 {
			pages = recentTracks.TotalPages
		}
		if len(recentTracks.Tracks) == 0 {
			break
		}

		plays := make([]analysis.PlayEvent, 0, len(recentTracks.Tracks))
		var oldestDate time.Time
		for _, t := range recentTracks.Tracks {
			if t.Date.Uts == "" {
				// Currently playing.
				continue
			}
			uts, err := strconv.ParseInt(t.Date.Uts, 10, 64)
			if err != nil {
				return fmt.Errorf("parsing date: %w", err)
			}
			play := scrobbleToPlay(t.Artist.Name, t.Name, uts)
			plays = append(plays, play)
			oldestDate = play.PlayedAt
		}

		err = db.AddPlays(user, plays)
		if err != nil {
			return fmt.Errorf("inserting plays (page %d): %w", page, err)
		}

		fmt.Printf("Downloaded page %v of %v (oldest: %s)\n", page, pages, oldestDate.Format("2006-01-02"))
		page += 1

		if !after.IsZero() && oldestDate.Before(after) {
			break
		}
		if page > pages {
			break
		}
		if !config.Force && !latestPlay.IsZero() && oldestDate.Before(latestPlay.AddDate(0, 0, -7)) {
			fmt.Println("Refreshed back to existing data")
			break
		}

		limiter.Wait(context.Background())
	}

	fmt.Println("Updating tags...")
	err = updateArtistTags(db, lastfmClient, limiter, config.TagUpdateInterval, config.TagMinPlays)
	if err != nil {
		return fmt.Errorf("updateArtistTags: %w", err)
	}

	err = db.SetLastUpdated(user, started)
	if err != nil {
		return err
	}

	return nil
}

func isServerError(err error) bool {
	if lerr, ok := err.(*lastfm.LastfmError); ok {
		if lerr.Code/100 == 5 {
			fmt.Printf("last.fm errored, retrying: %v\n", lerr)
			return true
		}
	}
	return false
}

// lastfmID namespaces a last.fm name so it cannot collide with provider ids
// from imported history.
func lastfmID(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return "lastfm:" + strings.Join(parts, "/")
}

// scrobbleToPlay converts a scrobble. last.fm supplies no release year,
// duration or audio features, so those stay unknown.
func scrobbleToPlay(artist, track string, uts int64) analysis.PlayEvent {
	return analysis.PlayEvent{
		TrackID:    lastfmID(artist, track),
		TrackName:  track,
		ArtistRefs: []analysis.ArtistRef{{ID: lastfmID(artist), Name: artist}},
		PlayedAt:   time.Unix(uts, 0),
	}
}

// tagsToGenres keeps the strongest tags, lowercased and deduplicated.
func tagsToGenres(names []string, counts []int) []string {
	var genres []string
	seen := make(map[string]bool)
	for i, name := range names {
		if len(genres) == maxArtistTags {
			break
		}
		g := strings.ToLower(strings.TrimSpace(name))
		if g == "" || seen[g] || (i < len(counts) && counts[i] == 0) {
			continue
		}
		seen[g] = true
		genres = append(genres, g)
	}
	return genres
}

func updateArtistTags(db *store.Store, client *lastfm.Api, limiter *rate.Limiter, interval time.Duration, minPlays int) error {
	artists, err := db.GetArtistsNeedingTagUpdate(interval, minPlays)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d artists needing tag updates\n", len(artists))

	for i, artist := range artists {
		fmt.Printf("[%d/%d] Fetching tags for artist: %s\n", i+1, len(artists), artist.Name)
		limiter.Wait(context.Background())

		var topTags lastfm.ArtistGetTopTags
		err := retry.Do(
			func() error {
				var err error
				topTags, err = client.Artist.GetTopTags(lastfm.P{
					"artist":      artist.Name,
					"autocorrect": 1,
				})
				return err
			},
			retry.RetryIf(isServerError),
		)
		if err != nil {
			fmt.Printf("Error fetching tags for artist %s: %v\n", artist.Name, err)
			continue
		}

		var tags []string
		var counts []int
		for _, t := range topTags.Tags {
			tags = append(tags, t.Name)
			c, _ := strconv.Atoi(t.Count)
			counts = append(counts, c)
		}

		if err := db.SaveArtistTags(artist.ID, tagsToGenres(tags, counts)); err != nil {
			return fmt.Errorf("saving tags for artist %s: %w", artist.Name, err)
		}
	}

	return nil
}
