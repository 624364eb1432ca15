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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/cache"
	"github.com/ademuri/listening-insights/internal/store"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Deletes all cached commentary",
	Long:  `Clears both cache tiers. With --expired, only removes expired entries from the database tier.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := clearCache(cmd.Context(), viper.GetString("database"), viper.GetBool("expired"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(clearCacheCmd)

	var expired bool
	clearCacheCmd.Flags().BoolVar(&expired, "expired", false, "Only purge expired entries")
	viper.BindPFlag("expired", clearCacheCmd.Flags().Lookup("expired"))
}

func clearCache(ctx context.Context, dbPath string, expiredOnly bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if expiredOnly {
		n, err := db.Cache().Purge(ctx)
		if err != nil {
			return fmt.Errorf("purging cache: %w", err)
		}
		fmt.Printf("Purged %d expired cache entries\n", n)
		return nil
	}

	// The memory tier only lives as long as one command, so only the
	// database tier holds anything here.
	if err := cache.NewService(nil, db.Cache(), newLogger()).Clear(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Println("Cleared cache")
	return nil
}
