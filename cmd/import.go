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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/store"
)

// HistoryExport is the file format read by import.
type HistoryExport struct {
	Plays   []analysis.PlayEvent     `json:"plays" yaml:"plays"`
	Artists []analysis.ArtistProfile `json:"artists" yaml:"artists"`
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Imports a JSON or YAML listening history export",
	Long: `Loads plays and artist profiles into the local database. Files ending in
.yaml or .yml are read as YAML, anything else as JSON. Re-importing the same
file is idempotent. Plays without a timestamp are kept once per track.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := importHistory(viper.GetString("database"), currentUser(), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func readExport(path string) (HistoryExport, error) {
	var export HistoryExport
	data, err := os.ReadFile(path)
	if err != nil {
		return export, fmt.Errorf("reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &export)
	default:
		err = json.Unmarshal(data, &export)
	}
	if err != nil {
		return export, fmt.Errorf("decoding %s: %w", path, err)
	}
	return export, nil
}

func importHistory(dbPath, user, path string) error {
	export, err := readExport(path)
	if err != nil {
		return err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.CreateUser(user); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	if err := db.SaveArtists(export.Artists); err != nil {
		return fmt.Errorf("saving artists: %w", err)
	}
	if err := db.AddPlays(user, export.Plays); err != nil {
		return fmt.Errorf("saving plays: %w", err)
	}

	fmt.Printf("Imported %d plays and %d artists for %q\n", len(export.Plays), len(export.Artists), user)
	return nil
}
