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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/store"
)

// addReportCmd represents the addReport command
var addReportCmd = &cobra.Command{
	Use:   "add-report",
	Short: "Adds a monthly insights email, to be sent periodically with `send-reports`",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := addReport(viper.GetString("database"), store.Report{
			User:    currentUser(),
			Name:    viper.GetString("name"),
			Email:   viper.GetString("dest"),
			RunDay:  viper.GetInt("run_day"),
			Variant: viper.GetString("report_variant"),
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(addReportCmd)

	var email string
	addReportCmd.Flags().StringVar(&email, "dest", "", "Destination email address")
	addReportCmd.MarkFlagRequired("dest")
	viper.BindPFlag("dest", addReportCmd.Flags().Lookup("dest"))

	var reportName string
	addReportCmd.Flags().StringVar(&reportName, "name", "", "Report name - included in the email title, and used for periodically sending")
	addReportCmd.MarkFlagRequired("name")
	viper.BindPFlag("name", addReportCmd.Flags().Lookup("name"))

	var runDay int
	addReportCmd.Flags().IntVar(&runDay, "run_day", 1, "Which day of the month to run this report on")
	viper.BindPFlag("run_day", addReportCmd.Flags().Lookup("run_day"))

	var variant string
	addReportCmd.Flags().StringVar(&variant, "variant", "witty", "Tone of the report's hype copy: witty or poetic")
	viper.BindPFlag("report_variant", addReportCmd.Flags().Lookup("variant"))
}

func addReport(dbPath string, r store.Report) error {
	if r.RunDay < 1 || r.RunDay > 28 {
		return fmt.Errorf("run_day out of range: %d", r.RunDay)
	}
	if len(r.Email) == 0 {
		return fmt.Errorf("Must specify destination email")
	}
	if len(r.Name) == 0 {
		return fmt.Errorf("Must specify report name")
	}
	variant, err := analysis.ParseVariant(r.Variant)
	if err != nil {
		return err
	}
	r.Variant = string(variant)

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return db.AddReport(r)
}
