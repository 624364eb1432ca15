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
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/store"
)

// InsightsReport is the machine-readable output of the insights command.
type InsightsReport struct {
	User     string            `json:"user" yaml:"user"`
	Start    time.Time         `json:"start,omitempty" yaml:"start,omitempty"`
	End      time.Time         `json:"end,omitempty" yaml:"end,omitempty"`
	Counts   analysis.Counts   `json:"counts" yaml:"counts"`
	Insights analysis.Insights `json:"insights" yaml:"insights"`
}

var insightsCmd = &cobra.Command{
	Use:   "insights [from] [to (optional)]",
	Short: "Computes listening insights",
	Long: `Computes musical age, mood ring, genre passport, night owl, radar and
psychometric insights. Date strings look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd'
or a relative '30d', '12w', '6m', '1y'. Without dates, all history is used.`,
	Args: cobra.RangeArgs(0, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := printInsights(os.Stdout, viper.GetString("database"), currentUser(), viper.GetString("format"), args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)

	var format string
	insightsCmd.Flags().StringVar(&format, "format", "table", "Output format: table, yaml or json")
	viper.BindPFlag("format", insightsCmd.Flags().Lookup("format"))
}

func buildInsightsReport(dbPath, user string, args []string) (InsightsReport, analysis.History, error) {
	start, end, err := parseDateRangeFromArgs(args)
	if err != nil {
		return InsightsReport{}, analysis.History{}, err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return InsightsReport{}, analysis.History{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	h, err := loadHistory(db, user, start, end)
	if err != nil {
		return InsightsReport{}, analysis.History{}, err
	}

	report := InsightsReport{
		User:     user,
		Start:    start,
		End:      end,
		Counts:   analysis.CountHistory(h),
		Insights: analysis.ComputeAll(h, psychoConfig()),
	}
	return report, h, nil
}

func printInsights(w io.Writer, dbPath, user, format string, args []string) error {
	report, _, err := buildInsightsReport(dbPath, user, args)
	if err != nil {
		return err
	}
	return writeReport(w, report, format)
}

func writeReport(w io.Writer, report InsightsReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()

	case "", "table":
		fmt.Fprintf(w, "Insights for %s: %s\n\n", report.User, countsSummary(report.Counts))
		for _, a := range insightAnalyses(report.Insights) {
			fmt.Fprintln(w, a)
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
