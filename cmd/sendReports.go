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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/store"
)

type SendReportsConfig struct {
	DbPath         string
	From           string
	SendgridAPIKey string
	DryRun         bool
	// Dates overrides the reported range, as for the email command. Empty
	// means the previous calendar month.
	Dates []string
}

var sendReportsCmd = &cobra.Command{
	Use:   "send-reports [start [end]]",
	Short: "Sends every report that is due this month.",
	Long: `Sends every report that is due this month. Reports cover the previous
calendar month unless a date range is given.`,
	Args: cobra.MaximumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("reports_dry_run") {
			return nil
		}
		return requireConfig("from", "sendgrid_api_key")
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := SendReportsConfig{
			DbPath:         viper.GetString("database"),
			From:           viper.GetString("from"),
			SendgridAPIKey: viper.GetString("sendgrid_api_key"),
			DryRun:         viper.GetBool("reports_dry_run"),
			Dates:          args,
		}
		err := sendReports(cmd.Context(), config, time.Now())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendReportsCmd)

	var dryRun bool
	sendReportsCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("reports_dry_run", sendReportsCmd.Flags().Lookup("dry_run"))
}

// reportDue reports whether r should go out at now, and why not otherwise.
func reportDue(r store.Report, now time.Time) (bool, string) {
	toSendThisMonth := time.Date(now.Year(), now.Month(), r.RunDay, 0, 0, 0, 0, now.Location())
	toSendLastMonth := time.Date(now.Year(), now.Month()-1, r.RunDay, 0, 0, 0, 0, now.Location())
	if r.Sent.After(toSendThisMonth) {
		return false, fmt.Sprintf("already sent this month on %s", r.Sent.Format("2006-01-02"))
	}
	if now.Before(toSendThisMonth) && r.Sent.After(toSendLastMonth) {
		return false, fmt.Sprintf("already sent for last month on %s", r.Sent.Format("2006-01-02"))
	}
	return true, ""
}

func sendReports(ctx context.Context, config SendReportsConfig, now time.Time) error {
	start, end, err := emailDateRange(config.Dates, now)
	if err != nil {
		return fmt.Errorf("report range: %w", err)
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	reports, err := db.GetReports("")
	db.Close()
	if err != nil {
		return err
	}

	emailConfigs := make([]SendEmailConfig, 0, len(reports))
	for _, r := range reports {
		if due, why := reportDue(r, now); !due {
			fmt.Printf("Report (%q, %q) %s, not sending.\n", r.User, r.Name, why)
			continue
		}
		variant, err := analysis.ParseVariant(r.Variant)
		if err != nil {
			variant = analysis.VariantWitty
		}
		emailConfigs = append(emailConfigs, SendEmailConfig{
			DbPath:         config.DbPath,
			User:           r.User,
			From:           config.From,
			To:             r.Email,
			ReportName:     r.Name,
			DryRun:         config.DryRun,
			SendgridAPIKey: config.SendgridAPIKey,
			Variant:        variant,
			Start:          start,
			End:            end,
		})
	}

	errOccurred := false
	for _, emailConfig := range emailConfigs {
		fmt.Printf("Sending report (%q, %q)\n", emailConfig.User, emailConfig.ReportName)
		if err := sendEmail(ctx, emailConfig); err != nil {
			errOccurred = true
			fmt.Printf("sendEmail: %v\n", err)
		}
	}

	if errOccurred {
		return fmt.Errorf("Error occurred while sending reports")
	}
	return nil
}
