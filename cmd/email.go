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
	"html"
	"os"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/copywriter"
	"github.com/ademuri/listening-insights/internal/store"
)

type SendEmailConfig struct {
	DbPath         string
	User           string
	From           string
	To             string
	ReportName     string
	DryRun         bool
	SendgridAPIKey string
	Variant        analysis.Variant
	Start          time.Time
	End            time.Time
}

var emailCmd = &cobra.Command{
	Use:   "email <address> [date] [date]",
	Short: "Sends an email report",
	Long: `Emails the listening insights and their commentary to the given address.
  Optional date arguments can be provided at the end (e.g. '2023-01' or '2023-01 2023-06').
  If no dates are provided, defaults to the previous month.`,
	Args: cobra.RangeArgs(1, 3),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("dryRun") {
			return requireConfig("user")
		}
		return requireConfig("user", "from", "sendgrid_api_key")
	},
	Run: func(cmd *cobra.Command, args []string) {
		start, end, err := emailDateRange(args[1:], time.Now())
		if err != nil {
			fmt.Printf("Error parsing dates: %v\n", err)
			os.Exit(1)
		}
		variant, err := analysis.ParseVariant(viper.GetString("variant"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		config := SendEmailConfig{
			DbPath:         viper.GetString("database"),
			User:           currentUser(),
			From:           viper.GetString("from"),
			To:             args[0],
			DryRun:         viper.GetBool("dryRun"),
			SendgridAPIKey: viper.GetString("sendgrid_api_key"),
			Variant:        variant,
			Start:          start,
			End:            end,
		}
		if err := sendEmail(cmd.Context(), config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))
}

// emailDateRange defaults to the calendar month before now.
func emailDateRange(dateArgs []string, now time.Time) (time.Time, time.Time, error) {
	if len(dateArgs) > 0 {
		return parseDateRangeFromArgs(dateArgs)
	}
	start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, end, nil
}

func sendEmail(ctx context.Context, config SendEmailConfig) error {
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	h, err := loadHistory(db, config.User, config.Start, config.End)
	if err != nil {
		return err
	}
	in := analysis.ComputeAll(h, psychoConfig())

	orch, err := newOrchestrator(db, newLogger())
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	hype := orch.Generate(ctx, copywriter.Request{
		UserID:  config.User,
		Type:    copywriter.Hype,
		Payload: analysis.Aggregate(h, in, config.Variant),
	})

	subject, out := generateEmailContent(config, analysis.CountHistory(h), insightAnalyses(in), hype)

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	from := mail.NewEmail("listening-insights", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, displayText(hype), out)
	client := sendgrid.NewSendClient(config.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("sendEmail: status %d: %s", resp.StatusCode, resp.Body)
	}

	if len(config.ReportName) > 0 {
		if err := db.MarkReportSent(config.User, config.ReportName, config.To, time.Now()); err != nil {
			return fmt.Errorf("Recording last run: %w", err)
		}
	}
	return nil
}

func generateEmailContent(config SendEmailConfig, counts analysis.Counts, analyses []Analysis, hype copywriter.Result) (subject string, body string) {
	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	out += fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(displayHeadline(hype)))
	out += fmt.Sprintf("<p>%s</p>\n", html.EscapeString(displayBody(hype)))
	out += fmt.Sprintf("<p>%s</p>\n", html.EscapeString(countsSummary(counts)))

	for _, a := range analyses {
		out += `
		<div>
`
		out += fmt.Sprintf("<h2>%s</h2>\n", html.EscapeString(a.Name))
		if len(a.results) <= 1 {
			out += "<div>No listens found.</div>\n"
		} else {
			out += `
			<table>
				<thead>
					<tr>
`
			for _, header := range a.results[0] {
				out += fmt.Sprintf("<th>%s</th>", html.EscapeString(header))
			}
			out += `				</tr>
			</thead>
			<tbody>`

			for _, row := range a.results[1:] {
				out += "<tr>\n"
				for _, column := range row {
					out += fmt.Sprintf("<td>%s</td>\n", html.EscapeString(column))
				}
				out += "</tr>\n"
			}
			out += `
				</tbody>
			</table>
`
		}
		out += fmt.Sprintf(`<div>%s</div>
		</div>`, html.EscapeString(a.summary))
	}
	out += `
  </body>
</html>
`

	subjectSuffix := ""
	if len(config.ReportName) > 0 {
		subjectSuffix = ": " + config.ReportName
	}
	// Subject line format: Listening report for <User> <Start> to <End> <Suffix>
	subject = fmt.Sprintf("Listening report for %s %s to %s%s", config.User, config.Start.Format("2006-01-02"), config.End.Format("2006-01-02"), subjectSuffix)
	return subject, out
}

func displayHeadline(r copywriter.Result) string {
	if ok, isOK := r.Parsed.(copywriter.ParsedOK); isOK {
		return ok.String("headline")
	}
	return "Your listening report"
}

func displayBody(r copywriter.Result) string {
	if ok, isOK := r.Parsed.(copywriter.ParsedOK); isOK {
		return ok.String("body")
	}
	return r.Text
}
