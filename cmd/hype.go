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
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/copywriter"
	"github.com/ademuri/listening-insights/internal/store"
)

type HypeConfig struct {
	DbPath     string
	User       string
	Types      []copywriter.InsightType
	Variant    analysis.Variant
	Regenerate bool
	DateArgs   []string
}

var hypeCmd = &cobra.Command{
	Use:   "hype [insight_type...] [from] [to]",
	Short: "Writes short commentary about listening insights",
	Long: `Generates copy for each insight type with the configured language model.
  <insight_type> is one or more of: ` + strings.Join(typeNames(), ", ") + `; default is hype.
  Optional date arguments can be provided at the end (e.g. '2023-01' or '2023-01 2023-06').
  Generated copy is cached; --regenerate skips the cached entry.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("user")
	},
	Run: func(cmd *cobra.Command, args []string) {
		config, err := hypeConfigFromArgs(args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := printHype(cmd.Context(), os.Stdout, config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(hypeCmd)

	var variant string
	hypeCmd.Flags().StringVar(&variant, "variant", "witty", "Tone of hype copy: witty or poetic")
	viper.BindPFlag("variant", hypeCmd.Flags().Lookup("variant"))

	var regenerate bool
	hypeCmd.Flags().BoolVar(&regenerate, "regenerate", false, "Ignore cached copy and generate again")
	viper.BindPFlag("regenerate", hypeCmd.Flags().Lookup("regenerate"))
}

func typeNames() []string {
	var names []string
	for _, t := range copywriter.Types() {
		names = append(names, string(t))
	}
	return names
}

func parseInsightTypes(names []string) ([]copywriter.InsightType, error) {
	if len(names) == 0 {
		return []copywriter.InsightType{copywriter.Hype}, nil
	}
	types := make([]copywriter.InsightType, 0, len(names))
	for _, n := range names {
		t, err := copywriter.ParseInsightType(n)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func hypeConfigFromArgs(args []string) (HypeConfig, error) {
	rest, dateArgs := splitDateArgs(args)
	types, err := parseInsightTypes(rest)
	if err != nil {
		return HypeConfig{}, err
	}
	variant, err := analysis.ParseVariant(viper.GetString("variant"))
	if err != nil {
		return HypeConfig{}, err
	}
	return HypeConfig{
		DbPath:     viper.GetString("database"),
		User:       currentUser(),
		Types:      types,
		Variant:    variant,
		Regenerate: viper.GetBool("regenerate"),
		DateArgs:   dateArgs,
	}, nil
}

// generateCopy runs the orchestrator for each requested type over one history.
func generateCopy(ctx context.Context, db *store.Store, config HypeConfig) ([]copywriter.Result, InsightsReport, error) {
	start, end, err := parseDateRangeFromArgs(config.DateArgs)
	if err != nil {
		return nil, InsightsReport{}, err
	}
	h, err := loadHistory(db, config.User, start, end)
	if err != nil {
		return nil, InsightsReport{}, err
	}
	in := analysis.ComputeAll(h, psychoConfig())
	report := InsightsReport{User: config.User, Start: start, End: end, Counts: analysis.CountHistory(h), Insights: in}

	orch, err := newOrchestrator(db, newLogger())
	if err != nil {
		return nil, report, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]copywriter.Result, 0, len(config.Types))
	for _, t := range config.Types {
		results = append(results, orch.Generate(ctx, copywriter.Request{
			UserID:     config.User,
			Type:       t,
			Payload:    copywriter.PayloadFor(t, in, h, config.Variant),
			Regenerate: config.Regenerate,
		}))
	}
	return results, report, nil
}

func printHype(ctx context.Context, w io.Writer, config HypeConfig) error {
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	results, _, err := generateCopy(ctx, db, config)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s (%s)\n%s\n\n", r.Type, describeSource(r), displayText(r))
	}
	return nil
}

func describeSource(r copywriter.Result) string {
	if r.FromCache && r.Fallback {
		return "cache, fallback"
	}
	return string(r.Source)
}

// displayText flattens structured copy into readable lines.
func displayText(r copywriter.Result) string {
	ok, isOK := r.Parsed.(copywriter.ParsedOK)
	if !isOK {
		return r.Text
	}
	var lines []string
	for _, key := range []string{"headline", "archetype", "summary", "body"} {
		if s := ok.String(key); s != "" {
			lines = append(lines, s)
		}
	}
	if tips, _ := ok.Fields["tips"].([]any); len(tips) > 0 {
		for _, tip := range tips {
			if s, _ := tip.(string); s != "" {
				lines = append(lines, "  * "+s)
			}
		}
	}
	return strings.Join(lines, "\n")
}
