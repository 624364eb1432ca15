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
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/store"
)

// listReportsCmd represents the listReports command
var listReportsCmd = &cobra.Command{
	Use:   "list-reports",
	Short: "Lists all reports configured for the user, or for everyone when no user is set",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := listReports(os.Stdout, viper.GetString("database"), currentUser())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listReportsCmd)
}

func listReports(w io.Writer, dbPath string, user string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	reports, err := db.GetReports(user)
	if err != nil {
		return err
	}

	a := Analysis{Name: "Reports", results: [][]string{{"User", "Name", "Email", "Run day", "Variant", "Last sent"}}}
	for _, r := range reports {
		sent := "never"
		if !r.Sent.IsZero() {
			sent = r.Sent.Format("2006-01-02")
		}
		a.results = append(a.results, []string{r.User, r.Name, r.Email, strconv.Itoa(r.RunDay), r.Variant, sent})
	}
	a.summary = fmt.Sprintf("%d reports", len(reports))
	fmt.Fprintln(w, a)
	return nil
}
