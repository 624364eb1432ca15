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

package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Report is a monthly insight email.
type Report struct {
	User    string
	Name    string
	Email   string
	RunDay  int
	Variant string
	// Sent is zero until the report has gone out once.
	Sent time.Time
}

// AddReport creates or replaces a report. The user is created if needed.
func (s *Store) AddReport(r Report) error {
	if err := s.CreateUser(r.User); err != nil {
		return err
	}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO Report (user, name, email, run_day, variant) VALUES (?, ?, ?, ?, ?)",
		r.User, r.Name, r.Email, r.RunDay, r.Variant)
	if err != nil {
		return fmt.Errorf("inserting report %q: %w", r.Name, err)
	}
	return nil
}

// GetReports lists reports for user, or for every user when user is empty.
func (s *Store) GetReports(user string) ([]Report, error) {
	query := "SELECT user, name, email, run_day, variant, sent FROM Report"
	var args []any
	if user != "" {
		query += " WHERE user = ?"
		args = append(args, user)
	}
	query += " ORDER BY user, name, email"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		var sent sql.NullTime
		if err := rows.Scan(&r.User, &r.Name, &r.Email, &r.RunDay, &r.Variant, &sent); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		if sent.Valid {
			r.Sent = sent.Time
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// DeleteReport removes a report and reports whether it existed.
func (s *Store) DeleteReport(user, name, email string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM Report WHERE user = ? AND name = ? AND email = ?", user, name, email)
	if err != nil {
		return false, fmt.Errorf("deleting report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *Store) MarkReportSent(user, name, email string, sent time.Time) error {
	_, err := s.db.Exec("UPDATE Report SET sent = ? WHERE user = ? AND name = ? AND email = ?", sent, user, name, email)
	if err != nil {
		return fmt.Errorf("recording report sent: %w", err)
	}
	return nil
}
