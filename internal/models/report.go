// Copyright (c) 2026 Modrinth Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package models

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/modrinth/labrinth-go/internal/db"
)

// ReportItemKind says what kind of entity a report targets, spec.md §3
// "Report".
type ReportItemKind string

const (
	ReportProject ReportItemKind = "project"
	ReportUser    ReportItemKind = "user"
	ReportVersion ReportItemKind = "version"
)

// Report is a moderation flag raised by any user against a project, user,
// or version.
type Report struct {
	ID        int64          `json:"id"`
	ReporterID int64         `json:"reporter"`
	ItemKind  ReportItemKind `json:"item_type"`
	ItemID    int64          `json:"item_id"`
	Reason    string         `json:"report_type"`
	Body      string         `json:"body"`
	ThreadID  int64          `json:"thread_id"`
	Closed    bool           `json:"closed"`
	CreatedAt time.Time      `json:"created"`
}

func reportFromRow(row pgx.CollectableRow) (Report, error) {
	var r Report
	err := row.Scan(&r.ID, &r.ReporterID, &r.ItemKind, &r.ItemID, &r.Reason, &r.Body, &r.ThreadID, &r.Closed, &r.CreatedAt)
	return r, err
}

const reportColumns = `id, reporter_id, item_type, item_id, report_type, body, thread_id, closed, created`

// GetOpenReports returns every unclosed report, for the moderator queue.
func GetOpenReports(ctx context.Context, q db.Querier) ([]Report, error) {
	return db.ScanMany(ctx, q, `
		SELECT `+reportColumns+` FROM reports WHERE closed = false ORDER BY created ASC`,
		reportFromRow)
}

// GetReportsByReporter returns a user's own submitted reports.
func GetReportsByReporter(ctx context.Context, q db.Querier, reporterID int64) ([]Report, error) {
	return db.ScanMany(ctx, q, `
		SELECT `+reportColumns+` FROM reports WHERE reporter_id = $1 ORDER BY created DESC`,
		reportFromRow, reporterID)
}

// GetReport fetches a single report by id.
func GetReport(ctx context.Context, q db.Querier, id int64) (*Report, error) {
	rows, err := db.ScanMany(ctx, q, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, reportFromRow, id)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// InsertReport creates a new report and its backing thread id (the thread
// itself is created by the caller via InsertThread before this call, per
// spec.md §4.12 "Every report owns exactly one thread, created alongside
// it").
func InsertReport(ctx context.Context, q db.Querier, r *Report) error {
	return q.QueryRow(ctx, `
		INSERT INTO reports (id, reporter_id, item_type, item_id, report_type, body, thread_id, closed, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, now())
		RETURNING created`,
		r.ID, r.ReporterID, r.ItemKind, r.ItemID, r.Reason, r.Body, r.ThreadID,
	).Scan(&r.CreatedAt)
}

// CloseReport marks a report resolved. Closing is one-way per spec.md
// §4.12 "closed reports cannot be reopened".
func CloseReport(ctx context.Context, q db.Querier, id int64) error {
	_, err := q.Exec(ctx, `UPDATE reports SET closed = true WHERE id = $1`, id)
	return err
}

// RemoveReport deletes a report row; its thread is left intact (threads
// outlive the report they were opened for, per spec.md §3 "Ownership &
// lifetimes").
func RemoveReport(ctx context.Context, q db.Querier, id int64) error {
	_, err := q.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	return err
}
