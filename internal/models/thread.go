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

// ThreadKind says what a thread is attached to, spec.md §3 "Thread".
type ThreadKind string

const (
	ThreadProject ThreadKind = "project"
	ThreadReport  ThreadKind = "report"
	ThreadDM      ThreadKind = "direct_message"
)

// Thread is a message container attached to exactly one project, report,
// or pair of users.
type Thread struct {
	ID        int64      `json:"id"`
	Kind      ThreadKind `json:"type"`
	ProjectID *int64     `json:"project_id,omitempty"`
	ReportID  *int64     `json:"report_id,omitempty"`
	ShowInMod bool        `json:"show_in_mod_view"`
}

// ThreadMessage is one entry in a thread's timeline, spec.md §3
// "ThreadMessage".
type ThreadMessage struct {
	ID        int64     `json:"id"`
	ThreadID  int64     `json:"thread_id"`
	AuthorID  *int64    `json:"author_id,omitempty"` // nil for system-generated messages
	Body      string    `json:"body"`
	Private   bool      `json:"private"` // visible only to moderators/team
	CreatedAt time.Time `json:"created"`
}

func threadFromRow(row pgx.CollectableRow) (Thread, error) {
	var t Thread
	err := row.Scan(&t.ID, &t.Kind, &t.ProjectID, &t.ReportID, &t.ShowInMod)
	return t, err
}

// InsertThread creates a bare thread row.
func InsertThread(ctx context.Context, q db.Querier, t *Thread) error {
	_, err := q.Exec(ctx, `
		INSERT INTO threads (id, type, project_id, report_id, show_in_mod_view)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Kind, t.ProjectID, t.ReportID, t.ShowInMod)
	return err
}

// GetThread fetches a thread by id.
func GetThread(ctx context.Context, q db.Querier, id int64) (*Thread, error) {
	rows, err := db.ScanMany(ctx, q, `
		SELECT id, type, project_id, report_id, show_in_mod_view FROM threads WHERE id = $1`,
		threadFromRow, id)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func threadMessageFromRow(row pgx.CollectableRow) (ThreadMessage, error) {
	var m ThreadMessage
	err := row.Scan(&m.ID, &m.ThreadID, &m.AuthorID, &m.Body, &m.Private, &m.CreatedAt)
	return m, err
}

// GetThreadMessages returns a thread's messages in chronological order.
// Private messages are filtered by the caller based on the viewer's
// permissions, not here — this function always returns the full set,
// matching how the teacher's store layer defers visibility filtering to
// the handler.
func GetThreadMessages(ctx context.Context, q db.Querier, threadID int64) ([]ThreadMessage, error) {
	return db.ScanMany(ctx, q, `
		SELECT id, thread_id, author_id, body, private, created
		FROM thread_messages WHERE thread_id = $1
		ORDER BY created ASC`,
		threadMessageFromRow, threadID)
}

// InsertThreadMessage appends a message to a thread, spec.md §4.12
// "Posting a message... appends; never edits or reorders history".
func InsertThreadMessage(ctx context.Context, q db.Querier, m *ThreadMessage) error {
	return q.QueryRow(ctx, `
		INSERT INTO thread_messages (id, thread_id, author_id, body, private, created)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created`,
		m.ID, m.ThreadID, m.AuthorID, m.Body, m.Private,
	).Scan(&m.CreatedAt)
}

// RemoveThreadMessage deletes a single message (moderator/author
// retraction), spec.md §4.12.
func RemoveThreadMessage(ctx context.Context, q db.Querier, messageID int64) error {
	_, err := q.Exec(ctx, `DELETE FROM thread_messages WHERE id = $1`, messageID)
	return err
}
