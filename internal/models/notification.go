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
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/modrinth/labrinth-go/internal/db"
)

// NotificationKind enumerates the inbox event types from spec.md §3
// "Notification".
type NotificationKind string

const (
	NotifyProjectUpdate  NotificationKind = "project_update"
	NotifyTeamInvite     NotificationKind = "team_invite"
	NotifyOrgInvite      NotificationKind = "organization_invite"
	NotifyStatusChange   NotificationKind = "status_change"
	NotifyModeratorMsg   NotificationKind = "moderator_message"
)

// Notification is one inbox entry for a user. Body is kind-specific JSON,
// matching the original's single polymorphic notification body rather
// than N separate tables.
type Notification struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Kind      NotificationKind  `json:"type"`
	Body      json.RawMessage   `json:"body"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created"`
}

func notificationFromRow(row pgx.CollectableRow) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Kind, &n.Body, &n.Read, &n.CreatedAt)
	return n, err
}

// GetNotificationsByUser returns a user's inbox, newest first.
func GetNotificationsByUser(ctx context.Context, q db.Querier, userID int64) ([]Notification, error) {
	return db.ScanMany(ctx, q, `
		SELECT id, user_id, type, body, read, created
		FROM notifications WHERE user_id = $1
		ORDER BY created DESC`,
		notificationFromRow, userID)
}

// InsertNotification creates an unread notification.
func InsertNotification(ctx context.Context, q db.Querier, n *Notification) error {
	return q.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, body, read, created)
		VALUES ($1, $2, $3, $4, false, now())
		RETURNING created`,
		n.ID, n.UserID, n.Kind, n.Body,
	).Scan(&n.CreatedAt)
}

// MarkNotificationsRead flips read=true for the given ids, scoped to
// userID so a caller can't mark someone else's notifications read.
func MarkNotificationsRead(ctx context.Context, q db.Querier, userID int64, ids []int64) error {
	_, err := q.Exec(ctx, `
		UPDATE notifications SET read = true
		WHERE user_id = $1 AND id = ANY($2::bigint[])`, userID, toBigintArray(ids))
	return err
}

// NotificationIDExists is the existence check used by the id allocator.
func NotificationIDExists(ctx context.Context, q db.Querier, id uint64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)`, int64(id)).Scan(&exists)
	return exists, err
}

// RemoveNotifications deletes the given notifications, scoped to userID.
func RemoveNotifications(ctx context.Context, q db.Querier, userID int64, ids []int64) error {
	_, err := q.Exec(ctx, `
		DELETE FROM notifications WHERE user_id = $1 AND id = ANY($2::bigint[])`, userID, toBigintArray(ids))
	return err
}
