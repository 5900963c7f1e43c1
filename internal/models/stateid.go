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

// StateID is a short-lived row backing one in-flight OAuth code exchange,
// spec.md §4.4 "the state parameter round-trips through a server-side
// record, not just a signed cookie, so a provider callback can recover the
// original redirect target and requesting user (for linking) even if the
// browser loses the cookie".
type StateID struct {
	ID          string    `json:"id"` // opaque random token, not a base62 row id
	Provider    string    `json:"provider"`
	RedirectURI string    `json:"redirect_uri"`
	// LinkingUserID is set when this flow links a provider to an
	// already-authenticated account rather than logging in/signing up.
	LinkingUserID *int64    `json:"linking_user_id,omitempty"`
	ExpiresAt     time.Time `json:"expires"`
}

func stateIDFromRow(row pgx.CollectableRow) (StateID, error) {
	var s StateID
	err := row.Scan(&s.ID, &s.Provider, &s.RedirectURI, &s.LinkingUserID, &s.ExpiresAt)
	return s, err
}

// InsertStateID records a new pending OAuth exchange with a fixed TTL,
// spec.md §4.4 "state records expire after 10 minutes".
func InsertStateID(ctx context.Context, q db.Querier, s *StateID) error {
	_, err := q.Exec(ctx, `
		INSERT INTO states (id, provider, redirect_uri, linking_user_id, expires)
		VALUES ($1, $2, $3, $4, now() + interval '10 minutes')`,
		s.ID, s.Provider, s.RedirectURI, s.LinkingUserID)
	return err
}

// ConsumeStateID atomically fetches and deletes a state row in one
// statement, so a replayed callback with the same state parameter always
// misses the second time, per spec.md §4.4 "state tokens are single-use".
func ConsumeStateID(ctx context.Context, q db.Querier, id string) (*StateID, error) {
	rows, err := db.ScanMany(ctx, q, `
		DELETE FROM states WHERE id = $1 AND expires > now()
		RETURNING id, provider, redirect_uri, linking_user_id, expires`,
		stateIDFromRow, id)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// PruneExpiredStates deletes stale state rows left behind by abandoned
// flows; called periodically by a background task rather than per-request.
func PruneExpiredStates(ctx context.Context, q db.Querier) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM states WHERE expires <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
