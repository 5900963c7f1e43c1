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

// Session is a browser session credential backing a session-cookie JWT,
// spec.md §4.4/§4.5 "Scope". The JWT itself only carries the session id;
// this row is where expiry and revocation actually live, so a stolen-but-
// still-valid-looking JWT can be killed by deleting the row.
type Session struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Scopes      uint64    `json:"-"` // Scope bitflags; sessions normally carry ScopeAll
	UserAgent   string    `json:"user_agent,omitempty"`
	IP          string    `json:"ip,omitempty"`
	CreatedAt   time.Time `json:"created"`
	LastUsed    time.Time `json:"refreshed"`
	ExpiresAt   time.Time `json:"expires"`
}

func sessionFromRow(row pgx.CollectableRow) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.Scopes, &s.UserAgent, &s.IP, &s.CreatedAt, &s.LastUsed, &s.ExpiresAt)
	return s, err
}

const sessionColumns = `id, user_id, scopes, user_agent, ip, created, refreshed, expires`

// GetSession fetches a session by id, regardless of expiry — callers check
// ExpiresAt themselves so an expired-but-present row can still be reported
// distinctly from "no such session" (spec.md §8 error taxonomy).
func GetSession(ctx context.Context, q db.Querier, id int64) (*Session, error) {
	rows, err := db.ScanMany(ctx, q, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, sessionFromRow, id)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// SessionIDExists reports whether id is already taken, the
// baseid.ExistsFunc collision check for newly minted session ids.
func SessionIDExists(ctx context.Context, q db.Querier, id uint64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, int64(id)).Scan(&exists)
	return exists, err
}

// InsertSession creates a new 14-day browser session, spec.md §4.4
// "sessions.. live 14 days from creation, refreshed on use".
func InsertSession(ctx context.Context, q db.Querier, s *Session) error {
	return q.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, scopes, user_agent, ip, created, refreshed, expires)
		VALUES ($1, $2, $3, $4, $5, now(), now(), now() + interval '14 days')
		RETURNING created, refreshed, expires`,
		s.ID, s.UserID, s.Scopes, s.UserAgent, s.IP,
	).Scan(&s.CreatedAt, &s.LastUsed, &s.ExpiresAt)
}

// RefreshSession bumps refreshed and extends expires by another 14 days
// from now, the sliding-window renewal spec.md §4.4 describes.
func RefreshSession(ctx context.Context, q db.Querier, id int64) error {
	_, err := q.Exec(ctx, `
		UPDATE sessions SET refreshed = now(), expires = now() + interval '14 days' WHERE id = $1`, id)
	return err
}

// RevokeSession deletes a session row, instantly invalidating any JWT that
// references it.
func RevokeSession(ctx context.Context, q db.Querier, id int64) error {
	_, err := q.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// RevokeAllSessionsForUser deletes every session belonging to a user, used
// by a "log out everywhere" action or a forced credential rotation.
func RevokeAllSessionsForUser(ctx context.Context, q db.Querier, userID int64) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PersonalAccessToken is a long-lived, user-named credential with its own
// scope grant, spec.md §4.5 "PATs may carry any subset of Scope, chosen at
// creation and fixed thereafter".
type PersonalAccessToken struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Name      string     `json:"name"`
	// TokenHash is the SHA-512 digest of the token; the plaintext token is
	// shown to the user exactly once at creation and never stored.
	TokenHash string     `json:"-"`
	Scopes    uint64     `json:"scopes"`
	CreatedAt time.Time  `json:"created"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	ExpiresAt *time.Time `json:"expires,omitempty"`
}

func patFromRow(row pgx.CollectableRow) (PersonalAccessToken, error) {
	var p PersonalAccessToken
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.TokenHash, &p.Scopes, &p.CreatedAt, &p.LastUsed, &p.ExpiresAt)
	return p, err
}

const patColumns = `id, user_id, name, token_hash, scopes, created, last_used, expires`

// GetPATByHash looks up a token by its precomputed digest, the per-request
// authentication path (spec.md §4.5 "bearer tokens are hashed before
// lookup; the database never stores or compares plaintext").
func GetPATByHash(ctx context.Context, q db.Querier, hash string) (*PersonalAccessToken, error) {
	rows, err := db.ScanMany(ctx, q, `SELECT `+patColumns+` FROM pats WHERE token_hash = $1`, patFromRow, hash)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// GetPATsByUser lists a user's tokens (names and metadata only — the
// caller never has the plaintext or hash to show).
func GetPATsByUser(ctx context.Context, q db.Querier, userID int64) ([]PersonalAccessToken, error) {
	return db.ScanMany(ctx, q, `SELECT `+patColumns+` FROM pats WHERE user_id = $1 ORDER BY created DESC`, patFromRow, userID)
}

// InsertPAT creates a new token row.
func InsertPAT(ctx context.Context, q db.Querier, p *PersonalAccessToken) error {
	return q.QueryRow(ctx, `
		INSERT INTO pats (id, user_id, name, token_hash, scopes, created, last_used, expires)
		VALUES ($1, $2, $3, $4, $5, now(), NULL, $6)
		RETURNING created`,
		p.ID, p.UserID, p.Name, p.TokenHash, p.Scopes, p.ExpiresAt,
	).Scan(&p.CreatedAt)
}

// TouchPAT updates last_used to now, best-effort bookkeeping on successful
// auth.
func TouchPAT(ctx context.Context, q db.Querier, id int64) error {
	_, err := q.Exec(ctx, `UPDATE pats SET last_used = now() WHERE id = $1`, id)
	return err
}

// RevokePAT deletes a token row by id, scoped to userID so a user can only
// revoke their own tokens.
func RevokePAT(ctx context.Context, q db.Querier, userID, id int64) error {
	_, err := q.Exec(ctx, `DELETE FROM pats WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// OAuthAccessToken is an issued token for a third-party application acting
// on a user's behalf, spec.md §4.4's "OAuth app" actor, distinct from a
// PAT (app-issued, narrower and app-revocable) and a Session
// (browser-issued, first-party).
type OAuthAccessToken struct {
	ID          int64      `json:"id"`
	ClientID    int64      `json:"client_id"`
	UserID      int64      `json:"user_id"`
	TokenHash   string     `json:"-"`
	Scopes      uint64     `json:"scopes"`
	CreatedAt   time.Time  `json:"created"`
	ExpiresAt   time.Time  `json:"expires"`
}

func oauthTokenFromRow(row pgx.CollectableRow) (OAuthAccessToken, error) {
	var t OAuthAccessToken
	err := row.Scan(&t.ID, &t.ClientID, &t.UserID, &t.TokenHash, &t.Scopes, &t.CreatedAt, &t.ExpiresAt)
	return t, err
}

const oauthTokenColumns = `id, client_id, user_id, token_hash, scopes, created, expires`

// GetOAuthTokenByHash is the per-request authentication path for
// application-issued tokens, mirroring GetPATByHash.
func GetOAuthTokenByHash(ctx context.Context, q db.Querier, hash string) (*OAuthAccessToken, error) {
	rows, err := db.ScanMany(ctx, q, `SELECT `+oauthTokenColumns+` FROM oauth_access_tokens WHERE token_hash = $1`, oauthTokenFromRow, hash)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// InsertOAuthAccessToken records a newly issued application token.
func InsertOAuthAccessToken(ctx context.Context, q db.Querier, t *OAuthAccessToken) error {
	return q.QueryRow(ctx, `
		INSERT INTO oauth_access_tokens (id, client_id, user_id, token_hash, scopes, created, expires)
		VALUES ($1, $2, $3, $4, $5, now(), $6)
		RETURNING created`,
		t.ID, t.ClientID, t.UserID, t.TokenHash, t.Scopes, t.ExpiresAt,
	).Scan(&t.CreatedAt)
}

// RevokeOAuthAccessTokensForClient deletes every token a user granted to a
// specific application, spec.md §4.4 "revoking an app's access invalidates
// every token it was issued, not just the most recent".
func RevokeOAuthAccessTokensForClient(ctx context.Context, q db.Querier, userID, clientID int64) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM oauth_access_tokens WHERE user_id = $1 AND client_id = $2`, userID, clientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
