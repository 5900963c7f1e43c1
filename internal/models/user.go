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
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
)

// Role is a user's site-wide role, distinct from any project/org team role.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User mirrors spec.md §3 "User".
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	Role           Role      `json:"role"`
	Badges         int64     `json:"badges"`
	OrganizationID *int64    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created"`
}

const usersNamespace = "users"
const usersSlugNamespace = "users" // usernames are case-folded secondary keys

func userFromRow(row pgx.CollectableRow) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.Badges, &u.OrganizationID, &u.CreatedAt)
	return u, err
}

// GetUser fetches one user by id, cache-through.
func GetUser(ctx context.Context, q db.Querier, f *cache.Fabric, id int64) (*User, error) {
	users, err := GetUsersMany(ctx, q, f, []string{baseidStr(id)})
	if err != nil {
		return nil, err
	}
	if u, ok := users[baseidStr(id)]; ok {
		return &u, nil
	}
	return nil, nil
}

// GetUserByUsername fetches one user by its case-folded username.
func GetUserByUsername(ctx context.Context, q db.Querier, f *cache.Fabric, username string) (*User, error) {
	users, err := GetUsersMany(ctx, q, f, []string{username})
	if err != nil {
		return nil, err
	}
	if u, ok := users[username]; ok {
		return &u, nil
	}
	return nil, nil
}

// GetUsersMany resolves a mixed list of ids/usernames in one cache pass,
// per spec.md §4.3's "get_many accepts ids or slugs".
func GetUsersMany(ctx context.Context, q db.Querier, f *cache.Fabric, tokens []string) (map[string]User, error) {
	return cache.GetCachedKeys[User](ctx, f, usersNamespace, usersSlugNamespace, false, tokens,
		func(ctx context.Context, missing []string) (map[string]cache.MissResult[User], error) {
			ids := make([]int64, 0, len(missing))
			usernames := make([]string, 0, len(missing))
			for _, m := range missing {
				if id, ok := parseID(m); ok {
					ids = append(ids, id)
				} else {
					usernames = append(usernames, strings.ToLower(m))
				}
			}
			rows, err := db.ScanMany(ctx, q, `
				SELECT id, username, email, role, badges, organization_id, created
				FROM users
				WHERE id = ANY($1::bigint[]) OR lower(username) = ANY($2::text[])`,
				userFromRow, toBigintArray(ids), usernames)
			if err != nil {
				return nil, err
			}
			out := make(map[string]cache.MissResult[User], len(rows))
			for _, u := range rows {
				mr := cache.MissResult[User]{Slug: strings.ToLower(u.Username), Value: u}
				out[baseidStr(u.ID)] = mr
				out[strings.ToLower(u.Username)] = mr
			}
			return out, nil
		})
}

// UserIDExists reports whether id is already taken, the baseid.ExistsFunc
// collision check for newly minted user ids.
func UserIDExists(ctx context.Context, q db.Querier, id uint64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, int64(id)).Scan(&exists)
	return exists, err
}

// InsertUser creates a new user row (site signup / OAuth upsert target).
func InsertUser(ctx context.Context, q db.Querier, u *User) error {
	return q.QueryRow(ctx, `
		INSERT INTO users (id, username, email, role, badges, organization_id, created)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING created`,
		u.ID, u.Username, u.Email, u.Role, u.Badges, u.OrganizationID,
	).Scan(&u.CreatedAt)
}

// UpdateUser applies a partial update. Only non-nil fields are written,
// matching the double_option PATCH semantics from spec.md §6/§9 at the
// handler layer; this function itself takes concrete values because the
// handler has already resolved "absent vs null vs value".
func UpdateUser(ctx context.Context, q db.Querier, f *cache.Fabric, id int64, username *string, email *string, role *Role) error {
	_, err := q.Exec(ctx, `
		UPDATE users SET
			username = COALESCE($2, username),
			email = COALESCE($3, email),
			role = COALESCE($4, role)
		WHERE id = $1`, id, username, email, role)
	if err != nil {
		return err
	}
	return ClearUserCache(ctx, f, id, username)
}

// RemoveUser deletes a user row.
func RemoveUser(ctx context.Context, q db.Querier, f *cache.Fabric, id int64) error {
	_, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return cache.Invalidate(ctx, f, usersNamespace, usersSlugNamespace, baseidStr(id))
}

// ClearUserCache invalidates a user's cache entry and, if known, their slug
// alias.
func ClearUserCache(ctx context.Context, f *cache.Fabric, id int64, username *string) error {
	slug := ""
	if username != nil {
		slug = strings.ToLower(*username)
	}
	return cache.Invalidate(ctx, f, usersNamespace, usersSlugNamespace, baseidStr(id), slug)
}

// GetUserIDByExternalAuth looks up the user a provider identity is already
// linked to, the first step of the OAuth callback's "upsert a users row
// keyed by (provider, external_id)" per spec.md §6. A nil return with a nil
// error means this is the identity's first login.
func GetUserIDByExternalAuth(ctx context.Context, q db.Querier, provider, externalID string) (*int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		SELECT user_id FROM external_auths WHERE provider = $1 AND external_id = $2`,
		provider, externalID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

// LinkExternalAuth records that a provider identity resolves to userID,
// either newly (first login) or idempotently (re-login with the same
// provider account).
func LinkExternalAuth(ctx context.Context, q db.Querier, provider, externalID string, userID int64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO external_auths (provider, external_id, user_id, linked)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (provider, external_id) DO UPDATE SET user_id = EXCLUDED.user_id`,
		provider, externalID, userID)
	return err
}
