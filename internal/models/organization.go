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

	"github.com/jackc/pgx/v5"

	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
)

// Organization mirrors spec.md §3 "Organization".
type Organization struct {
	ID                        int64                   `json:"id"`
	Slug                      string                  `json:"slug"`
	Name                      string                  `json:"name"`
	Description               string                  `json:"description"`
	DefaultProjectPermissions ProjectPermissions       `json:"default_project_permissions"`
	Icon                      string                  `json:"icon_url,omitempty"`
	Color                     *int32                  `json:"color,omitempty"`
	TeamID                    int64                   `json:"team_id"`
}

const orgsNamespace = "organizations"
const orgsSlugNamespace = "organizations"

func orgFromRow(row pgx.CollectableRow) (Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Slug, &o.Name, &o.Description, &o.DefaultProjectPermissions, &o.Icon, &o.Color, &o.TeamID)
	return o, err
}

// GetOrganizationsMany resolves ids/slugs to organizations in one pass.
func GetOrganizationsMany(ctx context.Context, q db.Querier, f *cache.Fabric, tokens []string) (map[string]Organization, error) {
	return cache.GetCachedKeys[Organization](ctx, f, orgsNamespace, orgsSlugNamespace, false, tokens,
		func(ctx context.Context, missing []string) (map[string]cache.MissResult[Organization], error) {
			ids := make([]int64, 0, len(missing))
			slugs := make([]string, 0, len(missing))
			for _, m := range missing {
				if id, ok := parseID(m); ok {
					ids = append(ids, id)
				} else {
					slugs = append(slugs, strings.ToLower(m))
				}
			}
			rows, err := db.ScanMany(ctx, q, `
				SELECT id, slug, name, description, default_project_permissions, icon_url, color, team_id
				FROM organizations
				WHERE id = ANY($1::bigint[]) OR lower(slug) = ANY($2::text[])`,
				orgFromRow, toBigintArray(ids), slugs)
			if err != nil {
				return nil, err
			}
			out := make(map[string]cache.MissResult[Organization], len(rows))
			for _, o := range rows {
				mr := cache.MissResult[Organization]{Slug: strings.ToLower(o.Slug), Value: o}
				out[baseidStr(o.ID)] = mr
				out[strings.ToLower(o.Slug)] = mr
			}
			return out, nil
		})
}

// GetOrganization fetches a single organization by id or slug.
func GetOrganization(ctx context.Context, q db.Querier, f *cache.Fabric, token string) (*Organization, error) {
	orgs, err := GetOrganizationsMany(ctx, q, f, []string{token})
	if err != nil {
		return nil, err
	}
	if o, ok := orgs[token]; ok {
		return &o, nil
	}
	return nil, nil
}

// GetOrganizationByProjectID looks up the organization owning a project, if
// any; used by the permission engine's org-derived branch.
func GetOrganizationByProjectID(ctx context.Context, q db.Querier, f *cache.Fabric, projectID int64) (*Organization, error) {
	var orgID *int64
	err := q.QueryRow(ctx, `SELECT organization_id FROM projects WHERE id = $1`, projectID).Scan(&orgID)
	if err != nil {
		return nil, err
	}
	if orgID == nil {
		return nil, nil
	}
	return GetOrganization(ctx, q, f, baseidStr(*orgID))
}

// InsertOrganization creates a new organization; the caller is responsible
// for creating its backing team first and passing the team id.
func InsertOrganization(ctx context.Context, q db.Querier, o *Organization) error {
	_, err := q.Exec(ctx, `
		INSERT INTO organizations (id, slug, name, description, default_project_permissions, icon_url, color, team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.Slug, o.Name, o.Description, o.DefaultProjectPermissions, o.Icon, o.Color, o.TeamID)
	return err
}

// ClearOrganizationCache invalidates an organization's cache entries.
func ClearOrganizationCache(ctx context.Context, f *cache.Fabric, id int64, slug string) error {
	return cache.Invalidate(ctx, f, orgsNamespace, orgsSlugNamespace, baseidStr(id), slug)
}

// RemoveOrganization deletes an organization. Its team and team_members
// cascade at the schema level (ON DELETE CASCADE); associated projects are
// detached (organization_id set to NULL) rather than deleted, per spec.md
// §3 "Ownership & lifetimes".
func RemoveOrganization(ctx context.Context, q db.Querier, f *cache.Fabric, id int64, slug string) error {
	if _, err := q.Exec(ctx, `UPDATE projects SET organization_id = NULL WHERE organization_id = $1`, id); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id); err != nil {
		return err
	}
	return ClearOrganizationCache(ctx, f, id, slug)
}
