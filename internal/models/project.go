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

// ProjectStatus is the state machine from spec.md §4.6.
type ProjectStatus string

const (
	StatusDraft      ProjectStatus = "draft"
	StatusProcessing ProjectStatus = "processing"
	StatusApproved   ProjectStatus = "approved"
	StatusRejected   ProjectStatus = "rejected"
	StatusWithdrawn  ProjectStatus = "withdrawn"
	StatusUnlisted   ProjectStatus = "unlisted"
	StatusArchived   ProjectStatus = "archived"
	StatusPrivate    ProjectStatus = "private"
	StatusScheduled  ProjectStatus = "scheduled"
)

// Searchable reports whether a project in this status should be pushed to
// the search index, per spec.md §4.9.
func (s ProjectStatus) Searchable() bool {
	switch s {
	case StatusApproved, StatusUnlisted, StatusArchived:
		return true
	default:
		return false
	}
}

// LinkKind enumerates the typed link_urls set from spec.md §3.
type LinkKind string

const (
	LinkIssues   LinkKind = "issues"
	LinkSource   LinkKind = "source"
	LinkWiki     LinkKind = "wiki"
	LinkDiscord  LinkKind = "discord"
	LinkDonation LinkKind = "donation"
)

// ProjectLink is one row of a project's link_urls set.
type ProjectLink struct {
	Kind     LinkKind `json:"kind"`
	Platform string   `json:"platform,omitempty"` // for donation links: "patreon", "ko-fi", ...
	URL      string   `json:"url"`
}

// Project mirrors spec.md §3 "Project".
type Project struct {
	ID                  int64         `json:"id"`
	Slug                string        `json:"slug"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	Body                string        `json:"body"`
	Status              ProjectStatus `json:"status"`
	RequestedStatus      *ProjectStatus `json:"requested_status,omitempty"`
	TeamID              int64         `json:"team_id"`
	OrganizationID      *int64        `json:"organization_id,omitempty"`
	Categories          []string      `json:"categories"`
	AdditionalCategories []string     `json:"additional_categories"`
	Loaders             []string      `json:"loaders"`
	License             string        `json:"license"`
	ModeratorMessage    string        `json:"moderator_message,omitempty"`
	MonetizationStatus  string        `json:"monetization_status"`
	ThreadID            int64         `json:"thread_id"`
	Downloads           int64         `json:"downloads"`
	Followers           int64         `json:"followers"`
	ApprovedAt          *time.Time    `json:"approved,omitempty"`
	CreatedAt           time.Time     `json:"published"`
}

const projectsNamespace = "projects"
const projectsSlugNamespace = "projects"

func projectFromRow(row pgx.CollectableRow) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Body, &p.Status, &p.RequestedStatus,
		&p.TeamID, &p.OrganizationID, &p.Categories, &p.AdditionalCategories, &p.Loaders, &p.License,
		&p.ModeratorMessage, &p.MonetizationStatus, &p.ThreadID, &p.Downloads, &p.Followers,
		&p.ApprovedAt, &p.CreatedAt)
	return p, err
}

const projectColumns = `id, slug, title, description, body, status, requested_status, team_id,
	organization_id, categories, additional_categories, loaders, license, moderator_message,
	monetization_status, thread_id, downloads, followers, approved_at, created`

// GetProjectsMany resolves a mixed id/slug token list to Project rows in
// one cache pass, per spec.md §4.3.
func GetProjectsMany(ctx context.Context, q db.Querier, f *cache.Fabric, tokens []string) (map[string]Project, error) {
	return cache.GetCachedKeys[Project](ctx, f, projectsNamespace, projectsSlugNamespace, false, tokens,
		func(ctx context.Context, missing []string) (map[string]cache.MissResult[Project], error) {
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
				SELECT `+projectColumns+`
				FROM projects
				WHERE id = ANY($1::bigint[]) OR lower(slug) = ANY($2::text[])`,
				projectFromRow, toBigintArray(ids), slugs)
			if err != nil {
				return nil, err
			}
			out := make(map[string]cache.MissResult[Project], len(rows))
			for _, p := range rows {
				mr := cache.MissResult[Project]{Slug: strings.ToLower(p.Slug), Value: p}
				out[baseidStr(p.ID)] = mr
				out[strings.ToLower(p.Slug)] = mr
			}
			return out, nil
		})
}

// GetProject fetches a single project by id or slug.
func GetProject(ctx context.Context, q db.Querier, f *cache.Fabric, token string) (*Project, error) {
	projects, err := GetProjectsMany(ctx, q, f, []string{token})
	if err != nil {
		return nil, err
	}
	if p, ok := projects[token]; ok {
		return &p, nil
	}
	return nil, nil
}

// SlugExists checks slug uniqueness case-insensitively, excluding
// excludeID (used when validating a rename). Callers must re-check this
// inside the same transaction as the write to close the TOCTOU window
// spec.md §5 calls out ("optimistic check-then-write... double-check
// inside transaction").
func SlugExists(ctx context.Context, q db.Querier, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE lower(slug) = lower($1) AND id != $2)`, slug, excludeID).Scan(&exists)
	return exists, err
}

// ProjectIDExists is the `EXISTS(SELECT 1 FROM projects WHERE id = $1)`
// check used by the id allocator (spec.md §4.1).
func ProjectIDExists(ctx context.Context, q db.Querier, id uint64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, int64(id)).Scan(&exists)
	return exists, err
}

// SearchableProjectIDs lists every project in a status the search index
// should carry, the source set for a full force_reindex rebuild.
func SearchableProjectIDs(ctx context.Context, q db.Querier) ([]int64, error) {
	rows, err := q.Query(ctx, `
		SELECT id FROM projects WHERE status IN ($1, $2, $3)`,
		StatusApproved, StatusArchived, StatusUnlisted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertProject creates a new project row, in draft status, inside the
// caller's transaction.
func InsertProject(ctx context.Context, q db.Querier, p *Project) error {
	_, err := q.Exec(ctx, `
		INSERT INTO projects (id, slug, title, description, body, status, team_id, organization_id,
			categories, additional_categories, loaders, license, monetization_status, thread_id, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())`,
		p.ID, p.Slug, p.Title, p.Description, p.Body, p.Status, p.TeamID, p.OrganizationID,
		p.Categories, p.AdditionalCategories, p.Loaders, p.License, p.MonetizationStatus, p.ThreadID)
	return err
}

// UpdateProjectStatus transitions status and, on first entry to approved,
// stamps approved_at (spec.md §4.6 "Entering approved sets approved_at =
// now (only if null)").
func UpdateProjectStatus(ctx context.Context, q db.Querier, id int64, status ProjectStatus) error {
	_, err := q.Exec(ctx, `
		UPDATE projects SET
			status = $2,
			approved_at = CASE WHEN $2 = 'approved' AND approved_at IS NULL THEN now() ELSE approved_at END
		WHERE id = $1`, id, status)
	return err
}

// UpdateProjectFields is the v3 PATCH entry point: every *string/*[]string
// is nil when the corresponding field was absent from the request, per the
// double_option convention in spec.md §6/§9 (callers translate JSON null
// into an explicit "clear" sentinel before calling, not modeled here to
// keep this function's signature concrete).
func UpdateProjectFields(ctx context.Context, q db.Querier, id int64, title, description, body *string, categories, additionalCategories, loaders *[]string, license *string) error {
	_, err := q.Exec(ctx, `
		UPDATE projects SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			body = COALESCE($4, body),
			categories = COALESCE($5, categories),
			additional_categories = COALESCE($6, additional_categories),
			loaders = COALESCE($7, loaders),
			license = COALESCE($8, license)
		WHERE id = $1`, id, title, description, body, categories, additionalCategories, loaders, license)
	return err
}

// UpdateProjectSlug renames a project's slug. Callers must validate
// uniqueness and anti-aliasing first (internal/project.ValidateSlug).
func UpdateProjectSlug(ctx context.Context, q db.Querier, id int64, slug string) error {
	_, err := q.Exec(ctx, `UPDATE projects SET slug = $2 WHERE id = $1`, id, slug)
	return err
}

func projectLinkFromRow(row pgx.CollectableRow) (ProjectLink, error) {
	var l ProjectLink
	err := row.Scan(&l.Kind, &l.Platform, &l.URL)
	return l, err
}

// GetProjectLinks returns a project's typed links (issues/source/wiki/
// discord/donation), unordered.
func GetProjectLinks(ctx context.Context, q db.Querier, projectID int64) ([]ProjectLink, error) {
	return db.ScanMany(ctx, q, `
		SELECT kind, platform, url FROM project_links WHERE project_id = $1`,
		projectLinkFromRow, projectID)
}

// SetProjectLinks replaces a project's entire typed-link set atomically.
// Callers merge onto the current set first (internal/project.MergeLinks,
// ReplaceDonationLinks) and pass the fully resolved set here.
func SetProjectLinks(ctx context.Context, q db.Querier, projectID int64, links []ProjectLink) error {
	if _, err := q.Exec(ctx, `DELETE FROM project_links WHERE project_id = $1`, projectID); err != nil {
		return err
	}
	for _, l := range links {
		if _, err := q.Exec(ctx, `
			INSERT INTO project_links (project_id, kind, platform, url)
			VALUES ($1, $2, $3, $4)`, projectID, l.Kind, l.Platform, l.URL); err != nil {
			return err
		}
	}
	return nil
}

// SetProjectOrganization links or unlinks (nil) a project's organization.
func SetProjectOrganization(ctx context.Context, q db.Querier, id int64, orgID *int64) error {
	_, err := q.Exec(ctx, `UPDATE projects SET organization_id = $2 WHERE id = $1`, id, orgID)
	return err
}

// IncrementDownloads bumps a project's download counter.
func IncrementDownloads(ctx context.Context, q db.Querier, id int64, by int64) error {
	_, err := q.Exec(ctx, `UPDATE projects SET downloads = downloads + $2 WHERE id = $1`, id, by)
	return err
}

// ClearProjectCache invalidates a project's cache entries, including its
// slug alias. Per spec.md §9 "Cache invalidation across entities", callers
// that change something affecting a derived projection (e.g. re-parenting
// to a new organization) must also invalidate the organization side.
func ClearProjectCache(ctx context.Context, f *cache.Fabric, id int64, slug string) error {
	return cache.Invalidate(ctx, f, projectsNamespace, projectsSlugNamespace, baseidStr(id), slug)
}

// RemoveProject deletes a project row; versions/files/gallery/thread rows
// cascade at the schema level (spec.md §3 "Project exclusively owns...").
func RemoveProject(ctx context.Context, q db.Querier, f *cache.Fabric, id int64, slug string) error {
	if _, err := q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return err
	}
	return ClearProjectCache(ctx, f, id, slug)
}

// CategoryExists validates that name is a known category, per spec.md §4.6
// "A category must exist in the category table; unknown -> InvalidInput".
func CategoryExists(ctx context.Context, q db.Querier, name string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}
