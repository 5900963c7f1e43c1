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

	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
)

// VersionType is the release channel of a version, spec.md §3 "Version".
type VersionType string

const (
	VersionRelease VersionType = "release"
	VersionBeta    VersionType = "beta"
	VersionAlpha   VersionType = "alpha"
)

// VersionStatus mirrors the listed/unlisted/scheduled/draft states a
// version can carry independently of its owning project's status.
type VersionStatus string

const (
	VersionListed    VersionStatus = "listed"
	VersionUnlisted  VersionStatus = "unlisted"
	VersionScheduled VersionStatus = "scheduled"
	VersionDraft     VersionStatus = "draft"
)

// DependencyKind enumerates how one version relates to another project or
// version, spec.md §3 "VersionDependency".
type DependencyKind string

const (
	DependencyRequired     DependencyKind = "required"
	DependencyOptional     DependencyKind = "optional"
	DependencyIncompatible DependencyKind = "incompatible"
	DependencyEmbedded     DependencyKind = "embedded"
)

// VersionDependency is one edge out of a version's dependency list.
type VersionDependency struct {
	VersionID *int64         `json:"version_id,omitempty"`
	ProjectID *int64         `json:"project_id,omitempty"`
	FileName  string         `json:"file_name,omitempty"`
	Kind      DependencyKind `json:"dependency_type"`
}

// Version mirrors spec.md §3 "Version".
type Version struct {
	ID            int64         `json:"id"`
	ProjectID     int64         `json:"project_id"`
	AuthorID      int64         `json:"author_id"`
	Name          string        `json:"name"`
	VersionNumber string        `json:"version_number"`
	Changelog     string        `json:"changelog"`
	Type          VersionType   `json:"version_type"`
	Status        VersionStatus `json:"status"`
	Featured      bool          `json:"featured"`
	Downloads     int64         `json:"downloads"`
	OrderingIndex *int32        `json:"ordering,omitempty"`
	CreatedAt     time.Time     `json:"date_published"`
}

const versionsNamespace = "versions"

func versionFromRow(row pgx.CollectableRow) (Version, error) {
	var v Version
	err := row.Scan(&v.ID, &v.ProjectID, &v.AuthorID, &v.Name, &v.VersionNumber, &v.Changelog,
		&v.Type, &v.Status, &v.Featured, &v.Downloads, &v.OrderingIndex, &v.CreatedAt)
	return v, err
}

const versionColumns = `id, mod_id, author_id, name, version_number, changelog, version_type,
	status, featured, downloads, ordering, date_published`

// GetVersionsMany resolves version ids in one cache pass. Versions have no
// slug namespace — they are referenced purely by id, per spec.md §3.
func GetVersionsMany(ctx context.Context, q db.Querier, f *cache.Fabric, ids []string) (map[string]Version, error) {
	return cache.GetCachedKeys[Version](ctx, f, versionsNamespace, "", false, ids,
		func(ctx context.Context, missing []string) (map[string]cache.MissResult[Version], error) {
			numeric := make([]int64, 0, len(missing))
			for _, m := range missing {
				if id, ok := parseID(m); ok {
					numeric = append(numeric, id)
				}
			}
			rows, err := db.ScanMany(ctx, q, `
				SELECT `+versionColumns+`
				FROM versions WHERE id = ANY($1::bigint[])`,
				versionFromRow, toBigintArray(numeric))
			if err != nil {
				return nil, err
			}
			out := make(map[string]cache.MissResult[Version], len(rows))
			for _, v := range rows {
				out[baseidStr(v.ID)] = cache.MissResult[Version]{Value: v}
			}
			return out, nil
		})
}

// GetVersion fetches a single version by id.
func GetVersion(ctx context.Context, q db.Querier, f *cache.Fabric, id int64) (*Version, error) {
	versions, err := GetVersionsMany(ctx, q, f, []string{baseidStr(id)})
	if err != nil {
		return nil, err
	}
	if v, ok := versions[baseidStr(id)]; ok {
		return &v, nil
	}
	return nil, nil
}

// GetVersionsByProject returns every version row for a project, newest
// first, bypassing the per-id cache (a list query, not a keyed lookup).
func GetVersionsByProject(ctx context.Context, q db.Querier, projectID int64) ([]Version, error) {
	return db.ScanMany(ctx, q, `
		SELECT `+versionColumns+`
		FROM versions WHERE mod_id = $1
		ORDER BY date_published DESC`,
		versionFromRow, projectID)
}

// InsertVersion creates a new version row inside the caller's transaction.
func InsertVersion(ctx context.Context, q db.Querier, v *Version) error {
	_, err := q.Exec(ctx, `
		INSERT INTO versions (id, mod_id, author_id, name, version_number, changelog, version_type,
			status, featured, ordering, date_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())`,
		v.ID, v.ProjectID, v.AuthorID, v.Name, v.VersionNumber, v.Changelog, v.Type,
		v.Status, v.Featured, v.OrderingIndex)
	return err
}

// UpdateVersionFields applies a partial update to mutable fields.
func UpdateVersionFields(ctx context.Context, q db.Querier, id int64, name, changelog *string, versionType *VersionType, status *VersionStatus, featured *bool) error {
	_, err := q.Exec(ctx, `
		UPDATE versions SET
			name = COALESCE($2, name),
			changelog = COALESCE($3, changelog),
			version_type = COALESCE($4, version_type),
			status = COALESCE($5, status),
			featured = COALESCE($6, featured)
		WHERE id = $1`, id, name, changelog, versionType, status, featured)
	return err
}

// IncrementVersionDownloads bumps a version's download counter (mirrored
// onto the owning project's counter by the caller).
func IncrementVersionDownloads(ctx context.Context, q db.Querier, id int64, by int64) error {
	_, err := q.Exec(ctx, `UPDATE versions SET downloads = downloads + $2 WHERE id = $1`, id, by)
	return err
}

// SetVersionLoaders records which loaders a version declares support for,
// replacing any prior set. This is the join the dynamic loader-field
// schema (GetLoaderFieldsForLoaders) is resolved against, kept as its own
// table rather than a column since a version may declare several loaders.
func SetVersionLoaders(ctx context.Context, q db.Querier, versionID int64, loaders []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM versions_loaders WHERE version_id = $1`, versionID); err != nil {
		return err
	}
	for _, l := range loaders {
		if _, err := q.Exec(ctx, `
			INSERT INTO versions_loaders (version_id, loader_id)
			SELECT $1, id FROM loaders WHERE loader = $2`, versionID, l); err != nil {
			return err
		}
	}
	return nil
}

// GetVersionLoaders returns the loaders a version declares.
func GetVersionLoaders(ctx context.Context, q db.Querier, versionID int64) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT l.loader FROM versions_loaders vl
		JOIN loaders l ON l.id = vl.loader_id
		WHERE vl.version_id = $1`, versionID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// InsertVersionDependency adds one dependency edge. A version may declare
// at most one of version_id/project_id/file_name per row, enforced by a
// database CHECK constraint rather than here, per spec.md §3 note on
// "exactly one of".
func InsertVersionDependency(ctx context.Context, q db.Querier, versionID int64, dep VersionDependency) error {
	_, err := q.Exec(ctx, `
		INSERT INTO dependencies (dependent_id, dependency_id, dependency_project_id, file_name, dependency_type)
		VALUES ($1, $2, $3, $4, $5)`,
		versionID, dep.VersionID, dep.ProjectID, dep.FileName, dep.Kind)
	return err
}

func dependencyFromRow(row pgx.CollectableRow) (VersionDependency, error) {
	var d VersionDependency
	err := row.Scan(&d.VersionID, &d.ProjectID, &d.FileName, &d.Kind)
	return d, err
}

// GetVersionDependencies returns a version's declared dependency edges.
func GetVersionDependencies(ctx context.Context, q db.Querier, versionID int64) ([]VersionDependency, error) {
	return db.ScanMany(ctx, q, `
		SELECT dependency_id, dependency_project_id, file_name, dependency_type
		FROM dependencies WHERE dependent_id = $1`,
		dependencyFromRow, versionID)
}

// RemoveVersion deletes a version; files/dependencies cascade at the
// schema level.
func RemoveVersion(ctx context.Context, q db.Querier, f *cache.Fabric, id int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM versions WHERE id = $1`, id); err != nil {
		return err
	}
	return cache.Invalidate(ctx, f, versionsNamespace, "", baseidStr(id))
}

// ClearVersionCache invalidates a version's cache entry.
func ClearVersionCache(ctx context.Context, f *cache.Fabric, id int64) error {
	return cache.Invalidate(ctx, f, versionsNamespace, "", baseidStr(id))
}

// VersionIDExists is the existence check used by the id allocator.
func VersionIDExists(ctx context.Context, q db.Querier, id uint64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM versions WHERE id = $1)`, int64(id)).Scan(&exists)
	return exists, err
}
