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

	"github.com/jackc/pgx/v5"

	"github.com/modrinth/labrinth-go/internal/db"
)

// HashAlgorithm names a supported file-hash algorithm, spec.md §3 "File".
type HashAlgorithm string

const (
	HashSHA1   HashAlgorithm = "sha1"
	HashSHA512 HashAlgorithm = "sha512"
)

// FileHash is one (algorithm, hex digest) pair attached to a File.
type FileHash struct {
	Algorithm HashAlgorithm `json:"algorithm"`
	Hash      string        `json:"hash"`
}

// File mirrors spec.md §3 "File". At most one File per Version may have
// Primary = true, enforced by a partial unique index at the schema level
// (`UNIQUE (version_id) WHERE is_primary`), not re-checked here.
type File struct {
	ID        int64      `json:"id"`
	VersionID int64      `json:"version_id"`
	URL       string     `json:"url"`
	Filename  string     `json:"filename"`
	Primary   bool       `json:"primary"`
	Size      int64      `json:"size"`
	FileType  string     `json:"file_type,omitempty"`
	Hashes    []FileHash `json:"hashes"`
}

func fileFromRow(row pgx.CollectableRow) (File, error) {
	var f File
	err := row.Scan(&f.ID, &f.VersionID, &f.URL, &f.Filename, &f.Primary, &f.Size, &f.FileType)
	return f, err
}

// GetFilesByVersion returns every file attached to a version, primary
// first.
func GetFilesByVersion(ctx context.Context, q db.Querier, versionID int64) ([]File, error) {
	files, err := db.ScanMany(ctx, q, `
		SELECT id, version_id, url, filename, is_primary, size, file_type
		FROM files WHERE version_id = $1
		ORDER BY is_primary DESC, id ASC`,
		fileFromRow, versionID)
	if err != nil {
		return nil, err
	}
	if err := attachHashes(ctx, q, files); err != nil {
		return nil, err
	}
	return files, nil
}

func hashFromRow(row pgx.CollectableRow) (struct {
	FileID int64
	FileHash
}, error) {
	var h struct {
		FileID int64
		FileHash
	}
	err := row.Scan(&h.FileID, &h.Algorithm, &h.Hash)
	return h, err
}

func attachHashes(ctx context.Context, q db.Querier, files []File) error {
	if len(files) == 0 {
		return nil
	}
	ids := make([]int64, len(files))
	idx := make(map[int64]int, len(files))
	for i, f := range files {
		ids[i] = f.ID
		idx[f.ID] = i
	}
	rows, err := db.ScanMany(ctx, q, `
		SELECT file_id, algorithm, hash FROM hashes WHERE file_id = ANY($1::bigint[])`,
		hashFromRow, toBigintArray(ids))
	if err != nil {
		return err
	}
	for _, r := range rows {
		i := idx[r.FileID]
		files[i].Hashes = append(files[i].Hashes, r.FileHash)
	}
	return nil
}

// FindFileByHash looks up a file (and its owning version/project) by a
// single (algorithm, hash) pair, used by the /version_file/{hash} lookup
// endpoint and by duplicate-upload detection, spec.md §4.10 "Byte-identical
// re-uploads... de-duplicated by (algorithm, hash)".
func FindFileByHash(ctx context.Context, q db.Querier, algo HashAlgorithm, hash string) (*File, error) {
	var fileID int64
	err := q.QueryRow(ctx, `
		SELECT file_id FROM hashes WHERE algorithm = $1 AND hash = $2 LIMIT 1`, algo, hash).Scan(&fileID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	files, err := db.ScanMany(ctx, q, `
		SELECT id, version_id, url, filename, is_primary, size, file_type
		FROM files WHERE id = $1`, fileFromRow, fileID)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	if err := attachHashes(ctx, q, files); err != nil {
		return nil, err
	}
	return &files[0], nil
}

// InsertFile creates a file row and its hash rows inside the caller's
// transaction. If f.Primary is true, any existing primary file on the same
// version is demoted first so the "at most one primary" invariant holds
// even without the schema-level partial index being the only guard.
func InsertFile(ctx context.Context, q db.Querier, f *File) error {
	if f.Primary {
		if _, err := q.Exec(ctx, `UPDATE files SET is_primary = false WHERE version_id = $1`, f.VersionID); err != nil {
			return err
		}
	}
	if _, err := q.Exec(ctx, `
		INSERT INTO files (id, version_id, url, filename, is_primary, size, file_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.VersionID, f.URL, f.Filename, f.Primary, f.Size, f.FileType); err != nil {
		return err
	}
	for _, h := range f.Hashes {
		if _, err := q.Exec(ctx, `
			INSERT INTO hashes (file_id, algorithm, hash) VALUES ($1, $2, $3)`,
			f.ID, h.Algorithm, h.Hash); err != nil {
			return err
		}
	}
	return nil
}

// SetPrimaryFile promotes one file and demotes every sibling on the same
// version, keeping the "at most one primary" invariant intact across the
// swap.
func SetPrimaryFile(ctx context.Context, q db.Querier, versionID, fileID int64) error {
	if _, err := q.Exec(ctx, `UPDATE files SET is_primary = false WHERE version_id = $1`, versionID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `UPDATE files SET is_primary = true WHERE id = $1 AND version_id = $2`, fileID, versionID)
	return err
}

// FileIDExists is the existence check used by the id allocator.
func FileIDExists(ctx context.Context, q db.Querier, id uint64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM files WHERE id = $1)`, int64(id)).Scan(&exists)
	return exists, err
}

// RemoveFile deletes a file and its hash rows.
func RemoveFile(ctx context.Context, q db.Querier, fileID int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM hashes WHERE file_id = $1`, fileID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM files WHERE id = $1`, fileID)
	return err
}
