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

package version

import (
	"context"
	"fmt"

	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
	"github.com/modrinth/labrinth-go/internal/perm"
)

// GetByHash resolves a single (algorithm, hash) pair to its file/version,
// filtering to versions whose project is publicly visible unless the
// requester has permission to view it, per spec.md §4.7 "get_version_from_
// hash... filter to versions whose project is in a publicly visible status
// unless the requester is authorized for that project. Hashes are not
// unique across private projects, so these endpoints may legitimately
// return zero matches even when a hash exists."
func GetByHash(ctx context.Context, q db.Querier, f *cache.Fabric, user *models.User, algo models.HashAlgorithm, hash string) (*models.File, *models.Version, error) {
	file, err := models.FindFileByHash(ctx, q, algo, hash)
	if err != nil {
		return nil, nil, fmt.Errorf("version: find file by hash: %w", err)
	}
	if file == nil {
		return nil, nil, nil
	}

	v, err := models.GetVersion(ctx, q, f, file.VersionID)
	if err != nil || v == nil {
		return nil, nil, err
	}

	visible, err := canViewVersion(ctx, q, f, user, v.ProjectID)
	if err != nil || !visible {
		return nil, nil, err
	}
	return file, v, nil
}

// GetManyByHash is the bulk form (`update_files`/`update_individual_files`):
// resolves a set of hashes, dropping any whose owning project the
// requester cannot view.
func GetManyByHash(ctx context.Context, q db.Querier, f *cache.Fabric, user *models.User, algo models.HashAlgorithm, hashes []string) (map[string]*models.File, error) {
	out := make(map[string]*models.File, len(hashes))
	for _, h := range hashes {
		file, _, err := GetByHash(ctx, q, f, user, algo, h)
		if err != nil {
			return nil, err
		}
		if file != nil {
			out[h] = file
		}
	}
	return out, nil
}

func canViewVersion(ctx context.Context, q db.Querier, f *cache.Fabric, user *models.User, projectID int64) (bool, error) {
	project, err := models.GetProject(ctx, q, f, baseid.Encode(uint64(projectID)))
	if err != nil {
		return false, fmt.Errorf("version: load owning project: %w", err)
	}
	if project == nil {
		return false, nil
	}
	result, err := perm.ForProject(ctx, q, f, user, *project)
	if err != nil {
		return false, err
	}
	return result.CanView, nil
}
