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

package apiserver

import (
	"net/http"
	"strings"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/models"
	"github.com/modrinth/labrinth-go/internal/version"
)

type createVersionRequest struct {
	ProjectID     string                     `json:"project_id"`
	Name          string                     `json:"name"`
	VersionNumber string                     `json:"version_number"`
	Changelog     string                     `json:"changelog"`
	VersionType   models.VersionType         `json:"version_type"`
	Loaders       []string                   `json:"loaders"`
	FileHashes    []fileHashInput            `json:"files"`
	Dependencies  []models.VersionDependency `json:"dependencies"`
}

type fileHashInput struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	SHA1     string `json:"sha1"`
	SHA512   string `json:"sha512"`
	Primary  bool   `json:"primary"`
}

// handleCreateVersion is POST /version. The actual upload byte-plumbing
// is out of scope (spec.md Non-goals); the caller has already streamed
// and hashed each file (version.StreamAndHash) and supplies the resulting
// digests here, same as the teacher's gamestore.go expecting a fully-
// formed game snapshot rather than doing I/O itself.
func (a *App) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.Has(models.ScopeVersionCreate) {
		apierr.Write(w, apierr.MissingScope("VERSION_CREATE"))
		return
	}
	var req createVersionRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}
	projectID, err := pathID(req.ProjectID)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	_, _, ok = a.loadProjectForWrite(w, r, req.ProjectID, models.ProjectPermUploadVersion)
	if !ok {
		return
	}

	files := make([]version.HashedUpload, len(req.FileHashes))
	primary := 0
	for i, f := range req.FileHashes {
		files[i] = version.HashedUpload{
			Filename: f.Filename,
			Size:     f.Size,
			Hashes: []models.FileHash{
				{Algorithm: models.HashSHA1, Hash: f.SHA1},
				{Algorithm: models.HashSHA512, Hash: f.SHA512},
			},
		}
		if f.Primary {
			primary = i
		}
	}

	ctx := r.Context()
	tx, err := a.Pool.Begin(ctx)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	defer tx.Rollback(ctx)

	v, err := version.Create(ctx, tx, version.CreateParams{
		ProjectID:     projectID,
		AuthorID:      principal.UserID,
		Name:          req.Name,
		VersionNumber: req.VersionNumber,
		Changelog:     req.Changelog,
		Type:          req.VersionType,
		Status:        models.VersionListed,
		Loaders:       req.Loaders,
		Files:         files,
		PrimaryFile:   primary,
		Dependencies:  req.Dependencies,
	})
	if err != nil {
		apierr.Write(w, err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleGetVersion is GET /version/{id}.
func (a *App) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/version/")
	id, err := pathID(raw)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	v, err := models.GetVersion(r.Context(), a.Pool, a.Cache, id)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if v == nil {
		apierr.Write(w, apierr.NotFound("version"))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type updateCheckRequest struct {
	Loaders      []string             `json:"loaders"`
	VersionTypes []models.VersionType `json:"version_types"`
	LoaderFields map[string][]string  `json:"loader_fields"`
}

// handleUpdateCheck is POST /version_file/{hash}/update, spec.md §8
// scenario 5.
func (a *App) handleUpdateCheck(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/version_file/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] != "update" {
		apierr.Write(w, apierr.NotFound("route"))
		return
	}
	var req updateCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}
	user, err := a.currentUser(r)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	match, err := version.CheckForUpdate(r.Context(), a.Pool, a.Cache, user, models.HashSHA1, parts[0], version.UpdateCheckFilters{
		Loaders:      req.Loaders,
		VersionTypes: req.VersionTypes,
		LoaderFields: req.LoaderFields,
	})
	if err != nil {
		apierr.Write(w, err)
		return
	}
	if match == nil {
		apierr.Write(w, apierr.NotFound("version"))
		return
	}
	writeJSON(w, http.StatusOK, match)
}
