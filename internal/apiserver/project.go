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
	"context"
	"net/http"
	"strings"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/models"
	"github.com/modrinth/labrinth-go/internal/perm"
	"github.com/modrinth/labrinth-go/internal/project"
)

type createProjectRequest struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	Categories  []string `json:"categories"`
	Loaders     []string `json:"loaders"`
	License     string   `json:"license"`
}

// handleCreateProject is POST /project: allocates the project's backing
// team first, then the project row, in one transaction, per spec.md
// §4.6's "creating a project always creates its backing team in the same
// transaction" (see project.CreateParams' doc comment).
func (a *App) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.Has(models.ScopeProjectWrite) {
		apierr.Write(w, apierr.MissingScope("PROJECT_WRITE"))
		return
	}
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}
	if err := project.ValidateSlugFormat(req.Slug); err != nil {
		apierr.Write(w, err)
		return
	}

	ctx := r.Context()
	tx, err := a.Pool.Begin(ctx)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	defer tx.Rollback(ctx)

	teamID, err := baseid.Generate64(ctx, 47, func(ctx context.Context, id uint64) (bool, error) {
		return models.TeamMemberIDExists(ctx, tx, id)
	})
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if err := models.InsertTeam(ctx, tx, int64(teamID)); err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	memberID, err := baseid.Generate64(ctx, 47, func(ctx context.Context, id uint64) (bool, error) {
		return models.TeamMemberIDExists(ctx, tx, id)
	})
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if err := models.InsertTeamMember(ctx, tx, &models.TeamMember{
		ID:          int64(memberID),
		TeamID:      int64(teamID),
		UserID:      principal.UserID,
		Role:        "Owner",
		Permissions: uint64(models.ProjectPermAll),
		IsOwner:     true,
		Accepted:    true,
	}); err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}

	p, err := project.Create(ctx, tx, project.CreateParams{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Body:        req.Body,
		TeamID:      int64(teamID),
		Categories:  req.Categories,
		Loaders:     req.Loaders,
		License:     req.License,
	})
	if err != nil {
		apierr.Write(w, err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleGetProject is GET /project/{idOrSlug}.
func (a *App) handleGetProject(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/project/")
	p, err := models.GetProject(r.Context(), a.Pool, a.Cache, token)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if p == nil {
		apierr.Write(w, apierr.NotFound("project"))
		return
	}
	user, err := a.currentUser(r)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	result, err := perm.ForProject(r.Context(), a.Pool, a.Cache, user, *p)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if !result.CanView {
		apierr.Write(w, apierr.NotFound("project"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type patchProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Body        *string `json:"body"`
	License     *string `json:"license"`
}

// handlePatchProject is PATCH /project/{idOrSlug}, double_option semantics
// on the fields project.UpdateFields accepts.
func (a *App) handlePatchProject(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/project/")
	_, p, ok := a.loadProjectForWrite(w, r, token, models.ProjectPermEditDetails)
	if !ok {
		return
	}
	var req patchProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}
	if _, err := project.UpdateFields(r.Context(), a.Pool, a.Cache, p, req.Title, req.Description, req.Body, req.License); err != nil {
		apierr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteProject is DELETE /project/{idOrSlug}.
func (a *App) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/project/")
	_, p, ok := a.loadProjectForWrite(w, r, token, models.ProjectPermDeleteProject)
	if !ok {
		return
	}
	if err := project.Delete(r.Context(), a.Pool, a.Cache, p); err != nil {
		apierr.Write(w, err)
		return
	}
	a.Search.DeleteBestEffort(r.Context(), baseid.Encode(uint64(p.ID)))
	w.WriteHeader(http.StatusNoContent)
}

// loadProjectForWrite resolves token, requires an authenticated principal
// whose effective ProjectPermissions are a superset of required, and
// returns the loaded user and project for the handler to act on.
func (a *App) loadProjectForWrite(w http.ResponseWriter, r *http.Request, token string, required models.ProjectPermissions) (*models.User, *models.Project, bool) {
	p, err := models.GetProject(r.Context(), a.Pool, a.Cache, token)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return nil, nil, false
	}
	if p == nil {
		apierr.Write(w, apierr.NotFound("project"))
		return nil, nil, false
	}
	user, err := a.currentUser(r)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return nil, nil, false
	}
	if user == nil {
		apierr.Write(w, apierr.Authn("authentication required"))
		return nil, nil, false
	}
	result, err := perm.ForProject(r.Context(), a.Pool, a.Cache, user, *p)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return nil, nil, false
	}
	if !result.Permissions.Has(required) {
		if !result.CanView {
			apierr.Write(w, apierr.NotFound("project"))
		} else {
			apierr.Write(w, apierr.Forbidden("insufficient project permissions"))
		}
		return nil, nil, false
	}
	return user, p, true
}
