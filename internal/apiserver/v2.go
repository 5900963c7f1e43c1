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

// v2.go renders the same underlying project/version/notification rows the
// v3 handlers operate on into the legacy v2 response shapes, the one
// place internal/v2's façade functions get wired to an HTTP surface. v2
// mutations reuse the v3 handlers directly: the v2/v3 split described in
// spec.md §7 is read-shape only, nothing about write semantics changed
// between them.
package apiserver

import (
	"net/http"
	"strings"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/models"
	"github.com/modrinth/labrinth-go/internal/search"
	"github.com/modrinth/labrinth-go/internal/v2"
)

// handleGetProjectV2 is GET /v2/project/{idOrSlug}.
func (a *App) handleGetProjectV2(w http.ResponseWriter, r *http.Request) {
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
	resp, err := a.buildProjectResponseV2(r, *p)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) buildProjectResponseV2(r *http.Request, p models.Project) (v2.ProjectResponse, error) {
	ctx := r.Context()
	clientSide, serverSide, err := v2.ResolveClientServerSide(ctx, a.Pool, p.ID)
	if err != nil {
		return v2.ProjectResponse{}, apierr.Dependency(err)
	}
	gameVersions, err := v2.AggregateGameVersions(ctx, a.Pool, p.ID)
	if err != nil {
		return v2.ProjectResponse{}, apierr.Dependency(err)
	}
	links, err := models.GetProjectLinks(ctx, a.Pool, p.ID)
	if err != nil {
		return v2.ProjectResponse{}, apierr.Dependency(err)
	}
	return v2.BuildProjectResponse(p, clientSide, serverSide, gameVersions, links), nil
}

// handleGetVersionV2 is GET /v2/version/{id}.
func (a *App) handleGetVersionV2(w http.ResponseWriter, r *http.Request) {
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
	loaders, gameVersions, err := v2.ResolveVersionShape(r.Context(), a.Pool, v.ID)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	writeJSON(w, http.StatusOK, v2.BuildVersionResponse(*v, loaders, gameVersions))
}

// handleSearchV2 is GET /v2/search, the legacy facet-matrix shape
// rewritten onto the v3 key form before delegating to the shared index.
func (a *App) handleSearchV2(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	parsed := v2.ParseSearchQuery(query.Get("q"))
	facets := v2.RewriteSearchFacets(facetsFromQuery(parsed))
	resp, err := a.Search.Search(r.Context(), search.SearchParams{
		Query:   query.Get("q"),
		Filters: facets,
		Offset:  0,
		Limit:   20,
	})
	if err != nil {
		apierr.Write(w, apierr.External("search index", err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func facetsFromQuery(q search.Query) [][]string {
	groups := make([][]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		groups = append(groups, []string{f.Key + f.Operator + f.Value})
	}
	return groups
}

// handleListNotificationsV2 is GET /v2/notification, rendered through the
// legacy per-kind body shape rather than the v3 raw JSON envelope.
func (a *App) handleListNotificationsV2(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	notifications, err := models.GetNotificationsByUser(r.Context(), a.Pool, principal.UserID)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	out := make([]v2.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp, err := v2.BuildNotificationResponse(n)
		if err != nil {
			apierr.Write(w, apierr.Dependency(err))
			return
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}
