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
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/models"
	"github.com/modrinth/labrinth-go/internal/search"
)

// handleSearch is GET /search?q=...&facets=[["loaders:fabric"]]&offset=&limit=.
func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var facets [][]string
	if raw := query.Get("facets"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &facets); err != nil {
			apierr.Write(w, apierr.Validation("malformed facets parameter: %v", err))
			return
		}
	}
	offset, _ := strconv.ParseInt(query.Get("offset"), 10, 64)
	limit, _ := strconv.ParseInt(query.Get("limit"), 10, 64)
	if limit <= 0 {
		limit = 20
	}
	resp, err := a.Search.Search(r.Context(), search.SearchParams{
		Query:   query.Get("q"),
		Filters: facets,
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		apierr.Write(w, apierr.External("search index", err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleForceReindex is POST /admin/force_reindex, spec.md §4.9 "A
// force_reindex admin route rebuilds from scratch." Restricted to site
// moderators/admins since it walks every searchable project.
func (a *App) handleForceReindex(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if user == nil || (user.Role != models.RoleModerator && user.Role != models.RoleAdmin) {
		apierr.Write(w, apierr.Forbidden("force_reindex requires a moderator or admin account"))
		return
	}

	docs, err := a.collectSearchableDocuments(r)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if err := a.Search.ForceReindex(r.Context(), docs); err != nil {
		apierr.Write(w, apierr.External("search index", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// collectSearchableDocuments loads every project in a searchable status
// and flattens it into a search.Document, the same projection a single
// status transition pushes for one project.
func (a *App) collectSearchableDocuments(r *http.Request) ([]search.Document, error) {
	ctx := r.Context()
	ids, err := models.SearchableProjectIDs(ctx, a.Pool)
	if err != nil {
		return nil, err
	}

	docs := make([]search.Document, 0, len(ids))
	for _, id := range ids {
		p, err := models.GetProject(ctx, a.Pool, a.Cache, baseIDString(id))
		if err != nil || p == nil {
			continue
		}
		docs = append(docs, search.BuildDocument(*p, nil))
	}
	return docs, nil
}
