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

import "net/http"

// v3Mux is the native route tree: every handler speaks v3 request/response
// shapes directly against the domain packages.
func (a *App) v3Mux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /project", a.handleCreateProject)
	mux.HandleFunc("GET /project/{token...}", a.handleGetProject)
	mux.HandleFunc("PATCH /project/{token...}", a.handlePatchProject)
	mux.HandleFunc("DELETE /project/{token...}", a.handleDeleteProject)

	mux.HandleFunc("POST /version", a.handleCreateVersion)
	mux.HandleFunc("GET /version/{id}", a.handleGetVersion)
	mux.HandleFunc("POST /version_file/{hash}/update", a.handleUpdateCheck)

	mux.HandleFunc("GET /team/{id}/members", a.handleGetTeamMembers)
	mux.HandleFunc("POST /team/{id}/members", a.handleInviteMember)
	mux.HandleFunc("POST /team/{id}/join", a.handleAcceptInvite)
	mux.HandleFunc("DELETE /team/{id}/members/{userID}", a.handleRemoveMember)
	mux.HandleFunc("PATCH /team/{id}/owner", a.handleTransferOwnership)

	mux.HandleFunc("GET /notification", a.handleListNotifications)
	mux.HandleFunc("PATCH /notification", a.handleMarkNotificationsRead)
	mux.HandleFunc("DELETE /notification", a.handleDeleteNotifications)

	mux.HandleFunc("GET /search", a.handleSearch)
	mux.HandleFunc("POST /admin/force_reindex", a.handleForceReindex)

	return mux
}

// v2Mux is the legacy-shaped route tree. Reads are rendered through
// internal/v2's façade; writes delegate straight to the v3 handlers since
// the request bodies they expect are unchanged between the two surfaces
// (spec.md §7).
func (a *App) v2Mux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /project", a.handleCreateProject)
	mux.HandleFunc("GET /project/{token...}", a.handleGetProjectV2)
	mux.HandleFunc("PATCH /project/{token...}", a.handlePatchProject)
	mux.HandleFunc("DELETE /project/{token...}", a.handleDeleteProject)

	mux.HandleFunc("POST /version", a.handleCreateVersion)
	mux.HandleFunc("GET /version/{id}", a.handleGetVersionV2)

	mux.HandleFunc("GET /notification", a.handleListNotificationsV2)
	mux.HandleFunc("PATCH /notification", a.handleMarkNotificationsRead)

	mux.HandleFunc("GET /search", a.handleSearchV2)

	return mux
}

// authMux is the OAuth login/link flow, mounted unprefixed at /auth/ since
// its two routes (init, callback) already carry "auth" in their path.
func (a *App) authMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/init/{provider}", a.handleAuthInit)
	mux.HandleFunc("GET /auth/callback/{provider}", a.handleAuthCallback)
	return mux
}
