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
	"github.com/modrinth/labrinth-go/internal/team"
)

// teamRoute splits "/team/{id}/{action}" into its id and action parts.
func teamRoute(path string) (teamID string, action string) {
	rest := strings.TrimPrefix(path, "/team/")
	parts := strings.SplitN(rest, "/", 2)
	teamID = parts[0]
	if len(parts) == 2 {
		action = parts[1]
	}
	return
}

func (a *App) actorProjectPermissions(r *http.Request, teamID int64) (models.ProjectPermissions, *models.User, error) {
	user, err := a.currentUser(r)
	if err != nil || user == nil {
		return models.ProjectPermEmpty, user, err
	}
	member, err := models.GetTeamMember(r.Context(), a.Pool, teamID, user.ID)
	if err != nil || member == nil {
		return models.ProjectPermEmpty, user, err
	}
	return member.ProjectPermissions(), user, nil
}

// handleGetTeamMembers is GET /team/{id}/members.
func (a *App) handleGetTeamMembers(w http.ResponseWriter, r *http.Request) {
	idStr, _ := teamRoute(r.URL.Path)
	teamID, err := pathID(idStr)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	members, err := models.GetTeamMembers(r.Context(), a.Pool, teamID)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type inviteRequest struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	Permissions uint64 `json:"permissions"`
}

// handleInviteMember is POST /team/{id}/members.
func (a *App) handleInviteMember(w http.ResponseWriter, r *http.Request) {
	idStr, _ := teamRoute(r.URL.Path)
	teamID, err := pathID(idStr)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	actorPerms, actor, err := a.actorProjectPermissions(r, teamID)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if actor == nil {
		apierr.Write(w, apierr.Authn("authentication required"))
		return
	}
	if !actorPerms.Has(models.ProjectPermManageInvites) {
		apierr.Write(w, apierr.Forbidden("missing permission to invite team members"))
		return
	}
	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}
	inviteeID, err := pathID(req.UserID)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	if err := team.Invite(r.Context(), a.Pool, teamID, actor.ID, inviteeID, req.Role, req.Permissions, models.NotifyTeamInvite); err != nil {
		apierr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAcceptInvite is POST /team/{id}/join.
func (a *App) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	idStr, _ := teamRoute(r.URL.Path)
	teamID, err := pathID(idStr)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := team.Accept(r.Context(), a.Pool, a.Cache, teamID, principal.UserID); err != nil {
		apierr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveMember is DELETE /team/{id}/members/{userID}.
func (a *App) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	idStr, action := teamRoute(r.URL.Path)
	teamID, err := pathID(idStr)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	targetIDStr := strings.TrimPrefix(action, "members/")
	targetID, err := pathID(targetIDStr)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	actorPerms, actor, err := a.actorProjectPermissions(r, teamID)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if actor == nil {
		apierr.Write(w, apierr.Authn("authentication required"))
		return
	}
	if err := team.Remove(r.Context(), a.Pool, a.Cache, teamID, actorPerms, targetID); err != nil {
		apierr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferOwnerRequest struct {
	UserID string `json:"user_id"`
}

// handleTransferOwnership is PATCH /team/{id}/owner, spec.md §8 scenario 6.
func (a *App) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	idStr, _ := teamRoute(r.URL.Path)
	teamID, err := pathID(idStr)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req transferOwnerRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}
	newOwnerID, err := pathID(req.UserID)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	if err := team.TransferOwnership(r.Context(), a.Pool, a.Cache, teamID, principal.UserID, newOwnerID); err != nil {
		apierr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
