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

// Package perm computes the effective permission set for a user against a
// project or organization, combining site role, team membership, and (for
// projects) the owning organization's team, the same layered-lookup shape
// as the teacher's GetGameAccess/GetTeamAccess in backend/auth.go —
// generalized from a three-level AccessLevel enum to the bitflag
// ProjectPermissions/OrganizationPermissions namespaces.
package perm

import (
	"context"
	"fmt"

	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

// Result is what a permission check against a project yields: the bits the
// user may exercise, plus whether they may even see the project at all —
// kept separate because visibility and action permission are different
// axes (a moderator can view a draft project they have zero team bits on).
type Result struct {
	Permissions models.ProjectPermissions
	CanView     bool
	IsOwner     bool
}

// ForProject computes the effective ProjectPermissions for user (nil for
// an anonymous requester) against project, per spec.md §4.5.
func ForProject(ctx context.Context, q db.Querier, f *cache.Fabric, user *models.User, project models.Project) (Result, error) {
	publiclyVisible := project.Status.Searchable()

	if user == nil {
		return Result{Permissions: models.ProjectPermEmpty, CanView: publiclyVisible}, nil
	}

	// Rule: site admins have every project permission, unconditionally.
	if user.Role == models.RoleAdmin {
		return Result{Permissions: models.ProjectPermAll, CanView: true, IsOwner: true}, nil
	}

	pTeam, err := models.GetTeamMember(ctx, q, project.TeamID, user.ID)
	if err != nil {
		return Result{}, fmt.Errorf("perm: load project team member: %w", err)
	}

	// Rule: the owner always has ProjectPermissions::ALL regardless of
	// stored bits, even mid-transfer where stale bits might lag.
	if pTeam != nil && pTeam.IsOwner {
		return Result{Permissions: models.ProjectPermAll, CanView: true, IsOwner: true}, nil
	}

	var derived models.ProjectPermissions
	var oTeamAccepted bool
	if project.OrganizationID != nil {
		org, err := models.GetOrganization(ctx, q, f, baseid.Encode(uint64(*project.OrganizationID)))
		if err != nil {
			return Result{}, fmt.Errorf("perm: load organization: %w", err)
		}
		if org != nil {
			oTeam, err := models.GetTeamMember(ctx, q, org.TeamID, user.ID)
			if err != nil {
				return Result{}, fmt.Errorf("perm: load organization team member: %w", err)
			}
			if oTeam != nil && oTeam.Accepted {
				derived = models.ProjectPermsFromOrgDefault(oTeam.OrganizationPermissions())
				oTeamAccepted = true
			}
		}
	}

	var effective models.ProjectPermissions
	switch {
	case pTeam != nil && pTeam.Accepted:
		// Rule: a project-level override replaces the org-derived set
		// entirely, even when that reduces permissions below derived.
		effective = pTeam.ProjectPermissions()
	case pTeam != nil && !pTeam.Accepted:
		// Rule: an unaccepted member's stored bits may only narrow an
		// org-derived grant, never extend it — the pending invite isn't a
		// membership yet, so it cannot be the source of new permissions.
		effective = derived & pTeam.ProjectPermissions()
	default:
		effective = derived
	}

	// Rule: moderators may always view any project (to moderate it), and
	// accepted members may always view their own project regardless of
	// its publication status; this is a visibility bypass only — it
	// grants no additional ProjectPermissions bits. A moderator's read
	// access therefore only ever shows up in CanView, never in
	// Permissions: callers must gate read paths on CanView, not on a
	// Permissions.Has(...) check, or a moderator will be wrongly denied.
	canView := publiclyVisible ||
		user.Role == models.RoleModerator ||
		(pTeam != nil && pTeam.Accepted) ||
		oTeamAccepted

	return Result{Permissions: effective, CanView: canView}, nil
}

// OrgResult is the organization analogue of Result.
type OrgResult struct {
	Permissions models.OrganizationPermissions
	IsOwner     bool
}

// ForOrganization computes the effective OrganizationPermissions for user
// against org. There is no "derived from elsewhere" branch here: an
// organization's team is the root of its own permission namespace.
func ForOrganization(ctx context.Context, q db.Querier, user *models.User, org models.Organization) (OrgResult, error) {
	if user == nil {
		return OrgResult{Permissions: models.OrgPermEmpty}, nil
	}
	if user.Role == models.RoleAdmin {
		return OrgResult{Permissions: models.OrgPermAll, IsOwner: true}, nil
	}
	member, err := models.GetTeamMember(ctx, q, org.TeamID, user.ID)
	if err != nil {
		return OrgResult{}, fmt.Errorf("perm: load organization team member: %w", err)
	}
	if member == nil || !member.Accepted {
		return OrgResult{Permissions: models.OrgPermEmpty}, nil
	}
	if member.IsOwner {
		return OrgResult{Permissions: models.OrgPermAll, IsOwner: true}, nil
	}
	return OrgResult{Permissions: member.OrganizationPermissions()}, nil
}

// CanGrant reports whether a member holding actorPerms may assign
// targetPerms to someone else, per spec.md §4.8 "a member may not grant
// another member a permission bit they do not themselves hold" — targetPerms
// must be a subset of actorPerms.
func CanGrant(actorPerms, targetPerms models.ProjectPermissions) bool {
	return targetPerms&^actorPerms == 0
}

// CanGrantOrg is the organization analogue of CanGrant.
func CanGrantOrg(actorPerms, targetPerms models.OrganizationPermissions) bool {
	return targetPerms&^actorPerms == 0
}
