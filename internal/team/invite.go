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

// Package team implements the invite/accept/remove/edit/transfer
// orchestration of spec.md §4.8 on top of internal/models' membership
// rows, grounded on the teacher's TeamRoles membership shape in
// teamstore.go, generalized from free-text role arrays to an
// accepted-bool plus bitflag permission row.
package team

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
	"github.com/modrinth/labrinth-go/internal/perm"
)

// Invite writes a pending membership row and notifies the invited user,
// per spec.md §4.8 "Inviting: writes a member row with accepted=false;
// fires a notification. A pending member does not count toward quorum
// and is invisible to non-members." Re-inviting an existing member
// (pending or accepted) is a no-op.
func Invite(ctx context.Context, q db.Querier, teamID, inviterID, inviteeID int64, role string, permissions uint64, kind models.NotificationKind) error {
	existing, err := models.GetTeamMember(ctx, q, teamID, inviteeID)
	if err != nil {
		return fmt.Errorf("team: check existing member: %w", err)
	}
	if existing != nil {
		return nil
	}

	id, err := baseid.Generate64(ctx, 47, func(ctx context.Context, id uint64) (bool, error) {
		return models.TeamMemberIDExists(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("team: allocate member id: %w", err)
	}

	m := &models.TeamMember{
		ID:          int64(id),
		TeamID:      teamID,
		UserID:      inviteeID,
		Role:        role,
		Permissions: permissions,
		Accepted:    false,
	}
	if err := models.InsertTeamMember(ctx, q, m); err != nil {
		return fmt.Errorf("team: insert member: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"team_id": baseid.Encode(uint64(teamID)),
		"invited_by": inviterID,
	})
	if err != nil {
		return fmt.Errorf("team: marshal invite notification: %w", err)
	}
	notificationID, err := baseid.Generate64(ctx, 47, func(ctx context.Context, id uint64) (bool, error) {
		return models.NotificationIDExists(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("team: allocate notification id: %w", err)
	}
	return models.InsertNotification(ctx, q, &models.Notification{
		ID:     int64(notificationID),
		UserID: inviteeID,
		Kind:   kind,
		Body:   body,
	})
}

// Accept flips accepted=true for the calling user. Per spec.md §4.8 "only
// the invited user may accept", the caller is responsible for checking
// userID == the invitee before calling this.
func Accept(ctx context.Context, q db.Querier, f *cache.Fabric, teamID, userID int64) error {
	if err := models.AcceptTeamInvite(ctx, q, teamID, userID); err != nil {
		return fmt.Errorf("team: accept invite: %w", err)
	}
	return models.ClearTeamCache(ctx, f, teamID)
}

// Remove deletes a non-owner membership, requiring the actor to hold
// EDIT_MEMBER and the target to not be the owner, per spec.md §4.8
// "Removing: anyone with EDIT_MEMBER may remove a non-owner; the owner
// may not be removed."
func Remove(ctx context.Context, q db.Querier, f *cache.Fabric, teamID int64, actorPerms models.ProjectPermissions, targetUserID int64) error {
	if !actorPerms.Has(models.ProjectPermEditMember) {
		return apierr.Forbidden("missing permission to remove team members")
	}
	target, err := models.GetTeamMember(ctx, q, teamID, targetUserID)
	if err != nil {
		return fmt.Errorf("team: load target member: %w", err)
	}
	if target == nil {
		return apierr.NotFound("team member not found")
	}
	if target.IsOwner {
		return apierr.Validation("the team owner cannot be removed")
	}
	if err := models.RemoveTeamMember(ctx, q, teamID, targetUserID); err != nil {
		return fmt.Errorf("team: remove member: %w", err)
	}
	return models.ClearTeamCache(ctx, f, teamID)
}

// EditParams is the subset of {permissions, role, payouts_split, ordering}
// an edit call may update; nil fields are left unchanged, per spec.md
// §4.8 "Edit: one call updates any subset".
type EditParams struct {
	Permissions  *uint64
	Role         *string
	PayoutsSplit *int32
	Ordering     **int32
}

// Edit applies a partial update to targetUserID's row, rejecting any
// attempt to grant a permission bit the actor does not themselves hold,
// per spec.md §4.8 "A member may not grant another member a permission
// bit they do not themselves hold."
func Edit(ctx context.Context, q db.Querier, f *cache.Fabric, teamID, targetUserID int64, actorPerms models.ProjectPermissions, params EditParams) error {
	if params.Permissions != nil {
		target := models.ProjectPermissions(*params.Permissions)
		if !perm.CanGrant(actorPerms, target) {
			return apierr.Forbidden("cannot grant a permission you do not hold")
		}
	}
	if err := models.UpdateTeamMember(ctx, q, teamID, targetUserID, params.Permissions, params.Role, params.PayoutsSplit, params.Ordering); err != nil {
		return fmt.Errorf("team: edit member: %w", err)
	}
	return models.ClearTeamCache(ctx, f, teamID)
}
