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

	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
)

// TeamAssociation tags whether a Team belongs to a Project or an
// Organization; spec.md §3/§9 calls this out as a "polymorphic team
// association" that permission computation must branch on once.
type TeamAssociation int

const (
	TeamAssociationNone TeamAssociation = iota
	TeamAssociationProject
	TeamAssociationOrganization
)

// Team is the permission container shared by exactly one project xor
// organization (spec.md §3 "Team").
type Team struct {
	ID int64 `json:"id"`
}

// TeamMember mirrors spec.md §3 "TeamMember". Permissions is stored as a
// raw uint64 and reinterpreted as ProjectPermissions or
// OrganizationPermissions depending on the owning team's association,
// which the caller already knows from context.
type TeamMember struct {
	ID             int64   `json:"id"`
	TeamID         int64   `json:"team_id"`
	UserID         int64   `json:"user_id"`
	Role           string  `json:"role"`
	Permissions    uint64  `json:"permissions"`
	IsOwner        bool    `json:"is_owner"`
	Accepted       bool    `json:"accepted"`
	PayoutsSplit   int32   `json:"payouts_split"` // basis points of 50%, [0, 5000]
	Ordering       *int32  `json:"ordering,omitempty"`
}

func (m TeamMember) ProjectPermissions() ProjectPermissions {
	return ProjectPermissions(m.Permissions)
}

func (m TeamMember) OrganizationPermissions() OrganizationPermissions {
	return OrganizationPermissions(m.Permissions)
}

func teamMemberFromRow(row pgx.CollectableRow) (TeamMember, error) {
	var m TeamMember
	err := row.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.Permissions, &m.IsOwner, &m.Accepted, &m.PayoutsSplit, &m.Ordering)
	return m, err
}

// GetTeamMembers returns every member of a team, ordered per spec.md §4.7
// ordering conventions (explicit ordering first).
func GetTeamMembers(ctx context.Context, q db.Querier, teamID int64) ([]TeamMember, error) {
	return db.ScanMany(ctx, q, `
		SELECT id, team_id, user_id, role, permissions, is_owner, accepted, payouts_split, ordering
		FROM team_members WHERE team_id = $1
		ORDER BY (ordering IS NOT NULL) DESC, ordering ASC, id ASC`,
		teamMemberFromRow, teamID)
}

// GetTeamMember fetches one (team, user) membership row, or nil if none
// exists. An unaccepted row is still returned — callers decide whether
// pending membership counts, per spec.md §4.5/§4.8.
func GetTeamMember(ctx context.Context, q db.Querier, teamID, userID int64) (*TeamMember, error) {
	rows, err := db.ScanMany(ctx, q, `
		SELECT id, team_id, user_id, role, permissions, is_owner, accepted, payouts_split, ordering
		FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamMemberFromRow, teamID, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// InsertTeam creates a bare team row.
func InsertTeam(ctx context.Context, q db.Querier, id int64) error {
	_, err := q.Exec(ctx, `INSERT INTO teams (id) VALUES ($1)`, id)
	return err
}

// InsertTeamMember adds a (possibly pending) membership row, per spec.md
// §4.8 "Inviting: writes a member row with accepted=false".
func InsertTeamMember(ctx context.Context, q db.Querier, m *TeamMember) error {
	_, err := q.Exec(ctx, `
		INSERT INTO team_members (id, team_id, user_id, role, permissions, is_owner, accepted, payouts_split, ordering)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.TeamID, m.UserID, m.Role, m.Permissions, m.IsOwner, m.Accepted, m.PayoutsSplit, m.Ordering)
	return err
}

// UpdateTeamMember writes any subset of {permissions, role, payouts_split,
// ordering}, per spec.md §4.8 "Edit". Nil pointers leave the column
// unchanged.
func UpdateTeamMember(ctx context.Context, q db.Querier, teamID, userID int64, permissions *uint64, role *string, payoutsSplit *int32, ordering **int32) error {
	var orderingVal any
	if ordering != nil {
		orderingVal = *ordering
	}
	_, err := q.Exec(ctx, `
		UPDATE team_members SET
			permissions = COALESCE($3, permissions),
			role = COALESCE($4, role),
			payouts_split = COALESCE($5, payouts_split),
			ordering = CASE WHEN $6::boolean THEN $7::int ELSE ordering END
		WHERE team_id = $1 AND user_id = $2`,
		teamID, userID, permissions, role, payoutsSplit, ordering != nil, orderingVal)
	return err
}

// AcceptTeamInvite flips accepted=true for the invited user. Calling it
// again on an already-accepted row is a no-op (spec.md §8 idempotence law).
func AcceptTeamInvite(ctx context.Context, q db.Querier, teamID, userID int64) error {
	_, err := q.Exec(ctx, `UPDATE team_members SET accepted = true WHERE team_id = $1 AND user_id = $2 AND accepted = false`, teamID, userID)
	return err
}

// RemoveTeamMember deletes a non-owner membership row. Callers must check
// IsOwner before calling; removing an owner violates spec.md §8's "the
// owner may not be removed" invariant.
func RemoveTeamMember(ctx context.Context, q db.Querier, teamID, userID int64) error {
	_, err := q.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2 AND is_owner = false`, teamID, userID)
	return err
}

// TransferOwnership moves the is_owner flag from currentOwnerID to
// newOwnerID within one team. Per DESIGN.md's Open Question decision, the
// former owner's role string is left untouched (historically "Owner"),
// which may read oddly afterwards but matches the documented original
// behavior rather than guessing at a fix.
func TransferOwnership(ctx context.Context, q db.Querier, teamID, currentOwnerID, newOwnerID int64) error {
	if _, err := q.Exec(ctx, `UPDATE team_members SET is_owner = false WHERE team_id = $1 AND user_id = $2`, teamID, currentOwnerID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `UPDATE team_members SET is_owner = true WHERE team_id = $1 AND user_id = $2`, teamID, newOwnerID)
	return err
}

// CountOwners is used by tests/invariant checks: spec.md §8 requires
// exactly one owner per team at all times.
func CountOwners(ctx context.Context, q db.Querier, teamID int64) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT count(*) FROM team_members WHERE team_id = $1 AND is_owner = true`, teamID).Scan(&n)
	return n, err
}

// ClearTeamCache invalidates the team's cached member list. Team rows
// themselves are not slug-keyed, only id-keyed.
func ClearTeamCache(ctx context.Context, f *cache.Fabric, teamID int64) error {
	return cache.Invalidate(ctx, f, "team_members", "", baseidStr(teamID))
}

// TeamMemberIDExists is the existence check used by the id allocator,
// over team_members.id (distinct from the member's user_id).
func TeamMemberIDExists(ctx context.Context, q db.Querier, id uint64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM team_members WHERE id = $1)`, int64(id)).Scan(&exists)
	return exists, err
}
