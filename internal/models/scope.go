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

// Scope is the bitflag of capabilities a credential (session, PAT, or OAuth
// access token) carries, per spec.md §3 "Scope bitflag".
type Scope uint64

const (
	ScopeProjectRead Scope = 1 << iota
	ScopeProjectWrite
	ScopeProjectDelete
	ScopeVersionRead
	ScopeVersionWrite
	ScopeVersionDelete
	ScopeVersionCreate
	ScopeNotificationRead
	ScopeNotificationWrite
	ScopeSessionAccess
	ScopeAnalytics
	ScopePayoutsRead
	ScopePayoutsWrite
	ScopeReportCreate
	ScopeReportRead
	ScopeReportWrite
	ScopeReportDelete
	ScopeUserRead
	ScopeUserWrite
	ScopeUserDelete
	ScopeCollectionRead
	ScopeCollectionWrite
	ScopeOrganizationRead
	ScopeOrganizationWrite
	ScopeOrganizationDelete
	ScopeThreadRead
	ScopeThreadWrite

	// ScopeAll is every bit above, used for Session credentials, which
	// carry the full scope of their owning user (spec.md §4.4).
	ScopeAll = Scope(1<<iota - 1)
)

// Has reports whether s is a superset of required — "the token's scope
// bitflag is a superset" test from spec.md §4.4.
func (s Scope) Has(required Scope) bool {
	return s&required == required
}

// ProjectPermissions is the bitflag namespace for project-team rows.
type ProjectPermissions uint64

const (
	ProjectPermUploadVersion ProjectPermissions = 1 << iota
	ProjectPermDeleteVersion
	ProjectPermEditDetails
	ProjectPermEditBody
	ProjectPermManageInvites
	ProjectPermRemoveMember
	ProjectPermEditMember
	ProjectPermDeleteProject
	ProjectPermViewAnalytics
	ProjectPermViewPayouts
	ProjectPermManageExternalLinks

	ProjectPermAll = ProjectPermissions(1<<iota - 1)
	ProjectPermEmpty ProjectPermissions = 0
)

func (p ProjectPermissions) Has(required ProjectPermissions) bool {
	return p&required == required
}

// OrganizationPermissions is the bitflag namespace for organization-team
// rows.
type OrganizationPermissions uint64

const (
	OrgPermEditDetails OrganizationPermissions = 1 << iota
	OrgPermManageInvites
	OrgPermRemoveMember
	OrgPermEditMember
	OrgPermAddProject
	OrgPermRemoveProject
	OrgPermDeleteOrganization
	OrgPermEditMemberDefaultPermissions
	OrgPermViewAnalytics
	OrgPermViewPayouts

	OrgPermAll = OrganizationPermissions(1<<iota - 1)
	OrgPermEmpty OrganizationPermissions = 0
)

func (p OrganizationPermissions) Has(required OrganizationPermissions) bool {
	return p&required == required
}

// ProjectPermsFromOrgDefault derives the inherited project permission set
// for a member whose access comes only from their organization team role,
// per spec.md §4.5 "derived = o_team.map(project_defaults_from_org_perms)".
// Only the bits that make sense on a project are carried over.
func ProjectPermsFromOrgDefault(orgPerms OrganizationPermissions) ProjectPermissions {
	var out ProjectPermissions
	if orgPerms.Has(OrgPermEditDetails) {
		out |= ProjectPermEditDetails | ProjectPermEditBody | ProjectPermManageExternalLinks
	}
	if orgPerms.Has(OrgPermManageInvites) {
		out |= ProjectPermManageInvites
	}
	if orgPerms.Has(OrgPermRemoveMember) {
		out |= ProjectPermRemoveMember
	}
	if orgPerms.Has(OrgPermEditMember) {
		out |= ProjectPermEditMember
	}
	if orgPerms.Has(OrgPermViewAnalytics) {
		out |= ProjectPermViewAnalytics
	}
	if orgPerms.Has(OrgPermViewPayouts) {
		out |= ProjectPermViewPayouts
	}
	// Upload/delete version are always available to any accepted
	// organization member unless a project-level override narrows them;
	// this mirrors an org having blanket content-management rights over
	// its own projects. Delete project is not granted here.
	out |= ProjectPermUploadVersion | ProjectPermDeleteVersion
	return out
}
