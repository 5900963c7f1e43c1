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

package perm

import (
	"testing"

	"github.com/modrinth/labrinth-go/internal/models"
)

func TestCanGrant(t *testing.T) {
	tests := []struct {
		name   string
		actor  models.ProjectPermissions
		target models.ProjectPermissions
		want   bool
	}{
		{"subset allowed", models.ProjectPermEditDetails | models.ProjectPermEditBody, models.ProjectPermEditDetails, true},
		{"equal allowed", models.ProjectPermEditDetails, models.ProjectPermEditDetails, true},
		{"superset denied", models.ProjectPermEditDetails, models.ProjectPermEditDetails | models.ProjectPermEditBody, false},
		{"disjoint denied", models.ProjectPermEditDetails, models.ProjectPermDeleteProject, false},
		{"empty target always allowed", models.ProjectPermEmpty, models.ProjectPermEmpty, true},
		{"all grants anything", models.ProjectPermAll, models.ProjectPermDeleteProject, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanGrant(tt.actor, tt.target); got != tt.want {
				t.Errorf("CanGrant(%b, %b) = %v, want %v", tt.actor, tt.target, got, tt.want)
			}
		})
	}
}

func TestCanGrantOrg(t *testing.T) {
	actor := models.OrgPermEditDetails | models.OrgPermManageInvites
	if !CanGrantOrg(actor, models.OrgPermEditDetails) {
		t.Error("expected subset grant to be allowed")
	}
	if CanGrantOrg(actor, models.OrgPermDeleteOrganization) {
		t.Error("expected disjoint grant to be denied")
	}
}

func TestProjectPermsFromOrgDefaultViewAnalyticsDoesNotGrantEditMember(t *testing.T) {
	// An org bit carries over only its own mapped project bit; ViewAnalytics
	// must not pull EditMember into the derived project set.
	derived := models.ProjectPermsFromOrgDefault(models.OrgPermViewAnalytics)
	if !derived.Has(models.ProjectPermViewAnalytics) {
		t.Error("expected ViewAnalytics to carry over")
	}
	if derived.Has(models.ProjectPermEditMember) {
		t.Error("EditMember must not be derived from ViewAnalytics alone")
	}
}

func TestProjectStatusSearchable(t *testing.T) {
	tests := []struct {
		status models.ProjectStatus
		want   bool
	}{
		{models.StatusApproved, true},
		{models.StatusUnlisted, true},
		{models.StatusArchived, true},
		{models.StatusDraft, false},
		{models.StatusProcessing, false},
		{models.StatusRejected, false},
		{models.StatusPrivate, false},
		{models.StatusScheduled, false},
		{models.StatusWithdrawn, false},
	}
	for _, tt := range tests {
		if got := tt.status.Searchable(); got != tt.want {
			t.Errorf("%s.Searchable() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
