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

package version

import (
	"testing"
	"time"

	"github.com/modrinth/labrinth-go/internal/models"
)

func TestValidateMetadata(t *testing.T) {
	if err := ValidateMetadata("1.0.0", "Release 1.0.0", "initial release"); err != nil {
		t.Errorf("expected valid metadata to pass, got %v", err)
	}
	if err := ValidateMetadata("   ", "name", "log"); err == nil {
		t.Error("expected whitespace-only version_number to be rejected")
	}
	if err := ValidateMetadata("1.0.0", "", "log"); err == nil {
		t.Error("expected empty name to be rejected")
	}
}

func intPtr(n int64) *int64 { return &n }

func TestValidateDependencyReferencesAreOptional(t *testing.T) {
	none := models.VersionDependency{Kind: models.DependencyRequired}
	if err := ValidateDependency(none); err != nil {
		t.Errorf("expected a dependency referencing nothing to pass, got %v", err)
	}

	both := models.VersionDependency{VersionID: intPtr(1), ProjectID: intPtr(2), Kind: models.DependencyRequired}
	if err := ValidateDependency(both); err != nil {
		t.Errorf("expected a dependency referencing two targets to pass, got %v", err)
	}

	ok := models.VersionDependency{VersionID: intPtr(1), Kind: models.DependencyOptional}
	if err := ValidateDependency(ok); err != nil {
		t.Errorf("expected a single-reference dependency to pass, got %v", err)
	}

	badKind := models.VersionDependency{VersionID: intPtr(1), Kind: "bogus"}
	if err := ValidateDependency(badKind); err == nil {
		t.Error("expected an unknown dependency_type to be rejected")
	}
}

func TestSortByDisplayOrder(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ordered3 := int32(3)
	ordered1 := int32(1)
	versions := []models.Version{
		{ID: 1, CreatedAt: t0.Add(2 * time.Hour)},             // unordered, published last
		{ID: 2, OrderingIndex: &ordered3, CreatedAt: t0},       // ordering=3
		{ID: 3, CreatedAt: t0.Add(1 * time.Hour)},              // unordered, published middle
		{ID: 4, OrderingIndex: &ordered1, CreatedAt: t0},       // ordering=1
	}
	SortByDisplayOrder(versions)
	want := []int64{4, 2, 3, 1}
	for i, v := range versions {
		if v.ID != want[i] {
			t.Errorf("position %d: got version %d, want %d (full order: %v)", i, v.ID, want[i], idsOf(versions))
		}
	}
}

func idsOf(versions []models.Version) []int64 {
	ids := make([]int64, len(versions))
	for i, v := range versions {
		ids[i] = v.ID
	}
	return ids
}

func TestContainsType(t *testing.T) {
	types := []models.VersionType{models.VersionRelease, models.VersionBeta}
	if !containsType(types, models.VersionRelease) {
		t.Error("expected release to be found")
	}
	if containsType(types, models.VersionAlpha) {
		t.Error("expected alpha to be absent")
	}
}
