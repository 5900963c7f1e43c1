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

// Package version implements version upload, hashing, dependency-graph
// bookkeeping, hash-based lookup, and update-check resolution from
// spec.md §4.7, grounded on the teacher's transactional write-then-
// cache-invalidate shape in gamestore.go's SaveGame.
package version

import (
	"regexp"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/models"
)

// versionNumberRegex matches the teacher's single-compiled-regex-near-
// top-of-file validation style (validation.go's uuidRegex): version
// numbers are free-form but bounded and must not be pure whitespace.
var versionNumberRegex = regexp.MustCompile(`^[^\s](.{0,126}[^\s])?$`)

const (
	minNameLen = 1
	maxNameLen = 256

	minChangelogLen = 0
	maxChangelogLen = 65536
)

// ValidateMetadata checks version_number, name, and changelog length
// bounds, per spec.md §4.7 step 1.
func ValidateMetadata(versionNumber, name, changelog string) error {
	if !versionNumberRegex.MatchString(versionNumber) {
		return apierr.Validation("version_number must be 1-128 non-whitespace-bounded characters")
	}
	if len(name) < minNameLen || len(name) > maxNameLen {
		return apierr.Validation("name must be between %d and %d characters", minNameLen, maxNameLen)
	}
	if len(changelog) > maxChangelogLen {
		return apierr.Validation("changelog must be at most %d characters", maxChangelogLen)
	}
	return nil
}

// ValidateDependency checks dependency_type; version_id, project_id, and
// file_name are all independently optional per spec.md §3 (a dependency
// may carry any combination of them, including none), so there is no
// cardinality constraint to enforce here.
func ValidateDependency(d models.VersionDependency) error {
	switch d.Kind {
	case models.DependencyRequired, models.DependencyOptional, models.DependencyIncompatible, models.DependencyEmbedded:
	default:
		return apierr.Validation("unknown dependency_type %q", d.Kind)
	}
	return nil
}
