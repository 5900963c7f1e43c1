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

// Package project implements the project lifecycle of spec.md §4.6:
// creation, status transitions, category/link editing, and slug
// validation, grounded on the teacher's validation.go regex-based
// checks and registry.go's id/slug bookkeeping.
package project

import (
	"context"
	"fmt"
	"regexp"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

// slugRegex matches the allowed slug alphabet: lowercase letters, digits,
// and dashes, 3-64 characters, matching the teacher's isValidUUID-style
// single compiled regex used at the top of a validation file.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// ValidateSlugFormat checks the slug's shape only, not uniqueness.
func ValidateSlugFormat(slug string) error {
	if !slugRegex.MatchString(slug) {
		return apierr.Validation("slug must be 3-64 characters of lowercase letters, digits, and dashes")
	}
	return nil
}

// CheckSlugAvailable validates that slug is free to use for project
// excludeID (0 when creating a new project), per spec.md §4.6: "Slug
// edits are rejected if the new slug parses as the base62 id of any
// other project... or collides with any existing slug case-insensitively."
func CheckSlugAvailable(ctx context.Context, q db.Querier, slug string, excludeID int64) error {
	if err := ValidateSlugFormat(slug); err != nil {
		return err
	}

	exists, err := models.SlugExists(ctx, q, slug, excludeID)
	if err != nil {
		return fmt.Errorf("project: check slug existence: %w", err)
	}
	if exists {
		return apierr.Conflict("slug %q is already in use", slug)
	}

	if n, err := baseid.Decode(slug); err == nil {
		taken, err := models.ProjectIDExists(ctx, q, n)
		if err != nil {
			return fmt.Errorf("project: check slug id aliasing: %w", err)
		}
		if taken && int64(n) != excludeID {
			return apierr.Conflict("slug %q aliases an existing project id", slug)
		}
	}

	return nil
}
