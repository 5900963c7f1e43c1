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

package project

import (
	"context"
	"fmt"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/db"
)

// CategoryEdit is either a full replacement or a delta, per spec.md §4.6
// "Category/link edits: replace semantics when the full set is provided,
// delta semantics when add/remove sets are provided." Exactly one of
// Replace or (Add, Remove) should be populated by the caller.
type CategoryEdit struct {
	Replace []string
	Add     []string
	Remove  []string
}

// ApplyCategoryEdit resolves edit against current, validating every named
// category exists, and returns the new set. Set-semantics apply to the
// delta form: adding an already-present category or removing an absent
// one is a no-op rather than an error, per spec.md §8 "Category add/remove
// is set-semantics (adding twice = adding once)."
func ApplyCategoryEdit(ctx context.Context, q db.Querier, current []string, edit CategoryEdit) ([]string, error) {
	if edit.Replace != nil {
		if err := validateCategories(ctx, q, edit.Replace); err != nil {
			return nil, err
		}
		return dedup(edit.Replace), nil
	}

	if err := validateCategories(ctx, q, edit.Add); err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(current))
	order := make([]string, 0, len(current))
	for _, c := range current {
		if !set[c] {
			set[c] = true
			order = append(order, c)
		}
	}
	for _, c := range edit.Add {
		if !set[c] {
			set[c] = true
			order = append(order, c)
		}
	}
	removeSet := make(map[string]bool, len(edit.Remove))
	for _, c := range edit.Remove {
		removeSet[c] = true
	}
	out := make([]string, 0, len(order))
	for _, c := range order {
		if !removeSet[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

func validateCategories(ctx context.Context, q db.Querier, names []string) error {
	for _, name := range dedup(names) {
		ok, err := categoryExistsFn(ctx, q, name)
		if err != nil {
			return fmt.Errorf("project: check category %q: %w", name, err)
		}
		if !ok {
			return apierr.Validation("unknown category %q", name)
		}
	}
	return nil
}

// categoryExistsFn is a package-level indirection over models.CategoryExists
// so tests can substitute a fake without touching the database, set in
// categories_db.go.
var categoryExistsFn = defaultCategoryExists

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
