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
	"context"
	"fmt"
	"strconv"

	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

// UpdateCheckFilters narrows the update-check candidate set, per spec.md
// §4.7: "given a base hash and optional filters {loaders, version_types,
// loader_fields}, return the newest (by publication date) version of the
// same project that satisfies all filters, or 404."
type UpdateCheckFilters struct {
	Loaders      []string
	VersionTypes []models.VersionType
	// LoaderFields maps a field name to the set of acceptable string
	// representations of its value; a version matches if, for every
	// entry here, at least one of its values for that field is in the set.
	LoaderFields map[string][]string
}

// CheckForUpdate resolves baseHash to its version's project, then returns
// the newest version of that project matching filters, or nil if none
// qualifies (the 404 case — left to the caller to translate).
func CheckForUpdate(ctx context.Context, q db.Querier, f *cache.Fabric, user *models.User, algo models.HashAlgorithm, baseHash string, filters UpdateCheckFilters) (*models.Version, error) {
	_, base, err := GetByHash(ctx, q, f, user, algo, baseHash)
	if err != nil || base == nil {
		return nil, err
	}

	candidates, err := models.GetVersionsByProject(ctx, q, base.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("version: list project versions: %w", err)
	}

	var newest *models.Version
	for i := range candidates {
		v := &candidates[i]
		ok, err := matchesFilters(ctx, q, v, filters)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if newest == nil || v.CreatedAt.After(newest.CreatedAt) {
			newest = v
		}
	}
	return newest, nil
}

func matchesFilters(ctx context.Context, q db.Querier, v *models.Version, filters UpdateCheckFilters) (bool, error) {
	if len(filters.VersionTypes) > 0 && !containsType(filters.VersionTypes, v.Type) {
		return false, nil
	}
	if len(filters.Loaders) > 0 {
		versionLoaders, err := models.GetVersionLoaders(ctx, q, v.ID)
		if err != nil {
			return false, fmt.Errorf("version: load loaders for filter: %w", err)
		}
		if !intersects(versionLoaders, filters.Loaders) {
			return false, nil
		}
	}
	if len(filters.LoaderFields) == 0 {
		return true, nil
	}

	schemaLoaders := filters.Loaders
	if len(schemaLoaders) == 0 {
		versionLoaders, err := models.GetVersionLoaders(ctx, q, v.ID)
		if err != nil {
			return false, fmt.Errorf("version: load loaders for filter: %w", err)
		}
		schemaLoaders = versionLoaders
	}
	schema, err := models.GetLoaderFieldsForLoaders(ctx, q, schemaLoaders)
	if err != nil {
		return false, fmt.Errorf("version: load field schema for filter: %w", err)
	}
	byName := make(map[string]models.LoaderField, len(schema))
	for _, f := range schema {
		byName[f.Name] = f
	}

	scalars, err := models.GetVersionFieldValues(ctx, q, v.ID)
	if err != nil {
		return false, fmt.Errorf("version: load field values: %w", err)
	}
	scalarsByField := make(map[int64]models.VersionFieldValue, len(scalars))
	for _, s := range scalars {
		scalarsByField[s.FieldID] = s
	}

	for name, acceptable := range filters.LoaderFields {
		field, ok := byName[name]
		if !ok {
			return false, nil
		}
		ok, err := matchesOneField(ctx, q, v.ID, field, scalarsByField[field.ID], acceptable)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchesOneField(ctx context.Context, q db.Querier, versionID int64, field models.LoaderField, scalar models.VersionFieldValue, acceptable []string) (bool, error) {
	switch field.Type {
	case models.FieldInteger:
		return scalar.IntValue != nil && containsString(acceptable, strconv.FormatInt(*scalar.IntValue, 10)), nil
	case models.FieldText:
		return scalar.TextValue != nil && containsString(acceptable, *scalar.TextValue), nil
	case models.FieldBoolean:
		return scalar.BoolValue != nil && containsString(acceptable, strconv.FormatBool(*scalar.BoolValue)), nil
	case models.FieldEnum, models.FieldArrayEnum, models.FieldArrayInt, models.FieldArrayText:
		if field.EnumType == nil {
			return false, nil
		}
		ids, err := models.GetVersionFieldEnumIDs(ctx, q, versionID, field.ID)
		if err != nil {
			return false, fmt.Errorf("version: load enum selections for %q: %w", field.Name, err)
		}
		if len(ids) == 0 {
			return false, nil
		}
		values, err := models.GetEnumValues(ctx, q, *field.EnumType)
		if err != nil {
			return false, fmt.Errorf("version: load enum values for %q: %w", field.Name, err)
		}
		byID := make(map[int64]string, len(values))
		for _, e := range values {
			byID[e.ID] = e.Value
		}
		for _, id := range ids {
			if containsString(acceptable, byID[id]) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

func containsType(types []models.VersionType, t models.VersionType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// intersects reports whether any element of a is also in b.
func intersects(a, b []string) bool {
	for _, x := range a {
		if containsString(b, x) {
			return true
		}
	}
	return false
}
