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

package v2

import (
	"context"
	"fmt"
	"sort"

	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

// ResolveClientServerSide recovers the v2 client_side/server_side strings
// for a project from its first (oldest) version's dynamic loader-field
// values, per spec.md §4.10: "on read, the value is recovered from one
// representative version (the project's first) or defaults to unknown".
// An empty slice of versions yields the defaults, resolved by the caller
// (BuildProjectResponse already substitutes "unknown" for "").
func ResolveClientServerSide(ctx context.Context, q db.Querier, projectID int64) (clientSide, serverSide string, err error) {
	versions, err := models.GetVersionsByProject(ctx, q, projectID)
	if err != nil {
		return "", "", fmt.Errorf("v2: load versions: %w", err)
	}
	if len(versions) == 0 {
		return "", "", nil
	}
	first := oldestVersion(versions)

	loaders, err := models.GetVersionLoaders(ctx, q, first.ID)
	if err != nil {
		return "", "", fmt.Errorf("v2: load version loaders: %w", err)
	}
	clientSide, err = resolveScalarTextField(ctx, q, first.ID, loaders, "client_side")
	if err != nil {
		return "", "", err
	}
	serverSide, err = resolveScalarTextField(ctx, q, first.ID, loaders, "server_side")
	if err != nil {
		return "", "", err
	}
	return clientSide, serverSide, nil
}

// AggregateGameVersions unions the "game_versions" loader-field values
// across every version of a project, per spec.md §4.10: "game_versions
// ↔ aggregate of game_versions loader-field values across versions".
func AggregateGameVersions(ctx context.Context, q db.Querier, projectID int64) ([]string, error) {
	versions, err := models.GetVersionsByProject(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("v2: load versions: %w", err)
	}
	seen := make(map[string]bool)
	for _, v := range versions {
		loaders, err := models.GetVersionLoaders(ctx, q, v.ID)
		if err != nil {
			return nil, fmt.Errorf("v2: load version loaders: %w", err)
		}
		values, err := resolveEnumField(ctx, q, v.ID, loaders, "game_versions")
		if err != nil {
			return nil, err
		}
		for _, gv := range values {
			seen[gv] = true
		}
	}
	out := make([]string, 0, len(seen))
	for gv := range seen {
		out = append(out, gv)
	}
	sort.Strings(out)
	return out, nil
}

// ResolveVersionShape loads a version's loaders and game_versions values
// for BuildVersionResponse.
func ResolveVersionShape(ctx context.Context, q db.Querier, versionID int64) (loaders, gameVersions []string, err error) {
	loaders, err = models.GetVersionLoaders(ctx, q, versionID)
	if err != nil {
		return nil, nil, fmt.Errorf("v2: load version loaders: %w", err)
	}
	gameVersions, err = resolveEnumField(ctx, q, versionID, loaders, "game_versions")
	if err != nil {
		return nil, nil, err
	}
	return loaders, gameVersions, nil
}

func oldestVersion(versions []models.Version) models.Version {
	oldest := versions[0]
	for _, v := range versions[1:] {
		if v.CreatedAt.Before(oldest.CreatedAt) {
			oldest = v
		}
	}
	return oldest
}

func findField(schema []models.LoaderField, name string) (models.LoaderField, bool) {
	for _, f := range schema {
		if f.Name == name {
			return f, true
		}
	}
	return models.LoaderField{}, false
}

func resolveScalarTextField(ctx context.Context, q db.Querier, versionID int64, loaders []string, fieldName string) (string, error) {
	schema, err := models.GetLoaderFieldsForLoaders(ctx, q, loaders)
	if err != nil {
		return "", fmt.Errorf("v2: load field schema: %w", err)
	}
	field, ok := findField(schema, fieldName)
	if !ok {
		return "", nil
	}
	values, err := models.GetVersionFieldValues(ctx, q, versionID)
	if err != nil {
		return "", fmt.Errorf("v2: load field values: %w", err)
	}
	for _, v := range values {
		if v.FieldID == field.ID && v.TextValue != nil {
			return *v.TextValue, nil
		}
	}
	return "", nil
}

func resolveEnumField(ctx context.Context, q db.Querier, versionID int64, loaders []string, fieldName string) ([]string, error) {
	schema, err := models.GetLoaderFieldsForLoaders(ctx, q, loaders)
	if err != nil {
		return nil, fmt.Errorf("v2: load field schema: %w", err)
	}
	field, ok := findField(schema, fieldName)
	if !ok || field.EnumType == nil {
		return nil, nil
	}
	ids, err := models.GetVersionFieldEnumIDs(ctx, q, versionID, field.ID)
	if err != nil {
		return nil, fmt.Errorf("v2: load enum ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	allowed, err := models.GetEnumValues(ctx, q, *field.EnumType)
	if err != nil {
		return nil, fmt.Errorf("v2: load enum values: %w", err)
	}
	byID := make(map[int64]string, len(allowed))
	for _, a := range allowed {
		byID[a.ID] = a.Value
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if val, ok := byID[id]; ok {
			out = append(out, val)
		}
	}
	return out, nil
}
