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

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

// FieldValue is one caller-supplied (field name, raw value) pair from the
// upload's dynamic loader-field section, resolved against the loader's
// declared schema before being written, per spec.md §4.7 step 4.
type FieldValue struct {
	FieldName string
	Int       *int64
	Text      *string
	Bool      *bool
	EnumValue []string // resolved to enum value ids by name
}

// CreateParams is the caller-supplied input for a new version, already
// split into metadata and the file parts streamed and hashed ahead of
// time via StreamAndHash (so this function itself performs no I/O beyond
// the database transaction it runs in).
type CreateParams struct {
	ProjectID     int64
	AuthorID      int64
	Name          string
	VersionNumber string
	Changelog     string
	Type          models.VersionType
	Status        models.VersionStatus
	Loaders       []string
	Files         []HashedUpload
	PrimaryFile   int // index into Files
	Dependencies  []models.VersionDependency
	Fields        []FieldValue
}

// Create validates metadata and dependency shape, allocates a version id,
// then inserts the version, its files and hashes, its dependencies, and
// its loader-field values in one transaction, per spec.md §4.7 steps 1-4.
// q must be a transaction the caller commits after this returns.
func Create(ctx context.Context, q db.Querier, params CreateParams) (*models.Version, error) {
	if err := ValidateMetadata(params.VersionNumber, params.Name, params.Changelog); err != nil {
		return nil, err
	}
	if len(params.Files) == 0 {
		return nil, apierr.Validation("a version must have at least one file")
	}
	seenFilenames := make(map[string]bool, len(params.Files))
	for _, upload := range params.Files {
		if seenFilenames[upload.Filename] {
			return nil, apierr.Validation("duplicate filename %q in version files", upload.Filename)
		}
		seenFilenames[upload.Filename] = true
	}
	for _, d := range params.Dependencies {
		if err := ValidateDependency(d); err != nil {
			return nil, err
		}
	}

	id, err := baseid.Generate64(ctx, 47, func(ctx context.Context, id uint64) (bool, error) {
		return models.VersionIDExists(ctx, q, id)
	})
	if err != nil {
		return nil, fmt.Errorf("version: allocate id: %w", err)
	}

	v := &models.Version{
		ID:            int64(id),
		ProjectID:     params.ProjectID,
		AuthorID:      params.AuthorID,
		Name:          params.Name,
		VersionNumber: params.VersionNumber,
		Changelog:     params.Changelog,
		Type:          params.Type,
		Status:        params.Status,
	}
	if err := models.InsertVersion(ctx, q, v); err != nil {
		return nil, fmt.Errorf("version: insert: %w", err)
	}

	for i, upload := range params.Files {
		fileID, err := baseid.Generate64(ctx, 47, func(ctx context.Context, id uint64) (bool, error) {
			return models.FileIDExists(ctx, q, id)
		})
		if err != nil {
			return nil, fmt.Errorf("version: allocate file id: %w", err)
		}
		f := &models.File{
			ID:        int64(fileID),
			VersionID: v.ID,
			URL:       upload.URL,
			Filename:  upload.Filename,
			Primary:   i == params.PrimaryFile,
			Size:      upload.Size,
			Hashes:    upload.Hashes,
		}
		if err := models.InsertFile(ctx, q, f); err != nil {
			return nil, fmt.Errorf("version: insert file %q: %w", upload.Filename, err)
		}
	}

	for _, dep := range params.Dependencies {
		if err := models.InsertVersionDependency(ctx, q, v.ID, dep); err != nil {
			return nil, fmt.Errorf("version: insert dependency: %w", err)
		}
	}

	if err := models.SetVersionLoaders(ctx, q, v.ID, params.Loaders); err != nil {
		return nil, fmt.Errorf("version: set loaders: %w", err)
	}

	if err := applyFields(ctx, q, v.ID, params.Loaders, params.Fields); err != nil {
		return nil, err
	}

	return v, nil
}

// applyFields resolves each caller-supplied field against the union of
// schema fields the declared loaders expose, rejecting unknown field
// names and type-mismatched values, per spec.md §4.7 step 4.
func applyFields(ctx context.Context, q db.Querier, versionID int64, loaders []string, values []FieldValue) error {
	if len(values) == 0 {
		return nil
	}
	schema, err := models.GetLoaderFieldsForLoaders(ctx, q, loaders)
	if err != nil {
		return fmt.Errorf("version: load field schema: %w", err)
	}
	byName := make(map[string]models.LoaderField, len(schema))
	for _, f := range schema {
		byName[f.Name] = f
	}

	for _, v := range values {
		field, ok := byName[v.FieldName]
		if !ok {
			return apierr.Validation("unknown loader field %q for loaders %v", v.FieldName, loaders)
		}
		row := models.VersionFieldValue{VersionID: versionID, FieldID: field.ID}
		switch field.Type {
		case models.FieldInteger:
			if v.Int == nil {
				return apierr.Validation("field %q requires an integer value", v.FieldName)
			}
			row.IntValue = v.Int
		case models.FieldText:
			if v.Text == nil {
				return apierr.Validation("field %q requires a text value", v.FieldName)
			}
			row.TextValue = v.Text
		case models.FieldBoolean:
			if v.Bool == nil {
				return apierr.Validation("field %q requires a boolean value", v.FieldName)
			}
			row.BoolValue = v.Bool
		case models.FieldEnum, models.FieldArrayEnum, models.FieldArrayInt, models.FieldArrayText:
			ids, err := resolveEnumIDs(ctx, q, field, v)
			if err != nil {
				return err
			}
			row.EnumIDs = ids
		default:
			return apierr.Validation("unsupported field type %q for %q", field.Type, v.FieldName)
		}
		if err := models.SetVersionFieldValue(ctx, q, row); err != nil {
			return fmt.Errorf("version: set field %q: %w", v.FieldName, err)
		}
	}
	return nil
}

func resolveEnumIDs(ctx context.Context, q db.Querier, field models.LoaderField, v FieldValue) ([]int64, error) {
	if field.EnumType == nil {
		return nil, apierr.Validation("field %q has no backing enum", v.FieldName)
	}
	allowed, err := models.GetEnumValues(ctx, q, *field.EnumType)
	if err != nil {
		return nil, fmt.Errorf("version: load enum values for %q: %w", v.FieldName, err)
	}
	byValue := make(map[string]int64, len(allowed))
	for _, a := range allowed {
		byValue[a.Value] = a.ID
	}
	ids := make([]int64, 0, len(v.EnumValue))
	for _, val := range v.EnumValue {
		id, ok := byValue[val]
		if !ok {
			return nil, apierr.Validation("value %q is not valid for field %q", val, v.FieldName)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
