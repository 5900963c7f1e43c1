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

	"github.com/modrinth/labrinth-go/internal/db"
)

// LoaderFieldType is the normalized storage kind a loader field's values
// are scanned into, grounded on original_source/src/database/models/
// loader_fields.rs's per-type value tables rather than a single JSON blob.
type LoaderFieldType string

const (
	FieldInteger    LoaderFieldType = "integer"
	FieldText       LoaderFieldType = "text"
	FieldBoolean    LoaderFieldType = "boolean"
	FieldArrayInt   LoaderFieldType = "array_integer"
	FieldArrayText  LoaderFieldType = "array_text"
	FieldArrayEnum  LoaderFieldType = "array_enum"
	FieldEnum       LoaderFieldType = "enum"
)

// LoaderField describes one schema field a loader's versions may carry
// (e.g. "game_versions", "client_side"), spec.md §3 "LoaderField".
type LoaderField struct {
	ID       int64           `json:"id"`
	Name     string          `json:"field"`
	Type     LoaderFieldType `json:"field_type"`
	EnumType *int64          `json:"enum_type,omitempty"`
	Optional bool            `json:"optional"`
	MinItems *int32          `json:"min_items,omitempty"`
	MaxItems *int32          `json:"max_items,omitempty"`
}

// LoaderFieldEnumValue is one allowed value of an enum/array_enum field,
// e.g. "fabric" for a "loaders" field or "1.20.1" for "game_versions".
type LoaderFieldEnumValue struct {
	ID       int64  `json:"id"`
	EnumID   int64  `json:"-"`
	Value    string `json:"value"`
	Ordering int32  `json:"ordering"`
	Metadata string `json:"metadata,omitempty"`
}

// VersionFieldValue is one (version, field) row. Only the column matching
// the field's LoaderFieldType is populated; this mirrors the original's
// per-type columns (int_value, text_value, bool_value, plus a join table
// for array/enum values) collapsed into one Go struct for callers.
type VersionFieldValue struct {
	VersionID int64
	FieldID   int64
	IntValue  *int64
	TextValue *string
	BoolValue *bool
	EnumIDs   []int64 // for array_enum / enum fields, resolved via the join table
}

func loaderFieldFromRow(row pgx.CollectableRow) (LoaderField, error) {
	var f LoaderField
	err := row.Scan(&f.ID, &f.Name, &f.Type, &f.EnumType, &f.Optional, &f.MinItems, &f.MaxItems)
	return f, err
}

// GetLoaderFieldsForLoaders returns the union of fields declared by the
// given loaders, deduplicated by field id, per spec.md §4.11 "a version's
// applicable fields are the union over its declared loaders".
func GetLoaderFieldsForLoaders(ctx context.Context, q db.Querier, loaders []string) ([]LoaderField, error) {
	return db.ScanMany(ctx, q, `
		SELECT DISTINCT lf.id, lf.field, lf.field_type, lf.enum_type, lf.optional, lf.min_items, lf.max_items
		FROM loader_fields lf
		JOIN loader_fields_loaders lfl ON lfl.loader_field_id = lf.id
		JOIN loaders l ON l.id = lfl.loader_id
		WHERE l.loader = ANY($1::text[])`,
		loaderFieldFromRow, loaders)
}

func enumValueFromRow(row pgx.CollectableRow) (LoaderFieldEnumValue, error) {
	var v LoaderFieldEnumValue
	err := row.Scan(&v.ID, &v.EnumID, &v.Value, &v.Ordering, &v.Metadata)
	return v, err
}

// GetEnumValues returns the allowed values for an enum/array_enum field's
// backing enum table, ordered for display.
func GetEnumValues(ctx context.Context, q db.Querier, enumID int64) ([]LoaderFieldEnumValue, error) {
	return db.ScanMany(ctx, q, `
		SELECT id, enum_id, value, ordering, metadata
		FROM loader_field_enum_values
		WHERE enum_id = $1 ORDER BY ordering ASC`,
		enumValueFromRow, enumID)
}

// SetVersionFieldValue writes one (version, field) value row, replacing
// any prior value for that pair. Exactly one of intValue/textValue/
// boolValue/enumIDs should be populated according to the field's type;
// callers (internal/version) are responsible for type-checking against
// LoaderField.Type before calling, per spec.md §4.11's "values are
// validated against their field's declared type at write time".
func SetVersionFieldValue(ctx context.Context, q db.Querier, v VersionFieldValue) error {
	if _, err := q.Exec(ctx, `DELETE FROM version_fields WHERE version_id = $1 AND field_id = $2`, v.VersionID, v.FieldID); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `
		INSERT INTO version_fields (version_id, field_id, int_value, text_value, bool_value)
		VALUES ($1, $2, $3, $4, $5)`,
		v.VersionID, v.FieldID, v.IntValue, v.TextValue, v.BoolValue); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM version_fields_enum_values WHERE version_id = $1 AND field_id = $2`, v.VersionID, v.FieldID); err != nil {
		return err
	}
	for _, enumID := range v.EnumIDs {
		if _, err := q.Exec(ctx, `
			INSERT INTO version_fields_enum_values (version_id, field_id, enum_value_id)
			VALUES ($1, $2, $3)`, v.VersionID, v.FieldID, enumID); err != nil {
			return err
		}
	}
	return nil
}

func versionFieldFromRow(row pgx.CollectableRow) (VersionFieldValue, error) {
	var v VersionFieldValue
	err := row.Scan(&v.VersionID, &v.FieldID, &v.IntValue, &v.TextValue, &v.BoolValue)
	return v, err
}

// GetVersionFieldValues returns the scalar field rows for a version; array
// and enum-valued fields are joined in separately by the caller via
// GetVersionFieldEnumIDs, mirroring the original's two-table read.
func GetVersionFieldValues(ctx context.Context, q db.Querier, versionID int64) ([]VersionFieldValue, error) {
	return db.ScanMany(ctx, q, `
		SELECT version_id, field_id, int_value, text_value, bool_value
		FROM version_fields WHERE version_id = $1`,
		versionFieldFromRow, versionID)
}

// GetVersionFieldEnumIDs returns the selected enum value ids for a
// (version, field) pair — plural because array_enum fields (e.g.
// "game_versions") may select many.
func GetVersionFieldEnumIDs(ctx context.Context, q db.Querier, versionID, fieldID int64) ([]int64, error) {
	rows, err := q.Query(ctx, `
		SELECT enum_value_id FROM version_fields_enum_values
		WHERE version_id = $1 AND field_id = $2`, versionID, fieldID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
