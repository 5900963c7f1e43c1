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

package search

import (
	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/models"
)

func baseidProjectID(id int64) string {
	return baseid.Encode(uint64(id))
}

// Document is the flattened projection pushed to the external index,
// per spec.md §4.9: "{project_id, slug, title, description, categories,
// display_categories, loaders, loader_fields (flattened per-version),
// downloads, follows, ...}".
type Document struct {
	ProjectID         string         `json:"project_id"`
	Slug              string         `json:"slug"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Categories        []string       `json:"categories"`
	DisplayCategories []string       `json:"display_categories"`
	Loaders           []string       `json:"loaders"`
	LoaderFields      map[string]any `json:"loader_fields"`
	Downloads         int64          `json:"downloads"`
	Follows           int64          `json:"follows"`
}

// BuildDocument flattens a project and its versions' loader-field values
// into one index document. fieldValues is every distinct value observed
// for a given field name across the project's versions — Meilisearch
// filters match a document if any element of an array attribute equals
// the filter value, so flattening per-version values into a single
// unioned array per field name (rather than one document per version)
// lets a single project document satisfy per-version loader filters.
func BuildDocument(p models.Project, fieldValues map[string][]string) Document {
	flattened := make(map[string]any, len(fieldValues))
	for field, values := range fieldValues {
		flattened[field] = values
	}
	return Document{
		ProjectID:         baseidProjectID(p.ID),
		Slug:              p.Slug,
		Title:             p.Title,
		Description:       p.Description,
		Categories:        p.Categories,
		DisplayCategories: append(append([]string{}, p.Categories...), p.AdditionalCategories...),
		Loaders:           p.Loaders,
		LoaderFields:      flattened,
		Downloads:         p.Downloads,
		Follows:           p.Followers,
	}
}
