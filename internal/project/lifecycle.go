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

	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

// CreateParams is the caller-supplied input for a new project; ownership
// (TeamID) is established by the handler beforehand since creating a
// project always creates its backing team in the same transaction.
type CreateParams struct {
	Title       string
	Slug        string
	Description string
	Body        string
	TeamID      int64
	Categories  []string
	Loaders     []string
	License     string
}

// Create allocates a project id, validates the slug, and inserts the
// project row in draft status, per spec.md §4.6. q must be a transaction
// the caller commits after this returns, since the project's team row is
// expected to already exist within the same transaction.
func Create(ctx context.Context, q db.Querier, params CreateParams) (*models.Project, error) {
	if err := CheckSlugAvailable(ctx, q, params.Slug, 0); err != nil {
		return nil, err
	}
	if err := validateCategories(ctx, q, params.Categories); err != nil {
		return nil, err
	}

	id, err := baseid.Generate64(ctx, 47, func(ctx context.Context, id uint64) (bool, error) {
		return models.ProjectIDExists(ctx, q, id)
	})
	if err != nil {
		return nil, fmt.Errorf("project: allocate id: %w", err)
	}

	p := &models.Project{
		ID:                 int64(id),
		Slug:               params.Slug,
		Title:              params.Title,
		Description:        params.Description,
		Body:               params.Body,
		Status:             models.StatusDraft,
		TeamID:             params.TeamID,
		Categories:         dedup(params.Categories),
		Loaders:            params.Loaders,
		License:            params.License,
		MonetizationStatus: "monetized",
	}
	if err := models.InsertProject(ctx, q, p); err != nil {
		return nil, fmt.Errorf("project: insert: %w", err)
	}
	return p, nil
}

// UpdateFields applies validated edits and, when the body changed, returns
// the set of image URLs that are candidates for GC (spec.md §4.6's
// bounded image GC). The caller is responsible for actually deleting
// those images from the file host and must further filter them to ones
// actually owned by this project's upload context.
func UpdateFields(ctx context.Context, q db.Querier, f *cache.Fabric, p *models.Project, title, description, body *string, license *string) ([]string, error) {
	var removedImages []string
	if body != nil && *body != p.Body {
		removedImages = RemovedImageURLs(p.Body, *body)
	}

	if err := models.UpdateProjectFields(ctx, q, p.ID, title, description, body, nil, nil, nil, license); err != nil {
		return nil, fmt.Errorf("project: update fields: %w", err)
	}
	if title != nil {
		p.Title = *title
	}
	if description != nil {
		p.Description = *description
	}
	if body != nil {
		p.Body = *body
	}
	if license != nil {
		p.License = *license
	}

	if err := models.ClearProjectCache(ctx, f, p.ID, p.Slug); err != nil {
		return nil, fmt.Errorf("project: invalidate cache: %w", err)
	}
	return removedImages, nil
}

// Rename validates and applies a slug change.
func Rename(ctx context.Context, q db.Querier, f *cache.Fabric, p *models.Project, newSlug string) error {
	if err := CheckSlugAvailable(ctx, q, newSlug, p.ID); err != nil {
		return err
	}
	oldSlug := p.Slug
	if err := models.UpdateProjectSlug(ctx, q, p.ID, newSlug); err != nil {
		return fmt.Errorf("project: rename: %w", err)
	}
	p.Slug = newSlug
	return models.ClearProjectCache(ctx, f, p.ID, oldSlug)
}

// EditCategories applies a CategoryEdit to the project's primary or
// additional category set.
func EditCategories(ctx context.Context, q db.Querier, f *cache.Fabric, p *models.Project, edit CategoryEdit, additional bool) error {
	current := p.Categories
	if additional {
		current = p.AdditionalCategories
	}
	next, err := ApplyCategoryEdit(ctx, q, current, edit)
	if err != nil {
		return err
	}
	var categories, additionalCategories *[]string
	if additional {
		additionalCategories = &next
	} else {
		categories = &next
	}
	if err := models.UpdateProjectFields(ctx, q, p.ID, nil, nil, nil, categories, additionalCategories, nil, nil); err != nil {
		return fmt.Errorf("project: edit categories: %w", err)
	}
	if additional {
		p.AdditionalCategories = next
	} else {
		p.Categories = next
	}
	return models.ClearProjectCache(ctx, f, p.ID, p.Slug)
}

// Delete removes a project entirely, per spec.md §3's cascade ownership
// of versions/files/gallery/thread.
func Delete(ctx context.Context, q db.Querier, f *cache.Fabric, p *models.Project) error {
	return models.RemoveProject(ctx, q, f, p.ID, p.Slug)
}
