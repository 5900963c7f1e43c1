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
	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

// singletonLinkKinds are typed links a project may carry at most one of;
// donation is plural and handled separately (ReplaceDonationLinks).
var singletonLinkKinds = map[models.LinkKind]bool{
	models.LinkIssues:  true,
	models.LinkSource:  true,
	models.LinkWiki:    true,
	models.LinkDiscord: true,
}

// MergeLinks applies a partial set of singleton-kind link edits onto
// current, replacing any existing link of the same kind and dropping a
// kind entirely when its URL is the empty string (the double_option
// "clear" case resolved by the caller before this function runs).
// Donation-kind edits are rejected; donation links already in current are
// kept unchanged, after the singleton kinds.
func MergeLinks(current []models.ProjectLink, edits []models.ProjectLink) ([]models.ProjectLink, error) {
	byKind := make(map[models.LinkKind]models.ProjectLink, len(current))
	order := make([]models.LinkKind, 0, len(current))
	var donations []models.ProjectLink
	for _, l := range current {
		if l.Kind == models.LinkDonation {
			donations = append(donations, l)
			continue
		}
		if _, ok := byKind[l.Kind]; !ok {
			order = append(order, l.Kind)
		}
		byKind[l.Kind] = l
	}

	for _, e := range edits {
		if !singletonLinkKinds[e.Kind] {
			return nil, apierr.Validation("unknown link kind %q", e.Kind)
		}
		if e.URL == "" {
			delete(byKind, e.Kind)
			continue
		}
		if _, ok := byKind[e.Kind]; !ok {
			order = append(order, e.Kind)
		}
		byKind[e.Kind] = e
	}

	out := make([]models.ProjectLink, 0, len(byKind)+len(donations))
	for _, k := range order {
		if l, ok := byKind[k]; ok {
			out = append(out, l)
		}
	}
	out = append(out, donations...)
	return out, nil
}

// ReplaceDonationLinks atomically swaps every donation-platform link,
// per spec.md §4.10 "Setting the donation array replaces all donation
// links atomically" — non-donation links in current are preserved as-is.
func ReplaceDonationLinks(current []models.ProjectLink, donations []models.ProjectLink) []models.ProjectLink {
	out := make([]models.ProjectLink, 0, len(current)+len(donations))
	for _, l := range current {
		if l.Kind != models.LinkDonation {
			out = append(out, l)
		}
	}
	for _, d := range donations {
		d.Kind = models.LinkDonation
		out = append(out, d)
	}
	return out
}

// EditLinks loads a project's current typed links, applies the given
// singleton-kind edits and/or a donation-link replacement, and persists
// the result. Either edits or donations may be nil to leave that half
// unchanged.
func EditLinks(ctx context.Context, q db.Querier, f *cache.Fabric, p *models.Project, edits []models.ProjectLink, donations []models.ProjectLink, replaceDonations bool) error {
	current, err := models.GetProjectLinks(ctx, q, p.ID)
	if err != nil {
		return fmt.Errorf("project: load links: %w", err)
	}
	next, err := MergeLinks(current, edits)
	if err != nil {
		return err
	}
	if replaceDonations {
		next = ReplaceDonationLinks(next, donations)
	}
	if err := models.SetProjectLinks(ctx, q, p.ID, next); err != nil {
		return fmt.Errorf("project: save links: %w", err)
	}
	return models.ClearProjectCache(ctx, f, p.ID, p.Slug)
}
