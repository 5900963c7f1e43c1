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

// legalTransitions encodes the state machine from spec.md §4.6. A
// transition present in this map but requiring moderator is flagged in
// moderatorOnly; transitions absent entirely are always illegal.
var legalTransitions = map[models.ProjectStatus][]models.ProjectStatus{
	models.StatusDraft:      {models.StatusProcessing},
	models.StatusProcessing: {models.StatusApproved, models.StatusRejected, models.StatusScheduled},
	models.StatusApproved:   {models.StatusUnlisted, models.StatusArchived, models.StatusPrivate, models.StatusWithdrawn, models.StatusScheduled},
	models.StatusRejected:   {models.StatusProcessing},
	// withdrawn/unlisted/archived/private/scheduled have no entries, so
	// every transition out of them is rejected, for moderators as well.
}

// moderatorOnlyTransitions are legal transitions that, per spec.md §4.6's
// `*` annotation, only a moderator may perform.
var moderatorOnlyTransitions = map[[2]models.ProjectStatus]bool{
	{models.StatusProcessing, models.StatusApproved}: true,
	{models.StatusProcessing, models.StatusRejected}: true,
	{models.StatusApproved, models.StatusWithdrawn}:  true,
}

// CanTransition reports whether moving from `from` to `to` is ever legal,
// independent of who is requesting it.
func CanTransition(from, to models.ProjectStatus) bool {
	for _, candidate := range legalTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// RequiresModerator reports whether the from->to transition is restricted
// to moderators, per spec.md §4.6's `*` and `†` markers.
func RequiresModerator(from, to models.ProjectStatus) bool {
	return moderatorOnlyTransitions[[2]models.ProjectStatus{from, to}]
}

// ValidateTransition checks both legality and versions≥1 for entry into
// processing, per spec.md §4.6 "processing requires ≥1 version", and the
// moderator gate, returning the apierr.Error a handler should surface.
func ValidateTransition(ctx context.Context, q db.Querier, projectID int64, from, to models.ProjectStatus, requesterIsModerator bool) error {
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return apierr.Validation("cannot transition project from %s to %s", from, to)
	}
	if RequiresModerator(from, to) && !requesterIsModerator {
		return apierr.Forbidden("only a moderator may perform this transition")
	}
	if to == models.StatusProcessing {
		versions, err := models.GetVersionsByProject(ctx, q, projectID)
		if err != nil {
			return fmt.Errorf("project: count versions: %w", err)
		}
		if len(versions) == 0 {
			return apierr.Validation("a project must have at least one version before submission")
		}
	}
	return nil
}

// ApplyTransition performs the status change and, on first entry to
// approved, stamps approved_at — spec.md §4.6 "Entering approved sets
// approved_at = now (only if null) and, on first entry, fires the
// moderation webhook." The webhook itself is out of scope (§1 Non-goals);
// onFirstApproval is called in its place so callers can wire a push to
// internal/search or a notification without this function needing to know
// about either.
func ApplyTransition(ctx context.Context, q db.Querier, f *cache.Fabric, project *models.Project, to models.ProjectStatus, onFirstApproval func(ctx context.Context) error) error {
	firstApproval := to == models.StatusApproved && project.ApprovedAt == nil

	if err := models.UpdateProjectStatus(ctx, q, project.ID, to); err != nil {
		return fmt.Errorf("project: update status: %w", err)
	}
	project.Status = to

	if err := models.ClearProjectCache(ctx, f, project.ID, project.Slug); err != nil {
		return fmt.Errorf("project: invalidate cache: %w", err)
	}

	if firstApproval && onFirstApproval != nil {
		if err := onFirstApproval(ctx); err != nil {
			return err
		}
	}
	return nil
}
