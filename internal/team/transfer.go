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

package team

import (
	"context"
	"fmt"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

// TransferOwnership moves is_owner from the current owner to newOwnerID,
// requiring the new owner to already be an accepted team member. Only the
// current owner may initiate a transfer; callers check that before
// calling. See DESIGN.md's Open Question decision on the former owner's
// leftover role string.
func TransferOwnership(ctx context.Context, q db.Querier, f *cache.Fabric, teamID, currentOwnerID, newOwnerID int64) error {
	newOwner, err := models.GetTeamMember(ctx, q, teamID, newOwnerID)
	if err != nil {
		return fmt.Errorf("team: load new owner: %w", err)
	}
	if newOwner == nil || !newOwner.Accepted {
		return apierr.Validation("the new owner must already be an accepted team member")
	}
	if err := models.TransferOwnership(ctx, q, teamID, currentOwnerID, newOwnerID); err != nil {
		return fmt.Errorf("team: transfer ownership: %w", err)
	}
	return models.ClearTeamCache(ctx, f, teamID)
}
