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
	"encoding/json"
	"fmt"

	"github.com/modrinth/labrinth-go/internal/models"
)

// NotificationAction is one legacy call-to-action button v2 clients render
// alongside a notification (e.g. "Accept"/"Deny" on a team invite).
type NotificationAction struct {
	Title  string `json:"title"`
	Action string `json:"action_route"`
}

// NotificationResponse is the pre-rendered v2 shape of a Notification: the
// v3 core keeps only a typed, kind-specific JSON body, per spec.md §3's
// glossary entry "per-user inbox item with typed body ... and pre-rendered
// legacy fields (title/text/link/actions) for v2" — rendering that body
// into flat display strings is this façade's job, not the core's.
type NotificationResponse struct {
	ID      string                  `json:"id"`
	Type    models.NotificationKind `json:"type"`
	Title   string                  `json:"title"`
	Text    string                  `json:"text"`
	Link    string                  `json:"link"`
	Actions []NotificationAction    `json:"actions"`
	Read    bool                    `json:"read"`
}

type teamInviteBody struct {
	TeamID      string `json:"team_id"`
	ProjectName string `json:"project_title"`
	InviterName string `json:"inviter_name"`
}

type statusChangeBody struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_title"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

type moderatorMessageBody struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message"`
}

// BuildNotificationResponse renders a v3 Notification's typed body into
// the flat title/text/link/actions fields v2 clients expect.
func BuildNotificationResponse(n models.Notification) (NotificationResponse, error) {
	resp := NotificationResponse{
		ID:   encodeID(n.ID),
		Type: n.Kind,
		Read: n.Read,
	}

	switch n.Kind {
	case models.NotifyTeamInvite, models.NotifyOrgInvite:
		var b teamInviteBody
		if err := json.Unmarshal(n.Body, &b); err != nil {
			return NotificationResponse{}, fmt.Errorf("v2: decode team invite body: %w", err)
		}
		resp.Title = "Team Invitation"
		resp.Text = fmt.Sprintf("%s has invited you to join the team behind %s.", b.InviterName, b.ProjectName)
		resp.Link = "/team/" + b.TeamID
		resp.Actions = []NotificationAction{
			{Title: "Accept", Action: "accept"},
			{Title: "Deny", Action: "deny"},
		}

	case models.NotifyStatusChange:
		var b statusChangeBody
		if err := json.Unmarshal(n.Body, &b); err != nil {
			return NotificationResponse{}, fmt.Errorf("v2: decode status change body: %w", err)
		}
		resp.Title = "Project status updated"
		resp.Text = fmt.Sprintf("%s changed from %s to %s.", b.ProjectName, b.OldStatus, b.NewStatus)
		resp.Link = "/project/" + b.ProjectID

	case models.NotifyModeratorMsg:
		var b moderatorMessageBody
		if err := json.Unmarshal(n.Body, &b); err != nil {
			return NotificationResponse{}, fmt.Errorf("v2: decode moderator message body: %w", err)
		}
		resp.Title = "Message from the moderators"
		resp.Text = b.Message
		resp.Link = "/project/" + b.ProjectID

	case models.NotifyProjectUpdate:
		resp.Title = "Project updated"
		resp.Text = "A project you follow was updated."

	default:
		resp.Title = "Notification"
	}

	if resp.Actions == nil {
		resp.Actions = []NotificationAction{}
	}
	return resp, nil
}
