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

package apiserver

import (
	"net/http"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/models"
)

// handleListNotifications is GET /notification, the caller's own inbox.
func (a *App) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.Has(models.ScopeNotificationRead) {
		apierr.Write(w, apierr.MissingScope("NOTIFICATION_READ"))
		return
	}
	notifications, err := models.GetNotificationsByUser(r.Context(), a.Pool, principal.UserID)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

// handleMarkNotificationsRead is PATCH /notification, `{ids: [...]}`.
func (a *App) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if !principal.Has(models.ScopeNotificationWrite) {
		apierr.Write(w, apierr.MissingScope("NOTIFICATION_WRITE"))
		return
	}
	var req markReadRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}
	ids, err := decodeIDs(req.IDs)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	if err := models.MarkNotificationsRead(r.Context(), a.Pool, principal.UserID, ids); err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteNotifications is DELETE /notification, `{ids: [...]}`.
func (a *App) handleDeleteNotifications(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req markReadRequest
	if err := decodeJSON(r, &req); err != nil {
		apierr.Write(w, err)
		return
	}
	ids, err := decodeIDs(req.IDs)
	if err != nil {
		apierr.Write(w, err)
		return
	}
	if err := models.RemoveNotifications(r.Context(), a.Pool, principal.UserID, ids); err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeIDs(raw []string) ([]int64, error) {
	ids := make([]int64, len(raw))
	for i, s := range raw {
		id, err := pathID(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
