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
	"encoding/json"
	"net/http"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/auth"
	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/models"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads and decodes r's body into dst, wrapping a malformed
// body as a KindValidation error rather than a bare decode error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierr.Validation("malformed request body: %v", err)
	}
	return nil
}

// pathID decodes the base62 id at the end of r's path, per spec.md §4.1.
func pathID(raw string) (int64, error) {
	id, err := baseid.Decode(raw)
	if err != nil {
		return 0, apierr.Validation("invalid id %q", raw)
	}
	return int64(id), nil
}

// currentUser resolves the request's Principal into a *models.User, nil
// for an anonymous request, matching every lifecycle function's
// user *models.User parameter shape.
func (a *App) currentUser(r *http.Request) (*models.User, error) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		return nil, nil
	}
	return models.GetUser(r.Context(), a.Pool, a.Cache, principal.UserID)
}

// requirePrincipal resolves and requires an authenticated Principal,
// writing apierr.Authn and returning ok=false if absent.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		apierr.Write(w, apierr.Authn("authentication required"))
		return auth.Principal{}, false
	}
	return principal, true
}

// baseIDString encodes a numeric row id into the base62 token models.GetProject
// and friends accept as a lookup token.
func baseIDString(id int64) string {
	return baseid.Encode(uint64(id))
}
