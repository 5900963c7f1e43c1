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

package auth

import (
	"log"
	"net/http"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/models"
)

// Middleware resolves whatever credential is on the request and, if one
// validated, attaches a Principal to the request context before calling
// next — the same "try to authenticate, fall through to anonymous"
// shape as the teacher's jwtAuthMiddleware, generalized from a single
// cookie-only JWKS check to the three-credential-kind resolution in
// Authenticate.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok, err := m.Authenticate(r.Context(), r)
		if err != nil {
			apierr.Write(w, err)
			return
		}
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireAuth wraps a handler that must see an authenticated Principal,
// failing closed with KindAuthn when the request arrived anonymous.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			apierr.Write(w, apierr.Authn("authentication required"))
			return
		}
		next(w, r)
	}
}

// RequireScope wraps a handler that must see an authenticated Principal
// whose scope is a superset of required, per spec.md §4.4/§4.5's scope
// check. Failing the scope check is KindScope, distinct from KindAuthn
// (there is a principal; it just isn't allowed to do this).
func RequireScope(required models.Scope, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := FromContext(r.Context())
		if !ok {
			apierr.Write(w, apierr.Authn("authentication required"))
			return
		}
		if !principal.Has(required) {
			apierr.Write(w, apierr.MissingScope(scopeName(required)))
			return
		}
		next(w, r)
	}
}

// scopeName renders the first recognized bit of s for the error message;
// good enough for the common single-bit RequireScope call sites.
func scopeName(s models.Scope) string {
	names := map[models.Scope]string{
		models.ScopeProjectRead:       "PROJECT_READ",
		models.ScopeProjectWrite:      "PROJECT_WRITE",
		models.ScopeProjectDelete:     "PROJECT_DELETE",
		models.ScopeVersionRead:       "VERSION_READ",
		models.ScopeVersionWrite:      "VERSION_WRITE",
		models.ScopeVersionDelete:     "VERSION_DELETE",
		models.ScopeVersionCreate:     "VERSION_CREATE",
		models.ScopeNotificationRead:  "NOTIFICATION_READ",
		models.ScopeNotificationWrite: "NOTIFICATION_WRITE",
		models.ScopeSessionAccess:     "SESSION_ACCESS",
		models.ScopeAnalytics:         "ANALYTICS",
		models.ScopePayoutsRead:       "PAYOUTS_READ",
		models.ScopePayoutsWrite:      "PAYOUTS_WRITE",
		models.ScopeReportCreate:      "REPORT_CREATE",
		models.ScopeReportRead:        "REPORT_READ",
		models.ScopeReportWrite:       "REPORT_WRITE",
		models.ScopeReportDelete:      "REPORT_DELETE",
		models.ScopeUserRead:          "USER_READ",
		models.ScopeUserWrite:         "USER_WRITE",
		models.ScopeUserDelete:        "USER_DELETE",
		models.ScopeCollectionRead:    "COLLECTION_READ",
		models.ScopeCollectionWrite:   "COLLECTION_WRITE",
		models.ScopeOrganizationRead:  "ORGANIZATION_READ",
		models.ScopeOrganizationWrite: "ORGANIZATION_WRITE",
		models.ScopeOrganizationDelete: "ORGANIZATION_DELETE",
		models.ScopeThreadRead:        "THREAD_READ",
		models.ScopeThreadWrite:       "THREAD_WRITE",
	}
	if name, ok := names[s]; ok {
		return name
	}
	log.Printf("[auth] scope check against unnamed combination %d", s)
	return "UNKNOWN_SCOPE"
}
