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
	"context"
	"net/http"
	"strings"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/auth"
	"github.com/modrinth/labrinth-go/internal/baseid"
	"github.com/modrinth/labrinth-go/internal/models"
	"github.com/modrinth/labrinth-go/internal/oauthflow"
)

// handleAuthInit is GET /auth/init/{provider}?redirect_uri=..., the first
// leg of the login/link flow. A state row is recorded server-side so the
// callback can recover redirect_uri and, for a link rather than a login,
// which already-authenticated account to attach the provider identity to
// (spec.md §6).
func (a *App) handleAuthInit(w http.ResponseWriter, r *http.Request) {
	provider, ok := parseProvider(strings.TrimPrefix(r.URL.Path, "/auth/init/"))
	if !ok {
		apierr.Write(w, apierr.Validation("unsupported provider"))
		return
	}
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" || !a.Config.IsAllowedCallback(redirectURI) {
		apierr.Write(w, apierr.Validation("redirect_uri is missing or not allow-listed"))
		return
	}

	var linkingUserID *int64
	if user, err := a.currentUser(r); err == nil && user != nil {
		linkingUserID = &user.ID
	}

	state, err := auth.GenerateStateToken()
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if err := models.InsertStateID(r.Context(), a.Pool, &models.StateID{
		ID:            state,
		Provider:      string(provider),
		RedirectURI:   redirectURI,
		LinkingUserID: linkingUserID,
	}); err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}

	authURL, err := a.OAuth.AuthCodeURL(provider, state)
	if err != nil {
		apierr.Write(w, apierr.Validation("unsupported provider"))
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleAuthCallback is GET /auth/callback/{provider}?code=&state=. It
// consumes the one-shot state row, exchanges the code, resolves the
// provider profile to a user (existing link, new link onto the session's
// already-authenticated account, or a brand new account), and mints a
// fresh browser session (spec.md §6).
func (a *App) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := parseProvider(strings.TrimPrefix(r.URL.Path, "/auth/callback/"))
	if !ok {
		apierr.Write(w, apierr.Validation("unsupported provider"))
		return
	}
	query := r.URL.Query()
	code := query.Get("code")
	stateToken := query.Get("state")
	if code == "" || stateToken == "" {
		apierr.Write(w, apierr.Validation("missing code or state"))
		return
	}

	ctx := r.Context()
	state, err := models.ConsumeStateID(ctx, a.Pool, stateToken)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	if state == nil || state.Provider != string(provider) {
		apierr.Write(w, apierr.Authn("state token is invalid, expired, or already used"))
		return
	}

	token, err := a.OAuth.Exchange(ctx, provider, code)
	if err != nil {
		apierr.Write(w, apierr.External("oauth provider", err))
		return
	}
	profile, err := a.OAuth.FetchProfile(ctx, provider, token)
	if err != nil {
		apierr.Write(w, apierr.External("oauth provider", err))
		return
	}

	userID, err := a.resolveOAuthUser(ctx, provider, profile, state.LinkingUserID)
	if err != nil {
		apierr.Write(w, err)
		return
	}

	session := models.Session{
		UserID:    userID,
		Scopes:    uint64(models.ScopeAll),
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
	}
	sessionID, err := baseid.Generate64(ctx, 47, func(ctx context.Context, id uint64) (bool, error) {
		return models.SessionIDExists(ctx, a.Pool, id)
	})
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	session.ID = int64(sessionID)
	if err := models.InsertSession(ctx, a.Pool, &session); err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}

	cookie, err := a.Auth.IssueSessionCookie(session)
	if err != nil {
		apierr.Write(w, apierr.Dependency(err))
		return
	}
	auth.SetSessionCookie(w, cookie, session.ExpiresAt, !a.Config.Debug)
	http.Redirect(w, r, state.RedirectURI, http.StatusFound)
}

// resolveOAuthUser implements spec.md §6's three-way branch: an already
// linked identity logs in as that user; an unlinked identity seen during
// an authenticated session links onto that session's user; otherwise a
// brand new account is provisioned and linked.
func (a *App) resolveOAuthUser(ctx context.Context, provider oauthflow.Provider, profile oauthflow.Profile, linkingUserID *int64) (int64, error) {
	existing, err := models.GetUserIDByExternalAuth(ctx, a.Pool, string(provider), profile.ExternalID)
	if err != nil {
		return 0, apierr.Dependency(err)
	}
	if existing != nil {
		return *existing, nil
	}

	if linkingUserID != nil {
		if err := models.LinkExternalAuth(ctx, a.Pool, string(provider), profile.ExternalID, *linkingUserID); err != nil {
			return 0, apierr.Dependency(err)
		}
		return *linkingUserID, nil
	}

	newID, err := baseid.Generate64(ctx, 47, func(ctx context.Context, id uint64) (bool, error) {
		return models.UserIDExists(ctx, a.Pool, id)
	})
	if err != nil {
		return 0, apierr.Dependency(err)
	}
	user := models.User{
		ID:       int64(newID),
		Username: profile.Username,
		Email:    profile.Email,
		Role:     models.RoleDeveloper,
	}
	if err := models.InsertUser(ctx, a.Pool, &user); err != nil {
		return 0, apierr.Dependency(err)
	}
	if err := models.LinkExternalAuth(ctx, a.Pool, string(provider), profile.ExternalID, user.ID); err != nil {
		return 0, apierr.Dependency(err)
	}
	return user.ID, nil
}

func parseProvider(raw string) (oauthflow.Provider, bool) {
	switch oauthflow.Provider(raw) {
	case oauthflow.GitHub, oauthflow.Discord, oauthflow.Microsoft:
		return oauthflow.Provider(raw), true
	default:
		return "", false
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	return r.RemoteAddr
}
