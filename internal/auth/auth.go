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

// Package auth resolves the three credential kinds spec.md §4.4/§4.5
// describes (browser session cookie, personal access token, OAuth app
// access token) into a single Principal, the way the teacher's
// auth_middleware.go resolves a JWKS-verified cookie into a context-bound
// user id. Sessions here are self-issued (golang-jwt/jwt/v5, HMAC) rather
// than verified against an external JWKS, since there is no third-party
// identity provider standing behind the site's own login — see DESIGN.md's
// dropped-dependency entry for lestrrat-go/jwx.
package auth

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/modrinth/labrinth-go/internal/apierr"
	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/models"
)

const sessionCookieName = "modrinth_session"

// Principal is the resolved identity and scope of an authenticated
// request, the Go analogue of the teacher's userIDKey context value,
// generalized from "just an email string" to "a user id plus a scope
// bitflag plus which credential kind produced it".
type Principal struct {
	UserID      int64
	Scopes      models.Scope
	CredentialID int64
	Kind        CredentialKind
}

type CredentialKind string

const (
	CredentialSession CredentialKind = "session"
	CredentialPAT     CredentialKind = "pat"
	CredentialOAuth   CredentialKind = "oauth"
)

// Has reports whether the principal's scope is a superset of required.
func (p Principal) Has(required models.Scope) bool {
	return p.Scopes.Has(required)
}

type contextKey struct{}

var principalKey contextKey

// WithPrincipal returns a context carrying p, mirroring the teacher's
// context.WithValue(ctx, userIDKey, ...) pattern.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the request's Principal, if any request credential
// validated. The second return is false for anonymous requests, which
// callers must handle explicitly rather than treating a zero Principal as
// "the anonymous user" (spec.md §4.4 "anonymous requests are a distinct,
// first-class case, not user id zero").
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Manager issues and verifies session JWTs and resolves bearer credentials
// against the database, the combined responsibility split across the
// teacher's KeyManager (JWKS fetch/verify) and jwtAuthMiddleware (request
// parsing), collapsed here because this service is its own identity
// provider.
type Manager struct {
	pool   *db.Pool
	fabric *cache.Fabric
	secret []byte
}

func NewManager(pool *db.Pool, fabric *cache.Fabric, secret string) *Manager {
	return &Manager{pool: pool, fabric: fabric, secret: []byte(secret)}
}

type sessionClaims struct {
	SessionID int64 `json:"sid"`
	jwt.RegisteredClaims
}

// IssueSessionCookie mints a JWT that carries only the session row id —
// never the scope or user id directly — so revoking the row in Postgres
// (RevokeSession) invalidates the cookie immediately rather than waiting
// out the JWT's own expiry, per spec.md §4.4 "session state is the
// database row; the cookie is just a pointer to it".
func (m *Manager) IssueSessionCookie(session models.Session) (string, error) {
	claims := sessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) parseSessionJWT(tokenString string) (int64, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("auth: invalid session token")
	}
	return claims.SessionID, nil
}

// Authenticate resolves whatever credential is attached to r: the session
// cookie, or an Authorization: Bearer token (which may be either a PAT or
// an OAuth app token — both are opaque random strings distinguished only
// by which table their hash matches, per spec.md §4.5). Returns (zero,
// false, nil) for an anonymous request, matching the teacher's "no token
// provided, proceed as anonymous" branch.
func (m *Manager) Authenticate(ctx context.Context, r *http.Request) (Principal, bool, error) {
	if bearer := extractBearer(r); bearer != "" {
		return m.authenticateBearer(ctx, bearer)
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return Principal{}, false, nil
	}
	return m.authenticateSessionCookie(ctx, cookie.Value)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

func (m *Manager) authenticateSessionCookie(ctx context.Context, tokenString string) (Principal, bool, error) {
	sessionID, err := m.parseSessionJWT(tokenString)
	if err != nil {
		return Principal{}, false, apierr.Authn("invalid or expired session")
	}
	session, err := models.GetSession(ctx, m.pool, sessionID)
	if err != nil {
		return Principal{}, false, fmt.Errorf("auth: load session: %w", err)
	}
	if session == nil || session.ExpiresAt.Before(time.Now()) {
		return Principal{}, false, apierr.Authn("invalid or expired session")
	}
	if err := models.RefreshSession(ctx, m.pool, sessionID); err != nil {
		return Principal{}, false, fmt.Errorf("auth: refresh session: %w", err)
	}
	return Principal{
		UserID:       session.UserID,
		Scopes:       models.Scope(session.Scopes),
		CredentialID: session.ID,
		Kind:         CredentialSession,
	}, true, nil
}

// hashToken is the SHA-512 digest PATs and OAuth tokens are looked up by,
// per spec.md §4.5 "bearer tokens are hashed before lookup".
func hashToken(token string) string {
	sum := sha512.Sum512([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (m *Manager) authenticateBearer(ctx context.Context, token string) (Principal, bool, error) {
	hash := hashToken(token)

	if pat, err := models.GetPATByHash(ctx, m.pool, hash); err != nil {
		return Principal{}, false, fmt.Errorf("auth: load pat: %w", err)
	} else if pat != nil {
		if pat.ExpiresAt != nil && pat.ExpiresAt.Before(time.Now()) {
			return Principal{}, false, apierr.Authn("token expired")
		}
		if err := models.TouchPAT(ctx, m.pool, pat.ID); err != nil {
			return Principal{}, false, fmt.Errorf("auth: touch pat: %w", err)
		}
		return Principal{
			UserID:       pat.UserID,
			Scopes:       models.Scope(pat.Scopes),
			CredentialID: pat.ID,
			Kind:         CredentialPAT,
		}, true, nil
	}

	oat, err := models.GetOAuthTokenByHash(ctx, m.pool, hash)
	if err != nil {
		return Principal{}, false, fmt.Errorf("auth: load oauth token: %w", err)
	}
	if oat == nil {
		return Principal{}, false, apierr.Authn("invalid token")
	}
	if oat.ExpiresAt.Before(time.Now()) {
		return Principal{}, false, apierr.Authn("token expired")
	}
	return Principal{
		UserID:       oat.UserID,
		Scopes:       models.Scope(oat.Scopes),
		CredentialID: oat.ID,
		Kind:         CredentialOAuth,
	}, true, nil
}

// SetSessionCookie writes the session cookie onto the response, matching
// the name jwtAuthMiddleware's cookie lookup expects.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the cookie immediately, used on logout.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
