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

// Package apiserver is the HTTP composition root: it builds the v2 and v3
// route trees and wires them together under one middleware chain, the
// same job the teacher's backend/server.go NewServerHandler does for its
// single flat mux, generalized here to two mounts sharing one identity
// and persistence layer underneath.
package apiserver

import (
	"net/http"

	"github.com/modrinth/labrinth-go/internal/auth"
	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/config"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/oauthflow"
	"github.com/modrinth/labrinth-go/internal/search"
)

// App holds every shared dependency a route handler needs: the pool,
// the cache fabric, the auth manager, the search index, and the oauth
// flow manager. Handlers are methods on *App so they can close over
// nothing but this one struct, mirroring the teacher's pattern of
// closing its route handlers over *Options-derived state in server.go.
type App struct {
	Pool   *db.Pool
	Cache  *cache.Fabric
	Auth   *auth.Manager
	Search *search.Index
	OAuth  *oauthflow.Manager
	Config *config.Config
}

// NewHandler builds the full root mux: /v3 and /v2 mounted side by side,
// wrapped in the middleware chain. Order, outermost to innermost:
// cache-control, security headers, request logging, then credential
// resolution — the same four concerns the teacher's server.go applies.
func NewHandler(app *App) http.Handler {
	root := http.NewServeMux()
	root.Handle("/v3/", http.StripPrefix("/v3", app.v3Mux()))
	root.Handle("/v2/", http.StripPrefix("/v2", app.v2Mux()))
	root.Handle("/auth/", app.authMux())

	var h http.Handler = root
	h = app.Auth.Middleware(h)
	h = loggingMiddleware(h)
	h = securityMiddleware(h)
	h = cacheControlMiddleware(h)
	return h
}
