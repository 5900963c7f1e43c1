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

// Package config parses process configuration the same way the teacher's
// main.go does: flag.*Var calls whose defaults come from the environment,
// so the binary is drivable either by flags or by the env vars ops already
// sets in spec.md §6.
package config

import (
	"flag"
	"os"
	"strings"
)

// OAuthProvider holds the client credentials for one OAuth2 provider.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
}

// Config is the fully parsed process configuration.
type Config struct {
	BindAddr     string
	DatabaseURL  string
	RedisURL     string
	CDNURL       string
	SiteURL      string

	// AllowedCallbackSuffixes is the comma-separated suffix allowlist for
	// the "redirect_uri" parameter of GET /auth/init/{provider}.
	AllowedCallbackSuffixes []string

	MeilisearchAddr string
	MeilisearchKey  string

	GitHub    OAuthProvider
	Discord   OAuthProvider
	Microsoft OAuthProvider

	// SessionJWTSecret signs the session cookie issued after a successful
	// OAuth callback; unlike the teacher's JWKS-verified tokens, sessions
	// here are self-issued, so this is a symmetric signing key, not an
	// external IdP's public key.
	SessionJWTSecret string

	Debug bool
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Parse reads process flags (falling back to environment variables for
// their defaults) into a Config. It registers the flags on
// flag.CommandLine and calls flag.Parse() itself.
func Parse() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.BindAddr, "bind-addr", envOrDefault("BIND_ADDR", ":8000"), "address to listen on")
	flag.StringVar(&cfg.DatabaseURL, "database-url", envOrDefault("DATABASE_URL", ""), "Postgres connection string")
	flag.StringVar(&cfg.RedisURL, "redis-url", envOrDefault("REDIS_URL", ""), "Redis connection string")
	flag.StringVar(&cfg.CDNURL, "cdn-url", envOrDefault("CDN_URL", ""), "base URL of the CDN fronting the file host")
	flag.StringVar(&cfg.SiteURL, "site-url", envOrDefault("SITE_URL", ""), "canonical site URL used in OAuth redirects")

	var allowedCallbacks string
	flag.StringVar(&allowedCallbacks, "allowed-callback-urls", envOrDefault("ALLOWED_CALLBACK_URLS", ""), "comma-separated list of allowed OAuth callback URL suffixes")

	flag.StringVar(&cfg.MeilisearchAddr, "meilisearch-addr", envOrDefault("MEILISEARCH_ADDR", ""), "Meilisearch HTTP address")
	flag.StringVar(&cfg.MeilisearchKey, "meilisearch-key", envOrDefault("MEILISEARCH_KEY", ""), "Meilisearch API key")

	flag.StringVar(&cfg.GitHub.ClientID, "github-client-id", envOrDefault("GITHUB_CLIENT_ID", ""), "GitHub OAuth client id")
	flag.StringVar(&cfg.GitHub.ClientSecret, "github-client-secret", envOrDefault("GITHUB_CLIENT_SECRET", ""), "GitHub OAuth client secret")
	flag.StringVar(&cfg.Discord.ClientID, "discord-client-id", envOrDefault("DISCORD_CLIENT_ID", ""), "Discord OAuth client id")
	flag.StringVar(&cfg.Discord.ClientSecret, "discord-client-secret", envOrDefault("DISCORD_CLIENT_SECRET", ""), "Discord OAuth client secret")
	flag.StringVar(&cfg.Microsoft.ClientID, "microsoft-client-id", envOrDefault("MICROSOFT_CLIENT_ID", ""), "Microsoft OAuth client id")
	flag.StringVar(&cfg.Microsoft.ClientSecret, "microsoft-client-secret", envOrDefault("MICROSOFT_CLIENT_SECRET", ""), "Microsoft OAuth client secret")

	flag.StringVar(&cfg.SessionJWTSecret, "session-jwt-secret", envOrDefault("SESSION_JWT_SECRET", ""), "symmetric key used to sign session cookies")

	flag.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")

	flag.Parse()

	cfg.AllowedCallbackSuffixes = splitNonEmpty(allowedCallbacks, ",")
	return cfg
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsAllowedCallback reports whether url ends with one of the configured
// allowlisted suffixes, per spec §6 ("validates url against
// ALLOWED_CALLBACK_URLS").
func (c *Config) IsAllowedCallback(url string) bool {
	for _, suffix := range c.AllowedCallbackSuffixes {
		if strings.HasSuffix(url, suffix) {
			return true
		}
	}
	return false
}
