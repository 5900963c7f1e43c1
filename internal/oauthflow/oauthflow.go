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

// Package oauthflow drives the three-provider code-exchange flow spec.md
// §6 describes (GitHub, Discord, Microsoft), distinct from internal/auth
// which only resolves credentials already issued. This is the one place
// an outbound request to a third party happens on the login path.
package oauthflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Provider identifies one of the three supported identity providers.
type Provider string

const (
	GitHub    Provider = "github"
	Discord   Provider = "discord"
	Microsoft Provider = "microsoft"
)

// Profile is the subset of a provider's user-info response this codebase
// needs to upsert a users row, per spec.md §6 "fetches the user profile,
// upserts a users row keyed by (provider, external_id)".
type Profile struct {
	ExternalID string
	Username   string
	Email      string
}

// ProviderCredentials holds one provider's registered client id/secret,
// the oauthflow-local mirror of config.OAuthProvider so this package
// doesn't import internal/config and create an import cycle with callers
// that need both.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

// Manager holds the three providers' oauth2.Config and does code exchange
// plus profile fetch. siteURL is this service's own origin, used to build
// each provider's redirect_uri.
type Manager struct {
	configs map[Provider]*oauth2.Config
	client  *http.Client
}

// NewManager builds the three provider configs from their credentials and
// this service's callback base URL (e.g. "https://modrinth.com").
func NewManager(siteURL string, github, discord, microsoft ProviderCredentials) *Manager {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return &Manager{
		client: httpClient,
		configs: map[Provider]*oauth2.Config{
			GitHub: {
				ClientID:     github.ClientID,
				ClientSecret: github.ClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://github.com/login/oauth/authorize",
					TokenURL: "https://github.com/login/oauth/access_token",
				},
				RedirectURL: siteURL + "/auth/callback/github",
				Scopes:      []string{"read:user", "user:email"},
			},
			Discord: {
				ClientID:     discord.ClientID,
				ClientSecret: discord.ClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://discord.com/api/oauth2/authorize",
					TokenURL: "https://discord.com/api/oauth2/token",
				},
				RedirectURL: siteURL + "/auth/callback/discord",
				Scopes:      []string{"identify", "email"},
			},
			Microsoft: {
				ClientID:     microsoft.ClientID,
				ClientSecret: microsoft.ClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://login.microsoftonline.com/consumers/oauth2/v2.0/authorize",
					TokenURL: "https://login.microsoftonline.com/consumers/oauth2/v2.0/token",
				},
				RedirectURL: siteURL + "/auth/callback/microsoft",
				Scopes:      []string{"XboxLive.signin", "offline_access"},
			},
		},
	}
}

// AuthCodeURL builds the provider's authorize-endpoint redirect, carrying
// state as the single round-trip value spec.md §6 relies on to recover the
// in-flight StateID row on callback.
func (m *Manager) AuthCodeURL(provider Provider, state string) (string, error) {
	cfg, ok := m.configs[provider]
	if !ok {
		return "", fmt.Errorf("oauthflow: unknown provider %q", provider)
	}
	return cfg.AuthCodeURL(state), nil
}

// Exchange trades an authorization code for an access token. Microsoft
// gets its own path: per spec.md §9's documented Open Question, its token
// response is parsed twice as AccessToken by the original implementation,
// and this port preserves that rather than "fixing" behavior the spec
// explicitly leaves ambiguous — see exchangeMicrosoft.
func (m *Manager) Exchange(ctx context.Context, provider Provider, code string) (*oauth2.Token, error) {
	cfg, ok := m.configs[provider]
	if !ok {
		return nil, fmt.Errorf("oauthflow: unknown provider %q", provider)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.client)
	if provider == Microsoft {
		return m.exchangeMicrosoft(ctx, cfg, code)
	}
	return cfg.Exchange(ctx, code)
}

// microsoftTokenResponse is the shape the first parse decodes into —
// identical to what oauth2.Config.Exchange itself would produce.
type microsoftTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// exchangeMicrosoft posts the code exchange directly rather than going
// through cfg.Exchange, so the raw response body is available to parse
// twice. Both parses target AccessToken; the first parse's value is what
// gets used regardless of whether the second succeeds, matching the
// original implementation's documented-ambiguous double parse.
func (m *Manager) exchangeMicrosoft(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	form := url.Values{
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {cfg.RedirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("oauthflow: build microsoft token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauthflow: microsoft token request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oauthflow: read microsoft token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauthflow: microsoft token exchange failed: %s", body)
	}

	var first microsoftTokenResponse
	if err := json.Unmarshal(body, &first); err != nil {
		return nil, fmt.Errorf("oauthflow: parse microsoft token response: %w", err)
	}

	var second microsoftTokenResponse
	if err := json.Unmarshal(body, &second); err != nil {
		log.Printf("[oauthflow] microsoft token response second parse failed, using first parse's token: %v", err)
	}

	return &oauth2.Token{
		AccessToken: first.AccessToken,
		TokenType:   first.TokenType,
		Expiry:      time.Now().Add(time.Duration(first.ExpiresIn) * time.Second),
	}, nil
}

// FetchProfile retrieves the provider's user-info endpoint with token and
// normalizes it into a Profile.
func (m *Manager) FetchProfile(ctx context.Context, provider Provider, token *oauth2.Token) (Profile, error) {
	cfg, ok := m.configs[provider]
	if !ok {
		return Profile{}, fmt.Errorf("oauthflow: unknown provider %q", provider)
	}
	client := cfg.Client(context.WithValue(ctx, oauth2.HTTPClient, m.client), token)

	switch provider {
	case GitHub:
		return fetchGitHubProfile(client)
	case Discord:
		return fetchDiscordProfile(client)
	case Microsoft:
		return fetchMicrosoftProfile(client)
	default:
		return Profile{}, fmt.Errorf("oauthflow: unknown provider %q", provider)
	}
}

func fetchGitHubProfile(client *http.Client) (Profile, error) {
	var body struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
	}
	if err := getJSON(client, "https://api.github.com/user", &body); err != nil {
		return Profile{}, err
	}
	return Profile{ExternalID: fmt.Sprintf("%d", body.ID), Username: body.Login, Email: body.Email}, nil
}

func fetchDiscordProfile(client *http.Client) (Profile, error) {
	var body struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := getJSON(client, "https://discord.com/api/users/@me", &body); err != nil {
		return Profile{}, err
	}
	return Profile{ExternalID: body.ID, Username: body.Username, Email: body.Email}, nil
}

func fetchMicrosoftProfile(client *http.Client) (Profile, error) {
	var body struct {
		ID                string `json:"id"`
		DisplayName       string `json:"displayName"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := getJSON(client, "https://graph.microsoft.com/v1.0/me", &body); err != nil {
		return Profile{}, err
	}
	email := body.Mail
	if email == "" {
		email = body.UserPrincipalName
	}
	return Profile{ExternalID: body.ID, Username: body.DisplayName, Email: email}, nil
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("oauthflow: fetch profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("oauthflow: profile request failed (%d): %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
