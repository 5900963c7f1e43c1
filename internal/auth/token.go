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
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenPrefix namespaces issued bearer tokens by kind, letting an
// operator eyeballing a leaked credential tell a PAT from an OAuth token
// without a database lookup, per spec.md §4.5 "tokens are prefixed".
type tokenPrefix string

const (
	prefixPAT   tokenPrefix = "mrp_"
	prefixOAuth tokenPrefix = "mra_"
)

// generateToken returns a fresh random bearer token with the given
// prefix, plus its lookup hash. The plaintext is returned exactly once to
// the caller and is never persisted — only hashToken's digest is stored.
func generateToken(prefix tokenPrefix) (plaintext string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("auth: generate token: %w", err)
	}
	plaintext = string(prefix) + base64.RawURLEncoding.EncodeToString(buf)
	hash = hashToken(plaintext)
	return plaintext, hash, nil
}

// GeneratePATToken returns a new personal-access-token plaintext and its
// hash for storage in PersonalAccessToken.TokenHash.
func GeneratePATToken() (plaintext string, hash string, err error) {
	return generateToken(prefixPAT)
}

// GenerateOAuthToken returns a new application-issued access token
// plaintext and its hash for storage in OAuthAccessToken.TokenHash.
func GenerateOAuthToken() (plaintext string, hash string, err error) {
	return generateToken(prefixOAuth)
}

// GenerateStateToken returns a random opaque token suitable for a
// models.StateID row's id, independent of the base62 row-id allocator
// since state tokens are never looked up by numeric id.
func GenerateStateToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate state token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
