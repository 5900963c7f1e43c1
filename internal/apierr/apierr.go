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

// Package apierr defines the closed error taxonomy every handler returns
// instead of a bare error, and its deterministic mapping to HTTP status.
package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Kind is one of the error categories from the spec's error taxonomy.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthn         Kind = "authentication"
	KindScope         Kind = "missing_scope"
	KindForbidden     Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindDependency    Kind = "dependency_error"
	KindExternal      Kind = "external_error"
	KindRateLimited   Kind = "rate_limited"
)

// Error is the closed sum every handler returns. It carries both the
// user-visible message and the kind used to derive the HTTP status.
type Error struct {
	Kind    Kind
	Message string
	// RetryAfter is set only for KindRateLimited.
	RetryAfter string
	// cause is never serialized; kept for logging.
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status this error maps to, per spec §7.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthn:
		return http.StatusUnauthorized
	case KindScope:
		return http.StatusUnauthorized
	case KindForbidden:
		// Authorization failures intentionally collapse to 404 to avoid
		// enumeration; callers that truly mean "wrong role" use Forbidden()
		// only for routes where the resource's existence is not secret.
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authn(message string) *Error {
	return &Error{Kind: KindAuthn, Message: message}
}

func MissingScope(required string) *Error {
	return &Error{Kind: KindScope, Message: "token is missing required scope: " + required}
}

// NotFound collapses "wrong user" and "no such resource" into one response,
// per spec §7, so callers must not branch on it to recover details.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Dependency wraps a Postgres/Redis/file-host/search failure. The message
// sent to the client is sanitized; cause is kept for server-side logging.
func Dependency(cause error) *Error {
	return &Error{Kind: KindDependency, Message: "an internal dependency failed", cause: cause}
}

func External(service string, cause error) *Error {
	return &Error{Kind: KindExternal, Message: service + " request failed", cause: cause}
}

func RateLimited(retryAfter string) *Error {
	return &Error{Kind: KindRateLimited, Message: "too many requests", RetryAfter: retryAfter}
}

// As extracts an *Error from a generic error, wrapping unknown errors as a
// dependency failure so handlers never leak a raw Go error to the client.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*Error); ok {
		return apiErr
	}
	return Dependency(err)
}

type wireError struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

// Write renders e as the standard JSON error body and sets the matching
// status code and (when present) Retry-After header.
func Write(w http.ResponseWriter, err error) {
	apiErr := As(err)
	if apiErr.RetryAfter != "" {
		w.Header().Set("Retry-After", apiErr.RetryAfter)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status())
	_ = json.NewEncoder(w).Encode(wireError{
		Error:       string(apiErr.Kind),
		Description: apiErr.Message,
	})
}
