package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrConnection means no response was received from the remote API.
	ErrConnection = errors.New("could not reach server")
	// ErrMalformedResponse means a response arrived but did not match the
	// expected schema.
	ErrMalformedResponse = errors.New("malformed server response")
	// ErrSessionInvalid is returned for any failed session verification;
	// expired, malformed and revoked tokens are not told apart.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrNoSession is returned by a session store slot with no complete session.
	ErrNoSession = errors.New("no session")
	// ErrNotAuthenticated guards operations that need a verified session.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("access forbidden")

	// Account repository errors.
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already registered")
)

// ValidationError reports every invalid form field at once, keyed by field
// name. It never reaches the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthError is a login or registration request the server rejected. Detail
// is the server-supplied message, surfaced verbatim.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request rejected with status %d", e.Status)
}

// APIError is a non-2xx answer to an authenticated data request.
type APIError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %d %s", e.Endpoint, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: status %d", e.Endpoint, e.Status)
}

// Unauthorized reports a 401: the token is no longer accepted. The session
// guard does not re-poll, so callers of data endpoints handle this
// themselves.
func (e *APIError) Unauthorized() bool {
	return e.Status == 401
}

// Forbidden reports a 403: the token is valid but the role lacks access.
func (e *APIError) Forbidden() bool {
	return e.Status == 403
}
