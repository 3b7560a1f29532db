// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/cap-welcome/session"
)

// Authenticator resolves the identity of a request from the credentials it
// carries.
type Authenticator interface {
	// Method names the authentication method, e.g. "session" or "bearer"
	Method() string

	// Authenticate returns the request's identity.  It returns
	// ErrNoCredentials when the request carries no credentials for this
	// method and ErrInvalidCredentials when they fail verification.  Any
	// other error is an internal failure.  Authenticate may write headers
	// (e.g. clearing a stale cookie) but never a body.
	Authenticate(w http.ResponseWriter, r *http.Request) (identity.Identity, error)
}

// SessionAuthenticator authenticates requests by their session cookie
type SessionAuthenticator struct {
	store  session.Store
	cookie session.CookieOptions
}

// ensure that SessionAuthenticator implements the Authenticator interface
var _ Authenticator = (*SessionAuthenticator)(nil)

// NewSessionAuthenticator creates a SessionAuthenticator
func NewSessionAuthenticator(store session.Store, cookie session.CookieOptions) (*SessionAuthenticator, error) {
	const op = "auth.NewSessionAuthenticator"
	if store == nil {
		return nil, fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	}
	return &SessionAuthenticator{store: store, cookie: cookie}, nil
}

// Method implements the Authenticator interface
func (a *SessionAuthenticator) Method() string { return "session" }

// Authenticate implements the Authenticator interface.  An unknown or expired
// session clears the cookie and is treated as no credentials, so the user is
// sent to login again.
func (a *SessionAuthenticator) Authenticate(w http.ResponseWriter, r *http.Request) (identity.Identity, error) {
	const op = "SessionAuthenticator.Authenticate"
	sessionID, ok := session.ReadCookie(r, a.cookie)
	if !ok {
		return nil, ErrNoCredentials
	}
	s, err := a.store.Get(r.Context(), sessionID)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		session.ClearCookie(w, a.cookie)
		return nil, fmt.Errorf("%s: %w: %s", op, ErrNoCredentials, err)
	case err != nil:
		return nil, fmt.Errorf("%s: unable to read session: %w", op, err)
	}
	return s.Identity, nil
}
