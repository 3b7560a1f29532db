// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/cap-welcome/identity"
)

// BearerAuthenticator authenticates requests which carry an id_token issued
// to this client in an "Authorization: Bearer" header.
type BearerAuthenticator struct {
	verifier *gooidc.IDTokenVerifier
	adapter  identity.Adapter
}

// ensure that BearerAuthenticator implements the Authenticator interface
var _ Authenticator = (*BearerAuthenticator)(nil)

// NewBearerAuthenticator creates a BearerAuthenticator which verifies tokens
// with the verifier and builds identities with the adapter.
func NewBearerAuthenticator(v *gooidc.IDTokenVerifier, adapter identity.Adapter) (*BearerAuthenticator, error) {
	const op = "auth.NewBearerAuthenticator"
	switch {
	case v == nil:
		return nil, fmt.Errorf("%s: verifier is nil: %w", op, ErrNilParameter)
	case adapter == nil:
		return nil, fmt.Errorf("%s: identity adapter is nil: %w", op, ErrNilParameter)
	}
	return &BearerAuthenticator{verifier: v, adapter: adapter}, nil
}

// NewBearerVerifier discovers the issuer and returns a verifier for id_tokens
// issued to clientID.  The ctx is retained for fetching the issuer's keys, so
// it must outlive the verifier.
func NewBearerVerifier(ctx context.Context, issuer, clientID string, supportedAlgs []string, caPEM string) (*gooidc.IDTokenVerifier, error) {
	const op = "auth.NewBearerVerifier"
	switch {
	case issuer == "":
		return nil, fmt.Errorf("%s: issuer is empty: %w", op, ErrInvalidParameter)
	case clientID == "":
		return nil, fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter)
	}
	client, err := NewHTTPClient(caPEM)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	p, err := gooidc.NewProvider(gooidc.ClientContext(ctx, client), issuer)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to discover issuer: %w", op, err)
	}
	return p.Verifier(&gooidc.Config{
		ClientID:             clientID,
		SupportedSigningAlgs: supportedAlgs,
	}), nil
}

// Method implements the Authenticator interface
func (a *BearerAuthenticator) Method() string { return "bearer" }

// Authenticate implements the Authenticator interface.  Requests without an
// Authorization header, or with a scheme other than Bearer, carry no
// credentials.
func (a *BearerAuthenticator) Authenticate(_ http.ResponseWriter, r *http.Request) (identity.Identity, error) {
	const op = "BearerAuthenticator.Authenticate"
	h := r.Header.Get("Authorization")
	if h == "" {
		return nil, ErrNoCredentials
	}
	scheme, token, _ := strings.Cut(h, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return nil, ErrNoCredentials
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%s: bearer token is empty: %w", op, ErrInvalidCredentials)
	}
	idt, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrInvalidCredentials, err)
	}
	var claims identity.Claims
	if err := idt.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s: unable to decode claims: %w: %s", op, ErrInvalidCredentials, err)
	}
	return a.adapter(&claims), nil
}
