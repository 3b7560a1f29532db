// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/cap/oidc"
	"golang.org/x/oauth2"
)

// ClaimsFetcher fetches additional claims for a subject after login, when
// the id_token carries no usable name.
type ClaimsFetcher interface {
	FetchClaims(ctx context.Context, t oidc.Token, subject string) (*identity.Claims, error)
}

// UserInfoFetcher is a ClaimsFetcher which queries the provider's UserInfo
// endpoint with the login's access token.
type UserInfoFetcher struct {
	Provider *oidc.Provider
}

// ensure that UserInfoFetcher implements the ClaimsFetcher interface
var _ ClaimsFetcher = (*UserInfoFetcher)(nil)

// FetchClaims implements the ClaimsFetcher interface
func (u *UserInfoFetcher) FetchClaims(ctx context.Context, t oidc.Token, subject string) (*identity.Claims, error) {
	const op = "UserInfoFetcher.FetchClaims"
	switch {
	case u == nil || u.Provider == nil:
		return nil, fmt.Errorf("%s: provider is nil: %w", op, ErrNilParameter)
	case t == nil:
		return nil, fmt.Errorf("%s: token is nil: %w", op, ErrNilParameter)
	case t.AccessToken() == "":
		return nil, fmt.Errorf("%s: access token is empty: %w", op, ErrInvalidParameter)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: string(t.AccessToken()),
		TokenType:   "Bearer",
		Expiry:      t.Expiry(),
	})
	var claims identity.Claims
	if err := u.Provider.UserInfo(ctx, ts, subject, &claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &claims, nil
}

// needsUserInfo reports whether the identity the adapter builds from the
// claims has no name
func needsUserInfo(adapter identity.Adapter, c *identity.Claims) bool {
	return strings.TrimSpace(adapter(c).DisplayName()) == ""
}
