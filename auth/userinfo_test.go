// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"testing"

	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/cap/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testToken is an oidc.Token with only an access token
type testToken struct {
	oidc.Token
	accessToken oidc.AccessToken
}

func (t testToken) AccessToken() oidc.AccessToken { return t.accessToken }

func TestUserInfoFetcher_FetchClaims(t *testing.T) {
	t.Parallel()
	_, p := testNewProvider(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		fetcher   *UserInfoFetcher
		token     oidc.Token
		wantIsErr error
	}{
		{"nil-fetcher", nil, testToken{accessToken: "access"}, ErrNilParameter},
		{"nil-provider", &UserInfoFetcher{}, testToken{accessToken: "access"}, ErrNilParameter},
		{"nil-token", &UserInfoFetcher{Provider: p}, nil, ErrNilParameter},
		{"empty-access-token", &UserInfoFetcher{Provider: p}, testToken{}, ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			claims, err := tt.fetcher.FetchClaims(ctx, tt.token, "alice@example.com")
			require.Error(err)
			assert.ErrorIs(err, tt.wantIsErr)
			assert.Nil(claims)
		})
	}
}

func Test_needsUserInfo(t *testing.T) {
	t.Parallel()
	emailPrincipal := identity.NewPrincipalAdapter(identity.WithPrincipalClaim("email"))
	tests := []struct {
		name    string
		adapter identity.Adapter
		claims  *identity.Claims
		want    bool
	}{
		{"name", identity.NewOIDCUser, &identity.Claims{Name: "Ada Lovelace"}, false},
		{"given-family", identity.NewOIDCUser, &identity.Claims{GivenName: "Ada", FamilyName: "Lovelace"}, false},
		{"subject-only", identity.NewOIDCUser, &identity.Claims{Subject: "alice@example.com"}, true},
		{"blank-name", identity.NewOIDCUser, &identity.Claims{Name: "   "}, true},
		{"principal-email", emailPrincipal, &identity.Claims{Email: "ada@example.com"}, false},
		{"principal-email-missing", emailPrincipal, &identity.Claims{Name: "Ada Lovelace"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needsUserInfo(tt.adapter, tt.claims))
		})
	}
}
