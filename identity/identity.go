// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package identity

import "strings"

// Identity is the capability handlers need from an authenticated request:
// a name suitable for display.  An empty DisplayName means no name could be
// resolved.
type Identity interface {
	DisplayName() string
}

// Claims are the OIDC standard claims used to build an Identity.  See:
// https://openid.net/specs/openid-connect-core-1_0.html#StandardClaims
type Claims struct {
	Subject           string `json:"sub"`
	Name              string `json:"name,omitempty"`
	GivenName         string `json:"given_name,omitempty"`
	FamilyName        string `json:"family_name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
}

// Merge fills in any empty claims from other.  The subject is never
// replaced.
func (c *Claims) Merge(other *Claims) {
	if c == nil || other == nil {
		return
	}
	if c.Subject == "" {
		c.Subject = other.Subject
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&c.Name, other.Name)
	fill(&c.GivenName, other.GivenName)
	fill(&c.FamilyName, other.FamilyName)
	fill(&c.PreferredUsername, other.PreferredUsername)
	fill(&c.Email, other.Email)
}

// Get returns the claim with the given json name, or "" if the claim is
// unknown or empty.
func (c *Claims) Get(claim string) string {
	if c == nil {
		return ""
	}
	switch claim {
	case "sub":
		return c.Subject
	case "name":
		return c.Name
	case "given_name":
		return c.GivenName
	case "family_name":
		return c.FamilyName
	case "preferred_username":
		return c.PreferredUsername
	case "email":
		return c.Email
	default:
		return ""
	}
}

// OIDCUser is an identity built from an OIDC id_token's claims.
type OIDCUser struct {
	Claims Claims
}

// ensure that OIDCUser implements the Identity interface
var _ Identity = OIDCUser{}

// NewOIDCUser creates an OIDCUser from the claims.  A nil claims yields a user
// without a name.
func NewOIDCUser(c *Claims) Identity {
	if c == nil {
		return OIDCUser{}
	}
	return OIDCUser{Claims: *c}
}

// Subject returns the user's "sub" claim
func (u OIDCUser) Subject() string { return u.Claims.Subject }

// FullName returns the user's "name" claim
func (u OIDCUser) FullName() string { return u.Claims.Name }

// DisplayName implements the Identity interface.  It returns the FullName and
// falls back to the given and family names.
func (u OIDCUser) DisplayName() string {
	if n := strings.TrimSpace(u.FullName()); n != "" {
		return u.FullName()
	}
	return strings.TrimSpace(u.Claims.GivenName + " " + u.Claims.FamilyName)
}

// Principal is a generic named principal.
type Principal struct {
	Name string
}

// ensure that Principal implements the Identity interface
var _ Identity = Principal{}

// DisplayName implements the Identity interface
func (p Principal) DisplayName() string { return p.Name }
