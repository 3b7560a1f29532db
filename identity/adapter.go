// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"fmt"
	"sort"
)

// Adapter builds an Identity from a set of claims.  There is one adapter per
// identity integration.
type Adapter func(c *Claims) Identity

const (
	// OIDCUserAdapter is the name of the adapter which produces an OIDCUser
	OIDCUserAdapter = "oidc"

	// PrincipalAdapter is the name of the adapter which produces a Principal
	PrincipalAdapter = "principal"

	// DefaultPrincipalClaim is the claim used for a Principal's name when none
	// is specified
	DefaultPrincipalClaim = "name"
)

// NewPrincipalAdapter returns an Adapter which creates a Principal named by
// the given claim.  Supported options: WithPrincipalClaim
func NewPrincipalAdapter(opt ...Option) Adapter {
	opts := getAdapterOpts(opt...)
	return func(c *Claims) Identity {
		return Principal{Name: c.Get(opts.withPrincipalClaim)}
	}
}

// LookupAdapter returns the Adapter registered under name.
// Supported options: WithPrincipalClaim
func LookupAdapter(name string, opt ...Option) (Adapter, error) {
	const op = "identity.LookupAdapter"
	switch name {
	case OIDCUserAdapter:
		return NewOIDCUser, nil
	case PrincipalAdapter:
		return NewPrincipalAdapter(opt...), nil
	default:
		return nil, fmt.Errorf("%s: %q (supported: %v): %w", op, name, AdapterNames(), ErrUnknownAdapter)
	}
}

// AdapterNames returns the sorted names accepted by LookupAdapter
func AdapterNames() []string {
	names := []string{OIDCUserAdapter, PrincipalAdapter}
	sort.Strings(names)
	return names
}
