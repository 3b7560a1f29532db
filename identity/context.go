// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package identity

import "context"

type identityContextKey struct{}

// NewContext returns a copy of ctx which carries the identity.  A nil
// identity returns ctx unchanged.
func NewContext(ctx context.Context, id Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext returns the identity attached to ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// DisplayName returns the display name of the identity attached to ctx, or ""
// if there is no identity.
func DisplayName(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.DisplayName()
}
