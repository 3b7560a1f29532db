// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
	ErrNotFound         = errors.New("not found")
	ErrInvalidCACert    = errors.New("invalid CA certificate")

	// ErrNoCredentials is returned by an Authenticator when the request
	// carries no credentials it understands.  The gate moves on to the next
	// Authenticator.
	ErrNoCredentials = errors.New("no credentials")

	// ErrInvalidCredentials is returned by an Authenticator when the request
	// carries credentials which failed verification.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
