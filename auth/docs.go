// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
auth is a package for the authentication gate: an interceptor which
guarantees that every request reaching the application's handlers carries an
authenticated identity.

The gate serves its own login, callback and logout endpoints.  Every other
request is authenticated by an ordered list of Authenticators (an optional
bearer id_token, then the session cookie).  Unauthenticated requests are
redirected to the login endpoint, which starts an OIDC authorization code flow
with the identity provider via github.com/hashicorp/cap/oidc.  A successful
callback creates a session and redirects back to the page originally
requested.

Example:

	g, err := auth.NewGate(ctx, provider, store, identity.NewOIDCUser, "https://app.example.com/callback")
	if err != nil {
		// handle error
	}
	h := interceptor.Chain(mux, g)
*/
package auth
