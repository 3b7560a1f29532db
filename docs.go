// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// welcome is a small web service which greets the logged in user by name.
// Every route sits behind an authentication gate: requests without a valid
// session (or, optionally, a bearer id_token) are redirected into an OIDC
// authorization code flow with an external identity provider.
//
// The packages are:
//
//   - auth: the authentication gate, its login/callback/logout endpoints and
//     the session and bearer authenticators
//   - greeting: the "Welcome, {name}!" handler
//   - identity: the Identity capability and its OIDC user and principal
//     adapters
//   - interceptor: composable request interceptors, rate limiting and
//     request observation
//   - session: sessions, the in-memory store and session cookies
//   - instrumentation: OpenTelemetry providers and metric instruments
//   - config and server: environment configuration and service assembly
//
// See cmd/welcome for the service binary.
package welcome
