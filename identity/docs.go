// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
identity is a package for representing the authenticated identity attached to
a request.  Handlers depend only on the Identity capability (a resolvable
display name) and never on a concrete identity provider type.

Two adapters are provided: OIDCUser, which exposes the OIDC standard claims of
an id_token, and Principal, a generic named principal.  Either can be selected
by name with LookupAdapter.
*/
package identity
