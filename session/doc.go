// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
session is a package for the authenticated sessions established by a
successful login.  A Session owns the Identity resolved during login; the
browser only ever holds the session's ID in a cookie.

MemoryStore is a concurrently safe, in-memory Store.  Expired sessions are
removed when read, and in bulk by Sweep (see Run for a background sweeper).
*/
package session
