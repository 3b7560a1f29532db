// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/cap/oidc"
)

// loginRequest is an in-flight login: the oidc.Request sent to the provider
// and the local path to return to once it completes.
type loginRequest struct {
	oidc.Request
	returnTo string
}

// requestCache holds in-flight logins keyed by their oidc state.  It
// implements the callback.RequestReader interface and is concurrently safe.
type requestCache struct {
	m sync.Mutex
	c map[string]loginRequest
}

func newRequestCache() *requestCache {
	return &requestCache{
		c: map[string]loginRequest{},
	}
}

// Read implements the callback.RequestReader interface.  Expired requests are
// deleted before returning an error.
func (rc *requestCache) Read(_ context.Context, state string) (oidc.Request, error) {
	const op = "requestCache.Read"
	rc.m.Lock()
	defer rc.m.Unlock()
	lr, ok := rc.c[state]
	if !ok {
		return nil, fmt.Errorf("%s: state %s: %w", op, state, oidc.ErrNotFound)
	}
	if lr.IsExpired() {
		delete(rc.c, state)
		return nil, fmt.Errorf("%s: state %s expired: %w", op, state, oidc.ErrNotFound)
	}
	return lr.Request, nil
}

// Add an in-flight login
func (rc *requestCache) Add(r oidc.Request, returnTo string) {
	rc.m.Lock()
	defer rc.m.Unlock()
	rc.c[r.State()] = loginRequest{Request: r, returnTo: returnTo}
}

// Take deletes the in-flight login and returns its return-to path
func (rc *requestCache) Take(state string) (string, bool) {
	rc.m.Lock()
	defer rc.m.Unlock()
	lr, ok := rc.c[state]
	if !ok {
		return "", false
	}
	delete(rc.c, state)
	return lr.returnTo, true
}

// Delete an in-flight login
func (rc *requestCache) Delete(state string) {
	rc.m.Lock()
	defer rc.m.Unlock()
	delete(rc.c, state)
}

// Sweep deletes expired logins and returns how many were deleted
func (rc *requestCache) Sweep() int {
	rc.m.Lock()
	defer rc.m.Unlock()
	var n int
	for state, lr := range rc.c {
		if lr.IsExpired() {
			delete(rc.c, state)
			n++
		}
	}
	return n
}

// Len returns the number of in-flight logins
func (rc *requestCache) Len() int {
	rc.m.Lock()
	defer rc.m.Unlock()
	return len(rc.c)
}
