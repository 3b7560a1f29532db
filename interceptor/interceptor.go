// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package interceptor provides an explicit, ordered chain of request
// interceptors placed in front of an http.Handler.
//
// Each Interceptor either passes the request on (optionally with a derived
// request, e.g. one whose context carries an identity) or short-circuits the
// chain after writing its own response.
package interceptor

import (
	"net/http"
)

// Interceptor inspects a request before it reaches the handler.
type Interceptor interface {
	// Intercept returns the request to pass along and true to continue the
	// chain.  Returning false short-circuits the chain, in which case the
	// interceptor must have written a response to w.
	Intercept(w http.ResponseWriter, r *http.Request) (*http.Request, bool)
}

// Func adapts an ordinary function to the Interceptor interface
type Func func(w http.ResponseWriter, r *http.Request) (*http.Request, bool)

// Intercept implements the Interceptor interface
func (f Func) Intercept(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	return f(w, r)
}

// Chain returns a handler which runs the interceptors in order before h.  Nil
// interceptors are skipped.
func Chain(h http.Handler, interceptors ...Interceptor) http.Handler {
	chain := make([]Interceptor, 0, len(interceptors))
	for _, i := range interceptors {
		if i != nil {
			chain = append(chain, i)
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, i := range chain {
			next, ok := i.Intercept(w, r)
			if !ok {
				return
			}
			if next != nil {
				r = next
			}
		}
		h.ServeHTTP(w, r)
	})
}
