// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package greeting serves the welcome message for the authenticated identity.
package greeting

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/cap-welcome/instrumentation"
	"github.com/hashicorp/go-hclog"
)

// Guest is the name used when no display name can be resolved
const Guest = "guest"

// Message returns the welcome message for the identity.  A nil identity or
// a blank display name is greeted as Guest.
func Message(id identity.Identity) string {
	n, _ := resolveName(id)
	return fmt.Sprintf("Welcome, %s!", n)
}

// resolveName returns the identity's display name, or Guest and true when
// there isn't one.
func resolveName(id identity.Identity) (string, bool) {
	if id == nil {
		return Guest, true
	}
	n := id.DisplayName()
	if strings.TrimSpace(n) == "" {
		return Guest, true
	}
	return n, false
}

// Handler returns the http.HandlerFunc for the welcome page.  It reads the
// identity attached to the request's context.
// Supported options: WithLogger, WithInstrumentation
func Handler(opt ...Option) http.HandlerFunc {
	opts := getHandlerOpts(opt...)
	logger := opts.withLogger
	metrics := opts.withInstrumentation.Metrics()
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.FromContext(r.Context())
		_, guest := resolveName(id)
		metrics.RecordGreeting(r.Context(), guest)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(Message(id))); err != nil {
			logger.Error("unable to write greeting", "error", err)
		}
	}
}

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

type handlerOptions struct {
	withLogger          hclog.Logger
	withInstrumentation *instrumentation.Instrumentation
}

func handlerDefaults() handlerOptions {
	return handlerOptions{
		withLogger:          hclog.NewNullLogger(),
		withInstrumentation: instrumentation.Noop(),
	}
}

func getHandlerOpts(opt ...Option) handlerOptions {
	opts := handlerDefaults()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// WithLogger provides an optional logger
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithInstrumentation provides optional instrumentation for greeting metrics
func WithInstrumentation(i *instrumentation.Instrumentation) Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok && i != nil {
			o.withInstrumentation = i
		}
	}
}
