// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"time"

	"github.com/hashicorp/cap-welcome/instrumentation"
	"github.com/hashicorp/cap-welcome/session"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/language"
)

const (
	// DefaultLoginPath is the path of the gate's login endpoint
	DefaultLoginPath = "/login"

	// DefaultLogoutPath is the path of the gate's logout endpoint
	DefaultLogoutPath = "/logout"

	// DefaultLoginTimeout is how long a user has to complete a login with the
	// provider
	DefaultLoginTimeout = 2 * time.Minute

	// DefaultSessionTTL is the lifetime of a session
	DefaultSessionTTL = 8 * time.Hour

	// StateCookieName is the cookie binding an in-flight login to the browser
	// which started it
	StateCookieName = "welcome_login_state"

	// ReturnToParameter is the login endpoint's query parameter naming the
	// local path to return to after login
	ReturnToParameter = "return_to"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// gateOptions is the set of available options for NewGate
type gateOptions struct {
	withLogger          hclog.Logger
	withInstrumentation *instrumentation.Instrumentation
	withAuthenticators  []Authenticator
	withCookieOptions   session.CookieOptions
	withSessionTTL      time.Duration
	withLoginTimeout    time.Duration
	withClaimsFetcher   ClaimsFetcher
	withLoginPath       string
	withLogoutPath      string
	withLogoutRedirect  string
	withUILocales       []language.Tag
}

func gateDefaults() gateOptions {
	return gateOptions{
		withLogger:          hclog.NewNullLogger(),
		withInstrumentation: instrumentation.Noop(),
		withSessionTTL:      DefaultSessionTTL,
		withLoginTimeout:    DefaultLoginTimeout,
		withLoginPath:       DefaultLoginPath,
		withLogoutPath:      DefaultLogoutPath,
		withLogoutRedirect:  "/",
	}
}

func getGateOpts(opt ...Option) gateOptions {
	opts := gateDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithInstrumentation provides optional instrumentation
func WithInstrumentation(i *instrumentation.Instrumentation) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok && i != nil {
			o.withInstrumentation = i
		}
	}
}

// WithAuthenticators provides optional authenticators which are tried, in
// order, before the session cookie.
func WithAuthenticators(a ...Authenticator) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok {
			for _, v := range a {
				if v != nil {
					o.withAuthenticators = append(o.withAuthenticators, v)
				}
			}
		}
	}
}

// WithCookieOptions provides optional session cookie options
func WithCookieOptions(c session.CookieOptions) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok {
			o.withCookieOptions = c
		}
	}
}

// WithSessionTTL provides an optional session lifetime
func WithSessionTTL(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok && d > 0 {
			o.withSessionTTL = d
		}
	}
}

// WithLoginTimeout provides an optional time limit for completing a login
func WithLoginTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok && d > 0 {
			o.withLoginTimeout = d
		}
	}
}

// WithClaimsFetcher provides an optional ClaimsFetcher consulted when the
// id_token carries no name (see UserInfoFetcher)
func WithClaimsFetcher(f ClaimsFetcher) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok {
			o.withClaimsFetcher = f
		}
	}
}

// WithLoginPath provides an optional path for the login endpoint
func WithLoginPath(p string) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok && p != "" {
			o.withLoginPath = p
		}
	}
}

// WithLogoutPath provides an optional path for the logout endpoint
func WithLogoutPath(p string) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok && p != "" {
			o.withLogoutPath = p
		}
	}
}

// WithLogoutRedirect provides an optional location to redirect to after
// logout
func WithLogoutRedirect(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok && u != "" {
			o.withLogoutRedirect = u
		}
	}
}

// WithUILocales provides optional end-user preferred languages for the
// provider's login pages, sent as the ui_locales request parameter.
func WithUILocales(tags ...language.Tag) Option {
	return func(o interface{}) {
		if o, ok := o.(*gateOptions); ok {
			o.withUILocales = append(o.withUILocales, tags...)
		}
	}
}
