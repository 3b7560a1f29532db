// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package server

import (
	"time"

	"github.com/hashicorp/cap-welcome/auth"
	"github.com/hashicorp/cap-welcome/instrumentation"
	"github.com/hashicorp/cap-welcome/session"
	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultSweepInterval is how often expired sessions and login attempts
	// are removed
	DefaultSweepInterval = time.Minute

	// DefaultReadTimeout for requests
	DefaultReadTimeout = 10 * time.Second

	// DefaultShutdownTimeout bounds how long Serve waits for in-flight
	// requests once its ctx is done
	DefaultShutdownTimeout = 15 * time.Second
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

type serverOptions struct {
	withLogger          hclog.Logger
	withInstrumentation *instrumentation.Instrumentation
	withStore           session.Store
	withGateOptions     []auth.Option
	withRateLimit       float64
	withRateBurst       int
	withSweepInterval   time.Duration
	withReadTimeout     time.Duration
	withShutdownTimeout time.Duration
}

func serverDefaults() serverOptions {
	return serverOptions{
		withLogger:          hclog.NewNullLogger(),
		withInstrumentation: instrumentation.Noop(),
		withSweepInterval:   DefaultSweepInterval,
		withReadTimeout:     DefaultReadTimeout,
		withShutdownTimeout: DefaultShutdownTimeout,
	}
}

func getServerOpts(opt ...Option) serverOptions {
	opts := serverDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger.  Components receive named
// sub-loggers.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithInstrumentation provides optional instrumentation
func WithInstrumentation(i *instrumentation.Instrumentation) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok && i != nil {
			o.withInstrumentation = i
		}
	}
}

// WithSessionStore provides an optional session store.  The default is a
// session.MemoryStore.
func WithSessionStore(s session.Store) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok && s != nil {
			o.withStore = s
		}
	}
}

// WithGateOptions provides optional options for the authentication gate
func WithGateOptions(opt ...auth.Option) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok {
			o.withGateOptions = append(o.withGateOptions, opt...)
		}
	}
}

// WithRateLimit provides an optional per-client rate limit in requests per
// second.  Zero disables rate limiting.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok {
			o.withRateLimit = requestsPerSecond
			o.withRateBurst = burst
		}
	}
}

// WithSweepInterval provides an optional interval for sweeping expired
// sessions and login attempts
func WithSweepInterval(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok && d > 0 {
			o.withSweepInterval = d
		}
	}
}

// WithReadTimeout provides an optional read timeout for requests
func WithReadTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok && d >= 0 {
			o.withReadTimeout = d
		}
	}
}

// WithShutdownTimeout provides an optional graceful shutdown timeout
func WithShutdownTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok && d > 0 {
			o.withShutdownTimeout = d
		}
	}
}
