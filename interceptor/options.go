// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package interceptor

import (
	"github.com/hashicorp/cap-welcome/instrumentation"
	"github.com/hashicorp/go-hclog"
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

type options struct {
	withLogger          hclog.Logger
	withInstrumentation *instrumentation.Instrumentation
	withMaxEntries      int
}

func defaults() options {
	return options{
		withLogger:          hclog.NewNullLogger(),
		withInstrumentation: instrumentation.Noop(),
		withMaxEntries:      DefaultMaxEntries,
	}
}

func getOpts(opt ...Option) options {
	opts := defaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*options); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithInstrumentation provides optional instrumentation
func WithInstrumentation(i *instrumentation.Instrumentation) Option {
	return func(o interface{}) {
		if o, ok := o.(*options); ok && i != nil {
			o.withInstrumentation = i
		}
	}
}

// WithMaxEntries provides an optional limit on the number of clients tracked
// by a RateLimiter.  Zero means unlimited.
func WithMaxEntries(n int) Option {
	return func(o interface{}) {
		if o, ok := o.(*options); ok && n >= 0 {
			o.withMaxEntries = n
		}
	}
}
