// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"time"

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

// storeOptions is the set of available options for MemoryStore
type storeOptions struct {
	withNow    func() time.Time
	withLogger hclog.Logger
	withIDFunc func() (string, error)
}

func storeDefaults() storeOptions {
	return storeOptions{
		withNow:    time.Now,
		withLogger: hclog.NewNullLogger(),
		withIDFunc: newID,
	}
}

func getStoreOpts(opt ...Option) storeOptions {
	opts := storeDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithNow provides an optional func used to determine the current time.
// Supported by: NewMemoryStore, Session.IsExpired
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if now == nil {
			return
		}
		switch v := o.(type) {
		case *storeOptions:
			v.withNow = now
		case *sessionOptions:
			v.withNow = now
		}
	}
}

// WithLogger provides an optional logger for NewMemoryStore
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*storeOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithIDFunc provides an optional session ID generator for NewMemoryStore
func WithIDFunc(fn func() (string, error)) Option {
	return func(o interface{}) {
		if o, ok := o.(*storeOptions); ok && fn != nil {
			o.withIDFunc = fn
		}
	}
}

// sessionOptions is the set of available options for Session functions
type sessionOptions struct {
	withNow func() time.Time
}

func sessionDefaults() sessionOptions {
	return sessionOptions{withNow: time.Now}
}

func getSessionOpts(opt ...Option) sessionOptions {
	opts := sessionDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
