// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package identity

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

// adapterOptions is the set of available options for adapters
type adapterOptions struct {
	withPrincipalClaim string
}

func adapterDefaults() adapterOptions {
	return adapterOptions{
		withPrincipalClaim: DefaultPrincipalClaim,
	}
}

func getAdapterOpts(opt ...Option) adapterOptions {
	opts := adapterDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithPrincipalClaim provides an optional claim name used for a Principal's
// name.  An empty claim keeps the default.
func WithPrincipalClaim(claim string) Option {
	return func(o interface{}) {
		if o, ok := o.(*adapterOptions); ok && claim != "" {
			o.withPrincipalClaim = claim
		}
	}
}
