// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/cap/oidc"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/language"
)

// DefaultCallbackPath is appended to the public URL when no redirect URL is
// configured
const DefaultCallbackPath = "/callback"

// Config is the welcome service's configuration
type Config struct {
	Addr      string `env:"WELCOME_ADDR" envDefault:"localhost:8080"`
	PublicURL string `env:"WELCOME_PUBLIC_URL" envDefault:"http://localhost:8080"`

	Issuer       string            `env:"OIDC_ISSUER"`
	ClientID     string            `env:"OIDC_CLIENT_ID"`
	ClientSecret oidc.ClientSecret `env:"OIDC_CLIENT_SECRET"`
	RedirectURL  string            `env:"OIDC_REDIRECT_URL"`
	Scopes       []string          `env:"OIDC_SCOPES" envDefault:"profile,email" envSeparator:","`
	SigningAlgs  []string          `env:"OIDC_SIGNING_ALGS" envDefault:"RS256" envSeparator:","`
	UILocales    []string          `env:"OIDC_UI_LOCALES" envSeparator:","`

	// ProviderCA is the PEM read from the file named by OIDC_PROVIDER_CA_FILE
	ProviderCA string `env:"OIDC_PROVIDER_CA_FILE,file"`

	IdentityAdapter string        `env:"WELCOME_IDENTITY_ADAPTER" envDefault:"oidc"`
	PrincipalClaim  string        `env:"WELCOME_PRINCIPAL_CLAIM" envDefault:"name"`
	UserInfo        bool          `env:"WELCOME_USERINFO" envDefault:"false"`
	Bearer          bool          `env:"WELCOME_BEARER" envDefault:"false"`
	SessionTTL      time.Duration `env:"WELCOME_SESSION_TTL" envDefault:"8h"`
	LoginTimeout    time.Duration `env:"WELCOME_LOGIN_TIMEOUT" envDefault:"2m"`
	CookieSecure    bool          `env:"WELCOME_COOKIE_SECURE" envDefault:"false"`

	RateLimit float64 `env:"WELCOME_RATE_LIMIT" envDefault:"0"`
	RateBurst int     `env:"WELCOME_RATE_BURST" envDefault:"20"`

	LogLevel    string `env:"WELCOME_LOG_LEVEL" envDefault:"info"`
	LogJSON     bool   `env:"WELCOME_LOG_JSON" envDefault:"false"`
	OtelEnabled bool   `env:"WELCOME_OTEL_ENABLED" envDefault:"false"`

	ReadTimeout     time.Duration `env:"WELCOME_READ_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"WELCOME_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load parses the process environment and validates the result
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses environ, or the process environment when environ is nil,
// and validates the result.
func LoadFrom(environ map[string]string) (*Config, error) {
	const op = "config.LoadFrom"
	c, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c.RedirectURL == "" {
		c.RedirectURL = strings.TrimSuffix(c.PublicURL, "/") + DefaultCallbackPath
	}
	c.Scopes = trimList(c.Scopes)
	c.SigningAlgs = trimList(c.SigningAlgs)
	c.UILocales = trimList(c.UILocales)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	const op = "Config.Validate"
	var result *multierror.Error
	add := func(format string, args ...interface{}) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}
	if c.Addr == "" {
		add("WELCOME_ADDR: %w", ErrMissingParameter)
	}
	if err := absoluteURL(c.PublicURL); err != nil {
		add("WELCOME_PUBLIC_URL: %w", err)
	}
	switch {
	case c.Issuer == "":
		add("OIDC_ISSUER: %w", ErrMissingParameter)
	default:
		if err := absoluteURL(c.Issuer); err != nil {
			add("OIDC_ISSUER: %w", err)
		}
	}
	if c.ClientID == "" {
		add("OIDC_CLIENT_ID: %w", ErrMissingParameter)
	}
	if c.ClientSecret == "" {
		add("OIDC_CLIENT_SECRET: %w", ErrMissingParameter)
	}
	if err := absoluteURL(c.RedirectURL); err != nil {
		add("OIDC_REDIRECT_URL: %w", err)
	} else if u, _ := url.Parse(c.RedirectURL); u.Path == "" || u.Path == "/" {
		// the callback endpoint would shadow the greeting at /
		add("OIDC_REDIRECT_URL: %q has no callback path: %w", c.RedirectURL, ErrInvalidParameter)
	}
	if len(c.SigningAlgs) == 0 {
		add("OIDC_SIGNING_ALGS: %w", ErrMissingParameter)
	}
	if _, err := c.Locales(); err != nil {
		add("OIDC_UI_LOCALES: %w", err)
	}
	if _, err := c.Adapter(); err != nil {
		add("WELCOME_IDENTITY_ADAPTER: %w", err)
	}
	if c.SessionTTL <= 0 {
		add("WELCOME_SESSION_TTL: %s must be positive: %w", c.SessionTTL, ErrInvalidParameter)
	}
	if c.LoginTimeout <= 0 {
		add("WELCOME_LOGIN_TIMEOUT: %s must be positive: %w", c.LoginTimeout, ErrInvalidParameter)
	}
	if c.RateLimit < 0 {
		add("WELCOME_RATE_LIMIT: %v must not be negative: %w", c.RateLimit, ErrInvalidParameter)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		add("WELCOME_RATE_BURST: %d must be at least 1: %w", c.RateBurst, ErrInvalidParameter)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		add("WELCOME_LOG_LEVEL: unknown level %q: %w", c.LogLevel, ErrInvalidParameter)
	}
	if c.ReadTimeout < 0 {
		add("WELCOME_READ_TIMEOUT: %s must not be negative: %w", c.ReadTimeout, ErrInvalidParameter)
	}
	if c.ShutdownTimeout <= 0 {
		add("WELCOME_SHUTDOWN_TIMEOUT: %s must be positive: %w", c.ShutdownTimeout, ErrInvalidParameter)
	}
	// the provider config validates the algorithms and CA
	if result.ErrorOrNil() == nil {
		if _, err := c.OIDCConfig(); err != nil {
			add("%w", err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// OIDCConfig returns the relying party configuration for the provider
func (c *Config) OIDCConfig() (*oidc.Config, error) {
	const op = "Config.OIDCConfig"
	algs := make([]oidc.Alg, 0, len(c.SigningAlgs))
	for _, a := range c.SigningAlgs {
		algs = append(algs, oidc.Alg(a))
	}
	opts := []oidc.Option{oidc.WithScopes(c.Scopes...)}
	if c.ProviderCA != "" {
		opts = append(opts, oidc.WithProviderCA(c.ProviderCA))
	}
	oc, err := oidc.NewConfig(c.Issuer, c.ClientID, c.ClientSecret, algs, []string{c.RedirectURL}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return oc, nil
}

// Adapter returns the configured identity adapter
func (c *Config) Adapter() (identity.Adapter, error) {
	return identity.LookupAdapter(c.IdentityAdapter, identity.WithPrincipalClaim(c.PrincipalClaim))
}

// Locales returns the parsed OIDC_UI_LOCALES language tags
func (c *Config) Locales() ([]language.Tag, error) {
	tags := make([]language.Tag, 0, len(c.UILocales))
	for _, l := range c.UILocales {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("%q: %s: %w", l, err, ErrInvalidParameter)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Level returns the configured log level
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// trimList trims spaces from each element and drops empty ones
func trimList(l []string) []string {
	out := make([]string, 0, len(l))
	for _, s := range l {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func absoluteURL(s string) error {
	if s == "" {
		return ErrMissingParameter
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%q: %s: %w", s, err, ErrInvalidParameter)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL: %w", s, ErrInvalidParameter)
	}
	return nil
}
