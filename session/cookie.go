// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"net/http"
	"time"
)

// DefaultCookieName is the session cookie's name when none is configured
const DefaultCookieName = "welcome_session"

// CookieOptions defines how session cookies are issued.  Cookies are always
// HttpOnly.
type CookieOptions struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		// Lax so the cookie survives the top level redirect back from the IdP
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetCookie issues the session's cookie
func SetCookie(w http.ResponseWriter, s *Session, opts CookieOptions) {
	opts = opts.normalize()
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    s.ID,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  s.ExpiresAt,
		MaxAge:   maxAge(time.Until(s.ExpiresAt)),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearCookie removes the session cookie from the client
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ReadCookie returns the session ID carried by the request, if any
func ReadCookie(r *http.Request, opts CookieOptions) (string, bool) {
	opts = opts.normalize()
	c, err := r.Cookie(opts.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func maxAge(d time.Duration) int {
	secs := int(d / time.Second)
	if secs < 1 {
		// MaxAge of 0 means no Max-Age attribute, so round up
		return 1
	}
	return secs
}
