// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/cap-welcome/instrumentation"
	"github.com/hashicorp/cap-welcome/interceptor"
	"github.com/hashicorp/cap-welcome/session"
	"github.com/hashicorp/cap/oidc"
	"github.com/hashicorp/cap/oidc/callback"
	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
)

// Gate is the authentication interceptor.  Every request either reaches the
// next handler with an identity attached to its context, or is answered by
// the gate (a redirect to login, or one of the gate's own endpoints).
type Gate struct {
	provider       *oidc.Provider
	store          session.Store
	adapter        identity.Adapter
	authenticators []Authenticator
	requests       *requestCache
	callback       http.HandlerFunc
	claimsFetcher  ClaimsFetcher

	redirectURL    string
	loginPath      string
	callbackPath   string
	logoutPath     string
	logoutRedirect string
	loginTimeout   time.Duration
	sessionTTL     time.Duration
	cookie         session.CookieOptions
	uiLocales      []language.Tag

	logger  hclog.Logger
	tracer  trace.Tracer
	metrics *instrumentation.Metrics
}

// ensure that Gate implements the Interceptor interface
var _ interceptor.Interceptor = (*Gate)(nil)

// NewGate creates a Gate.  The provider must allow redirectURL, whose path
// becomes the gate's callback endpoint.  The ctx is used for the provider's
// token exchanges and must outlive the Gate.
//
// Supported options: WithLogger, WithInstrumentation, WithAuthenticators,
// WithCookieOptions, WithSessionTTL, WithLoginTimeout, WithClaimsFetcher,
// WithLoginPath, WithLogoutPath, WithLogoutRedirect, WithUILocales
func NewGate(ctx context.Context, p *oidc.Provider, store session.Store, adapter identity.Adapter, redirectURL string, opt ...Option) (*Gate, error) {
	const op = "auth.NewGate"
	switch {
	case p == nil:
		return nil, fmt.Errorf("%s: provider is nil: %w", op, ErrNilParameter)
	case store == nil:
		return nil, fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	case adapter == nil:
		return nil, fmt.Errorf("%s: identity adapter is nil: %w", op, ErrNilParameter)
	}
	u, err := url.Parse(redirectURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: redirect URL %q is not absolute: %w", op, redirectURL, ErrInvalidParameter)
	}
	callbackPath := u.Path
	if callbackPath == "" || callbackPath == "/" {
		return nil, fmt.Errorf("%s: redirect URL %q has no callback path: %w", op, redirectURL, ErrInvalidParameter)
	}

	opts := getGateOpts(opt...)
	for _, path := range []string{opts.withLoginPath, opts.withLogoutPath} {
		if path == callbackPath {
			return nil, fmt.Errorf("%s: %s is used by the callback endpoint: %w", op, path, ErrInvalidParameter)
		}
	}

	sa, err := NewSessionAuthenticator(store, opts.withCookieOptions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	g := &Gate{
		provider:       p,
		store:          store,
		adapter:        adapter,
		authenticators: append(append([]Authenticator{}, opts.withAuthenticators...), sa),
		requests:       newRequestCache(),
		claimsFetcher:  opts.withClaimsFetcher,
		redirectURL:    redirectURL,
		loginPath:      opts.withLoginPath,
		callbackPath:   callbackPath,
		logoutPath:     opts.withLogoutPath,
		logoutRedirect: opts.withLogoutRedirect,
		loginTimeout:   opts.withLoginTimeout,
		sessionTTL:     opts.withSessionTTL,
		cookie:         opts.withCookieOptions,
		uiLocales:      opts.withUILocales,
		logger:         opts.withLogger,
		tracer:         opts.withInstrumentation.Tracer("auth"),
		metrics:        opts.withInstrumentation.Metrics(),
	}
	g.callback, err = callback.AuthCode(ctx, p, g.requests, g.loginSucceeded, g.loginFailed)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create callback handler: %w", op, err)
	}
	return g, nil
}

// Intercept implements the interceptor.Interceptor interface.
func (g *Gate) Intercept(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	switch r.URL.Path {
	case g.loginPath:
		g.login(w, r)
		return nil, false
	case g.callbackPath:
		g.handleCallback(w, r)
		return nil, false
	case g.logoutPath:
		g.logout(w, r)
		return nil, false
	}

	for _, a := range g.authenticators {
		id, err := a.Authenticate(w, r)
		switch {
		case err == nil:
			g.metrics.RecordAuthentication(r.Context(), a.Method())
			return r.WithContext(identity.NewContext(r.Context(), id)), true
		case errors.Is(err, ErrNoCredentials):
			if err != ErrNoCredentials {
				// wrapped with a reason, e.g. a stale session
				g.logger.Debug("credentials not accepted", "method", a.Method(), "reason", err)
			}
			continue
		case errors.Is(err, ErrInvalidCredentials):
			g.logger.Warn("invalid credentials", "method", a.Method(), "path", r.URL.Path, "error", err)
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return nil, false
		default:
			g.logger.Error("authentication failed", "method", a.Method(), "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return nil, false
		}
	}

	g.metrics.RecordUnauthenticated(r.Context())
	returnTo := "/"
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		returnTo = r.URL.RequestURI()
	}
	loginURL := g.loginPath + "?" + url.Values{ReturnToParameter: {returnTo}}.Encode()
	http.Redirect(w, r, loginURL, http.StatusFound)
	return nil, false
}

// login starts an authorization code flow with the provider
func (g *Gate) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	ctx, span := g.tracer.Start(r.Context(), "auth.login")
	defer span.End()

	returnTo, ok := localPath(r.URL.Query().Get(ReturnToParameter))
	if !ok {
		g.logger.Warn("ignoring non-local return path", "return_to", r.URL.Query().Get(ReturnToParameter))
	}

	var reqOpts []oidc.Option
	if len(g.uiLocales) > 0 {
		reqOpts = append(reqOpts, oidc.WithUILocales(g.uiLocales...))
	}
	oidcRequest, err := oidc.NewRequest(g.loginTimeout, g.redirectURL, reqOpts...)
	if err != nil {
		g.logger.Error("unable to create oidc request", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	authURL, err := g.provider.AuthURL(ctx, oidcRequest)
	if err != nil {
		g.logger.Error("unable to get auth url", "error", err)
		http.Error(w, fmt.Sprintf("login failed: %s", err), http.StatusInternalServerError)
		return
	}
	g.requests.Add(oidcRequest, returnTo)
	g.setStateCookie(w, oidcRequest.State())
	g.metrics.RecordLoginStarted(ctx)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback checks the login is bound to this browser before handing
// the request to the provider's callback
func (g *Gate) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	ctx, span := g.tracer.Start(r.Context(), "auth.callback")
	defer span.End()
	r = r.WithContext(ctx)

	state := r.FormValue("state")
	c, err := r.Cookie(StateCookieName)
	if state == "" || err != nil || subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) != 1 {
		g.logger.Warn("login state does not match this browser", "state", state)
		g.metrics.RecordLoginCompleted(ctx, instrumentation.LoginError)
		http.Error(w, "login failed: state mismatch", http.StatusBadRequest)
		return
	}
	g.callback(w, r)
}

// loginSucceeded implements callback.SuccessResponseFunc
func (g *Gate) loginSucceeded(state string, t oidc.Token, w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g.clearStateCookie(w)
	returnTo, ok := g.requests.Take(state)
	if !ok {
		returnTo = "/"
	}

	var claims identity.Claims
	if err := t.IDToken().Claims(&claims); err != nil {
		g.fail(ctx, w, fmt.Errorf("unable to read id_token claims: %w", err))
		return
	}
	if g.claimsFetcher != nil && needsUserInfo(g.adapter, &claims) {
		extra, err := g.claimsFetcher.FetchClaims(ctx, t, claims.Subject)
		if err != nil {
			g.logger.Warn("unable to fetch additional claims", "subject", claims.Subject, "error", err)
		} else {
			claims.Merge(extra)
		}
	}

	s, err := g.store.Create(ctx, claims.Subject, g.adapter(&claims), g.sessionTTL)
	if err != nil {
		g.fail(ctx, w, fmt.Errorf("unable to create session: %w", err))
		return
	}
	session.SetCookie(w, s, g.cookie)
	g.metrics.RecordSessionCreated(ctx)
	g.metrics.RecordLoginCompleted(ctx, instrumentation.LoginSuccess)
	g.logger.Info("login succeeded", "subject", claims.Subject)
	http.Redirect(w, r, returnTo, http.StatusFound)
}

// loginFailed implements callback.ErrorResponseFunc
func (g *Gate) loginFailed(state string, respErr *callback.AuthenErrorResponse, e error, w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g.requests.Delete(state)
	g.clearStateCookie(w)
	switch {
	case respErr != nil:
		g.logger.Warn("login failed at provider", "error", respErr.Error, "description", respErr.Description)
		g.metrics.RecordLoginCompleted(ctx, instrumentation.LoginIdPError)
		msg := "login failed: " + respErr.Error
		if respErr.Description != "" {
			msg += ": " + respErr.Description
		}
		http.Error(w, msg, http.StatusUnauthorized)
	case e != nil && errors.Is(e, oidc.ErrNotFound):
		g.logger.Warn("login attempt not found", "error", e)
		g.metrics.RecordLoginCompleted(ctx, instrumentation.LoginError)
		http.Error(w, "login failed: login attempt not found or expired", http.StatusBadRequest)
	case e != nil:
		g.fail(ctx, w, e)
	default:
		g.fail(ctx, w, errors.New("unknown callback error"))
	}
}

func (g *Gate) fail(ctx context.Context, w http.ResponseWriter, err error) {
	g.logger.Error("login failed", "error", err)
	g.metrics.RecordLoginCompleted(ctx, instrumentation.LoginError)
	http.Error(w, fmt.Sprintf("login failed: %s", err), http.StatusInternalServerError)
}

// logout deletes the session and clears its cookie.  Only POST is accepted
// so a cross-site link or image can't end the session.
func (g *Gate) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if sessionID, ok := session.ReadCookie(r, g.cookie); ok {
		if err := g.store.Delete(r.Context(), sessionID); err != nil {
			g.logger.Error("unable to delete session", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}
	session.ClearCookie(w, g.cookie)
	http.Redirect(w, r, g.logoutRedirect, http.StatusFound)
}

// Run sweeps expired login attempts every interval until ctx is done
func (g *Gate) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := g.requests.Sweep(); n > 0 {
				g.logger.Debug("swept expired login attempts", "count", n)
			}
		}
	}
}

func (g *Gate) setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     g.callbackPath,
		MaxAge:   int(g.loginTimeout / time.Second),
		HttpOnly: true,
		Secure:   g.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *Gate) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     g.callbackPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// localPath returns p if it's a path on this server, otherwise "/" and false.
// An empty p is "/".
func localPath(p string) (string, bool) {
	switch {
	case p == "":
		return "/", true
	case !strings.HasPrefix(p, "/"),
		strings.HasPrefix(p, "//"),
		strings.HasPrefix(p, "/\\"):
		return "/", false
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/", false
	}
	return p, true
}
