// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/cap-welcome/interceptor"
	"github.com/hashicorp/cap-welcome/session"
	"github.com/hashicorp/cap/oidc"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "test-client-id"
	testClientSecret = "test-client-secret"
	testAuthCode     = "valid-code"
	testRedirectURL  = "https://welcome.example.com/callback"
)

// testNewProvider starts a TestProvider which accepts testAuthCode for the
// test client and returns a Provider configured for it.
func testNewProvider(t *testing.T) (*oidc.TestProvider, *oidc.Provider) {
	t.Helper()
	require := require.New(t)

	tp := oidc.StartTestProvider(t)
	t.Cleanup(tp.Stop)
	tp.SetClientCreds(testClientID, testClientSecret)
	tp.SetAllowedRedirectURIs([]string{testRedirectURL})
	tp.SetExpectedAuthCode(testAuthCode)

	c, err := oidc.NewConfig(
		tp.Addr(),
		testClientID,
		oidc.ClientSecret(testClientSecret),
		[]oidc.Alg{oidc.ES256, oidc.RS256},
		[]string{testRedirectURL},
		oidc.WithProviderCA(tp.CACert()),
	)
	require.NoError(err)
	p, err := oidc.NewProvider(c)
	require.NoError(err)
	t.Cleanup(p.Done)
	return tp, p
}

// testHandler echoes the display name of the request's identity and counts
// how often it's invoked.
type testHandler struct {
	calls atomic.Int64
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls.Add(1)
	id, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "no identity", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte("hello " + id.DisplayName()))
}

// testGate returns a handler protected by a new Gate
func testGate(t *testing.T, p *oidc.Provider, store session.Store, opt ...Option) (http.Handler, *testHandler, *Gate) {
	t.Helper()
	g, err := NewGate(context.Background(), p, store, identity.NewOIDCUser, testRedirectURL, opt...)
	require.NoError(t, err)
	h := &testHandler{}
	return interceptor.Chain(h, g), h, g
}

// testDo serves a request for target with the cookies
func testDo(h http.Handler, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// testCookie returns the named cookie set by the response, if any
func testCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// testStartLogin follows the gate's redirects from target to the provider's
// auth URL.  It returns the login's state, the state cookie, and primes the
// TestProvider with the login's nonce.
func testStartLogin(t *testing.T, h http.Handler, tp *oidc.TestProvider, target string) (string, *http.Cookie) {
	t.Helper()
	require := require.New(t)

	rec := testDo(h, http.MethodGet, target)
	require.Equal(http.StatusFound, rec.Code)
	loginURL := rec.Header().Get("Location")

	rec = testDo(h, http.MethodGet, loginURL)
	require.Equal(http.StatusFound, rec.Code)
	authURL, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(err)
	state := authURL.Query().Get("state")
	nonce := authURL.Query().Get("nonce")
	require.NotEmpty(state)
	require.NotEmpty(nonce)
	tp.SetExpectedAuthNonce(nonce)

	stateCookie := testCookie(rec, StateCookieName)
	require.NotNil(stateCookie)
	require.Equal(state, stateCookie.Value)
	return state, stateCookie
}

// testCallbackURL returns the gate's callback URL for the parameters
func testCallbackURL(params url.Values) string {
	return "/callback?" + params.Encode()
}
