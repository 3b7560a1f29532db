// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package welcome_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/cap-welcome/auth"
	"github.com/hashicorp/cap-welcome/greeting"
	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/cap-welcome/interceptor"
	"github.com/hashicorp/cap-welcome/server"
	"github.com/hashicorp/cap-welcome/session"
	"github.com/hashicorp/cap/oidc"
)

func Example_server() {
	ctx := context.Background()

	// Create a provider for the identity provider
	pc, err := oidc.NewConfig(
		"http://your-issuer.com/",
		"your_client_id",
		"your_client_secret",
		[]oidc.Alg{oidc.RS256},
		[]string{"http://localhost:8080/callback"},
		oidc.WithScopes("profile", "email"),
	)
	if err != nil {
		// handle error
	}
	p, err := oidc.NewProvider(pc)
	if err != nil {
		// handle error
	}
	defer p.Done()

	// Create the service, which greets users identified by their OIDC claims
	s, err := server.New(ctx, p, identity.NewOIDCUser, "http://localhost:8080/callback",
		server.WithGateOptions(auth.WithSessionTTL(time.Hour)),
		server.WithRateLimit(10, 20),
	)
	if err != nil {
		// handle error
	}

	l, err := net.Listen("tcp", "localhost:8080")
	if err != nil {
		// handle error
	}
	// Serve until ctx is done
	if err := s.Serve(ctx, l); err != nil {
		// handle error
	}
}

func Example_gate() {
	ctx := context.Background()

	pc, err := oidc.NewConfig(
		"http://your-issuer.com/",
		"your_client_id",
		"your_client_secret",
		[]oidc.Alg{oidc.RS256},
		[]string{"http://localhost:8080/callback"},
	)
	if err != nil {
		// handle error
	}
	p, err := oidc.NewProvider(pc)
	if err != nil {
		// handle error
	}
	defer p.Done()

	// Protect your own routes with a gate.  Users are named by their
	// preferred_username claim.
	adapter, err := identity.LookupAdapter(identity.PrincipalAdapter, identity.WithPrincipalClaim("preferred_username"))
	if err != nil {
		// handle error
	}
	gate, err := auth.NewGate(ctx, p, session.NewMemoryStore(), adapter, "http://localhost:8080/callback")
	if err != nil {
		// handle error
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", greeting.Handler())
	mux.HandleFunc("GET /whoami", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, identity.DisplayName(r.Context()))
	})
	if err := http.ListenAndServe("localhost:8080", interceptor.Chain(mux, gate)); err != nil {
		// handle error
	}
}

func Example_greeting() {
	fmt.Println(greeting.Message(identity.Principal{Name: "Ada Lovelace"}))
	fmt.Println(greeting.Message(identity.Principal{}))
	fmt.Println(greeting.Message(nil))
	// Output:
	// Welcome, Ada Lovelace!
	// Welcome, guest!
	// Welcome, guest!
}
