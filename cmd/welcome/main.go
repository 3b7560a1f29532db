// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Command welcome serves a page greeting the logged in user by name.  Users
// log in with the OIDC provider configured through the environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/cap-welcome/auth"
	"github.com/hashicorp/cap-welcome/config"
	"github.com/hashicorp/cap-welcome/instrumentation"
	"github.com/hashicorp/cap-welcome/server"
	"github.com/hashicorp/cap-welcome/session"
	"github.com/hashicorp/cap/oidc"
	"github.com/hashicorp/go-hclog"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		return
	}

	// handle ctrl-c and termination by shutting down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	const op = "main.run"
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "welcome",
		Level:      cfg.Level(),
		JSONFormat: cfg.LogJSON,
	})

	inst, err := instrumentation.New(instrumentation.Config{
		ServiceName:    "welcome",
		ServiceVersion: version,
		Enabled:        cfg.OtelEnabled,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := inst.Shutdown(context.Background()); err != nil {
			logger.Error("unable to shut down instrumentation", "error", err)
		}
	}()

	oc, err := cfg.OIDCConfig()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p, err := oidc.NewProvider(oc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer p.Done()

	adapter, err := cfg.Adapter()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	locales, err := cfg.Locales()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	gateOpts := []auth.Option{
		auth.WithUILocales(locales...),
		auth.WithSessionTTL(cfg.SessionTTL),
		auth.WithLoginTimeout(cfg.LoginTimeout),
		auth.WithCookieOptions(session.CookieOptions{Secure: cfg.CookieSecure}),
	}
	if cfg.UserInfo {
		gateOpts = append(gateOpts, auth.WithClaimsFetcher(&auth.UserInfoFetcher{Provider: p}))
	}
	if cfg.Bearer {
		v, err := auth.NewBearerVerifier(ctx, cfg.Issuer, cfg.ClientID, cfg.SigningAlgs, cfg.ProviderCA)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		bearer, err := auth.NewBearerAuthenticator(v, adapter)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		gateOpts = append(gateOpts, auth.WithAuthenticators(bearer))
	}

	s, err := server.New(ctx, p, adapter, cfg.RedirectURL,
		server.WithLogger(logger),
		server.WithInstrumentation(inst),
		server.WithGateOptions(gateOpts...),
		server.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		server.WithReadTimeout(cfg.ReadTimeout),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	l, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("starting", "version", version, "public_url", cfg.PublicURL, "issuer", cfg.Issuer)
	if err := s.Serve(ctx, l); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("stopped")
	return nil
}
