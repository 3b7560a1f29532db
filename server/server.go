// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package server assembles the welcome service: the greeting route behind
// the authentication gate, wrapped by the rate limiter and the request
// observer, plus the background sweepers and the http.Server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/cap-welcome/auth"
	"github.com/hashicorp/cap-welcome/greeting"
	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/cap-welcome/interceptor"
	"github.com/hashicorp/cap-welcome/session"
	"github.com/hashicorp/cap/oidc"
	"github.com/hashicorp/go-hclog"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
)

// sweeper is implemented by stores which remove their expired entries
type sweeper interface {
	Run(ctx context.Context, interval time.Duration)
}

// Server is the welcome service
type Server struct {
	handler         http.Handler
	gate            *auth.Gate
	store           session.Store
	logger          hclog.Logger
	sweepInterval   time.Duration
	readTimeout     time.Duration
	shutdownTimeout time.Duration
}

// New creates a Server whose gate logs users in with the provider and builds
// their identities with the adapter.  The ctx is used for the provider's
// token exchanges and must outlive the Server.
//
// Supported options: WithLogger, WithInstrumentation, WithSessionStore,
// WithGateOptions, WithRateLimit, WithSweepInterval, WithReadTimeout,
// WithShutdownTimeout
func New(ctx context.Context, p *oidc.Provider, adapter identity.Adapter, redirectURL string, opt ...Option) (*Server, error) {
	const op = "server.New"
	if p == nil {
		return nil, fmt.Errorf("%s: provider is nil: %w", op, ErrNilParameter)
	}
	opts := getServerOpts(opt...)
	logger := opts.withLogger
	inst := opts.withInstrumentation

	store := opts.withStore
	if store == nil {
		store = session.NewMemoryStore(session.WithLogger(logger.Named("session")))
	}

	gateOpts := append([]auth.Option{
		auth.WithLogger(logger.Named("auth")),
		auth.WithInstrumentation(inst),
	}, opts.withGateOptions...)
	gate, err := auth.NewGate(ctx, p, store, adapter, redirectURL, gateOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	interceptors := []interceptor.Interceptor{}
	if opts.withRateLimit > 0 {
		rl, err := interceptor.NewRateLimiter(opts.withRateLimit, opts.withRateBurst,
			interceptor.WithLogger(logger.Named("ratelimit")),
			interceptor.WithInstrumentation(inst),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		interceptors = append(interceptors, rl)
	}
	interceptors = append(interceptors, gate)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", greeting.Handler(
		greeting.WithLogger(logger.Named("greeting")),
		greeting.WithInstrumentation(inst),
	))

	return &Server{
		handler: interceptor.Observe(
			interceptor.Chain(mux, interceptors...),
			interceptor.WithLogger(logger.Named("http")),
			interceptor.WithInstrumentation(inst),
		),
		gate:            gate,
		store:           store,
		logger:          logger,
		sweepInterval:   opts.withSweepInterval,
		readTimeout:     opts.withReadTimeout,
		shutdownTimeout: opts.withShutdownTimeout,
	}, nil
}

// Handler returns the service's http.Handler
func (s *Server) Handler() http.Handler { return s.handler }

// Serve serves requests from l until ctx is done, then shuts down
// gracefully.  The expired session and login sweepers run for the same
// duration.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	const op = "Server.Serve"
	if l == nil {
		return fmt.Errorf("%s: listener is nil: %w", op, ErrNilParameter)
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readTimeout,
		ErrorLog:          s.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.gate.Run(sweepCtx, s.sweepInterval)
	}()
	if sw, ok := s.store.(sweeper); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sw.Run(sweepCtx, s.sweepInterval)
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", l.Addr().String())
		serveErr <- srv.Serve(l)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("%s: %w", op, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.shutdownTimeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: unable to shut down: %w", op, err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
