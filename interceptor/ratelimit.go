// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package interceptor

import (
	"container/list"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/hashicorp/cap-welcome/instrumentation"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"
)

// DefaultMaxEntries is the default number of clients tracked by a RateLimiter
const DefaultMaxEntries = 10000

// ErrInvalidParameter is returned for invalid constructor parameters
var ErrInvalidParameter = errors.New("invalid parameter")

type limiterEntry struct {
	key     string
	limiter *rate.Limiter
}

// RateLimiter is an Interceptor which applies a token bucket per client
// address.  The least recently seen clients are evicted once maxEntries are
// tracked.  It is concurrently safe.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*list.Element
	lru      *list.List

	limit      rate.Limit
	burst      int
	maxEntries int

	logger  hclog.Logger
	metrics *instrumentation.Metrics
}

// ensure that RateLimiter implements the Interceptor interface
var _ Interceptor = (*RateLimiter)(nil)

// NewRateLimiter creates a RateLimiter allowing requestsPerSecond with the
// given burst per client.
// Supported options: WithLogger, WithInstrumentation, WithMaxEntries
func NewRateLimiter(requestsPerSecond float64, burst int, opt ...Option) (*RateLimiter, error) {
	const op = "interceptor.NewRateLimiter"
	switch {
	case requestsPerSecond <= 0:
		return nil, fmt.Errorf("%s: requests per second not greater than zero: %w", op, ErrInvalidParameter)
	case burst <= 0:
		return nil, fmt.Errorf("%s: burst not greater than zero: %w", op, ErrInvalidParameter)
	}
	opts := getOpts(opt...)
	return &RateLimiter{
		limiters:   map[string]*list.Element{},
		lru:        list.New(),
		limit:      rate.Limit(requestsPerSecond),
		burst:      burst,
		maxEntries: opts.withMaxEntries,
		logger:     opts.withLogger,
		metrics:    opts.withInstrumentation.Metrics(),
	}, nil
}

// Allow reports whether a request from the client identified by key may
// proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elem, ok := rl.limiters[key]; ok {
		rl.lru.MoveToFront(elem)
		return elem.Value.(*limiterEntry).limiter.Allow()
	}
	if rl.maxEntries > 0 && len(rl.limiters) >= rl.maxEntries {
		if oldest := rl.lru.Back(); oldest != nil {
			delete(rl.limiters, oldest.Value.(*limiterEntry).key)
			rl.lru.Remove(oldest)
		}
	}
	e := &limiterEntry{key: key, limiter: rate.NewLimiter(rl.limit, rl.burst)}
	rl.limiters[key] = rl.lru.PushFront(e)
	return e.limiter.Allow()
}

// Len returns the number of clients currently tracked
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Intercept implements the Interceptor interface.  Rejected requests receive
// a 429.
func (rl *RateLimiter) Intercept(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	key := clientAddr(r)
	if rl.Allow(key) {
		return r, true
	}
	rl.logger.Warn("rate limit exceeded", "client", key, "path", r.URL.Path)
	rl.metrics.RecordRateLimitExceeded(r.Context())
	w.Header().Set("Retry-After", "1")
	http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
	return nil, false
}

// clientAddr returns the host portion of the request's remote address
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
