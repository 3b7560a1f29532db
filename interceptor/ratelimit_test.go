// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package interceptor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/cap-welcome/instrumentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		rps     float64
		burst   int
		wantErr bool
	}{
		{"valid", 1, 1, false},
		{"zero-rate", 0, 1, true},
		{"zero-burst", 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			rl, err := NewRateLimiter(tt.rps, tt.burst)
			if tt.wantErr {
				require.Error(err)
				assert.ErrorIs(err, ErrInvalidParameter)
				return
			}
			require.NoError(err)
			assert.NotNil(rl)
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	// a very slow refill, so only the burst is available during the test
	rl, err := NewRateLimiter(0.001, 2)
	require.NoError(err)

	assert.True(rl.Allow("10.0.0.1"))
	assert.True(rl.Allow("10.0.0.1"))
	assert.False(rl.Allow("10.0.0.1"))
	assert.True(rl.Allow("10.0.0.2"), "clients are limited independently")
	assert.Equal(2, rl.Len())
}

func TestRateLimiter_Eviction(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	rl, err := NewRateLimiter(0.001, 1, WithMaxEntries(2))
	require.NoError(err)

	assert.True(rl.Allow("a"))
	assert.True(rl.Allow("b"))
	assert.False(rl.Allow("a")) // a is now most recently used
	assert.True(rl.Allow("c"))  // evicts b
	assert.Equal(2, rl.Len())
	assert.True(rl.Allow("b"), "evicted clients start with a fresh bucket")
}

func TestRateLimiter_Intercept(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	inst, reader := instrumentation.TestInstrumentation(t)
	rl, err := NewRateLimiter(0.001, 1, WithInstrumentation(inst))
	require.NoError(err)

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), rl)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(http.StatusNoContent, rec.Code)

	// same client, different port
	req.RemoteAddr = "192.0.2.1:5678"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(http.StatusTooManyRequests, rec.Code)
	assert.Equal("1", rec.Header().Get("Retry-After"))
	assert.Equal(int64(1), instrumentation.TestCounterValue(t, reader, "welcome.http.rate_limit.exceeded"))
}

func Test_clientAddr(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal("2001:db8::1", clientAddr(req))
	req.RemoteAddr = "no-port"
	assert.Equal("no-port", clientAddr(req))
}
