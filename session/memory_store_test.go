// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/cap-welcome/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock for tests
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ada := identity.Principal{Name: "Ada Lovelace"}
	tests := []struct {
		name      string
		opt       []Option
		id        identity.Identity
		ttl       time.Duration
		wantIsErr error
	}{
		{"valid", nil, ada, time.Minute, nil},
		{"nil-identity", nil, nil, time.Minute, ErrNilParameter},
		{"zero-ttl", nil, ada, 0, ErrInvalidParameter},
		{"negative-ttl", nil, ada, -time.Second, ErrInvalidParameter},
		{"id-failure", []Option{WithIDFunc(func() (string, error) { return "", ErrIDGeneration })}, ada, time.Minute, ErrIDGeneration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			clock := &testClock{now: time.Now()}
			m := NewMemoryStore(append([]Option{WithNow(clock.Now)}, tt.opt...)...)
			got, err := m.Create(ctx, "alice", tt.id, tt.ttl)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				assert.Equal(0, m.Len())
				return
			}
			require.NoError(err)
			assert.NotEmpty(got.ID)
			assert.Equal("alice", got.Subject)
			assert.Equal(tt.id, got.Identity)
			assert.Equal(clock.Now(), got.CreatedAt)
			assert.Equal(clock.Now().Add(tt.ttl), got.ExpiresAt)
			assert.Equal(1, m.Len())
		})
	}
}

func TestMemoryStore_IDCollision(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	m := NewMemoryStore(WithIDFunc(func() (string, error) { return "same-id", nil }))
	_, err := m.Create(ctx, "alice", identity.Principal{}, time.Minute)
	require.NoError(err)
	_, err = m.Create(ctx, "eve", identity.Principal{}, time.Minute)
	require.Error(err)
	assert.ErrorIs(err, ErrIDGeneration)

	s, err := m.Get(ctx, "same-id")
	require.NoError(err)
	assert.Equal("alice", s.Subject)
}

func TestMemoryStore_Get(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	clock := &testClock{now: time.Now()}
	m := NewMemoryStore(WithNow(clock.Now))

	s, err := m.Create(ctx, "alice", identity.Principal{Name: "Ada Lovelace"}, time.Minute)
	require.NoError(err)

	got, err := m.Get(ctx, s.ID)
	require.NoError(err)
	assert.Equal(s, got)

	_, err = m.Get(ctx, "")
	assert.ErrorIs(err, ErrInvalidParameter)

	_, err = m.Get(ctx, "unknown")
	assert.ErrorIs(err, ErrNotFound)

	clock.Add(time.Minute)
	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(err, ErrExpired)
	assert.Equal(0, m.Len(), "expired sessions are deleted when read")

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	m := NewMemoryStore()

	s, err := m.Create(ctx, "alice", identity.Principal{}, time.Minute)
	require.NoError(err)
	require.NoError(m.Delete(ctx, s.ID))
	require.NoError(m.Delete(ctx, s.ID))
	_, err = m.Get(ctx, s.ID)
	assert.True(errors.Is(err, ErrNotFound))
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	clock := &testClock{now: time.Now()}
	m := NewMemoryStore(WithNow(clock.Now))

	short, err := m.Create(ctx, "alice", identity.Principal{}, time.Second)
	require.NoError(err)
	long, err := m.Create(ctx, "bob", identity.Principal{}, time.Hour)
	require.NoError(err)

	assert.Equal(0, m.Sweep())
	clock.Add(time.Minute)
	assert.Equal(1, m.Sweep())
	assert.Equal(1, m.Len())

	_, err = m.Get(ctx, short.ID)
	assert.ErrorIs(err, ErrNotFound)
	_, err = m.Get(ctx, long.ID)
	assert.NoError(err)
}

func TestMemoryStore_Run(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	clock := &testClock{now: time.Now()}
	m := NewMemoryStore(WithNow(clock.Now))

	_, err := m.Create(ctx, "alice", identity.Principal{}, time.Second)
	require.NoError(err)
	clock.Add(time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx, 5*time.Millisecond)
	}()
	require.Eventually(func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestSession_IsExpired(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	assert.False(s.IsExpired(WithNow(func() time.Time { return now })))
	assert.True(s.IsExpired(WithNow(func() time.Time { return now.Add(time.Minute) })))

	var nilSession *Session
	assert.True(nilSession.IsExpired())
}
