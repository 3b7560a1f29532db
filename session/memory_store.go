// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/go-hclog"
)

// MemoryStore is an in-memory Store.  It is concurrently safe.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session

	now    func() time.Time
	newID  func() (string, error)
	logger hclog.Logger
}

// ensure that MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore.
// Supported options: WithNow, WithLogger, WithIDFunc
func NewMemoryStore(opt ...Option) *MemoryStore {
	opts := getStoreOpts(opt...)
	return &MemoryStore{
		sessions: map[string]Session{},
		now:      opts.withNow,
		newID:    opts.withIDFunc,
		logger:   opts.withLogger,
	}
}

// Create implements the Store interface
func (m *MemoryStore) Create(_ context.Context, subject string, id identity.Identity, ttl time.Duration) (*Session, error) {
	const op = "MemoryStore.Create"
	switch {
	case id == nil:
		return nil, fmt.Errorf("%s: identity is nil: %w", op, ErrNilParameter)
	case ttl <= 0:
		return nil, fmt.Errorf("%s: ttl not greater than zero: %w", op, ErrInvalidParameter)
	}
	sessionID, err := m.newID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := m.now()
	s := Session{
		ID:        sessionID,
		Subject:   subject,
		Identity:  id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; ok {
		return nil, fmt.Errorf("%s: session id collision: %w", op, ErrIDGeneration)
	}
	m.sessions[sessionID] = s
	return &s, nil
}

// Get implements the Store interface.  Expired sessions are deleted before
// returning ErrExpired.
func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	const op = "MemoryStore.Get"
	if sessionID == "" {
		return nil, fmt.Errorf("%s: session id is empty: %w", op, ErrInvalidParameter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if s.IsExpired(WithNow(m.now)) {
		delete(m.sessions, sessionID)
		return nil, fmt.Errorf("%s: %w", op, ErrExpired)
	}
	return &s, nil
}

// Delete implements the Store interface
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Len returns the number of stored sessions, including expired ones which
// haven't been swept yet.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep deletes every expired session and returns how many were deleted.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for id, s := range m.sessions {
		if s.IsExpired(WithNow(m.now)) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
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
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("swept expired sessions", "count", n)
			}
		}
	}
}
