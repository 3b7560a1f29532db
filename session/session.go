// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/cap-welcome/identity"
	"github.com/hashicorp/go-uuid"
)

// Session is an authenticated session.  Sessions are never mutated after
// creation.
type Session struct {
	ID        string
	Subject   string
	Identity  identity.Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true if the session has expired.
// Supported options: WithNow
func (s *Session) IsExpired(opt ...Option) bool {
	if s == nil {
		return true
	}
	opts := getSessionOpts(opt...)
	return !opts.withNow().Before(s.ExpiresAt)
}

// Store defines how sessions are created, read and deleted.
//
// Implementations must be concurrently safe.
type Store interface {
	// Create a session for the subject's identity which expires after ttl.
	Create(ctx context.Context, subject string, id identity.Identity, ttl time.Duration) (*Session, error)

	// Get a session by ID.  Returns ErrNotFound for unknown sessions and
	// ErrExpired for expired ones.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Delete a session by ID.  Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error
}

func newID() (string, error) {
	const op = "session.newID"
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", op, ErrIDGeneration, err)
	}
	return id, nil
}
