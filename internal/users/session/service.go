// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/platform/constants"
	"github.com/indraneelk/taskhive/internal/platform/sec"
)

// # Service

// Service implements the session lifecycle use cases.
type Service struct {
	sessionRepository SessionRepository
	clock             authz.Clock
}

// NewService constructs a new [Service]. A nil clock falls back to wall time.
func NewService(sessionRepo SessionRepository, clock authz.Clock) *Service {
	if clock == nil {
		clock = authz.SystemClock()
	}
	return &Service{sessionRepository: sessionRepo, clock: clock}
}

// Established describes a freshly created session.
type Established struct {
	Token     string
	ExpiresAt time.Time
}

/*
Establish creates a new session for the given user.

Description: Generates a fresh random token, stores its hash in Redis under
the session TTL, and returns the raw token for cookie injection. The raw
token never touches persistent storage.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Established: Raw token and expiry
  - error: Token generation or storage failures
*/
func (service *Service) Establish(context context.Context, userID string) (*Established, error) {

	// Generate the opaque token
	token, err := sec.GenerateSecureToken(constants.SessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("session_service_token_generation_failed: %w", err)
	}

	// Store only the hash
	if err := service.sessionRepository.Set(context, sec.HashToken(token), userID, constants.SessionTTL); err != nil {
		return nil, fmt.Errorf("session_service_establish_failed: %w", err)
	}

	return &Established{
		Token:     token,
		ExpiresAt: service.clock.Now().Add(constants.SessionTTL),
	}, nil
}

/*
Resolve returns the user ID owning the given raw session token.

Description: Used by the credential resolver through the [Store] adapter.
Absence is ("", nil).

Parameters:
  - context: context.Context
  - token: string (raw cookie value)

Returns:
  - string: UserID or empty
  - error: Connectivity failures only
*/
func (service *Service) Resolve(context context.Context, token string) (string, error) {
	return service.sessionRepository.Get(context, sec.HashToken(token))
}

/*
Destroy invalidates the given raw session token.

Parameters:
  - context: context.Context
  - token: string (raw cookie value)

Returns:
  - error: Storage failures
*/
func (service *Service) Destroy(context context.Context, token string) error {
	if err := service.sessionRepository.Delete(context, sec.HashToken(token)); err != nil {
		return fmt.Errorf("session_service_destroy_failed: %w", err)
	}
	return nil
}

// # Resolver Adapter

// Store adapts [Service] to the resolver's session lookup contract.
type Store struct {
	service *Service
}

// NewStore wraps the service for consumption by the credential resolver.
func NewStore(service *Service) *Store {
	return &Store{service: service}
}

// FindUserID implements the resolver's session lookup.
func (store *Store) FindUserID(context context.Context, token string) (string, error) {
	return store.service.Resolve(context, token)
}
