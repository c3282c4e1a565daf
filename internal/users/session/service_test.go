// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraneelk/taskhive/internal/platform/constants"
	"github.com/indraneelk/taskhive/internal/platform/sec"
	"github.com/indraneelk/taskhive/internal/users/session"
)

// # Test Fixtures

const userID = "0192d6f1-0000-7000-8000-000000000001"

// fixedClock pins Now() so expiry assertions are exact.
type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// stubSessionRepository is an in-memory SessionRepository.
type stubSessionRepository struct {
	entries map[string]string
}

func newStubSessionRepository() *stubSessionRepository {
	return &stubSessionRepository{entries: make(map[string]string)}
}

func (r *stubSessionRepository) Set(_ context.Context, tokenHash, owner string, _ time.Duration) error {
	r.entries[tokenHash] = owner
	return nil
}

func (r *stubSessionRepository) Get(_ context.Context, tokenHash string) (string, error) {
	return r.entries[tokenHash], nil
}

func (r *stubSessionRepository) Delete(_ context.Context, tokenHash string) error {
	delete(r.entries, tokenHash)
	return nil
}

// # Lifecycle Tests

/*
TestEstablish_ExpiryFollowsClock verifies the reported expiry is derived
from the injected clock, and that only the token's hash reaches storage.
*/
func TestEstablish_ExpiryFollowsClock(t *testing.T) {
	clock := &fixedClock{now: time.UnixMilli(1756500000000)}
	repository := newStubSessionRepository()
	service := session.NewService(repository, clock)

	established, err := service.Establish(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, established.ExpiresAt.Equal(clock.now.Add(constants.SessionTTL)))

	// The raw token must never be a storage key
	_, storedRaw := repository.entries[established.Token]
	assert.False(t, storedRaw)
	assert.Equal(t, userID, repository.entries[sec.HashToken(established.Token)])
}

/*
TestResolve_RoundTrip verifies an established token resolves to its owner,
and an unknown token reads as absent rather than failing.
*/
func TestResolve_RoundTrip(t *testing.T) {
	service := session.NewService(newStubSessionRepository(), nil)

	established, err := service.Establish(context.Background(), userID)
	require.NoError(t, err)

	owner, err := service.Resolve(context.Background(), established.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, owner)

	unknown, err := service.Resolve(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

/*
TestDestroy_InvalidatesToken verifies a destroyed session no longer
resolves, and that destroying it twice is harmless.
*/
func TestDestroy_InvalidatesToken(t *testing.T) {
	service := session.NewService(newStubSessionRepository(), nil)

	established, err := service.Establish(context.Background(), userID)
	require.NoError(t, err)

	require.NoError(t, service.Destroy(context.Background(), established.Token))

	owner, err := service.Resolve(context.Background(), established.Token)
	require.NoError(t, err)
	assert.Empty(t, owner)

	require.NoError(t, service.Destroy(context.Background(), established.Token))
}
