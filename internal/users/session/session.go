// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

/*
Package session implements cookie-backed browser sessions.

A session is an opaque random token handed to the browser in an HttpOnly
cookie. The server keeps only a hash of the token in Redis, mapped to the
owning user ID, so a storage dump never yields usable credentials.

Architecture:

  - Service: Orchestrates establishment and teardown.
  - Repository: Redis-backed volatile storage with TTL expiry.
  - Delivery: Token exchange and logout endpoints (http.go).
*/
package session

import (
	"context"
	"time"
)

// # Session Data Access

// SessionRepository defines the volatile storage contract for sessions.
type SessionRepository interface {

	/*
		Set stores a session token hash mapped to its userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, tokenHash string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a session token hash.

		Description: Absence (missing or expired) is returned as ("", nil),
		not as an error, so callers can distinguish it from infrastructure
		failures.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - string: UserID, empty when the session does not exist
		  - error: Connectivity failures only
	*/
	Get(context context.Context, tokenHash string) (string, error)

	/*
		Delete removes a session from storage.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, tokenHash string) error
}
