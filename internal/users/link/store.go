// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package link

import (
	"context"
	"time"
)

// # Link Code Data Access

// LinkCodeRepository defines the data access contract for link codes.
//
// Expiry is lazy: rows persist past their TTL so status reads can tell an
// expired code apart from one that never existed.
type LinkCodeRepository interface {

	/*
		Create persists a freshly issued link code.

		Parameters:
		  - context: context.Context
		  - code: *LinkCode

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, code *LinkCode) error

	/*
		FindByCodeHash returns the code matching the given hash.

		Parameters:
		  - context: context.Context
		  - codeHash: string

		Returns:
		  - *LinkCode: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByCodeHash(context context.Context, codeHash string) (*LinkCode, error)

	/*
		FindLatestByUserID returns the most recently issued code for a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *LinkCode: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindLatestByUserID(context context.Context, userID string) (*LinkCode, error)

	/*
		InvalidatePending force-expires every redeemable code of a user.

		Description: Called before issuing a replacement so at most one code
		per user is ever redeemable.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - now: time.Time

		Returns:
		  - error: Persistence failures
	*/
	InvalidatePending(context context.Context, userID string, now time.Time) error

	/*
		MarkUsed atomically flips an unused code to used.

		Description: The update is conditional on the code being unused, so
		concurrent redemptions produce at most one winner.

		Parameters:
		  - context: context.Context
		  - codeID: string
		  - discordUserID: string
		  - usedAt: time.Time

		Returns:
		  - bool: Whether this call won the flip
		  - error: Persistence failures
	*/
	MarkUsed(context context.Context, codeID string, discordUserID string, usedAt time.Time) (bool, error)
}
