// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

/*
Package link implements the Discord account linking flow.

A user asks for a short link code in the web app, tells it to the Taskhive
bot in Discord, and the bot redeems it with a signed request. Redemption
binds the Discord snowflake to the user account, after which bot-signed
requests resolve to that user.

# Lifecycle

A code is pending from issue until one of two terminal events: redemption
(used) or the TTL elapsing (expired). Issuing a new code invalidates any
pending one, so at most one code per user is redeemable at a time, and a
code can be redeemed at most once.
*/
package link

import "time"

// # Linking Constraints

const (
	// LinkCodeTTL is how long a code stays redeemable after issue.
	// Short-lived (5 minutes): the user is mid-flow when it exists.
	LinkCodeTTL = 5 * time.Minute

	// LinkCodeLength is the number of characters in a generated code.
	LinkCodeLength = 8
)

// # Status Values

// Status describes where a link code sits in its lifecycle.
type Status string

const (
	// StatusPending marks a code that has been issued and can still be redeemed.
	StatusPending Status = "pending"

	// StatusUsed marks a code that has been redeemed.
	StatusUsed Status = "used"

	// StatusExpired marks a code whose TTL elapsed before redemption.
	StatusExpired Status = "expired"
)

// # Domain Entities

// LinkCode represents one issued link code.
//
// The raw code is returned to the issuing user exactly once; only its hash
// is persisted.
type LinkCode struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	CodeHash      string     `json:"-"`
	DiscordUserID string     `json:"discord_user_id,omitempty"`
	IsUsed        bool       `json:"-"`
	IssuedAt      time.Time  `json:"issued_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
}

// StatusAt reports the code's lifecycle status as of the given instant.
// Redemption wins over expiry: a code used inside its TTL stays used.
// Expiry is inclusive, so a force-expired code reads expired immediately.
func (code *LinkCode) StatusAt(now time.Time) Status {
	if code.IsUsed {
		return StatusUsed
	}
	if !now.Before(code.ExpiresAt) {
		return StatusExpired
	}
	return StatusPending
}

// # Field Identifiers

const (
	FieldCode          = "code"
	FieldDiscordUserID = "discord_user_id"
)
