// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

/*
Package identity implements the user directory of the Taskhive platform.

It defines the core User entity and the lookup surface consumed by the
credential resolver. Passwords are deliberately absent: authentication
material lives with the external identity provider, and Taskhive only
stores the profile plus the optional Discord binding.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no
external dependencies and encapsulate all business rules related to who a
user is and which Discord account speaks for them.
*/
package identity

import "time"

// # Domain Entities

// User represents a registered member of the Taskhive platform.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	IsAdmin         bool      `json:"is_admin"`
	DiscordUserID   string    `json:"discord_user_id,omitempty"`
	DiscordVerified bool      `json:"discord_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the user domain.
const (
	FieldUsername      = "username"
	FieldEmail         = "email"
	FieldDisplayName   = "display_name"
	FieldDiscordUserID = "discord_user_id"
	FieldUser          = "user"
)
