// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package authz

import (
	"net/http"

	"github.com/indraneelk/taskhive/internal/platform/constants"
)

// Credentials is the raw credential material extracted from an inbound
// request. The resolver is transport-agnostic; this struct is the only
// coupling point to HTTP header and cookie shapes.
type Credentials struct {
	// Discord-bot signed scheme (all three travel together).
	DiscordUserID    string
	DiscordTimestamp string
	DiscordSignature string

	// Authorization is the raw Authorization header value.
	Authorization string

	// SessionToken is the opaque session cookie value.
	SessionToken string
}

// hasDiscord reports whether any part of the Discord-signed scheme is present.
//
// A partial triple still counts as "present" so that a malformed high-priority
// credential rejects instead of silently downgrading to a weaker scheme.
func (c Credentials) hasDiscord() bool {
	return c.DiscordUserID != "" || c.DiscordTimestamp != "" || c.DiscordSignature != ""
}

func (c Credentials) hasBearer() bool { return c.Authorization != "" }

func (c Credentials) hasSession() bool { return c.SessionToken != "" }

// CredentialsFromRequest extracts all supported credential material from an
// HTTP request. Extraction never fails; validation happens in the resolver.
func CredentialsFromRequest(request *http.Request) Credentials {
	creds := Credentials{
		DiscordUserID:    request.Header.Get(constants.HeaderDiscordUserID),
		DiscordTimestamp: request.Header.Get(constants.HeaderDiscordTimestamp),
		DiscordSignature: request.Header.Get(constants.HeaderDiscordSignature),
		Authorization:    request.Header.Get(constants.HeaderAuthorization),
	}

	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil {
		creds.SessionToken = cookie.Value
	}

	return creds
}
