// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package authz

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/indraneelk/taskhive/internal/platform/sec"
)

// # Resolver Construction

// DefaultReplayWindow is the maximum clock skew accepted on Discord-signed
// requests, applied symmetrically in both directions.
const DefaultReplayWindow = 60 * time.Second

var (
	// discordUserIDPattern matches a Discord snowflake: 17 to 19 decimal digits.
	discordUserIDPattern = regexp.MustCompile(`^[0-9]{17,19}$`)

	// signaturePattern matches a lowercase hex HMAC-SHA256 digest.
	signaturePattern = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// Config carries the secrets and policy knobs of the resolver.
type Config struct {
	// BotSecret keys the HMAC over Discord-signed request headers.
	BotSecret string

	// SuperAdminEmail is the single address granted the SuperAdmin
	// capability. Compared case-insensitively.
	SuperAdminEmail string

	// ReplayWindow overrides [DefaultReplayWindow] when positive.
	ReplayWindow time.Duration
}

// Resolver turns inbound credential material into a verified [Actor] and
// evaluates capability requirements against it.
//
// # Review Process
//
// This type is critical for security. Any change to decoder ordering,
// signature checks, or capability evaluation must be reviewed by the
// security team.
type Resolver struct {
	directory Directory
	sessions  Sessions
	tokens    sec.TokenVerifier
	clock     Clock
	cfg       Config
}

// NewResolver constructs a [Resolver] with explicit collaborators.
// A nil clock defaults to [SystemClock].
func NewResolver(directory Directory, sessions Sessions, tokens sec.TokenVerifier, clock Clock, cfg Config) *Resolver {
	if clock == nil {
		clock = SystemClock()
	}
	if cfg.ReplayWindow <= 0 {
		cfg.ReplayWindow = DefaultReplayWindow
	}

	return &Resolver{
		directory: directory,
		sessions:  sessions,
		tokens:    tokens,
		clock:     clock,
		cfg:       cfg,
	}
}

// # Resolution

/*
Resolve verifies the request's credentials and evaluates the required
capability against the resolved actor.

Description: Decoders run in fixed priority order (Discord-signed, bearer
JWT, session cookie). Every rejection is returned inside the [Result] —
Resolve is total over credential input. The error return carries only
infrastructure failures from the directory or session store.

Parameters:
  - context: context.Context
  - creds: Credentials (extracted material, possibly empty)
  - capability: Capability (the requirement to evaluate)

Returns:
  - Result: Resolved, Unauthenticated, or Forbidden
  - error: Store/infrastructure failures only
*/
func (resolver *Resolver) Resolve(context context.Context, creds Credentials, capability Capability) (Result, error) {
	result, err := resolver.resolveActor(context, creds)
	if err != nil || !result.OK() {
		return result, err
	}

	return resolver.evaluate(context, result.Actor, capability)
}

// Authorize evaluates a capability against an actor resolved earlier in the
// request lifecycle. A nil actor yields an Unauthenticated result.
func (resolver *Resolver) Authorize(context context.Context, actor *Actor, capability Capability) (Result, error) {
	if actor == nil {
		return unauthenticated(KindNoCredential, "authentication required"), nil
	}

	return resolver.evaluate(context, actor, capability)
}

// resolveActor runs the credential decoders in priority order.
func (resolver *Resolver) resolveActor(context context.Context, creds Credentials) (Result, error) {
	if creds.hasDiscord() {
		return resolver.decodeDiscord(context, creds)
	}

	if creds.hasBearer() {
		return resolver.decodeBearer(context, creds)
	}

	if creds.hasSession() {
		return resolver.decodeSession(context, creds)
	}

	return unauthenticated(KindNoCredential, "No credentials supplied"), nil
}

// # Discord-Signed Decoder

// decodeDiscord verifies the signed header triple and resolves the linked account.
func (resolver *Resolver) decodeDiscord(context context.Context, creds Credentials) (Result, error) {

	// All three headers must travel together.
	if creds.DiscordUserID == "" || creds.DiscordTimestamp == "" || creds.DiscordSignature == "" {
		return unauthenticated(KindMalformedCredential, "Incomplete Discord signature headers"), nil
	}

	if !discordUserIDPattern.MatchString(creds.DiscordUserID) {
		return unauthenticated(KindMalformedCredential, "Discord user id must be a 17-19 digit snowflake"), nil
	}

	timestampMillis, err := strconv.ParseInt(creds.DiscordTimestamp, 10, 64)
	if err != nil {
		return unauthenticated(KindMalformedCredential, "Discord timestamp must be decimal milliseconds"), nil
	}

	if !signaturePattern.MatchString(creds.DiscordSignature) {
		return unauthenticated(KindMalformedCredential, "Discord signature must be 64 lowercase hex characters"), nil
	}

	message := creds.DiscordUserID + "|" + creds.DiscordTimestamp
	if !sec.VerifyHMAC(message, creds.DiscordSignature, resolver.cfg.BotSecret) {
		return unauthenticated(KindSignatureMismatch, "Discord signature verification failed"), nil
	}

	// Symmetric replay window: both future and past skew are rejected.
	skew := resolver.clock.Now().Sub(time.UnixMilli(timestampMillis))
	if skew < 0 {
		skew = -skew
	}
	if skew > resolver.cfg.ReplayWindow {
		return unauthenticated(KindExpiredCredential, "Discord timestamp outside the replay window"), nil
	}

	actor, err := resolver.directory.FindUserByDiscordID(context, creds.DiscordUserID)
	if err != nil {
		return Result{}, fmt.Errorf("authz: discord user lookup failed: %w", err)
	}

	// Verified but unlinked: callers should prompt account linking, not
	// report a failed login.
	if actor == nil {
		return unauthenticated(KindUnknownIdentity, "Discord account is not linked to a Taskhive user"), nil
	}

	return resolved(actor), nil
}

// # Bearer JWT Decoder

// decodeBearer verifies an Authorization bearer token and resolves its subject.
func (resolver *Resolver) decodeBearer(context context.Context, creds Credentials) (Result, error) {
	parts := strings.SplitN(creds.Authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return unauthenticated(KindMalformedCredential, "Authorization header must be 'Bearer <token>'"), nil
	}

	claims, err := resolver.tokens.Verify(context, parts[1])
	if err != nil {
		return unauthenticated(classifyTokenError(err), "Bearer token rejected"), nil
	}

	if claims.Subject == "" {
		return unauthenticated(KindMalformedCredential, "Bearer token has no subject"), nil
	}

	actor, err := resolver.directory.FindUserByID(context, claims.Subject)
	if err != nil {
		return Result{}, fmt.Errorf("authz: bearer subject lookup failed: %w", err)
	}

	if actor == nil {
		return unauthenticated(KindUnknownIdentity, "No user matches the token subject"), nil
	}

	return resolved(actor), nil
}

// classifyTokenError maps sec verification errors onto rejection kinds.
func classifyTokenError(err error) RejectionKind {
	switch {
	case errors.Is(err, sec.ErrTokenExpired):
		return KindExpiredCredential
	case errors.Is(err, sec.ErrTokenMalformed):
		return KindMalformedCredential
	default:
		// Signature, issuer, and audience failures all mean the token was
		// not minted for this deployment.
		return KindSignatureMismatch
	}
}

// # Session Decoder

// decodeSession resolves an opaque session cookie via the session store.
func (resolver *Resolver) decodeSession(context context.Context, creds Credentials) (Result, error) {
	userID, err := resolver.sessions.FindUserID(context, creds.SessionToken)
	if err != nil {
		return Result{}, fmt.Errorf("authz: session lookup failed: %w", err)
	}

	if userID == "" {
		return unauthenticated(KindExpiredCredential, "Session is expired or invalid"), nil
	}

	actor, err := resolver.directory.FindUserByID(context, userID)
	if err != nil {
		return Result{}, fmt.Errorf("authz: session user lookup failed: %w", err)
	}

	if actor == nil {
		return unauthenticated(KindUnknownIdentity, "Session refers to a user that no longer exists"), nil
	}

	return resolved(actor), nil
}

// # Capability Evaluation

// evaluate checks the required capability against a resolved actor.
func (resolver *Resolver) evaluate(context context.Context, actor *Actor, capability Capability) (Result, error) {
	switch capability.kind {

	case capAuthenticated:
		return resolved(actor), nil

	case capAdmin:
		if actor.IsAdmin {
			return resolved(actor), nil
		}
		return forbidden(actor, "Administrator access required"), nil

	case capSuperAdmin:
		// Case-insensitive comparison; the address is configured, never
		// derived from user input.
		if actor.Email != "" && strings.EqualFold(actor.Email, resolver.cfg.SuperAdminEmail) {
			return resolved(actor), nil
		}
		return forbidden(actor, "Super-administrator access required"), nil

	case capProjectOwner:
		project, err := resolver.findProject(context, capability.ProjectID())
		if err != nil {
			return Result{}, err
		}
		if project != nil && project.OwnerID == actor.ID {
			return resolved(actor), nil
		}
		return forbidden(actor, "Project ownership required"), nil

	case capProjectMember:
		project, err := resolver.findProject(context, capability.ProjectID())
		if err != nil {
			return Result{}, err
		}
		if project == nil {
			return forbidden(actor, "Project membership required"), nil
		}

		// Owner check first: cheaper, and it avoids the members query in
		// the common owner case.
		if project.OwnerID == actor.ID {
			return resolved(actor), nil
		}

		memberIDs, err := resolver.directory.ListProjectMemberIDs(context, project.ID)
		if err != nil {
			return Result{}, fmt.Errorf("authz: member list lookup failed: %w", err)
		}
		for _, memberID := range memberIDs {
			if memberID == actor.ID {
				return resolved(actor), nil
			}
		}
		return forbidden(actor, "Project membership required"), nil

	default:
		return forbidden(actor, "Unknown capability"), nil
	}
}

// findProject loads the capability's project, treating "not found" as nil.
func (resolver *Resolver) findProject(context context.Context, projectID string) (*Project, error) {
	project, err := resolver.directory.FindProjectByID(context, projectID)
	if err != nil {
		return nil, fmt.Errorf("authz: project lookup failed: %w", err)
	}
	return project, nil
}
