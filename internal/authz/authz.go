// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

/*
Package authz implements the multi-scheme authentication and authorization
resolver at the heart of the Taskhive access model.

Given the credential material of an inbound request (Discord-bot signed
headers, a bearer JWT, or an opaque session cookie) and a required
[Capability], the resolver produces either a verified [Actor] or a typed
rejection.

# Architecture

The resolver is a pure orchestrator: all identity state lives behind the
injected [Directory] and [Sessions] collaborators, and all cryptographic
verification is delegated to the platform sec package. It holds no mutable
state of its own, so a single instance is safe for concurrent use across
requests.

Decoder priority is fixed: Discord-signed headers, then bearer JWT, then
session cookie. A scheme whose material is present but invalid rejects the
request immediately; it never falls through to a weaker scheme.
*/
package authz

import (
	"context"
	"time"
)

// # Identities

// Actor is the resolved identity attached to a request after successful
// credential verification.
type Actor struct {
	// ID is the stable opaque user identifier. It equals the identity
	// provider subject when the account originated there.
	ID string `json:"id"`

	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`

	// IsAdmin grants the global Admin capability.
	IsAdmin bool `json:"is_admin"`

	// DiscordUserID is set once the account has been linked via a link code.
	DiscordUserID   string `json:"discord_user_id,omitempty"`
	DiscordVerified bool   `json:"discord_verified"`
}

// Project is the normalized project view the capability evaluator operates
// on, regardless of backing store shape.
type Project struct {
	ID         string
	OwnerID    string
	IsPersonal bool
}

// # Collaborators

// Directory provides read access to user and project records.
//
// All lookups may legitimately return (nil, nil) for "not found"; a non-nil
// error always means an infrastructure failure, which the resolver re-signals
// rather than masking as an auth failure.
type Directory interface {
	FindUserByID(context context.Context, id string) (*Actor, error)
	FindUserByDiscordID(context context.Context, discordUserID string) (*Actor, error)
	FindProjectByID(context context.Context, id string) (*Project, error)
	ListProjectMemberIDs(context context.Context, projectID string) ([]string, error)
}

// Sessions resolves opaque session tokens to user IDs.
//
// A missing or expired session returns ("", nil) — not an error.
type Sessions interface {
	FindUserID(context context.Context, token string) (string, error)
}

// Clock abstracts wall-clock reads so that replay-window checks are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a [Clock] backed by [time.Now].
func SystemClock() Clock { return systemClock{} }

// # Capabilities

type capabilityKind int

const (
	capAuthenticated capabilityKind = iota
	capProjectMember
	capProjectOwner
	capAdmin
	capSuperAdmin
)

// Capability is a named permission requirement evaluated against a resolved
// [Actor]. Values are built with the constructor functions below.
type Capability struct {
	kind      capabilityKind
	projectID string
}

// Authenticated requires any successfully resolved actor.
func Authenticated() Capability { return Capability{kind: capAuthenticated} }

// ProjectMember requires the actor to own projectID or appear in its member set.
func ProjectMember(projectID string) Capability {
	return Capability{kind: capProjectMember, projectID: projectID}
}

// ProjectOwner requires the actor to be the sole owner of projectID.
func ProjectOwner(projectID string) Capability {
	return Capability{kind: capProjectOwner, projectID: projectID}
}

// Admin requires the global admin flag on the actor.
func Admin() Capability { return Capability{kind: capAdmin} }

// SuperAdmin requires the actor's email to match the configured super-admin
// address (compared case-insensitively).
func SuperAdmin() Capability { return Capability{kind: capSuperAdmin} }

// ProjectID returns the project the capability is scoped to, or "" for
// global capabilities.
func (c Capability) ProjectID() string { return c.projectID }

// String returns a log-friendly capability name.
func (c Capability) String() string {
	switch c.kind {
	case capProjectMember:
		return "project_member"
	case capProjectOwner:
		return "project_owner"
	case capAdmin:
		return "admin"
	case capSuperAdmin:
		return "super_admin"
	default:
		return "authenticated"
	}
}

// # Results

// Decision is the three-valued outcome of a resolution attempt.
type Decision int

const (
	// DecisionResolved means the actor was verified and the capability holds.
	DecisionResolved Decision = iota

	// DecisionUnauthenticated means no verified actor could be established.
	// Boundary layers map this to HTTP 401.
	DecisionUnauthenticated

	// DecisionForbidden means the actor is verified but lacks the required
	// capability. Boundary layers map this to HTTP 403.
	DecisionForbidden
)

// RejectionKind classifies why a resolution was rejected.
type RejectionKind string

const (
	// KindNoCredential means no scheme's material was present at all.
	KindNoCredential RejectionKind = "no_credential"

	// KindMalformedCredential means material was present but structurally
	// invalid (non-hex signature, unparseable JWT, bad header format).
	KindMalformedCredential RejectionKind = "malformed_credential"

	// KindExpiredCredential means the credential was valid once but is now
	// stale (JWT exp elapsed, signed timestamp outside the replay window,
	// session gone).
	KindExpiredCredential RejectionKind = "expired_credential"

	// KindSignatureMismatch means cryptographic verification failed.
	KindSignatureMismatch RejectionKind = "signature_mismatch"

	// KindUnknownIdentity means the credential verified but no matching user
	// exists in the directory. Distinct from a signature failure so callers
	// can offer a "link your account" remedy instead of "bad login".
	KindUnknownIdentity RejectionKind = "unknown_identity"

	// KindInsufficientCapability means the resolved actor lacks the required
	// project or admin role.
	KindInsufficientCapability RejectionKind = "insufficient_capability"
)

// Result is the tagged outcome of [Resolver.Resolve].
//
// Actor is set whenever an identity was established — on [DecisionResolved]
// and on [DecisionForbidden] (the actor is known, the capability is not).
// Kind and Reason are set only on rejections.
type Result struct {
	Decision Decision
	Actor    *Actor
	Kind     RejectionKind
	Reason   string
}

// OK reports whether the resolution succeeded.
func (r Result) OK() bool { return r.Decision == DecisionResolved }

func resolved(actor *Actor) Result {
	return Result{Decision: DecisionResolved, Actor: actor}
}

func unauthenticated(kind RejectionKind, reason string) Result {
	return Result{Decision: DecisionUnauthenticated, Kind: kind, Reason: reason}
}

func forbidden(actor *Actor, reason string) Result {
	return Result{
		Decision: DecisionForbidden,
		Actor:    actor,
		Kind:     KindInsufficientCapability,
		Reason:   reason,
	}
}
