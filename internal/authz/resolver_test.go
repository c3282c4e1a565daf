// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package authz_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/platform/sec"
)

// # Test Fixtures

const (
	botSecret       = "bot-shared-secret"
	superAdminEmail = "root@taskhive.app"
	discordSnowflk  = "815915014510923776"
)

var errStoreDown = errors.New("store unreachable")

// fixedClock pins Now() for deterministic replay-window tests.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// stubDirectory is an in-memory Directory with switchable failure modes.
type stubDirectory struct {
	usersByID      map[string]*authz.Actor
	usersByDiscord map[string]*authz.Actor
	projects       map[string]*authz.Project
	members        map[string][]string

	failUsers   bool
	failMembers bool // owner checks must never touch the member list
}

func (d *stubDirectory) FindUserByID(_ context.Context, id string) (*authz.Actor, error) {
	if d.failUsers {
		return nil, errStoreDown
	}
	return d.usersByID[id], nil
}

func (d *stubDirectory) FindUserByDiscordID(_ context.Context, discordID string) (*authz.Actor, error) {
	if d.failUsers {
		return nil, errStoreDown
	}
	return d.usersByDiscord[discordID], nil
}

func (d *stubDirectory) FindProjectByID(_ context.Context, id string) (*authz.Project, error) {
	return d.projects[id], nil
}

func (d *stubDirectory) ListProjectMemberIDs(_ context.Context, projectID string) ([]string, error) {
	if d.failMembers {
		return nil, errors.New("member list must not be queried")
	}
	return d.members[projectID], nil
}

// stubSessions maps session tokens to user IDs.
type stubSessions struct {
	byToken map[string]string
	fail    bool
}

func (s *stubSessions) FindUserID(_ context.Context, token string) (string, error) {
	if s.fail {
		return "", errStoreDown
	}
	return s.byToken[token], nil
}

// stubVerifier returns canned claims or errors per token string.
type stubVerifier struct {
	claims map[string]*sec.BearerClaims
	errs   map[string]error
}

func (v *stubVerifier) Verify(_ context.Context, token string) (*sec.BearerClaims, error) {
	if err, ok := v.errs[token]; ok {
		return nil, err
	}
	if claims, ok := v.claims[token]; ok {
		return claims, nil
	}
	return nil, sec.ErrTokenSignature
}

// fixture bundles a resolver with its mutable stubs.
type fixture struct {
	resolver  *authz.Resolver
	directory *stubDirectory
	sessions  *stubSessions
	verifier  *stubVerifier
	clock     fixedClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	alice := &authz.Actor{ID: "user-alice", Username: "alice", Email: "alice@example.com"}
	bob := &authz.Actor{ID: "user-bob", Username: "bob", Email: "bob@example.com"}
	admin := &authz.Actor{ID: "user-admin", Username: "admin", Email: "admin@example.com", IsAdmin: true}
	root := &authz.Actor{ID: "user-root", Username: "root", Email: "Root@Taskhive.App"}
	linked := &authz.Actor{
		ID: "user-linked", Username: "linked",
		DiscordUserID: discordSnowflk, DiscordVerified: true,
	}

	directory := &stubDirectory{
		usersByID: map[string]*authz.Actor{
			alice.ID: alice, bob.ID: bob, admin.ID: admin, root.ID: root, linked.ID: linked,
		},
		usersByDiscord: map[string]*authz.Actor{discordSnowflk: linked},
		projects: map[string]*authz.Project{
			"proj-p": {ID: "proj-p", OwnerID: alice.ID},
		},
		members: map[string][]string{"proj-p": {}},
	}

	sessions := &stubSessions{byToken: map[string]string{"sess-alice": alice.ID}}

	verifier := &stubVerifier{
		claims: map[string]*sec.BearerClaims{
			"jwt-alice": {Subject: alice.ID, Email: alice.Email},
			"jwt-ghost": {Subject: "user-ghost"},
		},
		errs: map[string]error{
			"jwt-expired":   sec.ErrTokenExpired,
			"jwt-malformed": sec.ErrTokenMalformed,
			"jwt-bad-iss":   sec.ErrTokenIssuer,
		},
	}

	clock := fixedClock{now: time.UnixMilli(1756500000000)}

	resolver := authz.NewResolver(directory, sessions, verifier, clock, authz.Config{
		BotSecret:       botSecret,
		SuperAdminEmail: superAdminEmail,
	})

	return &fixture{resolver: resolver, directory: directory, sessions: sessions, verifier: verifier, clock: clock}
}

// signedDiscord builds a correctly signed Discord header triple at the given offset.
func (f *fixture) signedDiscord(offset time.Duration) authz.Credentials {
	timestamp := strconv.FormatInt(f.clock.now.Add(offset).UnixMilli(), 10)
	return authz.Credentials{
		DiscordUserID:    discordSnowflk,
		DiscordTimestamp: timestamp,
		DiscordSignature: sec.SignHMAC(discordSnowflk+"|"+timestamp, botSecret),
	}
}

// resolve is shorthand for a must-not-error resolution.
func (f *fixture) resolve(t *testing.T, creds authz.Credentials, capability authz.Capability) authz.Result {
	t.Helper()
	result, err := f.resolver.Resolve(context.Background(), creds, capability)
	require.NoError(t, err)
	return result
}

// # Discord-Signed Scheme

/*
TestResolve_DiscordSigned_Valid verifies that a fresh, correctly signed
request resolves to the linked actor.
*/
func TestResolve_DiscordSigned_Valid(t *testing.T) {
	f := newFixture(t)

	result := f.resolve(t, f.signedDiscord(0), authz.Authenticated())

	require.True(t, result.OK())
	assert.Equal(t, "user-linked", result.Actor.ID)
	assert.True(t, result.Actor.DiscordVerified)
}

/*
TestResolve_DiscordSigned_Mutations verifies that any mutation of the
signature, user id, or timestamp causes rejection.
*/
func TestResolve_DiscordSigned_Mutations(t *testing.T) {
	f := newFixture(t)
	valid := f.signedDiscord(0)

	tests := []struct {
		name     string
		mutate   func(c *authz.Credentials)
		wantKind authz.RejectionKind
	}{
		{
			name:     "signature_hex_digit_flipped",
			mutate:   func(c *authz.Credentials) { c.DiscordSignature = flipHex(c.DiscordSignature) },
			wantKind: authz.KindSignatureMismatch,
		},
		{
			name:     "user_id_digit_changed",
			mutate:   func(c *authz.Credentials) { c.DiscordUserID = "815915014510923777" },
			wantKind: authz.KindSignatureMismatch,
		},
		{
			name:     "timestamp_changed",
			mutate:   func(c *authz.Credentials) { c.DiscordTimestamp = c.DiscordTimestamp[:12] + "9" },
			wantKind: authz.KindSignatureMismatch,
		},
		{
			name:     "signature_not_hex",
			mutate:   func(c *authz.Credentials) { c.DiscordSignature = c.DiscordSignature[:63] + "z" },
			wantKind: authz.KindMalformedCredential,
		},
		{
			name:     "signature_wrong_length",
			mutate:   func(c *authz.Credentials) { c.DiscordSignature = c.DiscordSignature[:40] },
			wantKind: authz.KindMalformedCredential,
		},
		{
			name:     "user_id_not_snowflake",
			mutate:   func(c *authz.Credentials) { c.DiscordUserID = "12345" },
			wantKind: authz.KindMalformedCredential,
		},
		{
			name:     "timestamp_not_numeric",
			mutate:   func(c *authz.Credentials) { c.DiscordTimestamp = "yesterday" },
			wantKind: authz.KindMalformedCredential,
		},
		{
			name:     "missing_signature_header",
			mutate:   func(c *authz.Credentials) { c.DiscordSignature = "" },
			wantKind: authz.KindMalformedCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := valid
			tt.mutate(&creds)

			result := f.resolve(t, creds, authz.Authenticated())

			assert.Equal(t, authz.DecisionUnauthenticated, result.Decision)
			assert.Equal(t, tt.wantKind, result.Kind)
		})
	}
}

/*
TestResolve_DiscordSigned_ReplayWindow verifies the symmetric 60s freshness
window: both stale and future timestamps reject with an expired kind even
when the signature is valid.
*/
func TestResolve_DiscordSigned_ReplayWindow(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		offset time.Duration
		wantOK bool
	}{
		{"well_within_window", 30 * time.Second, true},
		{"at_past_edge", -60 * time.Second, true},
		{"at_future_edge", 60 * time.Second, true},
		{"just_past", -61 * time.Second, false},
		{"just_future", 61 * time.Second, false},
		{"far_past", -time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.resolve(t, f.signedDiscord(tt.offset), authz.Authenticated())

			if tt.wantOK {
				assert.True(t, result.OK())
			} else {
				assert.Equal(t, authz.DecisionUnauthenticated, result.Decision)
				assert.Equal(t, authz.KindExpiredCredential, result.Kind)
			}
		})
	}
}

/*
TestResolve_DiscordSigned_Unlinked verifies that a correctly signed request
for an unlinked Discord account rejects with the unknown-identity kind, so
callers can offer the "link your account" remedy.
*/
func TestResolve_DiscordSigned_Unlinked(t *testing.T) {
	f := newFixture(t)

	unlinkedID := "999999999999999999"
	timestamp := strconv.FormatInt(f.clock.now.UnixMilli(), 10)
	creds := authz.Credentials{
		DiscordUserID:    unlinkedID,
		DiscordTimestamp: timestamp,
		DiscordSignature: sec.SignHMAC(unlinkedID+"|"+timestamp, botSecret),
	}

	result := f.resolve(t, creds, authz.Authenticated())

	assert.Equal(t, authz.DecisionUnauthenticated, result.Decision)
	assert.Equal(t, authz.KindUnknownIdentity, result.Kind)
}

/*
TestResolve_DiscordSigned_NeverDowngrades verifies that a malformed
high-priority credential rejects even when a perfectly valid lower-priority
credential is also present.
*/
func TestResolve_DiscordSigned_NeverDowngrades(t *testing.T) {
	f := newFixture(t)

	creds := f.signedDiscord(0)
	creds.DiscordSignature = creds.DiscordSignature[:40] // malformed
	creds.Authorization = "Bearer jwt-alice"             // valid fallback that must be ignored
	creds.SessionToken = "sess-alice"

	result := f.resolve(t, creds, authz.Authenticated())

	assert.Equal(t, authz.DecisionUnauthenticated, result.Decision)
	assert.Equal(t, authz.KindMalformedCredential, result.Kind)
}

// # Bearer Scheme

/*
TestResolve_Bearer verifies bearer token resolution and its failure classes.
*/
func TestResolve_Bearer(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		header   string
		wantOK   bool
		wantKind authz.RejectionKind
	}{
		{"valid", "Bearer jwt-alice", true, ""},
		{"case_insensitive_scheme", "bearer jwt-alice", true, ""},
		{"expired", "Bearer jwt-expired", false, authz.KindExpiredCredential},
		{"malformed_token", "Bearer jwt-malformed", false, authz.KindMalformedCredential},
		{"wrong_issuer", "Bearer jwt-bad-iss", false, authz.KindSignatureMismatch},
		{"unknown_token", "Bearer jwt-unknown", false, authz.KindSignatureMismatch},
		{"unknown_subject", "Bearer jwt-ghost", false, authz.KindUnknownIdentity},
		{"not_bearer_scheme", "Basic dXNlcjpwYXNz", false, authz.KindMalformedCredential},
		{"empty_token", "Bearer ", false, authz.KindMalformedCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.resolve(t, authz.Credentials{Authorization: tt.header}, authz.Authenticated())

			if tt.wantOK {
				require.True(t, result.OK())
				assert.Equal(t, "user-alice", result.Actor.ID)
			} else {
				assert.Equal(t, authz.DecisionUnauthenticated, result.Decision)
				assert.Equal(t, tt.wantKind, result.Kind)
			}
		})
	}
}

/*
TestResolve_Bearer_Idempotent verifies that resolving the same valid token
twice yields the same actor — resolution is read-only.
*/
func TestResolve_Bearer_Idempotent(t *testing.T) {
	f := newFixture(t)
	creds := authz.Credentials{Authorization: "Bearer jwt-alice"}

	first := f.resolve(t, creds, authz.Authenticated())
	second := f.resolve(t, creds, authz.Authenticated())

	require.True(t, first.OK())
	require.True(t, second.OK())
	assert.Equal(t, first.Actor, second.Actor)
}

// # Session Scheme

/*
TestResolve_Session verifies session cookie resolution and its failure classes.
*/
func TestResolve_Session(t *testing.T) {
	f := newFixture(t)

	t.Run("valid", func(t *testing.T) {
		result := f.resolve(t, authz.Credentials{SessionToken: "sess-alice"}, authz.Authenticated())
		require.True(t, result.OK())
		assert.Equal(t, "user-alice", result.Actor.ID)
	})

	t.Run("expired_or_unknown", func(t *testing.T) {
		result := f.resolve(t, authz.Credentials{SessionToken: "sess-gone"}, authz.Authenticated())
		assert.Equal(t, authz.DecisionUnauthenticated, result.Decision)
		assert.Equal(t, authz.KindExpiredCredential, result.Kind)
	})

	t.Run("user_deleted_after_session_created", func(t *testing.T) {
		f.sessions.byToken["sess-orphan"] = "user-deleted"
		result := f.resolve(t, authz.Credentials{SessionToken: "sess-orphan"}, authz.Authenticated())
		assert.Equal(t, authz.KindUnknownIdentity, result.Kind)
	})
}

/*
TestResolve_NoCredentials verifies the empty-request outcome.
*/
func TestResolve_NoCredentials(t *testing.T) {
	f := newFixture(t)

	result := f.resolve(t, authz.Credentials{}, authz.Authenticated())

	assert.Equal(t, authz.DecisionUnauthenticated, result.Decision)
	assert.Equal(t, authz.KindNoCredential, result.Kind)
}

// # Capability Evaluation

/*
TestResolve_ProjectCapabilities walks the concrete owner/member scenario:
owner satisfies both capabilities; a non-member satisfies neither until
added to the member list, after which membership (but not ownership) holds.
*/
func TestResolve_ProjectCapabilities(t *testing.T) {
	f := newFixture(t)
	f.sessions.byToken["sess-bob"] = "user-bob"

	owner := authz.Credentials{SessionToken: "sess-alice"}
	outsider := authz.Credentials{SessionToken: "sess-bob"}

	// Owner satisfies both.
	assert.True(t, f.resolve(t, owner, authz.ProjectOwner("proj-p")).OK())
	assert.True(t, f.resolve(t, owner, authz.ProjectMember("proj-p")).OK())

	// Outsider satisfies neither.
	ownerResult := f.resolve(t, outsider, authz.ProjectOwner("proj-p"))
	assert.Equal(t, authz.DecisionForbidden, ownerResult.Decision)
	assert.Equal(t, authz.KindInsufficientCapability, ownerResult.Kind)

	memberResult := f.resolve(t, outsider, authz.ProjectMember("proj-p"))
	assert.Equal(t, authz.DecisionForbidden, memberResult.Decision)

	// After being added to the member list, membership holds but ownership does not.
	f.directory.members["proj-p"] = append(f.directory.members["proj-p"], "user-bob")

	assert.True(t, f.resolve(t, outsider, authz.ProjectMember("proj-p")).OK())
	assert.Equal(t, authz.DecisionForbidden, f.resolve(t, outsider, authz.ProjectOwner("proj-p")).Decision)
}

/*
TestResolve_OwnerShortCircuit verifies that an owner satisfies ProjectMember
without the members-list lookup ever running, using a directory stub that
fails if the list is queried.
*/
func TestResolve_OwnerShortCircuit(t *testing.T) {
	f := newFixture(t)
	f.directory.failMembers = true

	result := f.resolve(t, authz.Credentials{SessionToken: "sess-alice"}, authz.ProjectMember("proj-p"))

	assert.True(t, result.OK())
}

/*
TestResolve_MissingProject verifies that project capabilities against an
unknown project are forbidden, not an error.
*/
func TestResolve_MissingProject(t *testing.T) {
	f := newFixture(t)

	result := f.resolve(t, authz.Credentials{SessionToken: "sess-alice"}, authz.ProjectMember("proj-missing"))

	assert.Equal(t, authz.DecisionForbidden, result.Decision)
}

/*
TestResolve_AdminAndSuperAdmin verifies the global capability checks,
including the case-insensitive super-admin email policy.
*/
func TestResolve_AdminAndSuperAdmin(t *testing.T) {
	f := newFixture(t)
	f.sessions.byToken["sess-admin"] = "user-admin"
	f.sessions.byToken["sess-root"] = "user-root"

	// Global admin flag.
	assert.True(t, f.resolve(t, authz.Credentials{SessionToken: "sess-admin"}, authz.Admin()).OK())
	assert.Equal(t, authz.DecisionForbidden,
		f.resolve(t, authz.Credentials{SessionToken: "sess-alice"}, authz.Admin()).Decision)

	// Super-admin matches despite differing letter case ("Root@Taskhive.App").
	assert.True(t, f.resolve(t, authz.Credentials{SessionToken: "sess-root"}, authz.SuperAdmin()).OK())

	// Admin flag alone does not grant super-admin.
	assert.Equal(t, authz.DecisionForbidden,
		f.resolve(t, authz.Credentials{SessionToken: "sess-admin"}, authz.SuperAdmin()).Decision)
}

// # Infrastructure Failures

/*
TestResolve_StoreFailurePropagates verifies that directory and session store
outages surface as errors, never as auth rejections.
*/
func TestResolve_StoreFailurePropagates(t *testing.T) {
	t.Run("directory_down", func(t *testing.T) {
		f := newFixture(t)
		f.directory.failUsers = true

		_, err := f.resolver.Resolve(context.Background(),
			authz.Credentials{Authorization: "Bearer jwt-alice"}, authz.Authenticated())

		require.Error(t, err)
		assert.ErrorIs(t, err, errStoreDown)
	})

	t.Run("session_store_down", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.fail = true

		_, err := f.resolver.Resolve(context.Background(),
			authz.Credentials{SessionToken: "sess-alice"}, authz.Authenticated())

		require.Error(t, err)
		assert.ErrorIs(t, err, errStoreDown)
	})
}

// flipHex changes one hex digit of a signature while keeping it structurally valid.
func flipHex(signature string) string {
	replacement := byte('0')
	if signature[0] == '0' {
		replacement = '1'
	}
	return fmt.Sprintf("%c%s", replacement, signature[1:])
}
