// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package link_test

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/platform/sec"
	"github.com/indraneelk/taskhive/internal/users/identity"
	"github.com/indraneelk/taskhive/internal/users/link"
)

// # Test Fixtures

const (
	userAlice      = "0192d6f1-0000-7000-8000-00000000000a"
	userBob        = "0192d6f1-0000-7000-8000-00000000000b"
	discordSnowflk = "815915014510923776"
)

// movableClock pins Now() and lets tests advance time explicitly.
type movableClock struct{ now time.Time }

func (c *movableClock) Now() time.Time { return c.now }

func (c *movableClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// stubCodeRepository is an in-memory LinkCodeRepository.
type stubCodeRepository struct {
	codes map[string]*link.LinkCode
}

func newStubCodeRepository() *stubCodeRepository {
	return &stubCodeRepository{codes: make(map[string]*link.LinkCode)}
}

func (r *stubCodeRepository) Create(_ context.Context, code *link.LinkCode) error {
	clone := *code
	r.codes[code.ID] = &clone
	return nil
}

func (r *stubCodeRepository) FindByCodeHash(_ context.Context, codeHash string) (*link.LinkCode, error) {
	for _, code := range r.codes {
		if code.CodeHash == codeHash {
			clone := *code
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Link code")
}

func (r *stubCodeRepository) FindLatestByUserID(_ context.Context, userID string) (*link.LinkCode, error) {
	matches := make([]*link.LinkCode, 0, 1)
	for _, code := range r.codes {
		if code.UserID == userID {
			matches = append(matches, code)
		}
	}
	if len(matches) == 0 {
		return nil, apperr.NotFound("Link code")
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].IssuedAt.After(matches[j].IssuedAt) })
	clone := *matches[0]
	return &clone, nil
}

func (r *stubCodeRepository) InvalidatePending(_ context.Context, userID string, now time.Time) error {
	for _, code := range r.codes {
		if code.UserID == userID && !code.IsUsed && code.ExpiresAt.After(now) {
			code.ExpiresAt = now
		}
	}
	return nil
}

func (r *stubCodeRepository) MarkUsed(_ context.Context, codeID string, discordUserID string, usedAt time.Time) (bool, error) {
	code, found := r.codes[codeID]
	if !found || code.IsUsed {
		return false, nil
	}
	code.IsUsed = true
	code.DiscordUserID = discordUserID
	code.UsedAt = &usedAt
	return true, nil
}

// stubUserRepository is an in-memory identity.UserRepository.
type stubUserRepository struct {
	users map[string]*identity.User
}

func newStubUserRepository(users ...*identity.User) *stubUserRepository {
	repo := &stubUserRepository{users: make(map[string]*identity.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *stubUserRepository) FindByID(_ context.Context, id string) (*identity.User, error) {
	if user, found := r.users[id]; found {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *stubUserRepository) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	return nil, apperr.NotFound("User")
}

func (r *stubUserRepository) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	return nil, apperr.NotFound("User")
}

func (r *stubUserRepository) FindByDiscordID(_ context.Context, discordUserID string) (*identity.User, error) {
	for _, user := range r.users {
		if user.DiscordUserID == discordUserID && user.DiscordVerified {
			return user, nil
		}
	}
	return nil, apperr.NotFound("No user is linked to this Discord account")
}

func (r *stubUserRepository) Create(_ context.Context, user *identity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepository) Update(_ context.Context, user *identity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepository) BindDiscord(_ context.Context, userID, discordUserID string) error {
	user, found := r.users[userID]
	if !found {
		return apperr.NotFound("User")
	}
	user.DiscordUserID = discordUserID
	user.DiscordVerified = true
	return nil
}

func (r *stubUserRepository) UnbindDiscord(_ context.Context, userID string) error {
	user, found := r.users[userID]
	if !found {
		return apperr.NotFound("User")
	}
	user.DiscordUserID = ""
	user.DiscordVerified = false
	return nil
}

func (r *stubUserRepository) SoftDelete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

// newFixture wires a service against fresh stubs at a pinned instant.
func newFixture() (*link.Service, *stubCodeRepository, *stubUserRepository, *movableClock) {
	clock := &movableClock{now: time.UnixMilli(1756500000000)}
	codes := newStubCodeRepository()
	users := newStubUserRepository(
		&identity.User{ID: userAlice, Username: "alice", Email: "alice@taskhive.app"},
		&identity.User{ID: userBob, Username: "bob", Email: "bob@taskhive.app"},
	)

	return link.NewService(codes, users, nil, clock), codes, users, clock
}

// # Issue Tests

/*
TestIssue_GeneratesRedeemableCode verifies the shape of a fresh code and
that its status reads pending.
*/
func TestIssue_GeneratesRedeemableCode(t *testing.T) {
	service, _, _, clock := newFixture()

	issued, err := service.Issue(context.Background(), userAlice)
	require.NoError(t, err)

	assert.Len(t, issued.Code, link.LinkCodeLength)
	assert.Equal(t, clock.Now().Add(link.LinkCodeTTL), issued.ExpiresAt)

	view, err := service.Status(context.Background(), userAlice)
	require.NoError(t, err)
	assert.Equal(t, link.StatusPending, view.Status)
}

/*
TestIssue_ReplacesPendingCode verifies that issuing a second code
invalidates the first: only the newest code is redeemable.
*/
func TestIssue_ReplacesPendingCode(t *testing.T) {
	service, _, _, _ := newFixture()

	first, err := service.Issue(context.Background(), userAlice)
	require.NoError(t, err)

	second, err := service.Issue(context.Background(), userAlice)
	require.NoError(t, err)
	require.NotEqual(t, first.Code, second.Code)

	// The superseded code is now terminal
	_, err = service.Redeem(context.Background(), first.Code, discordSnowflk)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperr.As(err).HTTPStatus)

	// The replacement still works
	user, err := service.Redeem(context.Background(), second.Code, discordSnowflk)
	require.NoError(t, err)
	assert.Equal(t, userAlice, user.ID)
}

// # Redemption Tests

/*
TestRedeem_BindsDiscordAccount verifies the happy path: the snowflake lands
on the issuing user and the code becomes used.
*/
func TestRedeem_BindsDiscordAccount(t *testing.T) {
	service, _, users, _ := newFixture()

	issued, err := service.Issue(context.Background(), userAlice)
	require.NoError(t, err)

	user, err := service.Redeem(context.Background(), issued.Code, discordSnowflk)
	require.NoError(t, err)
	assert.Equal(t, userAlice, user.ID)
	assert.Equal(t, discordSnowflk, user.DiscordUserID)
	assert.True(t, user.DiscordVerified)

	linked, err := users.FindByDiscordID(context.Background(), discordSnowflk)
	require.NoError(t, err)
	assert.Equal(t, userAlice, linked.ID)

	view, err := service.Status(context.Background(), userAlice)
	require.NoError(t, err)
	assert.Equal(t, link.StatusUsed, view.Status)
	assert.Equal(t, discordSnowflk, view.DiscordUserID)
}

/*
TestRedeem_IsCaseInsensitive verifies codes survive the lowercasing Discord
clients sometimes apply to user input.
*/
func TestRedeem_IsCaseInsensitive(t *testing.T) {
	service, _, _, _ := newFixture()

	issued, err := service.Issue(context.Background(), userAlice)
	require.NoError(t, err)

	_, err = service.Redeem(context.Background(), "  "+strings.ToLower(issued.Code)+" ", discordSnowflk)
	require.NoError(t, err)
}

/*
TestRedeem_UnknownCode verifies an unknown code maps to 404, not to any of
the terminal-state conflicts.
*/
func TestRedeem_UnknownCode(t *testing.T) {
	service, _, _, _ := newFixture()

	_, err := service.Redeem(context.Background(), "WRONGC0D", discordSnowflk)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)
}

/*
TestRedeem_TTLBoundaries verifies the 5 minute window: a redemption just
inside succeeds, one just past fails as expired.
*/
func TestRedeem_TTLBoundaries(t *testing.T) {
	t.Run("inside_window", func(t *testing.T) {
		service, _, _, clock := newFixture()

		issued, err := service.Issue(context.Background(), userAlice)
		require.NoError(t, err)

		clock.advance(link.LinkCodeTTL - time.Second)

		_, err = service.Redeem(context.Background(), issued.Code, discordSnowflk)
		require.NoError(t, err)
	})

	t.Run("past_window", func(t *testing.T) {
		service, _, _, clock := newFixture()

		issued, err := service.Issue(context.Background(), userAlice)
		require.NoError(t, err)

		clock.advance(link.LinkCodeTTL + time.Second)

		_, err = service.Redeem(context.Background(), issued.Code, discordSnowflk)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, apperr.As(err).HTTPStatus)
	})
}

/*
TestRedeem_SingleUse verifies a code redeems at most once, and that the
second attempt reads as a conflict rather than not-found.
*/
func TestRedeem_SingleUse(t *testing.T) {
	service, _, users, _ := newFixture()

	issued, err := service.Issue(context.Background(), userAlice)
	require.NoError(t, err)

	_, err = service.Redeem(context.Background(), issued.Code, discordSnowflk)
	require.NoError(t, err)

	// Unlink so only the code's terminal state can reject the retry
	require.NoError(t, users.UnbindDiscord(context.Background(), userAlice))

	_, err = service.Redeem(context.Background(), issued.Code, "915915014510923776")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.As(err).HTTPStatus)
}

/*
TestRedeem_AlreadyLinkedAccount verifies a snowflake bound to another user
rejects redemption, while reissuing drops the holder's own binding so the
relink flow can proceed.
*/
func TestRedeem_AlreadyLinkedAccount(t *testing.T) {
	t.Run("linked_to_other_user", func(t *testing.T) {
		service, _, _, _ := newFixture()

		issuedByAlice, err := service.Issue(context.Background(), userAlice)
		require.NoError(t, err)
		_, err = service.Redeem(context.Background(), issuedByAlice.Code, discordSnowflk)
		require.NoError(t, err)

		issuedByBob, err := service.Issue(context.Background(), userBob)
		require.NoError(t, err)

		_, err = service.Redeem(context.Background(), issuedByBob.Code, discordSnowflk)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, apperr.As(err).HTTPStatus)
	})

	t.Run("reissue_enables_relink", func(t *testing.T) {
		service, _, users, _ := newFixture()

		first, err := service.Issue(context.Background(), userAlice)
		require.NoError(t, err)
		_, err = service.Redeem(context.Background(), first.Code, discordSnowflk)
		require.NoError(t, err)

		// Issuing again drops the existing binding
		second, err := service.Issue(context.Background(), userAlice)
		require.NoError(t, err)

		alice, err := users.FindByID(context.Background(), userAlice)
		require.NoError(t, err)
		assert.Empty(t, alice.DiscordUserID)

		linked, err := service.Redeem(context.Background(), second.Code, "915915014510923776")
		require.NoError(t, err)
		assert.Equal(t, "915915014510923776", linked.DiscordUserID)
	})
}

// # Status Tests

/*
TestStatus_Lifecycle walks one code through pending, expired, and the
never-issued case.
*/
func TestStatus_Lifecycle(t *testing.T) {
	service, _, _, clock := newFixture()

	_, err := service.Status(context.Background(), userAlice)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)

	_, err = service.Issue(context.Background(), userAlice)
	require.NoError(t, err)

	view, err := service.Status(context.Background(), userAlice)
	require.NoError(t, err)
	assert.Equal(t, link.StatusPending, view.Status)

	clock.advance(link.LinkCodeTTL + time.Minute)

	view, err = service.Status(context.Background(), userAlice)
	require.NoError(t, err)
	assert.Equal(t, link.StatusExpired, view.Status)
}

/*
TestIssue_CodeIsStoredHashed verifies the repository never sees the raw code.
*/
func TestIssue_CodeIsStoredHashed(t *testing.T) {
	service, codes, _, _ := newFixture()

	issued, err := service.Issue(context.Background(), userAlice)
	require.NoError(t, err)

	stored, err := codes.FindLatestByUserID(context.Background(), userAlice)
	require.NoError(t, err)
	assert.NotEqual(t, issued.Code, stored.CodeHash)
	assert.Equal(t, sec.HashToken(issued.Code), stored.CodeHash)
}
