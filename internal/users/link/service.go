// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package link

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/core/activity"
	"github.com/indraneelk/taskhive/internal/platform/apperr"
	"github.com/indraneelk/taskhive/internal/platform/sec"
	"github.com/indraneelk/taskhive/internal/users/identity"
	"github.com/indraneelk/taskhive/pkg/uuid"
)

// codeAlphabet excludes characters that read ambiguously when a user types
// the code into Discord (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// # Contracts & Types

// Auditor captures audit entries emitted by the linking flow.
type Auditor interface {
	Record(context context.Context, input activity.RecordInput) error
}

// Service implements the link code lifecycle use cases.
//
// # Review Process
//
// This service guards the Discord identity binding. Any change to the
// redemption checks must be reviewed by the security team.
type Service struct {
	codeRepository LinkCodeRepository
	userRepository identity.UserRepository
	auditor        Auditor
	clock          authz.Clock
}

// NewService constructs a new [Service]. A nil clock defaults to the system
// clock; a nil auditor disables audit recording.
func NewService(codeRepo LinkCodeRepository, userRepo identity.UserRepository, auditor Auditor, clock authz.Clock) *Service {
	if clock == nil {
		clock = authz.SystemClock()
	}

	return &Service{
		codeRepository: codeRepo,
		userRepository: userRepo,
		auditor:        auditor,
		clock:          clock,
	}
}

// # Issue Flow

// Issued describes a freshly generated link code.
//
// The raw code appears here and nowhere else; storage holds only the hash.
type Issued struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

/*
Issue generates a new link code for the given user.

Description: Any pending code the user still holds is force-expired first,
so the newest code is the only redeemable one. An existing Discord binding
is also dropped, which makes issuing a code the entry point for relinking
to a different Discord account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Issued: Raw code and expiry
  - error: Generation or storage failures
*/
func (service *Service) Issue(context context.Context, userID string) (*Issued, error) {
	now := service.clock.Now()

	// Enforce at most one redeemable code per user
	if err := service.codeRepository.InvalidatePending(context, userID, now); err != nil {
		return nil, fmt.Errorf("link_service_invalidate_failed: %w", err)
	}

	// A fresh code starts a fresh link, so any current binding goes
	if err := service.userRepository.UnbindDiscord(context, userID); err != nil {
		return nil, fmt.Errorf("link_service_unbind_failed: %w", err)
	}

	rawCode, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("link_service_code_generation_failed: %w", err)
	}

	code := &LinkCode{
		ID:        uuid.New(),
		UserID:    userID,
		CodeHash:  sec.HashToken(rawCode),
		IssuedAt:  now,
		ExpiresAt: now.Add(LinkCodeTTL),
	}

	if err := service.codeRepository.Create(context, code); err != nil {
		return nil, fmt.Errorf("link_service_issue_failed: %w", err)
	}

	return &Issued{Code: rawCode, ExpiresAt: code.ExpiresAt}, nil
}

// # Status Flow

// StatusView is the read model for the user's latest link code.
type StatusView struct {
	Status        Status     `json:"status"`
	IssuedAt      time.Time  `json:"issued_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	DiscordUserID string     `json:"discord_user_id,omitempty"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
}

/*
Status reports the lifecycle state of the user's most recent link code.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *StatusView: Current state of the latest code
  - error: apperr.NotFound when the user never issued a code
*/
func (service *Service) Status(context context.Context, userID string) (*StatusView, error) {
	code, err := service.codeRepository.FindLatestByUserID(context, userID)
	if err != nil {
		return nil, err
	}

	return &StatusView{
		Status:        code.StatusAt(service.clock.Now()),
		IssuedAt:      code.IssuedAt,
		ExpiresAt:     code.ExpiresAt,
		DiscordUserID: code.DiscordUserID,
		UsedAt:        code.UsedAt,
	}, nil
}

// # Redemption Flow

/*
Redeem consumes a link code on behalf of a Discord account.

Description: The four failure modes stay distinct for the bot's messaging:
an unknown code (404), an expired code (422), a code already redeemed
(409), and a Discord account already linked to some user (409). On success
the snowflake is bound to the issuing user and the code is terminal.

Parameters:
  - context: context.Context
  - rawCode: string (case-insensitive, as typed by the user)
  - discordUserID: string (verified snowflake of the redeeming account)

Returns:
  - *identity.User: The linked account
  - error: One of the taxonomy above or storage failures
*/
func (service *Service) Redeem(context context.Context, rawCode string, discordUserID string) (*identity.User, error) {
	normalized := strings.ToUpper(strings.TrimSpace(rawCode))

	code, err := service.codeRepository.FindByCodeHash(context, sec.HashToken(normalized))
	if err != nil {
		return nil, err
	}

	switch code.StatusAt(service.clock.Now()) {
	case StatusUsed:
		return nil, apperr.Conflict("Link code has already been used")
	case StatusExpired:
		return nil, apperr.Unprocessable("Link code has expired")
	}

	// A snowflake binds to at most one account. Re-linking the same pair is
	// rejected too: the user must unlink first.
	existing, err := service.userRepository.FindByDiscordID(context, discordUserID)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("link_service_binding_lookup_failed: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Discord account is already linked")
	}

	// Exactly one concurrent redemption can win this flip
	usedAt := service.clock.Now()
	won, err := service.codeRepository.MarkUsed(context, code.ID, discordUserID, usedAt)
	if err != nil {
		return nil, fmt.Errorf("link_service_mark_used_failed: %w", err)
	}
	if !won {
		return nil, apperr.Conflict("Link code has already been used")
	}

	if err := service.userRepository.BindDiscord(context, code.UserID, discordUserID); err != nil {
		return nil, fmt.Errorf("link_service_bind_failed: %w", err)
	}

	user, err := service.userRepository.FindByID(context, code.UserID)
	if err != nil {
		return nil, fmt.Errorf("link_service_user_fetch_failed: %w", err)
	}

	if service.auditor != nil {
		_ = service.auditor.Record(context, activity.RecordInput{
			ActorID:    user.ID,
			Action:     activity.ActionDiscordLinked,
			EntityType: activity.EntityUser,
			EntityID:   user.ID,
			Detail:     "Discord account " + discordUserID + " linked",
		})
	}

	return user, nil
}

// # Helpers

// generateCode builds a random human-typable code.
func generateCode() (string, error) {
	buffer := make([]byte, LinkCodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))

	for i := range buffer {
		index, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buffer[i] = codeAlphabet[index.Int64()]
	}

	return string(buffer), nil
}

// isNotFound reports whether err is the domain-level absence signal.
func isNotFound(err error) bool {
	var appError *apperr.AppError
	if errors.As(err, &appError) {
		return appError.HTTPStatus == http.StatusNotFound
	}
	return false
}
