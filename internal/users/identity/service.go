// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package identity

import (
	"context"
	"fmt"
)

// # Service

// Service implements profile and Discord-binding use cases.
type Service struct {
	userRepository UserRepository
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(userRepo UserRepository) *Service {
	return &Service{userRepository: userRepo}
}

/*
Profile returns the account of the given user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or storage errors
*/
func (service *Service) Profile(context context.Context, userID string) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// # Profile Updates

// UpdateProfileInput holds the mutable profile fields.
type UpdateProfileInput struct {
	DisplayName string
}

/*
UpdateProfile modifies the caller's display metadata.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *User: Updated entity
  - error: apperr.NotFound or storage errors
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	user.DisplayName = input.DisplayName

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("identity_service_update_profile_failed: %w", err)
	}

	return user, nil
}

/*
UnlinkDiscord removes the caller's Discord binding.

Description: After this call, bot-signed requests on behalf of the previous
snowflake resolve to UnknownIdentity until a new link code is redeemed.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.NotFound or storage errors
*/
func (service *Service) UnlinkDiscord(context context.Context, userID string) error {
	if err := service.userRepository.UnbindDiscord(context, userID); err != nil {
		return fmt.Errorf("identity_service_unlink_discord_failed: %w", err)
	}
	return nil
}
