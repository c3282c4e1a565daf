// Copyright (c) 2026 Taskhive. All rights reserved.
// Author: indraneel.kondapalli.dev@gmail.com

package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/indraneelk/taskhive/internal/authz"
	"github.com/indraneelk/taskhive/internal/platform/apperr"
)

// # Resolver Directory

// ProjectFinder is the slice of the project domain the directory needs.
// The project package's repository satisfies it.
type ProjectFinder interface {
	FindAuthzProject(context context.Context, projectID string) (*authz.Project, error)
	ListMemberIDs(context context.Context, projectID string) ([]string, error)
}

// Directory adapts the user and project repositories to the lookup
// contract of the credential resolver.
//
// The resolver expects absence as (nil, nil); this adapter translates the
// repositories' NotFound errors accordingly so the resolver never has to
// know about the apperr taxonomy.
type Directory struct {
	users    UserRepository
	projects ProjectFinder
}

// NewDirectory constructs the resolver-facing directory adapter.
func NewDirectory(users UserRepository, projects ProjectFinder) *Directory {
	return &Directory{users: users, projects: projects}
}

/*
FindUserByID resolves a user UUID into an actor.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *authz.Actor: nil when no such user exists
  - error: Infrastructure failures only
*/
func (directory *Directory) FindUserByID(context context.Context, userID string) (*authz.Actor, error) {
	user, err := directory.users.FindByID(context, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return actorFromUser(user), nil
}

/*
FindUserByDiscordID resolves a Discord snowflake into an actor.

Parameters:
  - context: context.Context
  - discordUserID: string

Returns:
  - *authz.Actor: nil when the snowflake is unlinked
  - error: Infrastructure failures only
*/
func (directory *Directory) FindUserByDiscordID(context context.Context, discordUserID string) (*authz.Actor, error) {
	user, err := directory.users.FindByDiscordID(context, discordUserID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return actorFromUser(user), nil
}

/*
FindProjectByID resolves a project UUID for capability evaluation.

Parameters:
  - context: context.Context
  - projectID: string

Returns:
  - *authz.Project: nil when no such project exists
  - error: Infrastructure failures only
*/
func (directory *Directory) FindProjectByID(context context.Context, projectID string) (*authz.Project, error) {
	project, err := directory.projects.FindAuthzProject(context, projectID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return project, nil
}

/*
ListProjectMemberIDs returns the user IDs holding membership in a project.

Parameters:
  - context: context.Context
  - projectID: string

Returns:
  - []string: Member user IDs, owner not included
  - error: Infrastructure failures only
*/
func (directory *Directory) ListProjectMemberIDs(context context.Context, projectID string) ([]string, error) {
	return directory.projects.ListMemberIDs(context, projectID)
}

// actorFromUser projects the account entity onto the resolver's actor view.
func actorFromUser(user *User) *authz.Actor {
	return &authz.Actor{
		ID:              user.ID,
		Username:        user.Username,
		Name:            user.DisplayName,
		Email:           user.Email,
		IsAdmin:         user.IsAdmin,
		DiscordUserID:   user.DiscordUserID,
		DiscordVerified: user.DiscordVerified,
	}
}

// isNotFound reports whether err is the domain-level absence signal.
func isNotFound(err error) bool {
	var appError *apperr.AppError
	if errors.As(err, &appError) {
		return appError.HTTPStatus == http.StatusNotFound
	}
	return false
}
