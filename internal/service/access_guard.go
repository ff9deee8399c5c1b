package service

import (
	"context"
	"errors"

	"contenthub/internal/models"
	"contenthub/internal/repository"
)

// AccessGuard resolves callers from bearer tokens and answers the workspace
// and content authorization questions.
//
// Content access is granted to the uploader and to the owner of the
// content's workspace. Membership rows are not consulted there, so an editor
// cannot reach content uploaded by someone else. Workspace access is granted
// to the owner and to any user holding a mapping row, whatever its role.
type AccessGuard struct {
	verifier   AccessTokenVerifier
	users      UserStore
	workspaces WorkspaceStore
	contents   ContentStore
}

func NewAccessGuard(verifier AccessTokenVerifier, users UserStore, workspaces WorkspaceStore, contents ContentStore) *AccessGuard {
	return &AccessGuard{
		verifier:   verifier,
		users:      users,
		workspaces: workspaces,
		contents:   contents,
	}
}

func (g *AccessGuard) CurrentUser(ctx context.Context, bearer string) (models.User, error) {
	claims, err := g.verifier.VerifyAccess(bearer)
	if err != nil {
		return models.User{}, ErrUnauthorized
	}

	user, err := g.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}
	return user, nil
}

func (g *AccessGuard) IsWorkspaceOwner(ctx context.Context, userID string, workspaceID string) (bool, error) {
	workspace, err := g.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	return workspace.OwnerID == userID, nil
}

// CanAccessContent returns repository.ErrContentNotFound when the content is
// absent or soft deleted.
func (g *AccessGuard) CanAccessContent(ctx context.Context, userID string, contentID string) (bool, error) {
	content, err := g.contents.GetByID(ctx, contentID)
	if err != nil {
		return false, err
	}
	return g.canAccess(ctx, userID, content)
}

func (g *AccessGuard) canAccess(ctx context.Context, userID string, content models.Content) (bool, error) {
	if content.UserID == userID {
		return true, nil
	}
	if content.WorkspaceID == nil {
		return false, nil
	}

	owner, err := g.IsWorkspaceOwner(ctx, userID, *content.WorkspaceID)
	if err != nil {
		if errors.Is(err, repository.ErrWorkspaceNotFound) {
			return false, nil
		}
		return false, err
	}
	return owner, nil
}

// CanAccessWorkspace reports false for a workspace that does not exist.
func (g *AccessGuard) CanAccessWorkspace(ctx context.Context, userID string, workspaceID string) (bool, error) {
	owner, err := g.IsWorkspaceOwner(ctx, userID, workspaceID)
	if err != nil {
		if errors.Is(err, repository.ErrWorkspaceNotFound) {
			return false, nil
		}
		return false, err
	}
	if owner {
		return true, nil
	}

	if _, err := g.workspaces.FindMapping(ctx, workspaceID, userID); err != nil {
		if errors.Is(err, repository.ErrMappingNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (g *AccessGuard) RequireContentAccess(ctx context.Context, userID string, contentID string) (models.Content, error) {
	content, err := g.contents.GetByID(ctx, contentID)
	if err != nil {
		return models.Content{}, err
	}
	ok, err := g.canAccess(ctx, userID, content)
	if err != nil {
		return models.Content{}, err
	}
	if !ok {
		return models.Content{}, ErrForbidden
	}
	return content, nil
}

func (g *AccessGuard) RequireWorkspaceAccess(ctx context.Context, userID string, workspaceID string) error {
	ok, err := g.CanAccessWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
