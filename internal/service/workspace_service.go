package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"contenthub/internal/ids"
	"contenthub/internal/models"
	"contenthub/internal/repository"
	"contenthub/internal/security"
)

const apiCredentialBytes = 32

type WorkspaceService struct {
	workspaces WorkspaceStore
	users      UserStore
	log        zerolog.Logger
}

func NewWorkspaceService(workspaces WorkspaceStore, users UserStore, log zerolog.Logger) *WorkspaceService {
	return &WorkspaceService{
		workspaces: workspaces,
		users:      users,
		log:        log,
	}
}

type CreateWorkspaceInput struct {
	Name        string
	Description string
	APIKey      string
	APISecret   string
}

// WorkspaceCredentials holds the plaintext API key pair. Only the bcrypt
// hashes are stored, so this is the one time the caller sees them.
type WorkspaceCredentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

func (s *WorkspaceService) Create(ctx context.Context, owner models.User, input CreateWorkspaceInput) (models.Workspace, WorkspaceCredentials, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return models.Workspace{}, WorkspaceCredentials{}, fmt.Errorf("%w: name required", ErrValidation)
	}

	creds, err := resolveCredentials(input.APIKey, input.APISecret)
	if err != nil {
		return models.Workspace{}, WorkspaceCredentials{}, err
	}
	hashedKey, err := security.HashPassword(creds.APIKey)
	if err != nil {
		return models.Workspace{}, WorkspaceCredentials{}, err
	}
	hashedSecret, err := security.HashPassword(creds.APISecret)
	if err != nil {
		return models.Workspace{}, WorkspaceCredentials{}, err
	}

	now := time.Now().UTC()
	workspace := models.Workspace{
		ID:              ids.New(),
		Name:            input.Name,
		Description:     input.Description,
		OwnerID:         owner.ID,
		HashedAPIKey:    hashedKey,
		HashedAPISecret: hashedSecret,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	mapping := models.WorkspaceUserMapping{
		ID:          ids.New(),
		WorkspaceID: workspace.ID,
		UserID:      owner.ID,
		Role:        models.WorkspaceRoleOwner,
	}

	if err := s.workspaces.CreateWithOwner(ctx, workspace, mapping); err != nil {
		return models.Workspace{}, WorkspaceCredentials{}, fmt.Errorf("create workspace: %w", err)
	}

	s.log.Info().Str("workspace_id", workspace.ID).Str("user_id", owner.ID).Msg("workspace created")
	return workspace, creds, nil
}

func resolveCredentials(key, secret string) (WorkspaceCredentials, error) {
	var err error
	if key == "" {
		if key, err = security.GenerateSecret(apiCredentialBytes); err != nil {
			return WorkspaceCredentials{}, err
		}
	}
	if secret == "" {
		if secret, err = security.GenerateSecret(apiCredentialBytes); err != nil {
			return WorkspaceCredentials{}, err
		}
	}
	return WorkspaceCredentials{APIKey: key, APISecret: secret}, nil
}

func (s *WorkspaceService) Get(ctx context.Context, id string) (models.Workspace, error) {
	return s.workspaces.GetByID(ctx, id)
}

func (s *WorkspaceService) ListByOwner(ctx context.Context, ownerID string) ([]models.Workspace, error) {
	return s.workspaces.ListByOwner(ctx, ownerID)
}

// ListMembers does not authorize; routes guard it with workspace access.
func (s *WorkspaceService) ListMembers(ctx context.Context, workspaceID string) ([]models.WorkspaceUserMapping, error) {
	if _, err := s.workspaces.GetByID(ctx, workspaceID); err != nil {
		return nil, err
	}
	return s.workspaces.ListMappings(ctx, workspaceID)
}

// AddMember maps userID into the workspace. Only the workspace owner may add
// members.
func (s *WorkspaceService) AddMember(ctx context.Context, callerID string, workspaceID string, userID string, role models.WorkspaceRole) (models.WorkspaceUserMapping, error) {
	if !role.Valid() {
		return models.WorkspaceUserMapping{}, ErrInvalidRole
	}

	workspace, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return models.WorkspaceUserMapping{}, err
	}
	if workspace.OwnerID != callerID {
		return models.WorkspaceUserMapping{}, ErrForbidden
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return models.WorkspaceUserMapping{}, err
	}

	mapping := models.WorkspaceUserMapping{
		ID:          ids.New(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
	if err := s.workspaces.AddMapping(ctx, mapping); err != nil {
		if errors.Is(err, repository.ErrMappingExists) {
			return models.WorkspaceUserMapping{}, ErrMemberExists
		}
		return models.WorkspaceUserMapping{}, err
	}

	s.log.Info().
		Str("workspace_id", workspaceID).
		Str("user_id", userID).
		Str("role", string(role)).
		Msg("workspace member added")
	return mapping, nil
}
