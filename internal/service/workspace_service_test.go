package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contenthub/internal/models"
	"contenthub/internal/repository"
	"contenthub/internal/security"
)

func TestWorkspaceService_CreateGeneratesCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.seedUser(t, "bob", "pw-b")

	workspace, creds, err := env.workspaceService.Create(ctx, bob, CreateWorkspaceInput{
		Name:        "  Studio  ",
		Description: "raw footage",
	})
	require.NoError(t, err)
	assert.Equal(t, "Studio", workspace.Name)
	assert.Equal(t, bob.ID, workspace.OwnerID)
	assert.NotEmpty(t, creds.APIKey)
	assert.NotEmpty(t, creds.APISecret)
	assert.NotEqual(t, creds.APIKey, creds.APISecret)

	ok, err := security.VerifyPassword(creds.APIKey, workspace.HashedAPIKey)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = security.VerifyPassword(creds.APISecret, workspace.HashedAPISecret)
	require.NoError(t, err)
	assert.True(t, ok)

	mappings, err := env.workspaces.ListMappings(ctx, workspace.ID)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, models.WorkspaceRoleOwner, mappings[0].Role)
	assert.Equal(t, bob.ID, mappings[0].UserID)

	owned, err := env.workspaceService.ListByOwner(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestWorkspaceService_CreateKeepsSuppliedCredentials(t *testing.T) {
	env := newTestEnv(t)
	bob := env.seedUser(t, "bob", "pw-b")

	workspace, creds, err := env.workspaceService.Create(context.Background(), bob, CreateWorkspaceInput{
		Name:      "W",
		APIKey:    "key-1",
		APISecret: "secret-1",
	})
	require.NoError(t, err)
	assert.Equal(t, WorkspaceCredentials{APIKey: "key-1", APISecret: "secret-1"}, creds)
	assert.NotEqual(t, []byte("key-1"), workspace.HashedAPIKey)
}

func TestWorkspaceService_CreateRequiresName(t *testing.T) {
	env := newTestEnv(t)
	bob := env.seedUser(t, "bob", "pw-b")

	_, _, err := env.workspaceService.Create(context.Background(), bob, CreateWorkspaceInput{Name: " "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWorkspaceService_AddMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.seedUser(t, "bob", "pw-b")
	carol := env.seedUser(t, "carol", "pw-c")
	dave := env.seedUser(t, "dave", "pw-d")

	workspace, _, err := env.workspaceService.Create(ctx, bob, CreateWorkspaceInput{Name: "W"})
	require.NoError(t, err)

	t.Run("invalid role", func(t *testing.T) {
		_, err := env.workspaceService.AddMember(ctx, bob.ID, workspace.ID, carol.ID, "admin")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("non owner", func(t *testing.T) {
		_, err := env.workspaceService.AddMember(ctx, dave.ID, workspace.ID, carol.ID, models.WorkspaceRoleEditor)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown workspace", func(t *testing.T) {
		_, err := env.workspaceService.AddMember(ctx, bob.ID, "missing", carol.ID, models.WorkspaceRoleEditor)
		assert.ErrorIs(t, err, repository.ErrWorkspaceNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.workspaceService.AddMember(ctx, bob.ID, workspace.ID, "missing", models.WorkspaceRoleEditor)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("editor added once", func(t *testing.T) {
		mapping, err := env.workspaceService.AddMember(ctx, bob.ID, workspace.ID, carol.ID, models.WorkspaceRoleEditor)
		require.NoError(t, err)
		assert.Equal(t, models.WorkspaceRoleEditor, mapping.Role)

		_, err = env.workspaceService.AddMember(ctx, bob.ID, workspace.ID, carol.ID, models.WorkspaceRoleOwner)
		assert.ErrorIs(t, err, ErrMemberExists)
	})

	members, err := env.workspaceService.ListMembers(ctx, workspace.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = env.workspaceService.ListMembers(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrWorkspaceNotFound)
}
