package service

import (
	"context"
	"io"
	"time"

	"contenthub/internal/models"
	"contenthub/internal/queue"
	"contenthub/internal/security"
)

// The store interfaces are satisfied by the pgx repositories. Not-found
// conditions surface as the repository package sentinels.

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

type TokenStore interface {
	Save(ctx context.Context, token models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (models.RefreshToken, error)
	// FindActiveByToken filters on the revoked flag only, never on expiry.
	FindActiveByToken(ctx context.Context, token string) (models.RefreshToken, error)
	RevokeAll(ctx context.Context, userID string) error
	Revoke(ctx context.Context, token string) error
}

type WorkspaceStore interface {
	CreateWithOwner(ctx context.Context, workspace models.Workspace, owner models.WorkspaceUserMapping) error
	GetByID(ctx context.Context, id string) (models.Workspace, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Workspace, error)
	ListMappings(ctx context.Context, workspaceID string) ([]models.WorkspaceUserMapping, error)
	FindMapping(ctx context.Context, workspaceID string, userID string) (models.WorkspaceUserMapping, error)
	AddMapping(ctx context.Context, mapping models.WorkspaceUserMapping) error
}

type ContentStore interface {
	Create(ctx context.Context, content models.Content) error
	GetByID(ctx context.Context, id string) (models.Content, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Content, error)
	ListByUser(ctx context.Context, userID string) ([]models.Content, error)
	UpdateMetadata(ctx context.Context, id string, name string, title string) (models.Content, error)
	MarkUnavailable(ctx context.Context, id string) error
}

type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	Remove(ctx context.Context, bucket string, key string) error
}

type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

type TokenIssuer interface {
	IssueAccess(userID string, username string) (string, error)
	IssueRefresh(userID string) (string, time.Time, error)
	VerifyRefresh(token string) (*security.RefreshClaims, error)
}

type AccessTokenVerifier interface {
	VerifyAccess(token string) (*security.AccessClaims, error)
}
