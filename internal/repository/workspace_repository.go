package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"contenthub/internal/models"
)

type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

const workspaceColumns = `id, name, description, owner_id, hashed_api_key, hashed_api_secret, created_at, updated_at`

// CreateWithOwner inserts the workspace and its owner mapping in one
// transaction so no other mapping can precede the owner's.
func (r *WorkspaceRepository) CreateWithOwner(ctx context.Context, workspace models.Workspace, owner models.WorkspaceUserMapping) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertWorkspace = `
			INSERT INTO workspaces (
				id, name, description, owner_id, hashed_api_key, hashed_api_secret, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, NOW(), NOW()
			)
		`
		if _, err := tx.Exec(ctx, insertWorkspace,
			workspace.ID,
			workspace.Name,
			workspace.Description,
			workspace.OwnerID,
			workspace.HashedAPIKey,
			workspace.HashedAPISecret,
		); err != nil {
			return err
		}

		return insertMapping(ctx, tx, owner)
	})
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (models.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	var workspace models.Workspace
	if err := scanWorkspace(row, &workspace); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Workspace{}, ErrWorkspaceNotFound
		}
		return models.Workspace{}, err
	}
	return workspace, nil
}

func (r *WorkspaceRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []models.Workspace
	for rows.Next() {
		var workspace models.Workspace
		if err := scanWorkspace(rows, &workspace); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, workspace)
	}
	return workspaces, rows.Err()
}

func (r *WorkspaceRepository) ListMappings(ctx context.Context, workspaceID string) ([]models.WorkspaceUserMapping, error) {
	const query = `
		SELECT id, workspace_id, user_id, role
		FROM workspace_user_mapping
		WHERE workspace_id = $1
		ORDER BY role DESC, id
	`

	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []models.WorkspaceUserMapping
	for rows.Next() {
		var mapping models.WorkspaceUserMapping
		if err := rows.Scan(&mapping.ID, &mapping.WorkspaceID, &mapping.UserID, &mapping.Role); err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}
	return mappings, rows.Err()
}

func (r *WorkspaceRepository) FindMapping(ctx context.Context, workspaceID string, userID string) (models.WorkspaceUserMapping, error) {
	const query = `
		SELECT id, workspace_id, user_id, role
		FROM workspace_user_mapping
		WHERE workspace_id = $1 AND user_id = $2
	`

	var mapping models.WorkspaceUserMapping
	if err := r.pool.QueryRow(ctx, query, workspaceID, userID).Scan(
		&mapping.ID,
		&mapping.WorkspaceID,
		&mapping.UserID,
		&mapping.Role,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WorkspaceUserMapping{}, ErrMappingNotFound
		}
		return models.WorkspaceUserMapping{}, err
	}
	return mapping, nil
}

func (r *WorkspaceRepository) AddMapping(ctx context.Context, mapping models.WorkspaceUserMapping) error {
	return insertMapping(ctx, r.pool, mapping)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertMapping(ctx context.Context, db execer, mapping models.WorkspaceUserMapping) error {
	const query = `
		INSERT INTO workspace_user_mapping (id, workspace_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`
	_, err := db.Exec(ctx, query, mapping.ID, mapping.WorkspaceID, mapping.UserID, mapping.Role)
	if isUniqueViolation(err) {
		return ErrMappingExists
	}
	return err
}

func scanWorkspace(row pgx.Row, workspace *models.Workspace) error {
	return row.Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Description,
		&workspace.OwnerID,
		&workspace.HashedAPIKey,
		&workspace.HashedAPISecret,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
	)
}
