package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contenthub/internal/models"
)

type ContentRepository struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

const contentColumns = `
	id, name, title, bucket, object_key, format, mime, size_bytes, checksum,
	user_id, workspace_id, is_available, purged_at, created_at, updated_at
`

func (r *ContentRepository) Create(ctx context.Context, content models.Content) error {
	const query = `
		INSERT INTO content (
			id, name, title, bucket, object_key, format, mime, size_bytes, checksum,
			user_id, workspace_id, is_available, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, TRUE, $12, $12
		)
	`

	_, err := r.pool.Exec(ctx, query,
		content.ID,
		content.Name,
		content.Title,
		content.Bucket,
		content.ObjectKey,
		content.Format,
		content.MIME,
		content.SizeBytes,
		content.Checksum,
		content.UserID,
		content.WorkspaceID,
		content.CreatedAt,
	)
	return err
}

// GetByID returns available content only; soft-deleted rows read as missing.
func (r *ContentRepository) GetByID(ctx context.Context, id string) (models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE id = $1 AND is_available = TRUE`
	return scanContent(r.pool.QueryRow(ctx, query, id))
}

func (r *ContentRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Content, error) {
	query := `SELECT ` + contentColumns + `
		FROM content
		WHERE workspace_id = $1 AND is_available = TRUE
		ORDER BY created_at DESC`
	return r.list(ctx, query, workspaceID)
}

func (r *ContentRepository) ListByUser(ctx context.Context, userID string) ([]models.Content, error) {
	query := `SELECT ` + contentColumns + `
		FROM content
		WHERE user_id = $1 AND is_available = TRUE
		ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListPendingPurge returns soft-deleted content whose object is still stored.
func (r *ContentRepository) ListPendingPurge(ctx context.Context, limit int) ([]models.Content, error) {
	query := `SELECT ` + contentColumns + `
		FROM content
		WHERE is_available = FALSE AND purged_at IS NULL
		ORDER BY updated_at
		LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *ContentRepository) UpdateMetadata(ctx context.Context, id string, name string, title string) (models.Content, error) {
	query := `
		UPDATE content
		SET name = $2, title = $3, updated_at = NOW()
		WHERE id = $1 AND is_available = TRUE
		RETURNING ` + contentColumns
	return scanContent(r.pool.QueryRow(ctx, query, id, name, title))
}

func (r *ContentRepository) MarkUnavailable(ctx context.Context, id string) error {
	const query = `
		UPDATE content SET is_available = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_available = TRUE
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (r *ContentRepository) MarkPurged(ctx context.Context, id string) error {
	const query = `UPDATE content SET purged_at = NOW() WHERE id = $1 AND purged_at IS NULL`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *ContentRepository) list(ctx context.Context, query string, args ...any) ([]models.Content, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}

func scanContent(row pgx.Row) (models.Content, error) {
	var content models.Content
	if err := row.Scan(
		&content.ID,
		&content.Name,
		&content.Title,
		&content.Bucket,
		&content.ObjectKey,
		&content.Format,
		&content.MIME,
		&content.SizeBytes,
		&content.Checksum,
		&content.UserID,
		&content.WorkspaceID,
		&content.IsAvailable,
		&content.PurgedAt,
		&content.CreatedAt,
		&content.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Content{}, ErrContentNotFound
		}
		return models.Content{}, err
	}
	return content, nil
}
