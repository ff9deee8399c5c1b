package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("username or email already registered")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrWorkspaceNotFound    = errors.New("workspace not found")
	ErrMappingNotFound      = errors.New("workspace mapping not found")
	ErrMappingExists        = errors.New("workspace mapping already exists")
	ErrContentNotFound      = errors.New("content not found")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
