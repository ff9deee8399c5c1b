package service

import "errors"

var (
	ErrInvalidCredentials            = errors.New("invalid credentials")
	ErrTokenNotFound                 = errors.New("refresh token not found")
	ErrTokenNotFoundOrAlreadyRevoked = errors.New("refresh token not found or already revoked")
	ErrUnauthorized                  = errors.New("unauthorized")
	ErrForbidden                     = errors.New("forbidden")
	ErrUsernameTaken                 = errors.New("username or email already registered")
	ErrInvalidRole                   = errors.New("invalid workspace role")
	ErrMemberExists                  = errors.New("user is already a workspace member")
	ErrUnsupportedFormat             = errors.New("unsupported content format")
	ErrValidation                    = errors.New("validation failed")
)
