package service

import (
	"context"
	"errors"

	"contenthub/internal/models"
	"contenthub/internal/repository"
	"contenthub/internal/security"
)

// CredentialVerifier checks a username/password pair. An unknown user and a
// wrong password produce the same ErrInvalidCredentials.
type CredentialVerifier struct {
	users UserStore
}

func NewCredentialVerifier(users UserStore) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

func (v *CredentialVerifier) Verify(ctx context.Context, username string, password string) (models.User, error) {
	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
