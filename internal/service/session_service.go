package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"contenthub/internal/ids"
	"contenthub/internal/models"
	"contenthub/internal/repository"
)

const TokenTypeBearer = "Bearer"

type TokenPair struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionService drives the per-user session lifecycle. Login revokes every
// earlier refresh token before issuing a new one, so a settled user has at
// most one live refresh token. Refresh never rotates the refresh token.
//
// Concurrent logins or logouts for the same user race at the store; the
// last writer wins.
type SessionService struct {
	credentials *CredentialVerifier
	issuer      TokenIssuer
	tokens      TokenStore
	users       UserStore
	log         zerolog.Logger
}

func NewSessionService(
	credentials *CredentialVerifier,
	issuer TokenIssuer,
	tokens TokenStore,
	users UserStore,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		credentials: credentials,
		issuer:      issuer,
		tokens:      tokens,
		users:       users,
		log:         log,
	}
}

func (s *SessionService) Login(ctx context.Context, username string, password string) (TokenPair, error) {
	user, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.log.Info().Str("username", username).Msg("login rejected")
		}
		return TokenPair{}, err
	}

	if err := s.tokens.RevokeAll(ctx, user.ID); err != nil {
		return TokenPair{}, fmt.Errorf("revoke refresh tokens: %w", err)
	}

	accessToken, err := s.issuer.IssueAccess(user.ID, user.Username)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, expiresAt, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.tokens.Save(ctx, models.RefreshToken{
		ID:        ids.New(),
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
	}); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")

	return TokenPair{
		TokenType:    TokenTypeBearer,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh checks the signed claims first (security.ErrInvalidToken,
// security.ErrWrongTokenType) and the revocation flag second
// (ErrTokenNotFound). The presented refresh token is returned unchanged.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	if _, err := s.tokens.FindActiveByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return TokenPair{}, ErrTokenNotFound
		}
		return TokenPair{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}

	accessToken, err := s.issuer.IssueAccess(user.ID, user.Username)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		TokenType:    TokenTypeBearer,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes one refresh token by exact match, ignoring its expiry.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	stored, err := s.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return ErrTokenNotFoundOrAlreadyRevoked
		}
		return err
	}
	if stored.Revoked {
		return ErrTokenNotFoundOrAlreadyRevoked
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return ErrTokenNotFoundOrAlreadyRevoked
		}
		return err
	}

	s.log.Info().Str("user_id", stored.UserID).Msg("refresh token revoked")
	return nil
}
