package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contenthub/internal/repository"
	"contenthub/internal/security"
	"contenthub/internal/service"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is ordered; the first match wins. ErrInvalidCredentials is
// handled separately because its status is configurable.
var errorMappings = []errorMapping{
	{security.ErrWrongTokenType, http.StatusBadRequest, "invalid_token_type"},
	{security.ErrInvalidToken, http.StatusForbidden, "invalid_token"},
	{service.ErrTokenNotFoundOrAlreadyRevoked, http.StatusBadRequest, "token_not_found_or_revoked"},
	{service.ErrTokenNotFound, http.StatusBadRequest, "token_not_found"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{repository.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{repository.ErrWorkspaceNotFound, http.StatusNotFound, "workspace_not_found"},
	{repository.ErrContentNotFound, http.StatusNotFound, "content_not_found"},
	{service.ErrUsernameTaken, http.StatusBadRequest, "username_taken"},
	{service.ErrMemberExists, http.StatusConflict, "member_exists"},
	{service.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{service.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_format"},
	{service.ErrValidation, http.StatusBadRequest, "validation_error"},
}

const invalidCredentialsMessage = "incorrect username or password"

func (h HandlerSet) credentialFailureStatus() int {
	if h.cfg == nil {
		return http.StatusUnauthorized
	}
	status := h.cfg.Security.CredentialFailureStatus
	if status < 400 || status > 599 {
		return http.StatusUnauthorized
	}
	return status
}

func (h HandlerSet) classify(err error) (int, string, string) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		return h.credentialFailureStatus(), "invalid_credentials", invalidCredentialsMessage
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal_server_error", "internal server error"
}

func (h HandlerSet) writeError(c *gin.Context, err error) {
	status, code, message := h.classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(status, gin.H{"error": code, "message": message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
}
