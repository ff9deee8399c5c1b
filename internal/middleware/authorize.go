package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contenthub/internal/service"
)

type WorkspaceAuthorizer interface {
	RequireWorkspaceAccess(ctx context.Context, userID string, workspaceID string) error
}

// RequireWorkspaceAccess admits the workspace owner and any mapped member
// for the workspace named by param. It must run after Auth.
func RequireWorkspaceAccess(authz WorkspaceAuthorizer, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortUnauthorized(c, "unauthorized")
			return
		}

		err := authz.RequireWorkspaceAccess(c.Request.Context(), user.ID, c.Param(param))
		if err != nil {
			if errors.Is(err, service.ErrForbidden) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		c.Next()
	}
}
