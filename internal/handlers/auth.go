package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contenthub/internal/middleware"
	"contenthub/internal/models"
	"contenthub/internal/service"
)

const dateLayout = "2006-01-02"

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newUserResponse(user models.User) userResponse {
	resp := userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
	if !user.DateOfBirth.IsZero() {
		resp.DateOfBirth = user.DateOfBirth.Format(dateLayout)
	}
	return resp
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var dob time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			badRequest(c, err)
			return
		}
		dob = parsed
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// loginRequest binds from JSON or from an OAuth2 password form.
type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	pair, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	h.metrics.ObserveSession("login", err)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

// refreshTokenFrom reads refresh_token from the query string or the body.
func refreshTokenFrom(c *gin.Context) string {
	if token := c.Query("refresh_token"); token != "" {
		return token
	}
	var req refreshTokenRequest
	if err := c.ShouldBind(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func (h HandlerSet) Refresh(c *gin.Context) {
	token := refreshTokenFrom(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "refresh_token required"})
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), token)
	h.metrics.ObserveSession("refresh", err)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h HandlerSet) Logout(c *gin.Context) {
	token := refreshTokenFrom(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "refresh_token required"})
		return
	}

	err := h.sessions.Logout(c.Request.Context(), token)
	h.metrics.ObserveSession("logout", err)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h HandlerSet) GetUser(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}
