package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contenthub/internal/middleware"
	"contenthub/internal/models"
	"contenthub/internal/service"
)

type workspaceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func newWorkspaceResponse(workspace models.Workspace) workspaceResponse {
	return workspaceResponse{
		ID:          workspace.ID,
		Name:        workspace.Name,
		Description: workspace.Description,
		OwnerID:     workspace.OwnerID,
		CreatedAt:   workspace.CreatedAt,
	}
}

type mappingResponse struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

func newMappingResponse(mapping models.WorkspaceUserMapping) mappingResponse {
	return mappingResponse{
		ID:          mapping.ID,
		WorkspaceID: mapping.WorkspaceID,
		UserID:      mapping.UserID,
		Role:        string(mapping.Role),
	}
}

type createWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	APIKey      string `json:"api_key"`
	APISecret   string `json:"api_secret"`
}

func (h HandlerSet) CreateWorkspace(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthorized)
		return
	}

	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	workspace, creds, err := h.workspaces.Create(c.Request.Context(), user, service.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
		APIKey:      req.APIKey,
		APISecret:   req.APISecret,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"workspace":   newWorkspaceResponse(workspace),
		"credentials": creds,
	})
}

func (h HandlerSet) GetWorkspace(c *gin.Context) {
	workspace, err := h.workspaces.Get(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newWorkspaceResponse(workspace))
}

func (h HandlerSet) ListWorkspacesByOwner(c *gin.Context) {
	workspaces, err := h.workspaces.ListByOwner(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]workspaceResponse, 0, len(workspaces))
	for _, workspace := range workspaces {
		resp = append(resp, newWorkspaceResponse(workspace))
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": resp})
}

func (h HandlerSet) ListWorkspaceUsers(c *gin.Context) {
	mappings, err := h.workspaces.ListMembers(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]mappingResponse, 0, len(mappings))
	for _, mapping := range mappings {
		resp = append(resp, newMappingResponse(mapping))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

type addWorkspaceUserRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

func (h HandlerSet) AddWorkspaceUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthorized)
		return
	}

	var req addWorkspaceUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	mapping, err := h.workspaces.AddMember(
		c.Request.Context(),
		user.ID,
		c.Param("workspaceId"),
		req.UserID,
		models.WorkspaceRole(req.Role),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newMappingResponse(mapping))
}

func (h HandlerSet) ListWorkspaceContents(c *gin.Context) {
	contents, err := h.contents.ListByWorkspace(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contents": newContentResponses(contents)})
}
