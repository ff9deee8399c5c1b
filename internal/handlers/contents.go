package handlers

import (
	"encoding/hex"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contenthub/internal/media/sniffer"
	"contenthub/internal/middleware"
	"contenthub/internal/models"
	"contenthub/internal/service"
)

type contentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Path        string    `json:"path"`
	Format      string    `json:"format"`
	MIME        string    `json:"mime_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Checksum    string    `json:"checksum"`
	UserID      string    `json:"user_id"`
	WorkspaceID *string   `json:"workspace_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newContentResponse(content models.Content) contentResponse {
	return contentResponse{
		ID:          content.ID,
		Name:        content.Name,
		Title:       content.Title,
		Path:        content.ObjectKey,
		Format:      content.Format,
		MIME:        content.MIME,
		SizeBytes:   content.SizeBytes,
		Checksum:    hex.EncodeToString(content.Checksum),
		UserID:      content.UserID,
		WorkspaceID: content.WorkspaceID,
		CreatedAt:   content.CreatedAt,
		UpdatedAt:   content.UpdatedAt,
	}
}

func newContentResponses(contents []models.Content) []contentResponse {
	resp := make([]contentResponse, 0, len(contents))
	for _, content := range contents {
		resp = append(resp, newContentResponse(content))
	}
	return resp
}

func (h HandlerSet) UploadContent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthorized)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required", "message": err.Error()})
		return
	}
	defer file.Close()

	content, err := h.contents.Upload(c.Request.Context(), service.UploadInput{
		User:         user,
		WorkspaceID:  c.PostForm("workspace_id"),
		Name:         c.PostForm("name"),
		Title:        c.PostForm("title"),
		Filename:     header.Filename,
		DeclaredType: declaredContentType(header),
		Size:         header.Size,
		Body:         file,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newContentResponse(content))
}

func (h HandlerSet) ListMyContents(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthorized)
		return
	}

	contents, err := h.contents.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contents": newContentResponses(contents)})
}

func (h HandlerSet) GetContent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthorized)
		return
	}

	content, err := h.contents.Get(c.Request.Context(), user.ID, c.Param("contentId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newContentResponse(content))
}

type updateContentRequest struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

func (h HandlerSet) UpdateContent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthorized)
		return
	}

	var req updateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	content, err := h.contents.Update(c.Request.Context(), user.ID, c.Param("contentId"), req.Name, req.Title)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newContentResponse(content))
}

func (h HandlerSet) DeleteContent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthorized)
		return
	}

	if err := h.contents.Delete(c.Request.Context(), user.ID, c.Param("contentId")); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func declaredContentType(header *multipart.FileHeader) string {
	return sniffer.MimeTypeFromHTTP(http.Header(header.Header))
}
