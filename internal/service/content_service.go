package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"contenthub/internal/config"
	"contenthub/internal/ids"
	"contenthub/internal/media/sniffer"
	"contenthub/internal/models"
	"contenthub/internal/queue"
)

const defaultContentMIME = "application/octet-stream"

type UploadInput struct {
	User         models.User
	WorkspaceID  string
	Name         string
	Title        string
	Filename     string
	DeclaredType string
	Size         int64
	Body         io.Reader
}

type ContentService struct {
	contents ContentStore
	store    ObjectStore
	queue    TaskQueue
	guard    *AccessGuard
	cfg      config.ContentConfig
	allowed  map[string]struct{}
	log      zerolog.Logger
	now      func() time.Time
}

func NewContentService(
	contents ContentStore,
	store ObjectStore,
	queue TaskQueue,
	guard *AccessGuard,
	cfg config.ContentConfig,
	log zerolog.Logger,
) *ContentService {
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &ContentService{
		contents: contents,
		store:    store,
		queue:    queue,
		guard:    guard,
		cfg:      cfg,
		allowed:  allowed,
		log:      log,
		now:      time.Now,
	}
}

func (s *ContentService) Upload(ctx context.Context, input UploadInput) (models.Content, error) {
	if input.Body == nil {
		return models.Content{}, fmt.Errorf("%w: missing file", ErrValidation)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(input.Filename), "."))
	if _, ok := s.allowed[ext]; !ok {
		return models.Content{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if s.cfg.MaxUploadBytes > 0 && input.Size > s.cfg.MaxUploadBytes {
		return models.Content{}, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, s.cfg.MaxUploadBytes)
	}

	var workspaceID *string
	if input.WorkspaceID != "" {
		if err := s.guard.RequireWorkspaceAccess(ctx, input.User.ID, input.WorkspaceID); err != nil {
			return models.Content{}, err
		}
		id := input.WorkspaceID
		workspaceID = &id
	}

	result, head, err := sniffer.Detect(input.Body)
	if err != nil && !errors.Is(err, sniffer.ErrUnknownType) {
		return models.Content{}, fmt.Errorf("read head: %w", err)
	}
	if len(head) == 0 {
		return models.Content{}, fmt.Errorf("%w: empty file", ErrValidation)
	}
	mime := result.MIME
	if mime == "" {
		mime = input.DeclaredType
	}
	if mime == "" {
		mime = defaultContentMIME
	}

	contentID := ids.New()
	objectKey := s.buildObjectKey(contentID, ext)

	hasher := sha256.New()
	body := io.TeeReader(io.MultiReader(bytes.NewReader(head), input.Body), hasher)

	declaredSize := input.Size
	if declaredSize <= 0 {
		declaredSize = -1
	}
	size, err := s.store.Put(ctx, objectKey, body, declaredSize, mime)
	if err != nil {
		return models.Content{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = input.Filename
	}
	now := s.now().UTC()
	content := models.Content{
		ID:          contentID,
		Name:        name,
		Title:       strings.TrimSpace(input.Title),
		Bucket:      s.store.Bucket(),
		ObjectKey:   objectKey,
		Format:      ext,
		MIME:        mime,
		SizeBytes:   size,
		Checksum:    hasher.Sum(nil),
		UserID:      input.User.ID,
		WorkspaceID: workspaceID,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.contents.Create(ctx, content); err != nil {
		if rmErr := s.store.Remove(ctx, content.Bucket, objectKey); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("object", objectKey).Msg("remove orphaned object failed")
		}
		return models.Content{}, fmt.Errorf("save metadata: %w", err)
	}

	s.log.Info().Str("content_id", content.ID).Str("user_id", input.User.ID).Int64("size", size).Msg("content uploaded")
	return content, nil
}

func (s *ContentService) buildObjectKey(contentID string, ext string) string {
	datePrefix := s.now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", contentID, ext))
}

func (s *ContentService) Get(ctx context.Context, userID string, contentID string) (models.Content, error) {
	return s.guard.RequireContentAccess(ctx, userID, contentID)
}

// ListByWorkspace does not authorize; routes guard it with workspace access.
func (s *ContentService) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Content, error) {
	return s.contents.ListByWorkspace(ctx, workspaceID)
}

func (s *ContentService) ListMine(ctx context.Context, userID string) ([]models.Content, error) {
	return s.contents.ListByUser(ctx, userID)
}

// Update changes name and title. A blank field keeps its current value.
func (s *ContentService) Update(ctx context.Context, userID string, contentID string, name string, title string) (models.Content, error) {
	content, err := s.guard.RequireContentAccess(ctx, userID, contentID)
	if err != nil {
		return models.Content{}, err
	}

	name = strings.TrimSpace(name)
	title = strings.TrimSpace(title)
	if name == "" && title == "" {
		return models.Content{}, fmt.Errorf("%w: name or title required", ErrValidation)
	}
	if name == "" {
		name = content.Name
	}
	if title == "" {
		title = content.Title
	}

	return s.contents.UpdateMetadata(ctx, contentID, name, title)
}

// Delete hides the content immediately and queues removal of the stored
// object. A failed enqueue is left for the nightly sweep.
func (s *ContentService) Delete(ctx context.Context, userID string, contentID string) error {
	content, err := s.guard.RequireContentAccess(ctx, userID, contentID)
	if err != nil {
		return err
	}

	if err := s.contents.MarkUnavailable(ctx, contentID); err != nil {
		return err
	}

	task := queue.Task{
		Type:      queue.TaskPurge,
		ContentID: content.ID,
		Bucket:    content.Bucket,
		Object:    content.ObjectKey,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.log.Warn().Err(err).Str("content_id", content.ID).Msg("enqueue purge failed")
	}

	s.log.Info().Str("content_id", content.ID).Str("user_id", userID).Msg("content deleted")
	return nil
}
