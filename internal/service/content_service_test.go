package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contenthub/internal/queue"
	"contenthub/internal/repository"
)

func mp4Payload() []byte {
	head := []byte{0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}
	return append(head, bytes.Repeat([]byte{0x42}, 2048)...)
}

func TestContentService_Upload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", "wonderland")
	env.contentService.now = func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }

	payload := mp4Payload()
	content, err := env.contentService.Upload(ctx, UploadInput{
		User:     alice,
		Title:    "Holiday",
		Filename: "Holiday.MP4",
		Size:     int64(len(payload)),
		Body:     bytes.NewReader(payload),
	})
	require.NoError(t, err)

	sum := sha256.Sum256(payload)
	assert.Equal(t, sum[:], content.Checksum)
	assert.Equal(t, "video/mp4", content.MIME)
	assert.Equal(t, "mp4", content.Format)
	assert.Equal(t, "Holiday.MP4", content.Name)
	assert.Equal(t, "Holiday", content.Title)
	assert.Equal(t, int64(len(payload)), content.SizeBytes)
	assert.Equal(t, "test-bucket", content.Bucket)
	assert.True(t, strings.HasPrefix(content.ObjectKey, "2024/03/09/"))
	assert.True(t, strings.HasSuffix(content.ObjectKey, ".mp4"))
	assert.Nil(t, content.WorkspaceID)
	assert.Equal(t, payload, env.objects.objects[content.ObjectKey])

	got, err := env.contentService.Get(ctx, alice.ID, content.ID)
	require.NoError(t, err)
	assert.Equal(t, content.ID, got.ID)

	mine, err := env.contentService.ListMine(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestContentService_UploadUnsniffableFormat(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "wonderland")

	content, err := env.contentService.Upload(context.Background(), UploadInput{
		User:         alice,
		Filename:     "raw.hevc",
		DeclaredType: "video/hevc",
		Body:         strings.NewReader("raw elementary stream"),
	})
	require.NoError(t, err)
	assert.Equal(t, "video/hevc", content.MIME)
	assert.Equal(t, int64(len("raw elementary stream")), content.SizeBytes)
}

func TestContentService_UploadRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", "wonderland")

	_, err := env.contentService.Upload(ctx, UploadInput{User: alice, Filename: "notes.txt", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = env.contentService.Upload(ctx, UploadInput{User: alice, Filename: "clip.mp4", Body: strings.NewReader("")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.contentService.Upload(ctx, UploadInput{User: alice, Filename: "clip.mp4", Size: 2 << 20, Body: bytes.NewReader(mp4Payload())})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.contentService.Upload(ctx, UploadInput{User: alice, Filename: "clip.mp4"})
	assert.ErrorIs(t, err, ErrValidation)

	env.objects.putErr = errors.New("storage down")
	_, err = env.contentService.Upload(ctx, UploadInput{User: alice, Filename: "clip.mp4", Body: bytes.NewReader(mp4Payload())})
	assert.Error(t, err)
	assert.Empty(t, env.contents.contents)
}

func TestContentService_UploadIntoWorkspace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.seedUser(t, "bob", "pw-b")
	dave := env.seedUser(t, "dave", "pw-d")

	workspace, _, err := env.workspaceService.Create(ctx, bob, CreateWorkspaceInput{Name: "W"})
	require.NoError(t, err)

	_, err = env.contentService.Upload(ctx, UploadInput{
		User:        dave,
		WorkspaceID: workspace.ID,
		Filename:    "clip.mp4",
		Body:        bytes.NewReader(mp4Payload()),
	})
	assert.ErrorIs(t, err, ErrForbidden)

	content, err := env.contentService.Upload(ctx, UploadInput{
		User:        bob,
		WorkspaceID: workspace.ID,
		Filename:    "clip.mp4",
		Body:        bytes.NewReader(mp4Payload()),
	})
	require.NoError(t, err)
	require.NotNil(t, content.WorkspaceID)
	assert.Equal(t, workspace.ID, *content.WorkspaceID)

	listed, err := env.contentService.ListByWorkspace(ctx, workspace.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestContentService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", "wonderland")
	dave := env.seedUser(t, "dave", "pw-d")
	content := env.seedContent(t, alice, "")

	updated, err := env.contentService.Update(ctx, alice.ID, content.ID, "", "New title")
	require.NoError(t, err)
	assert.Equal(t, content.Name, updated.Name)
	assert.Equal(t, "New title", updated.Title)

	_, err = env.contentService.Update(ctx, alice.ID, content.ID, " ", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.contentService.Update(ctx, dave.ID, content.ID, "mine now", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestContentService_DeleteQueuesPurge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", "wonderland")
	content := env.seedContent(t, alice, "")

	require.NoError(t, env.contentService.Delete(ctx, alice.ID, content.ID))

	require.Len(t, env.queue.tasks, 1)
	assert.Equal(t, queue.Task{
		Type:      queue.TaskPurge,
		ContentID: content.ID,
		Bucket:    content.Bucket,
		Object:    content.ObjectKey,
	}, env.queue.tasks[0])

	_, err := env.contentService.Get(ctx, alice.ID, content.ID)
	assert.ErrorIs(t, err, repository.ErrContentNotFound)

	err = env.contentService.Delete(ctx, alice.ID, content.ID)
	assert.ErrorIs(t, err, repository.ErrContentNotFound)
}

func TestContentService_DeleteSurvivesQueueFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice", "wonderland")
	content := env.seedContent(t, alice, "")
	env.queue.err = errors.New("redis down")

	require.NoError(t, env.contentService.Delete(ctx, alice.ID, content.ID))
	assert.False(t, env.contents.contents[content.ID].IsAvailable)
}
