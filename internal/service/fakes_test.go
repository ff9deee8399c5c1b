package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"contenthub/internal/config"
	"contenthub/internal/ids"
	"contenthub/internal/models"
	"contenthub/internal/queue"
	"contenthub/internal/repository"
	"contenthub/internal/security"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrUserExists
		}
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

type fakeTokens struct {
	mu      sync.Mutex
	byToken map[string]models.RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byToken: map[string]models.RefreshToken{}}
}

func (f *fakeTokens) Save(_ context.Context, token models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byToken[token.Token]; ok {
		return errors.New("duplicate token")
	}
	f.byToken[token.Token] = token
	return nil
}

func (f *fakeTokens) FindByToken(_ context.Context, token string) (models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byToken[token]
	if !ok {
		return models.RefreshToken{}, repository.ErrRefreshTokenNotFound
	}
	return stored, nil
}

func (f *fakeTokens) FindActiveByToken(_ context.Context, token string) (models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byToken[token]
	if !ok || stored.Revoked {
		return models.RefreshToken{}, repository.ErrRefreshTokenNotFound
	}
	return stored, nil
}

func (f *fakeTokens) RevokeAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, stored := range f.byToken {
		if stored.UserID == userID {
			stored.Revoked = true
			f.byToken[key] = stored
		}
	}
	return nil
}

func (f *fakeTokens) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byToken[token]
	if !ok || stored.Revoked {
		return repository.ErrRefreshTokenNotFound
	}
	stored.Revoked = true
	f.byToken[token] = stored
	return nil
}

func (f *fakeTokens) activeFor(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, stored := range f.byToken {
		if stored.UserID == userID && !stored.Revoked {
			count++
		}
	}
	return count
}

type fakeWorkspaces struct {
	mu         sync.Mutex
	workspaces map[string]models.Workspace
	mappings   []models.WorkspaceUserMapping
}

func newFakeWorkspaces() *fakeWorkspaces {
	return &fakeWorkspaces{workspaces: map[string]models.Workspace{}}
}

func (f *fakeWorkspaces) CreateWithOwner(_ context.Context, workspace models.Workspace, owner models.WorkspaceUserMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workspaces[workspace.ID] = workspace
	f.mappings = append(f.mappings, owner)
	return nil
}

func (f *fakeWorkspaces) GetByID(_ context.Context, id string) (models.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	workspace, ok := f.workspaces[id]
	if !ok {
		return models.Workspace{}, repository.ErrWorkspaceNotFound
	}
	return workspace, nil
}

func (f *fakeWorkspaces) ListByOwner(_ context.Context, ownerID string) ([]models.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Workspace
	for _, w := range f.workspaces {
		if w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWorkspaces) ListMappings(_ context.Context, workspaceID string) ([]models.WorkspaceUserMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WorkspaceUserMapping
	for _, m := range f.mappings {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeWorkspaces) FindMapping(_ context.Context, workspaceID string, userID string) (models.WorkspaceUserMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.mappings {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return m, nil
		}
	}
	return models.WorkspaceUserMapping{}, repository.ErrMappingNotFound
}

func (f *fakeWorkspaces) AddMapping(_ context.Context, mapping models.WorkspaceUserMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.mappings {
		if m.WorkspaceID == mapping.WorkspaceID && m.UserID == mapping.UserID {
			return repository.ErrMappingExists
		}
	}
	f.mappings = append(f.mappings, mapping)
	return nil
}

type fakeContents struct {
	mu       sync.Mutex
	contents map[string]models.Content
}

func newFakeContents() *fakeContents {
	return &fakeContents{contents: map[string]models.Content{}}
}

func (f *fakeContents) Create(_ context.Context, content models.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	content.IsAvailable = true
	f.contents[content.ID] = content
	return nil
}

func (f *fakeContents) GetByID(_ context.Context, id string) (models.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.contents[id]
	if !ok || !content.IsAvailable {
		return models.Content{}, repository.ErrContentNotFound
	}
	return content, nil
}

func (f *fakeContents) ListByWorkspace(_ context.Context, workspaceID string) ([]models.Content, error) {
	return f.filter(func(c models.Content) bool {
		return c.WorkspaceID != nil && *c.WorkspaceID == workspaceID
	}), nil
}

func (f *fakeContents) ListByUser(_ context.Context, userID string) ([]models.Content, error) {
	return f.filter(func(c models.Content) bool { return c.UserID == userID }), nil
}

func (f *fakeContents) filter(keep func(models.Content) bool) []models.Content {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Content
	for _, c := range f.contents {
		if c.IsAvailable && keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeContents) UpdateMetadata(_ context.Context, id string, name string, title string) (models.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.contents[id]
	if !ok || !content.IsAvailable {
		return models.Content{}, repository.ErrContentNotFound
	}
	content.Name = name
	content.Title = title
	f.contents[id] = content
	return content, nil
}

func (f *fakeContents) MarkUnavailable(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.contents[id]
	if !ok || !content.IsAvailable {
		return repository.ErrContentNotFound
	}
	content.IsAvailable = false
	f.contents[id] = content
	return nil
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Bucket() string { return "test-bucket" }

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (int64, error) {
	if f.putErr != nil {
		return 0, f.putErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf.Bytes()
	return n, nil
}

func (f *fakeObjects) Remove(_ context.Context, _ string, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []queue.Task
	err   error
}

func (f *fakeQueue) Enqueue(_ context.Context, task queue.Task) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return nil
}

// testEnv wires every service over the in-memory fakes.
type testEnv struct {
	users      *fakeUsers
	tokens     *fakeTokens
	workspaces *fakeWorkspaces
	contents   *fakeContents
	objects    *fakeObjects
	queue      *fakeQueue
	issuer     *security.TokenIssuer

	sessions         *SessionService
	guard            *AccessGuard
	userService      *UserService
	workspaceService *WorkspaceService
	contentService   *ContentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	issuer, err := security.NewTokenIssuer(security.TokenConfig{
		Secret:     "service-test-secret",
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	log := zerolog.Nop()
	env := &testEnv{
		users:      newFakeUsers(),
		tokens:     newFakeTokens(),
		workspaces: newFakeWorkspaces(),
		contents:   newFakeContents(),
		objects:    newFakeObjects(),
		queue:      &fakeQueue{},
		issuer:     issuer,
	}

	env.guard = NewAccessGuard(issuer, env.users, env.workspaces, env.contents)
	env.sessions = NewSessionService(NewCredentialVerifier(env.users), issuer, env.tokens, env.users, log)
	env.userService = NewUserService(env.users, log)
	env.workspaceService = NewWorkspaceService(env.workspaces, env.users, log)
	env.contentService = NewContentService(env.contents, env.objects, env.queue, env.guard, config.ContentConfig{
		AllowedExtensions: []string{"mp4", "mov", "webm", "hevc"},
		MaxUploadBytes:    1 << 20,
	}, log)
	return env
}

// seedUser stores a user with a cheap bcrypt hash.
func (e *testEnv) seedUser(t *testing.T, username string, password string) models.User {
	t.Helper()

	hash, err := security.HashPasswordWithCost(password, bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		ID:           ids.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) seedContent(t *testing.T, uploader models.User, workspaceID string) models.Content {
	t.Helper()

	content := models.Content{
		ID:        ids.New(),
		Name:      "clip.mp4",
		Bucket:    e.objects.Bucket(),
		ObjectKey: "2024/01/01/clip.mp4",
		Format:    "mp4",
		UserID:    uploader.ID,
	}
	if workspaceID != "" {
		content.WorkspaceID = &workspaceID
	}
	require.NoError(t, e.contents.Create(context.Background(), content))
	return content
}
