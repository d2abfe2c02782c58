package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/service/tasks"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// memoryUserStore and memoryTaskStore let the full router run without a
// database, so these tests exercise the real middleware chain, handlers,
// JWT service, and bcrypt hasher end to end.

type memoryUserStore struct {
	users map[string]*domain.User
}

func (s *memoryUserStore) Create(_ context.Context, user *domain.User) error {
	if _, exists := s.users[user.Email]; exists {
		return store.ErrEmailExists
	}
	copied := *user
	s.users[user.Email] = &copied
	return nil
}

func (s *memoryUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

type memoryTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
}

func (s *memoryTaskStore) Create(_ context.Context, task *domain.Task) error {
	if task.CalendarID != "" {
		for _, existing := range s.tasks {
			if existing.UserID == task.UserID && existing.CalendarID == task.CalendarID {
				return store.ErrCalendarIDExists
			}
		}
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *memoryTaskStore) GetByID(_ context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *memoryTaskStore) GetByCalendarID(
	_ context.Context,
	ownerID uuid.UUID,
	calendarID string,
) (*domain.Task, error) {
	if calendarID == "" {
		return nil, store.ErrTaskNotFound
	}
	for _, task := range s.tasks {
		if task.UserID == ownerID && task.CalendarID == calendarID {
			copied := *task
			return &copied, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

func (s *memoryTaskStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0)
	for _, task := range s.tasks {
		if task.UserID == ownerID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memoryTaskStore) ListHistory(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	return s.ListByOwner(ctx, ownerID)
}

func (s *memoryTaskStore) Update(
	_ context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
	now time.Time,
) (*domain.Task, error) {
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	if err := task.ApplyPatch(patch, now); err != nil {
		return nil, err
	}
	copied := *task
	return &copied, nil
}

func (s *memoryTaskStore) Delete(_ context.Context, ownerID, taskID uuid.UUID) error {
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

// newTestApplication builds an application with in-memory stores and real
// auth components.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
		Auth: config.AuthConfig{
			JWTSecret:            "integration-test-secret-with-32-chars!!",
			TokenLifetimeMinutes: 60,
			BcryptCost:           bcrypt.MinCost,
		},
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	userStore := &memoryUserStore{users: make(map[string]*domain.User)}
	taskStore := &memoryTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
	logger := slog.Default()

	return &application{
		config:           cfg,
		logger:           logger,
		userStore:        userStore,
		taskStore:        taskStore,
		jwtService:       jwtService,
		passwordHasher:   auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		identityResolver: auth.NewIdentityResolver(jwtService, userStore, logger),
		taskService:      tasks.NewTaskService(taskStore, logger),
	}
}

func doRequest(
	t *testing.T,
	router http.Handler,
	method, path, token string,
	body interface{},
) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func registerAndLogin(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	recorder := doRequest(t, router, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = doRequest(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	recorder := doRequest(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodGet, "/api/tasks/history"},
		{http.MethodGet, "/api/tasks/" + uuid.NewString()},
		{http.MethodGet, "/api/tasks/calendar/cal-1"},
		{http.MethodPatch, "/api/tasks/" + uuid.NewString()},
		{http.MethodDelete, "/api/tasks/" + uuid.NewString()},
		{http.MethodPost, "/api/summarize"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			recorder := doRequest(t, router, route.method, route.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Contains(t, recorder.Body.String(), "Unauthorized")
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()
	token := registerAndLogin(t, router, "lifecycle@example.com", "password123")

	// Create
	recorder := doRequest(t, router, http.MethodPost, "/api/tasks", token,
		map[string]interface{}{"title": "ship release", "calendar_id": "cal-42"})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var created struct {
		ID        uuid.UUID `json:"id"`
		Title     string    `json:"title"`
		Completed bool      `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.Equal(t, "ship release", created.Title)
	assert.False(t, created.Completed)

	// Read back by ID and by calendar ID
	recorder = doRequest(t, router, http.MethodGet, "/api/tasks/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/api/tasks/calendar/cal-42", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// Complete it
	recorder = doRequest(t, router, http.MethodPatch, "/api/tasks/"+created.ID.String(), token,
		map[string]interface{}{"completed": true})
	require.Equal(t, http.StatusOK, recorder.Code)

	var updated struct {
		Completed   bool       `json:"completed"`
		CompletedAt *time.Time `json:"completed_at"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.NotNil(t, updated.CompletedAt)

	// Delete, then confirm it is gone
	recorder = doRequest(t, router, http.MethodDelete, "/api/tasks/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/api/tasks/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCrossUserIsolation(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()
	aliceToken := registerAndLogin(t, router, "alice@example.com", "password123")
	malloryToken := registerAndLogin(t, router, "mallory@example.com", "password456")

	recorder := doRequest(t, router, http.MethodPost, "/api/tasks", aliceToken,
		map[string]interface{}{"title": "alice's secret plan"})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	// Mallory lists tasks and sees nothing of Alice's.
	recorder = doRequest(t, router, http.MethodGet, "/api/tasks", malloryToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "[]\n", recorder.Body.String())

	// Direct access to Alice's task behaves as if it does not exist.
	recorder = doRequest(t, router, http.MethodGet, "/api/tasks/"+created.ID.String(), malloryToken, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doRequest(t, router, http.MethodDelete, "/api/tasks/"+created.ID.String(), malloryToken, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	// Alice's task is untouched.
	recorder = doRequest(t, router, http.MethodGet, "/api/tasks/"+created.ID.String(), aliceToken, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "mallory")
}

func TestLoginFailureMessagesMatch(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()
	registerAndLogin(t, router, "victim@example.com", "password123")

	unknownEmail := doRequest(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "ghost@example.com", "password": "password123"})
	wrongPassword := doRequest(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "victim@example.com", "password": "nope-nope"})

	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)

	// Bodies differ only in trace ID; the client-visible message must not.
	var first, second struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(unknownEmail.Body.Bytes(), &first))
	require.NoError(t, json.Unmarshal(wrongPassword.Body.Bytes(), &second))
	assert.Equal(t, "Invalid credentials", first.Error)
	assert.Equal(t, first.Error, second.Error)
}

func TestDeletedAccountTokenRejected(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	router := app.setupRouter()
	token := registerAndLogin(t, router, "gone@example.com", "password123")

	// Delete the account behind the resolver's back.
	userStore := app.userStore.(*memoryUserStore)
	delete(userStore.users, "gone@example.com")

	recorder := doRequest(t, router, http.MethodGet, "/api/tasks", token, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestSummarizeRequiresAuthButWorksWithToken(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()
	token := registerAndLogin(t, router, "writer@example.com", "password123")

	recorder := doRequest(t, router, http.MethodPost, "/api/summarize", token,
		map[string]interface{}{"text": "Intro. Detail. More detail."})
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "Intro. Detail.", resp.Summary)
}
