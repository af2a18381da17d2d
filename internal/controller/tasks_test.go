package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"taskman/internal/middleware"
	"taskman/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type taskRepoMock struct {
	mock.Mock
}

func (m *taskRepoMock) ListByOwner(ctx context.Context, userID string) ([]models.Task, error) {
	args := m.Called(ctx, userID)
	var tasks []models.Task
	if v := args.Get(0); v != nil {
		tasks = v.([]models.Task)
	}
	return tasks, args.Error(1)
}

func (m *taskRepoMock) Create(ctx context.Context, userID, text, description string) (*models.Task, error) {
	args := m.Called(ctx, userID, text, description)
	var t *models.Task
	if v := args.Get(0); v != nil {
		t = v.(*models.Task)
	}
	return t, args.Error(1)
}

func (m *taskRepoMock) Update(ctx context.Context, id, userID, text, description string) (*models.Task, error) {
	args := m.Called(ctx, id, userID, text, description)
	var t *models.Task
	if v := args.Get(0); v != nil {
		t = v.(*models.Task)
	}
	return t, args.Error(1)
}

func (m *taskRepoMock) ToggleComplete(ctx context.Context, id, userID string) (*models.Task, error) {
	args := m.Called(ctx, id, userID)
	var t *models.Task
	if v := args.Get(0); v != nil {
		t = v.(*models.Task)
	}
	return t, args.Error(1)
}

func (m *taskRepoMock) Delete(ctx context.Context, id, userID string) (*models.Task, error) {
	args := m.Called(ctx, id, userID)
	var t *models.Task
	if v := args.Get(0); v != nil {
		t = v.(*models.Task)
	}
	return t, args.Error(1)
}

// taskRouter wires the task routes with the caller identity pre-set, the
// way AuthMiddleware would after verifying a token.
func taskRouter(repo TaskRepository, userID string) *gin.Engine {
	tc := NewTaskController(repo)
	r := gin.New()
	identity := func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.UserKey, userID)
		}
	}
	r.GET("/tasks", identity, tc.List)
	r.POST("/tasks", identity, tc.Create)
	r.PUT("/tasks/:id", identity, tc.Update)
	r.PATCH("/tasks/:id/complete", identity, tc.ToggleComplete)
	r.DELETE("/tasks/:id", identity, tc.Delete)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTaskList_ReturnsOwnerTasksNewestFirst(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := new(taskRepoMock)
	repo.On("ListByOwner", mock.Anything, "list-user-1").Return([]models.Task{
		{ID: "t2", Text: "newer", UserID: "list-user-1", CreatedAt: now},
		{ID: "t1", Text: "older", UserID: "list-user-1", CreatedAt: now.Add(-time.Hour)},
	}, nil).Once()

	rec := doJSON(t, taskRouter(repo, "list-user-1"), http.MethodGet, "/tasks", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "t2", got[0].ID)
	repo.AssertExpectations(t)
}

func TestTaskList_EmptyListIsNotAnError(t *testing.T) {
	repo := new(taskRepoMock)
	repo.On("ListByOwner", mock.Anything, "list-user-2").Return([]models.Task{}, nil).Once()

	rec := doJSON(t, taskRouter(repo, "list-user-2"), http.MethodGet, "/tasks", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestTaskCreate_ReturnsCanonicalTask(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	canonical := &models.Task{
		ID: "t1", Text: "Buy milk", UserID: "create-user-1",
		CreatedAt: now, UpdatedAt: now,
	}
	repo := new(taskRepoMock)
	repo.On("Create", mock.Anything, "create-user-1", "Buy milk", "").Return(canonical, nil).Once()

	rec := doJSON(t, taskRouter(repo, "create-user-1"), http.MethodPost, "/tasks", `{"text":"Buy milk"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "t1", got.ID)
	require.False(t, got.Completed)
	repo.AssertExpectations(t)
}

func TestTaskCreate_TrimsTextBeforePersisting(t *testing.T) {
	repo := new(taskRepoMock)
	repo.On("Create", mock.Anything, "create-user-2", "Buy milk", "from the corner shop").
		Return(&models.Task{ID: "t1", Text: "Buy milk", UserID: "create-user-2"}, nil).Once()

	rec := doJSON(t, taskRouter(repo, "create-user-2"), http.MethodPost, "/tasks",
		`{"text":"  Buy milk  ","description":"from the corner shop"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func TestTaskCreate_RejectsInvalidText(t *testing.T) {
	repo := new(taskRepoMock)
	router := taskRouter(repo, "create-user-3")

	tests := []struct {
		name string
		body string
	}{
		{"too short", `{"text":"ab"}`},
		{"whitespace only", `{"text":"    "}`},
		{"missing text", `{"description":"no text"}`},
		{"too long", `{"text":"` + strings.Repeat("x", 501) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/tasks", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskUpdate_NotOwnedIsNotFound(t *testing.T) {
	repo := new(taskRepoMock)
	repo.On("Update", mock.Anything, "someone-elses", "update-user-1", "new text", "").
		Return(nil, models.ErrNotFound).Once()

	rec := doJSON(t, taskRouter(repo, "update-user-1"), http.MethodPut, "/tasks/someone-elses", `{"text":"new text"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"Task not found"}`, rec.Body.String())
}

func TestTaskToggle_FlipsCompleted(t *testing.T) {
	repo := new(taskRepoMock)
	repo.On("ToggleComplete", mock.Anything, "t1", "toggle-user-1").
		Return(&models.Task{ID: "t1", Text: "task", Completed: true, UserID: "toggle-user-1"}, nil).Once()

	rec := doJSON(t, taskRouter(repo, "toggle-user-1"), http.MethodPatch, "/tasks/t1/complete", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Completed)
}

func TestTaskDelete_ReturnsLastKnownRepresentation(t *testing.T) {
	repo := new(taskRepoMock)
	repo.On("Delete", mock.Anything, "t1", "delete-user-1").
		Return(&models.Task{ID: "t1", Text: "bye", UserID: "delete-user-1"}, nil).Once()

	rec := doJSON(t, taskRouter(repo, "delete-user-1"), http.MethodDelete, "/tasks/t1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "bye", got.Text)
}

func TestTaskDelete_MissingIsNotFound(t *testing.T) {
	repo := new(taskRepoMock)
	repo.On("Delete", mock.Anything, "gone", "delete-user-2").
		Return(nil, models.ErrNotFound).Once()

	rec := doJSON(t, taskRouter(repo, "delete-user-2"), http.MethodDelete, "/tasks/gone", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskEndpoints_RequireIdentity(t *testing.T) {
	repo := new(taskRepoMock)
	router := taskRouter(repo, "")

	rec := doJSON(t, router, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/tasks", `{"text":"Buy milk"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskList_RepositoryFailureIsGeneric500(t *testing.T) {
	repo := new(taskRepoMock)
	repo.On("ListByOwner", mock.Anything, "list-user-3").
		Return(nil, errors.New("pq: connection refused")).Once()

	rec := doJSON(t, taskRouter(repo, "list-user-3"), http.MethodGet, "/tasks", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Failed to get tasks"}`, rec.Body.String())
}
