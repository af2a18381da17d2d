package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"taskman/internal/cache"
	"taskman/internal/middleware"
	"taskman/internal/models"
	"taskman/internal/queue"
	"taskman/internal/validation"
	"taskman/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
)

// TaskRepository is the persistence surface the task handlers need.
type TaskRepository interface {
	ListByOwner(ctx context.Context, userID string) ([]models.Task, error)
	Create(ctx context.Context, userID, text, description string) (*models.Task, error)
	Update(ctx context.Context, id, userID, text, description string) (*models.Task, error)
	ToggleComplete(ctx context.Context, id, userID string) (*models.Task, error)
	Delete(ctx context.Context, id, userID string) (*models.Task, error)
}

// TaskController serves the owner-scoped task CRUD endpoints.
type TaskController struct {
	repo      TaskRepository
	listGroup singleflight.Group
}

func NewTaskController(repo TaskRepository) *TaskController {
	return &TaskController{repo: repo}
}

func currentUser(c *gin.Context) (string, bool) {
	v, _ := c.Get(middleware.UserKey)
	uid, _ := v.(string)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return uid, true
}

// List returns the caller's tasks, newest-created first. Cache-first as raw
// bytes; DB reads per user are deduplicated through singleflight.
func (tc *TaskController) List(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if b, ok := cache.GetRawTasks(ctx, uid); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}
	v, err, _ := tc.listGroup.Do(uid, func() (interface{}, error) {
		tasks, err := tc.repo.ListByOwner(context.Background(), uid)
		if err != nil {
			return nil, err
		}
		return json.Marshal(tasks)
	})
	if err != nil {
		if ctx.Err() != nil || isContextErr(err) {
			return
		}
		logger.Error(ctx, "List tasks failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get tasks"})
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	cache.SetRawTasksAsync(uid, b)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Create validates the body, persists a new task owned by the caller and
// returns the canonical created task.
func (tc *TaskController) Create(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var body models.CreateTaskInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	text, err := validation.TaskText(body.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := tc.repo.Create(ctx, uid, text, body.Description)
	if err != nil {
		logger.Error(ctx, "Create task failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}
	tc.afterMutation(ctx, "create", task)
	c.JSON(http.StatusCreated, task)
}

// Update validates the body and replaces text/description of the caller's
// task. Absent and not-owned are both 404.
func (tc *TaskController) Update(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing task id"})
		return
	}
	var body models.UpdateTaskInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	text, err := validation.TaskText(body.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := tc.repo.Update(ctx, id, uid, text, body.Description)
	if err != nil {
		tc.mutationError(c, "Update", err)
		return
	}
	tc.afterMutation(ctx, "update", task)
	c.JSON(http.StatusOK, task)
}

// ToggleComplete flips the completed flag of the caller's task.
func (tc *TaskController) ToggleComplete(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	task, err := tc.repo.ToggleComplete(ctx, id, uid)
	if err != nil {
		tc.mutationError(c, "ToggleComplete", err)
		return
	}
	tc.afterMutation(ctx, "toggle", task)
	c.JSON(http.StatusOK, task)
}

// Delete hard-deletes the caller's task and returns its last-known
// representation.
func (tc *TaskController) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	task, err := tc.repo.Delete(ctx, id, uid)
	if err != nil {
		tc.mutationError(c, "Delete", err)
		return
	}
	tc.afterMutation(ctx, "delete", task)
	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) mutationError(c *gin.Context, op string, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	logger.Error(c.Request.Context(), op+" task failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}

// afterMutation invalidates the owner's cached list and publishes the
// mutation event. Both are best-effort; the response already carries the
// canonical task.
func (tc *TaskController) afterMutation(ctx context.Context, action string, task *models.Task) {
	cache.InvalidateTasks(ctx, task.UserID)
	e := &models.TaskEvent{
		Action:     action,
		TaskID:     task.ID,
		UserID:     task.UserID,
		OccurredAt: time.Now().UTC(),
	}
	if err := queue.PublishTaskEvent(ctx, e); err != nil {
		logger.Debug(ctx, "Publish task event failed", "error", err, "action", action)
	}
}
