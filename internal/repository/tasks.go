package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"taskman/internal/models"
	"taskman/pkg/logger"
)

const taskColumns = `id, text, description, completed, user_id, created_at, updated_at`

// TaskRepository provides owner-scoped task persistence. Every mutation is
// a single-row atomic statement keyed by (id, user_id), so a caller can
// never touch another user's task and absence is indistinguishable from
// not-owned (both scan zero rows).
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row interface{ Scan(...interface{}) error }) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Text, &t.Description, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByOwner returns all tasks owned by userID, newest-created first.
func (r *TaskRepository) ListByOwner(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.Error(ctx, "Repository ListByOwner failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error(ctx, "Repository scan task failed", "error", err)
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Create inserts a new task owned by userID and returns the canonical row.
func (r *TaskRepository) Create(ctx context.Context, userID, text, description string) (*models.Task, error) {
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (id, text, description, completed, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, FALSE, $4, $5, $5) RETURNING `+taskColumns,
		uuid.New().String(), text, description, userID, now)
	t, err := scanTask(row)
	if err != nil {
		logger.Error(ctx, "Repository Create failed", "error", err)
		return nil, err
	}
	return t, nil
}

// Update replaces text and description of the task owned by userID.
// Returns models.ErrNotFound when the task is absent or not owned.
func (r *TaskRepository) Update(ctx context.Context, id, userID, text, description string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE tasks SET text = $1, description = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5 RETURNING `+taskColumns,
		text, description, time.Now().UTC(), id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository Update failed", "error", err, "id", id)
		return nil, err
	}
	return t, nil
}

// ToggleComplete flips the completed flag of the task owned by userID.
func (r *TaskRepository) ToggleComplete(ctx context.Context, id, userID string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE tasks SET completed = NOT completed, updated_at = $1
		 WHERE id = $2 AND user_id = $3 RETURNING `+taskColumns,
		time.Now().UTC(), id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository ToggleComplete failed", "error", err, "id", id)
		return nil, err
	}
	return t, nil
}

// Delete hard-deletes the task owned by userID and returns its last-known
// representation.
func (r *TaskRepository) Delete(ctx context.Context, id, userID string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2 RETURNING `+taskColumns,
		id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository Delete failed", "error", err, "id", id)
		return nil, err
	}
	return t, nil
}
