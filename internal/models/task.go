package models

import "time"

// Task is a user-owned to-do item.
type Task struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTaskInput is the body of POST /tasks.
type CreateTaskInput struct {
	Text        string `json:"text" binding:"required"`
	Description string `json:"description"`
}

// UpdateTaskInput is the body of PUT /tasks/:id.
type UpdateTaskInput struct {
	Text        string `json:"text" binding:"required"`
	Description string `json:"description"`
}

// TaskEvent is the message payload published after a successful task
// mutation (create/update/toggle/delete) and persisted for audit.
type TaskEvent struct {
	Action     string    `json:"action"`
	TaskID     string    `json:"task_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
