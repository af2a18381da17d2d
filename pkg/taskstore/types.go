// Package taskstore is the client side of the task API: a typed HTTP
// client, an optimistic in-memory task store that reconciles with server
// responses and rolls back on failure, and a session holding the bearer
// token and login-lockout state.
package taskstore

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Task mirrors the server's task representation.
type Task struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTaskInput is the payload of POST /tasks.
type CreateTaskInput struct {
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
}

// UpdateTaskInput is the payload of PUT /tasks/:id.
type UpdateTaskInput struct {
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
}

// AuthUser is the public account identity returned by auth endpoints.
type AuthUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResult is the body of successful register/login responses.
type AuthResult struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    AuthUser `json:"user"`
}

var (
	// ErrUnauthorized maps 401/403: the session is missing or expired.
	ErrUnauthorized = errors.New("session expired")
	// ErrNotFound maps 404: the task is absent or owned by someone else.
	ErrNotFound = errors.New("task not found")
)

// RateLimitError maps 429 from the login limiter.
type RateLimitError struct {
	Message    string
	RetryAfter int // minutes
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("rate limited, retry after %d minutes", e.RetryAfter)
}

// StatusError maps any other non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

const (
	taskTextMin = 3
	taskTextMax = 500
)

// validateText applies the same task-text rules the server enforces, so an
// invalid input never reaches the network. Lengths count characters, not
// bytes. Returns the trimmed text.
func validateText(text string) (string, error) {
	t := strings.TrimSpace(text)
	n := utf8.RuneCountInString(t)
	if n < taskTextMin {
		return "", errors.New("Task must be at least 3 characters")
	}
	if n > taskTextMax {
		return "", errors.New("Task too long")
	}
	return t, nil
}
