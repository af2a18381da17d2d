package taskstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client is a typed HTTP client for the task API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient builds a client for the API at baseURL. httpClient may be nil,
// in which case a client with a 30-second timeout is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token ("" when logged out).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// apiError is the body shape of error responses.
type apiError struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

// do issues a request and decodes a 2xx body into out (when non-nil).
// Non-2xx responses are mapped to the package's error types; network
// failures and timeouts come back as-is and count as transient failures.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var e apiError
	_ = json.NewDecoder(resp.Body).Decode(&e)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return &RateLimitError{Message: e.Message, RetryAfter: e.RetryAfter}
	default:
		msg := e.Error
		if msg == "" {
			msg = e.Message
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
}

// ListTasks fetches the caller's full task list, newest-created first.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask persists a new task and returns the canonical created task.
func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask replaces text/description of a task by id.
func (c *Client) UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ToggleTask flips a task's completed flag.
func (c *Client) ToggleTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%s/complete", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask hard-deletes a task and returns its last-known representation.
func (c *Client) DeleteTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Register creates an account and returns the issued token and identity.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login authenticates and returns the issued token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
