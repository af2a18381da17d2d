package taskstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const tempIDPrefix = "temp-"

// Store is the in-memory source of truth for a user's task list. Mutations
// are applied optimistically before the network call resolves, then
// reconciled with the server's canonical task or rolled back to the
// snapshot taken at the start of that mutation.
//
// Mutation methods never return an error; every failure resolves by
// mutating store state (rollback plus a single human-readable error
// message replacing any previous one), so callers observe uniformly
// through Tasks/Err/Loading.
//
// Each mutation captures its own snapshot under the lock immediately
// before its optimistic apply, so two concurrent failing mutations each
// restore their own pre-call state instead of stomping a shared one.
//
// Delete is the exception to optimism: the entry is removed only after the
// server confirms, so a failed delete never makes a task flicker out of
// the list.
type Store struct {
	client *Client

	mu      sync.Mutex
	tasks   []Task
	err     string
	loading bool
}

// NewStore builds an empty store backed by the given API client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// Tasks returns a copy of the current task list.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Err returns the message of the most recent failure, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Loading reports whether a network call is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// FetchAll replaces the held list with the server's (server order is
// authoritative). On 401/403 the list is cleared and the error marks the
// session expired; on any other failure the list is cleared and the
// failure recorded. Never retries.
func (s *Store) FetchAll(ctx context.Context) {
	s.begin()
	tasks, err := s.client.ListTasks(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.tasks = nil
		s.err = err.Error()
		return
	}
	s.tasks = tasks
}

// Add validates input locally, appends a temporary task, then issues the
// create request. On success the temporary entry is replaced by the
// canonical server task; on failure the list is restored to the pre-call
// snapshot. Local validation failure performs no network call.
func (s *Store) Add(ctx context.Context, in CreateTaskInput) {
	text, err := validateText(in.Text)
	if err != nil {
		s.setErr(err.Error())
		return
	}

	now := time.Now()
	tmp := Task{
		ID:          tempIDPrefix + uuid.NewString(),
		Text:        text,
		Description: in.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	snapshot := cloneTasks(s.tasks)
	s.tasks = append(s.tasks, tmp)
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	created, err := s.client.CreateTask(ctx, CreateTaskInput{Text: text, Description: in.Description})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.tasks = snapshot
		s.err = err.Error()
		return
	}
	for i := range s.tasks {
		if s.tasks[i].ID == tmp.ID {
			s.tasks[i] = *created
		}
	}
}

// Update validates input locally, optimistically merges the new fields
// into the matching task, then issues the update request.
func (s *Store) Update(ctx context.Context, id string, in UpdateTaskInput) {
	text, err := validateText(in.Text)
	if err != nil {
		s.setErr(err.Error())
		return
	}

	s.mu.Lock()
	snapshot := cloneTasks(s.tasks)
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Text = text
			s.tasks[i].Description = in.Description
		}
	}
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	updated, err := s.client.UpdateTask(ctx, id, UpdateTaskInput{Text: text, Description: in.Description})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.tasks = snapshot
		s.err = err.Error()
		return
	}
	s.replace(id, updated)
}

// ToggleComplete optimistically flips the completed flag, then issues the
// toggle request.
func (s *Store) ToggleComplete(ctx context.Context, id string) {
	s.mu.Lock()
	snapshot := cloneTasks(s.tasks)
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = !s.tasks[i].Completed
		}
	}
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	toggled, err := s.client.ToggleTask(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.tasks = snapshot
		s.err = err.Error()
		return
	}
	s.replace(id, toggled)
}

// Remove issues the delete request first and drops the entry only once the
// server confirms, so the list never loses a task the server still has.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	snapshot := cloneTasks(s.tasks)
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	_, err := s.client.DeleteTask(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.tasks = snapshot
		s.err = err.Error()
		return
	}
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
}

// SessionExpired reports whether the most recent failure was an auth one.
func (s *Store) SessionExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err == ErrUnauthorized.Error()
}

// replace swaps the entry with the given id for the server's canonical
// task. Caller holds the lock.
func (s *Store) replace(id string, canonical *Task) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = *canonical
		}
	}
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) setErr(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

// IsTempID reports whether id was synthesized locally for an optimistic
// create and has not yet been reconciled with the server.
func IsTempID(id string) bool {
	return len(id) > len(tempIDPrefix) && id[:len(tempIDPrefix)] == tempIDPrefix
}

// IsNotFound reports whether err is the not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
