package taskstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client())
}

func TestClient_MapsUnauthorized(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte(`{"error":"Unauthorized"}`))
		})
		_, err := client.ListTasks(context.Background())
		require.ErrorIs(t, err, ErrUnauthorized, "status %d", code)
	}
}

func TestClient_MapsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Task not found"}`))
	})
	_, err := client.DeleteTask(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
	require.True(t, IsNotFound(err))
}

func TestClient_MapsRateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"success":false,"message":"Too many login attempts. Please try again later.","retryAfter":15}`))
	})
	_, err := client.Login(context.Background(), "a@b.com", "pw")
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	require.Equal(t, 15, rl.RetryAfter)
	require.Equal(t, "Too many login attempts. Please try again later.", rl.Error())
}

func TestClient_MapsValidationFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Task must be at least 3 characters"}`))
	})
	_, err := client.CreateTask(context.Background(), CreateTaskInput{Text: "ab"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadRequest, se.Code)
	require.Equal(t, "Task must be at least 3 characters", se.Message)
}

func TestClient_SendsBearerTokenWhenSet(t *testing.T) {
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})

	_, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)

	client.SetToken("tok123")
	_, err = client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok123", got)
}

func TestClient_ContextCancellationIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ListTasks(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}
