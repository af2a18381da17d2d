package taskstore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Session holds the authenticated identity and the login-lockout state.
// After a 429 from the login limiter, the session records the deadline and
// Locked/LockedFor answer purely from (now, deadline) so a UI can disable
// its login form and show a countdown without any timer machinery here.
type Session struct {
	client *Client

	mu         sync.Mutex
	user       AuthUser
	lockUntil  time.Time
	retryAfter int // minutes, as reported by the server
}

// ErrLoginLocked is returned by Login while the lockout is active.
var ErrLoginLocked = errors.New("too many login attempts")

// NewSession builds a session around the given client. The client's token
// is set on successful login/register and cleared on Logout.
func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// Login authenticates. On a 429 it records the lockout deadline and
// returns the rate-limit error; while locked it refuses immediately
// without a network call.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if s.Locked(time.Now()) {
		return ErrLoginLocked
	}
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		var rl *RateLimitError
		if errors.As(err, &rl) {
			s.mu.Lock()
			s.retryAfter = rl.RetryAfter
			s.lockUntil = time.Now().Add(time.Duration(rl.RetryAfter) * time.Minute)
			s.mu.Unlock()
		}
		return err
	}
	s.establish(res)
	return nil
}

// Register creates an account and signs in with the issued token.
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	res, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	s.establish(res)
	return nil
}

func (s *Session) establish(res *AuthResult) {
	s.client.SetToken(res.Token)
	s.mu.Lock()
	s.user = res.User
	s.lockUntil = time.Time{}
	s.retryAfter = 0
	s.mu.Unlock()
}

// Logout clears the token and identity. Lockout state survives: logging
// out does not reset the limiter's window.
func (s *Session) Logout() {
	s.client.SetToken("")
	s.mu.Lock()
	s.user = AuthUser{}
	s.mu.Unlock()
}

// Authenticated reports whether a bearer token is held.
func (s *Session) Authenticated() bool {
	return s.client.Token() != ""
}

// User returns the signed-in identity (zero value when logged out).
func (s *Session) User() AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Locked reports whether the login lockout is active at now.
func (s *Session) Locked(now time.Time) bool {
	return s.LockedFor(now) > 0
}

// LockedFor returns the time remaining in the lockout at now (zero when
// not locked).
func (s *Session) LockedFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RemainingLockout(now, s.lockUntil)
}

// RetryAfterMinutes returns the server's last retry hint in minutes.
func (s *Session) RetryAfterMinutes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryAfter
}

// RemainingLockout is the pure lockout countdown: the duration from now
// until deadline, clamped at zero.
func RemainingLockout(now, deadline time.Time) time.Duration {
	if d := deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}
