package models

import "errors"

var (
	// ErrNotFound covers both an absent task and a task owned by someone
	// else; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("task not found")

	// ErrDuplicateEmail means the email already maps to an account.
	ErrDuplicateEmail = errors.New("user already exists")

	// ErrInvalidCredentials means unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
