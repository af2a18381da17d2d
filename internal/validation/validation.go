// Package validation holds the input rules shared by the HTTP handlers.
// The client store in pkg/taskstore enforces the same task-text rules
// locally before making a network call; keep the wording in sync.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	TaskTextMin = 3
	TaskTextMax = 500

	NameMin     = 2
	NameMax     = 50
	EmailMax    = 100
	PasswordMin = 8
	PasswordMax = 50
)

var (
	ErrTaskTooShort = errors.New("Task must be at least 3 characters")
	ErrTaskTooLong  = errors.New("Task too long")
)

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// TaskText validates and normalizes task text: trimmed, 3-500 characters.
// Lengths count characters, not bytes. Returns the trimmed text.
func TaskText(text string) (string, error) {
	t := strings.TrimSpace(text)
	n := utf8.RuneCountInString(t)
	if n < TaskTextMin {
		return "", ErrTaskTooShort
	}
	if n > TaskTextMax {
		return "", ErrTaskTooLong
	}
	return t, nil
}

// Registration validates register input and returns the normalized
// (trimmed name, lowercased email) pair.
func Registration(name, email, password string) (string, string, error) {
	name = strings.TrimSpace(name)
	if len(name) < NameMin {
		return "", "", errors.New("Name must be at least 2 characters")
	}
	if len(name) > NameMax {
		return "", "", errors.New("Name too long")
	}
	if !nameRe.MatchString(name) {
		return "", "", errors.New("Name can only contain letters and spaces")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) > EmailMax {
		return "", "", errors.New("Email too long")
	}
	if !emailRe.MatchString(email) {
		return "", "", errors.New("Invalid email format")
	}

	if err := checkPassword(password); err != nil {
		return "", "", err
	}
	return name, email, nil
}

func checkPassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMin {
		return errors.New("Password must be at least 8 characters")
	}
	if n > PasswordMax {
		return errors.New("Password too long")
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper {
		return errors.New("Password must contain at least one uppercase letter")
	}
	if !lower {
		return errors.New("Password must contain at least one lowercase letter")
	}
	if !digit {
		return errors.New("Password must contain at least one number")
	}
	if !special {
		return errors.New("Password must contain at least one special character")
	}
	return nil
}

// Login validates login input and returns the lowercased email.
func Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRe.MatchString(email) {
		return "", errors.New("Invalid email format")
	}
	if password == "" {
		return "", errors.New("Password is required")
	}
	return email, nil
}
