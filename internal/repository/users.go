package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"taskman/internal/models"
	"taskman/pkg/logger"
)

// UserRepository persists accounts. Email uniqueness is enforced by the
// LOWER(email) unique index; callers pass email already lowercased.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Returns models.ErrDuplicateEmail when the
// email already maps to an account.
func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, models.ErrDuplicateEmail
		}
		logger.Error(ctx, "Repository user Create failed", "error", err)
		return nil, err
	}
	return u, nil
}

// FindByEmail looks up a user by email (case-insensitive). Returns
// models.ErrInvalidCredentials when no account matches, so login cannot
// tell an unknown email from a wrong password.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE LOWER(email) = LOWER($1)`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		logger.Error(ctx, "Repository FindByEmail failed", "error", err)
		return nil, err
	}
	return &u, nil
}
