package database

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/lib/pq"
	"taskman/internal/config"
	"taskman/pkg/logger"
)

var (
	pool *sql.DB
	once sync.Once
)

// DB returns the global database connection pool (initialized on first use).
func DB(ctx context.Context) *sql.DB {
	once.Do(func() {
		cfg := config.Get()
		if cfg.DatabaseURL == "" {
			logger.Error(ctx, "DATABASE_URL is not set")
			return
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error(ctx, "Failed to open database", "error", err)
			return
		}
		db.SetMaxOpenConns(cfg.DBPoolSize)
		db.SetMaxIdleConns(cfg.DBPoolSize / 2)
		pool = db
		logger.Info(ctx, "Database pool initialized", "max_open", cfg.DBPoolSize)
	})
	return pool
}

// InitDB initializes the DB pool and returns it (for main).
func InitDB(ctx context.Context) *sql.DB {
	return DB(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (LOWER(email));

CREATE TABLE IF NOT EXISTS tasks (
	id          UUID PRIMARY KEY,
	text        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed   BOOLEAN NOT NULL DEFAULT FALSE,
	user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_user_created_idx ON tasks (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS task_events (
	id          BIGSERIAL PRIMARY KEY,
	action      TEXT NOT NULL,
	task_id     UUID NOT NULL,
	user_id     UUID NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);
`

// MigrateOrCreateSchema creates the tables and indexes if they do not exist.
// Idempotent; safe to run at every startup.
func MigrateOrCreateSchema(ctx context.Context) error {
	db := DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	logger.Info(ctx, "Schema ensured")
	return nil
}
