// Seed creates a demo user and a batch of tasks for local testing.
// Run from project root: go run ./scripts/seed
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"taskman/internal/config"
	"taskman/internal/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedEmail    = "seed@example.com"
	seedPassword = "Seed-password1"
	total        = 1000
	batchSize    = 250
)

func main() {
	_ = godotenv.Load(".env")

	ctx := context.Background()
	db := database.InitDB(ctx)
	if db == nil {
		fmt.Fprintln(os.Stderr, "DATABASE_URL not set or DB connection failed")
		os.Exit(1)
	}

	if err := database.MigrateOrCreateSchema(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Schema failed:", err)
		os.Exit(1)
	}

	// Reuse the seed user if a previous run created it; the unique index
	// on LOWER(email) rejects a second insert.
	var userID string
	err := db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE LOWER(email) = LOWER($1)`, seedEmail).Scan(&userID)
	if err == sql.ErrNoRows {
		hash, herr := bcrypt.GenerateFromPassword([]byte(seedPassword), config.Get().BcryptCost)
		if herr != nil {
			fmt.Fprintln(os.Stderr, "Hash failed:", herr)
			os.Exit(1)
		}
		userID = uuid.New().String()
		_, err = db.ExecContext(ctx,
			`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
			 VALUES ($1, 'Seed User', $2, $3, NOW(), NOW())`,
			userID, seedEmail, string(hash))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Seed user failed:", err)
		os.Exit(1)
	}

	start := time.Now()
	for batch := 0; batch < total/batchSize; batch++ {
		args := make([]interface{}, 0, batchSize*5)
		placeholders := make([]string, 0, batchSize)
		for i := 0; i < batchSize; i++ {
			n := batch*batchSize + i + 1
			placeholders = append(placeholders, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,NOW(),NOW())",
				5*i+1, 5*i+2, 5*i+3, 5*i+4, 5*i+5))
			args = append(args,
				uuid.New().String(),
				fmt.Sprintf("Task %d", n),
				fmt.Sprintf("Description for task %d", n),
				false,
				userID,
			)
		}
		q := `INSERT INTO tasks (id, text, description, completed, user_id, created_at, updated_at) VALUES ` +
			strings.Join(placeholders, ",")
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			fmt.Fprintln(os.Stderr, "Insert failed:", err)
			os.Exit(1)
		}
		fmt.Printf("\rInserted %d / %d", (batch+1)*batchSize, total)
	}

	fmt.Printf("\nDone: %d tasks for %s in %v\n", total, seedEmail, time.Since(start))
}
