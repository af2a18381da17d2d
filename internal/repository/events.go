package repository

import (
	"context"
	"database/sql"

	"taskman/internal/models"
	"taskman/pkg/logger"
)

// EventRepository appends task mutation events to the audit table.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Record appends one event.
func (r *EventRepository) Record(ctx context.Context, e *models.TaskEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO task_events (action, task_id, user_id, occurred_at) VALUES ($1, $2, $3, $4)`,
		e.Action, e.TaskID, e.UserID, e.OccurredAt)
	if err != nil {
		logger.Error(ctx, "Repository event Record failed", "error", err)
	}
	return err
}
