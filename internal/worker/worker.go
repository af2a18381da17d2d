package worker

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"taskman/internal/config"
	"taskman/internal/database"
	"taskman/internal/models"
	"taskman/internal/queue"
	"taskman/internal/repository"
	"taskman/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Run starts the Kafka consumer: reads task events and appends them to the
// task_events audit table. One consumer per process; scale by running more
// replicas (consumer group shares partitions).
func Run(ctx context.Context) {
	cfg := config.Get()
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}
	db := database.DB(ctx)
	if db == nil {
		logger.Info(ctx, "Worker disabled (no database)")
		return
	}
	events := repository.NewEventRepository(db)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  queue.Brokers(),
		Topic:    queue.Topic(),
		GroupID:  "task-event-audit",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	var processed int64
	logger.Info(ctx, "Kafka consumer started", "topic", queue.Topic())
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info(ctx, "Kafka consumer stopped", "processed", atomic.LoadInt64(&processed))
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := handleMessage(ctx, events, msg.Value); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
			// Commit anyway to avoid poison pill blocking the partition
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
		atomic.AddInt64(&processed, 1)
	}
}

func handleMessage(ctx context.Context, events *repository.EventRepository, payload []byte) error {
	var e models.TaskEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return err
	}
	return events.Record(ctx, &e)
}
