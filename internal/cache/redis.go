package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"taskman/internal/config"
	"taskman/pkg/logger"
)

var (
	client *redis.Client
	once   sync.Once
)

// Client returns the global Redis client (initialized on first use).
// Returns nil when Redis is unavailable; callers treat that as a miss.
func Client(ctx context.Context) *redis.Client {
	once.Do(func() {
		cfg := config.Get()
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error(ctx, "Invalid REDIS_URL", "error", err, "url", cfg.RedisURL)
			return
		}
		opts.PoolSize = cfg.RedisPoolSize
		c := redis.NewClient(opts)
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Error(ctx, "Redis ping failed", "error", err)
			return
		}
		client = c
		logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	})
	return client
}

func tasksKey(userID string) string {
	return "tasks:user:" + userID
}

// GetRawTasks reads a user's serialized task list from Redis as raw bytes.
// Returns (nil, false) on miss or error.
func GetRawTasks(ctx context.Context, userID string) ([]byte, bool) {
	c := Client(ctx)
	if c == nil {
		return nil, false
	}
	b, err := c.Get(ctx, tasksKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get tasks failed", "error", err)
		return nil, false
	}
	return b, true
}

// SetRawTasksAsync writes a user's serialized task list to Redis with the
// configured TTL, off the request path.
func SetRawTasksAsync(userID string, b []byte) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		c := Client(ctx)
		if c == nil {
			return
		}
		ttl := time.Duration(config.Get().CacheTTL) * time.Second
		if err := c.Set(ctx, tasksKey(userID), b, ttl).Err(); err != nil {
			logger.Debug(ctx, "Redis set tasks failed", "error", err)
		}
	}()
}

// InvalidateTasks deletes a user's cached task list so the next read goes
// to the database.
func InvalidateTasks(ctx context.Context, userID string) {
	c := Client(ctx)
	if c == nil {
		return
	}
	if err := c.Del(ctx, tasksKey(userID)).Err(); err != nil {
		logger.Debug(ctx, "Redis invalidate tasks failed", "error", err)
	}
}
