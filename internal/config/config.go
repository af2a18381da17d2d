package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort        string
	DatabaseURL     string
	DBPoolSize      int
	RedisURL        string
	RedisPoolSize   int
	CacheTTL        int // seconds
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int
	JWTSecret       string
	JWTExpiry       time.Duration
	LoginWindow     time.Duration
	LoginMaxTries   int
	APIWindow       time.Duration
	APIMaxTries     int
	BcryptCost      int
	SkipRateLimit   bool
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = &Config{
			HTTPPort:        getEnv("HTTP_PORT", "8080"),
			DatabaseURL:     os.Getenv("DATABASE_URL"),
			DBPoolSize:      getIntEnv("DB_POOL_SIZE", 50),
			RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
			RedisPoolSize:   getIntEnv("REDIS_POOL_SIZE", 100),
			CacheTTL:        getIntEnv("CACHE_TTL_SEC", 300),
			KafkaBrokers:    getSliceEnv("KAFKA_BROKERS", "localhost:9092"),
			KafkaTopic:      getEnv("KAFKA_TASK_TOPIC", "task-events"),
			KafkaPartitions: getIntEnv("KAFKA_PARTITIONS", 8),
			JWTSecret:       os.Getenv("JWT_SECRET"),
			JWTExpiry:       getDurationEnv("JWT_EXPIRY", 7*24*time.Hour),
			LoginWindow:     getDurationEnv("LOGIN_RATE_WINDOW", 15*time.Minute),
			LoginMaxTries:   getIntEnv("LOGIN_RATE_MAX", 5),
			APIWindow:       getDurationEnv("API_RATE_WINDOW", 15*time.Minute),
			APIMaxTries:     getIntEnv("API_RATE_MAX", 100),
			BcryptCost:      getIntEnv("BCRYPT_COST", 10),
			SkipRateLimit:   getBoolEnv("SKIP_RATE_LIMIT", false),
		}
	})
	return cfg
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

func getSliceEnv(key, defaultVal string) []string {
	if v := os.Getenv(key); v != "" {
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{defaultVal}
}
