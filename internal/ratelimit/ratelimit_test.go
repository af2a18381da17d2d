package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryAfterMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want int
	}{
		{"full window", 15 * time.Minute, 15},
		{"partial minute rounds up", 14*time.Minute + time.Second, 15},
		{"under a minute", 30 * time.Second, 1},
		{"zero clamps to one", 0, 1},
		{"exact minute", time.Minute, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RetryAfterMinutes(tt.in))
		})
	}
}
