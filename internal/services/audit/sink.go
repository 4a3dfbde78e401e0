package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sink appends audit lines to a capped Redis list
type Sink struct {
	client   *redis.Client
	key      string
	maxLines int
	logger   *slog.Logger
	now      func() time.Time
}

// NewSink creates a sink that keeps at most maxLines entries under key
func NewSink(client *redis.Client, key string, maxLines int, logger *slog.Logger) *Sink {
	if maxLines <= 0 {
		maxLines = 1000
	}
	return &Sink{
		client:   client,
		key:      key,
		maxLines: maxLines,
		logger:   logger,
		now:      time.Now,
	}
}

// Record appends one timestamped line and trims the oldest entries
func (s *Sink) Record(ctx context.Context, line string) error {
	entry := fmt.Sprintf("%s %s", s.now().UTC().Format(time.RFC3339), line)

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, entry)
	pipe.LTrim(ctx, s.key, int64(-s.maxLines), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("Failed to record audit line", "key", s.key, "error", err)
		return fmt.Errorf("failed to record audit line: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest lines, oldest first
func (s *Sink) Recent(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	lines, err := s.client.LRange(ctx, s.key, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit lines: %w", err)
	}
	return lines, nil
}
