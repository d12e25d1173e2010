// Package audit records duplicate-username resolutions outside the log stream.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one resolved username collision.
type Entry struct {
	RunID             string
	Username          string
	ChosenSource      string
	SuppressedSources []string
	ResolvedAt        time.Time
}

// Sink persists audit entries.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// RedisStreamSink appends entries to a Redis stream.
type RedisStreamSink struct {
	client *redis.Client
	stream string
}

// NewRedisStreamSink creates a sink writing to the given stream key.
func NewRedisStreamSink(client *redis.Client, stream string) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream}
}

// Record appends the entry with XADD.
func (s *RedisStreamSink) Record(ctx context.Context, entry Entry) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: entryValues(entry),
	}).Err()
}

// entryValues flattens an entry into ordered field/value pairs.
func entryValues(entry Entry) []interface{} {
	return []interface{}{
		"run_id", entry.RunID,
		"username", entry.Username,
		"chosen_source", entry.ChosenSource,
		"suppressed_sources", strings.Join(entry.SuppressedSources, ","),
		"resolved_at", entry.ResolvedAt.UTC().Format(time.RFC3339),
	}
}
