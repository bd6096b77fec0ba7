// Package queue moves notification fan-out jobs between the API process and
// the worker over a Redis stream with a consumer group and a dead letter
// stream for messages that exhaust their retries.
package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Job describes one notification fan-out unit: a domain event that must be
// delivered to every current workspace member except the actor.
type Job struct {
	EventID     int64
	WorkspaceID int64
	EventType   string
	Channel     string
	ActorID     int64
	Payload     []byte
	Attempt     int
}

type Producer interface {
	Enqueue(ctx context.Context, job Job) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, job Job) error {
	attempt := job.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"event_id":     job.EventID,
		"workspace_id": job.WorkspaceID,
		"event_type":   job.EventType,
		"channel":      job.Channel,
		"actor_id":     job.ActorID,
		"attempt":      attempt,
	}
	if len(job.Payload) > 0 {
		fields["payload"] = string(job.Payload)
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue fan-out job: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued fan-out job",
		"event_id", job.EventID, "workspace_id", job.WorkspaceID,
		"event_type", job.EventType, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
