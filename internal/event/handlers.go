package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"crewdesk.app/core/common/id"
	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/queue"
	"crewdesk.app/core/internal/store"
)

// Resolver maps an event back to the workspace it happened in. Tasks resolve
// through their project; comments and attachments through their task.
type Resolver struct {
	projects store.ProjectStore
	tasks    store.TaskStore
}

func NewResolver(projects store.ProjectStore, tasks store.TaskStore) *Resolver {
	return &Resolver{projects: projects, tasks: tasks}
}

func (r *Resolver) WorkspaceID(ctx context.Context, e Event) (int64, error) {
	switch ev := e.(type) {
	case TaskCreated:
		return r.fromProject(ctx, ev.Task.ProjectID)
	case TaskCompleted:
		return r.fromProject(ctx, ev.Task.ProjectID)
	case CommentAdded:
		return r.fromTask(ctx, ev.Comment.TaskID)
	case CommentUpdated:
		return r.fromTask(ctx, ev.Comment.TaskID)
	case AttachmentUploaded:
		return r.fromTask(ctx, ev.Attachment.TaskID)
	default:
		return 0, fmt.Errorf("unhandled event type %T", e)
	}
}

func (r *Resolver) fromProject(ctx context.Context, projectID int64) (int64, error) {
	project, err := r.projects.GetByID(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("resolving workspace for project %d: %w", projectID, err)
	}
	return project.WorkspaceID, nil
}

func (r *Resolver) fromTask(ctx context.Context, taskID int64) (int64, error) {
	task, err := r.tasks.GetByID(ctx, taskID)
	if err != nil {
		return 0, fmt.Errorf("resolving workspace for task %d: %w", taskID, err)
	}
	return r.fromProject(ctx, task.ProjectID)
}

// AuditHandler appends one event log row per published event.
type AuditHandler struct {
	resolver *Resolver
	logs     store.EventLogStore
}

func NewAuditHandler(resolver *Resolver, logs store.EventLogStore) *AuditHandler {
	return &AuditHandler{resolver: resolver, logs: logs}
}

func (h *AuditHandler) Name() string { return "audit" }

func (h *AuditHandler) Handle(ctx context.Context, e Event) error {
	workspaceID, err := h.resolver.WorkspaceID(ctx, e)
	if err != nil {
		return err
	}
	payload, err := e.Payload()
	if err != nil {
		return err
	}

	entry := model.EventLog{
		ID:          id.New(),
		WorkspaceID: workspaceID,
		ActorID:     e.Actor(),
		EventType:   string(e.EventType()),
		Channel:     e.Channel(),
		Payload:     payload,
	}
	if err := h.logs.Create(ctx, &entry); err != nil {
		return fmt.Errorf("writing event log: %w", err)
	}
	return nil
}

// FanoutHandler enqueues a notification job for the worker to deliver to
// every workspace member except the actor. Membership is re-read at delivery
// time, so the job only needs the workspace id.
type FanoutHandler struct {
	resolver *Resolver
	producer queue.Producer
}

func NewFanoutHandler(resolver *Resolver, producer queue.Producer) *FanoutHandler {
	return &FanoutHandler{resolver: resolver, producer: producer}
}

func (h *FanoutHandler) Name() string { return "fanout" }

func (h *FanoutHandler) Handle(ctx context.Context, e Event) error {
	workspaceID, err := h.resolver.WorkspaceID(ctx, e)
	if err != nil {
		return err
	}
	payload, err := e.Payload()
	if err != nil {
		return err
	}

	return h.producer.Enqueue(ctx, queue.Job{
		EventID:     id.New(),
		WorkspaceID: workspaceID,
		EventType:   string(e.EventType()),
		Channel:     e.Channel(),
		ActorID:     e.Actor(),
		Payload:     payload,
	})
}

// RealtimePublisher pushes a serialized event onto a live channel.
type RealtimePublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type redisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) RealtimePublisher {
	return &redisPublisher{client: client}
}

func (p *redisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// BroadcastHandler pushes the event onto its real-time channel for connected
// subscribers. Subscriptions are authorized separately before delivery.
type BroadcastHandler struct {
	publisher RealtimePublisher
}

func NewBroadcastHandler(publisher RealtimePublisher) *BroadcastHandler {
	return &BroadcastHandler{publisher: publisher}
}

func (h *BroadcastHandler) Name() string { return "broadcast" }

func (h *BroadcastHandler) Handle(ctx context.Context, e Event) error {
	payload, err := e.Payload()
	if err != nil {
		return err
	}
	envelope, err := marshalPayload(struct {
		Type    Type   `json:"type"`
		Channel string `json:"channel"`
		Data    any    `json:"data"`
	}{e.EventType(), e.Channel(), json.RawMessage(payload)})
	if err != nil {
		return err
	}
	return h.publisher.Publish(ctx, e.Channel(), envelope)
}
