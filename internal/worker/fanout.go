package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"crewdesk.app/core/internal/event"
	"crewdesk.app/core/internal/notify"
	"crewdesk.app/core/internal/queue"
	"crewdesk.app/core/internal/store"
)

// Fanout delivers one event to every current workspace member except the
// actor. Membership is read at execution time, not enqueue time, so users
// added after the event still hear about it and removed users do not.
type Fanout struct {
	members  store.MembershipStore
	delivery notify.Delivery
	channels []notify.Channel
}

func NewFanout(members store.MembershipStore, delivery notify.Delivery, channels []notify.Channel) *Fanout {
	if len(channels) == 0 {
		channels = notify.AllChannels
	}
	return &Fanout{members: members, delivery: delivery, channels: channels}
}

func (f *Fanout) Process(ctx context.Context, msg queue.Message) error {
	members, err := f.members.ListMembers(ctx, msg.WorkspaceID)
	if err != nil {
		return fmt.Errorf("listing workspace members: %w", err)
	}

	notification := f.buildNotification(msg)

	var delivered, failed int
	var firstErr error
	for _, member := range members {
		if member.UserID == msg.ActorID {
			continue
		}

		n := notification
		n.DedupeKey = fmt.Sprintf("event:%d:user:%d", msg.EventID, member.UserID)
		if err := f.delivery.Deliver(ctx, member.UserID, n, f.channels); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			slog.ErrorContext(ctx, "notification delivery failed",
				"user_id", member.UserID,
				"error", err)
			continue
		}
		delivered++
	}

	slog.InfoContext(ctx, "fan-out complete",
		"delivered", delivered,
		"failed", failed,
		"members", len(members))

	if failed > 0 {
		return fmt.Errorf("%d of %d deliveries failed: %w", failed, delivered+failed, firstErr)
	}
	return nil
}

func (f *Fanout) buildNotification(msg queue.Message) notify.Notification {
	var data map[string]any
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &data); err != nil {
			data = nil
		}
	}

	return notify.Notification{
		Type:      msg.EventType,
		Title:     titleFor(event.Type(msg.EventType), data),
		Message:   messageFor(event.Type(msg.EventType)),
		Data:      data,
		ActionURL: actionURLFor(msg.Channel),
	}
}

func titleFor(t event.Type, data map[string]any) string {
	subject := subjectTitle(t, data)
	switch t {
	case event.TypeTaskCreated:
		return fmt.Sprintf("New task: %s", subject)
	case event.TypeTaskCompleted:
		return fmt.Sprintf("Task completed: %s", subject)
	case event.TypeCommentAdded:
		return "New comment on a task"
	case event.TypeCommentUpdated:
		return "A comment was edited"
	case event.TypeAttachmentUploaded:
		return fmt.Sprintf("New attachment: %s", subject)
	default:
		return "Workspace activity"
	}
}

func messageFor(t event.Type) string {
	switch t {
	case event.TypeTaskCreated:
		return "A task was created in one of your projects."
	case event.TypeTaskCompleted:
		return "A task you follow was marked completed."
	case event.TypeCommentAdded:
		return "Someone commented on a task in your workspace."
	case event.TypeCommentUpdated:
		return "A comment on a task in your workspace was edited."
	case event.TypeAttachmentUploaded:
		return "A file was attached to a task in your workspace."
	default:
		return "Something happened in your workspace."
	}
}

func subjectTitle(t event.Type, data map[string]any) string {
	if data == nil {
		return "untitled"
	}
	switch t {
	case event.TypeTaskCreated, event.TypeTaskCompleted:
		if task, ok := data["task"].(map[string]any); ok {
			if title, ok := task["title"].(string); ok && title != "" {
				return title
			}
		}
	case event.TypeAttachmentUploaded:
		if att, ok := data["attachment"].(map[string]any); ok {
			if name, ok := att["file_name"].(string); ok && name != "" {
				return name
			}
		}
	}
	return "untitled"
}

func actionURLFor(channel string) string {
	if channel == "" {
		return ""
	}
	kind, id, err := event.ParseChannel(channel)
	if err != nil {
		return ""
	}
	switch kind {
	case event.ChannelKindTask:
		return fmt.Sprintf("/tasks/%d", id)
	case event.ChannelKindProject:
		return fmt.Sprintf("/projects/%d", id)
	}
	return ""
}
