// Package event defines the domain events published after successful
// mutations, the in-process bus that fans them out to handlers, and the
// handlers themselves (audit, notification fan-out, real-time broadcast).
package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"crewdesk.app/core/internal/model"
)

type Type string

const (
	TypeTaskCreated        Type = "task_created"
	TypeTaskCompleted      Type = "task_completed"
	TypeCommentAdded       Type = "task_comment_added"
	TypeCommentUpdated     Type = "task_comment_updated"
	TypeAttachmentUploaded Type = "task_attachment_uploaded"
)

// Event is a closed sum over the five domain event kinds. Each variant
// carries the affected entity snapshot and the acting user; handlers switch
// exhaustively over the concrete types.
type Event interface {
	EventType() Type
	// Channel is the real-time channel the event broadcasts on:
	// project.{id} for task creation, task.{id} for everything else.
	Channel() string
	Actor() int64
	// Payload is the JSON snapshot handed to subscribers and fan-out jobs.
	Payload() (json.RawMessage, error)

	isEvent()
}

type TaskCreated struct {
	Task    model.Task
	ActorID int64
}

func (e TaskCreated) EventType() Type { return TypeTaskCreated }
func (e TaskCreated) Channel() string { return projectChannel(e.Task.ProjectID) }
func (e TaskCreated) Actor() int64    { return e.ActorID }
func (e TaskCreated) Payload() (json.RawMessage, error) {
	return marshalPayload(struct {
		Task    model.Task `json:"task"`
		ActorID int64      `json:"actor_id"`
	}{e.Task, e.ActorID})
}
func (TaskCreated) isEvent() {}

type TaskCompleted struct {
	Task    model.Task
	ActorID int64
}

func (e TaskCompleted) EventType() Type { return TypeTaskCompleted }
func (e TaskCompleted) Channel() string { return taskChannel(e.Task.ID) }
func (e TaskCompleted) Actor() int64    { return e.ActorID }
func (e TaskCompleted) Payload() (json.RawMessage, error) {
	return marshalPayload(struct {
		Task    model.Task `json:"task"`
		ActorID int64      `json:"actor_id"`
	}{e.Task, e.ActorID})
}
func (TaskCompleted) isEvent() {}

type CommentAdded struct {
	Comment model.TaskComment
	ActorID int64
}

func (e CommentAdded) EventType() Type { return TypeCommentAdded }
func (e CommentAdded) Channel() string { return taskChannel(e.Comment.TaskID) }
func (e CommentAdded) Actor() int64    { return e.ActorID }
func (e CommentAdded) Payload() (json.RawMessage, error) {
	return marshalPayload(struct {
		Comment model.TaskComment `json:"comment"`
		ActorID int64             `json:"actor_id"`
	}{e.Comment, e.ActorID})
}
func (CommentAdded) isEvent() {}

type CommentUpdated struct {
	Comment model.TaskComment
	ActorID int64
}

func (e CommentUpdated) EventType() Type { return TypeCommentUpdated }
func (e CommentUpdated) Channel() string { return taskChannel(e.Comment.TaskID) }
func (e CommentUpdated) Actor() int64    { return e.ActorID }
func (e CommentUpdated) Payload() (json.RawMessage, error) {
	return marshalPayload(struct {
		Comment model.TaskComment `json:"comment"`
		ActorID int64             `json:"actor_id"`
	}{e.Comment, e.ActorID})
}
func (CommentUpdated) isEvent() {}

type AttachmentUploaded struct {
	Attachment model.TaskAttachment
	ActorID    int64
}

func (e AttachmentUploaded) EventType() Type { return TypeAttachmentUploaded }
func (e AttachmentUploaded) Channel() string { return taskChannel(e.Attachment.TaskID) }
func (e AttachmentUploaded) Actor() int64    { return e.ActorID }
func (e AttachmentUploaded) Payload() (json.RawMessage, error) {
	return marshalPayload(struct {
		Attachment model.TaskAttachment `json:"attachment"`
		ActorID    int64                `json:"actor_id"`
	}{e.Attachment, e.ActorID})
}
func (AttachmentUploaded) isEvent() {}

func marshalPayload(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling event payload: %w", err)
	}
	return data, nil
}

func taskChannel(taskID int64) string       { return fmt.Sprintf("task.%d", taskID) }
func projectChannel(projectID int64) string { return fmt.Sprintf("project.%d", projectID) }

// ChannelKind distinguishes the two channel families.
type ChannelKind string

const (
	ChannelKindTask    ChannelKind = "task"
	ChannelKindProject ChannelKind = "project"
)

// ParseChannel splits a channel name ("task.42", "project.7") into its kind
// and resource id. Subscriber authorization is re-derived from this alone.
func ParseChannel(name string) (ChannelKind, int64, error) {
	kind, rawID, ok := strings.Cut(name, ".")
	if !ok {
		return "", 0, fmt.Errorf("malformed channel name %q", name)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("malformed channel id in %q", name)
	}
	switch ChannelKind(kind) {
	case ChannelKindTask, ChannelKindProject:
		return ChannelKind(kind), id, nil
	default:
		return "", 0, fmt.Errorf("unknown channel kind %q", kind)
	}
}
