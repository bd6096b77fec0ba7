package model

import (
	"encoding/json"
	"time"
)

// EventLog is the audit record written for every published domain event.
type EventLog struct {
	ID          int64           `json:"id"`
	WorkspaceID int64           `json:"workspace_id"`
	ActorID     int64           `json:"actor_id"`
	EventType   string          `json:"event_type"`
	Channel     string          `json:"channel"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
