package store

import (
	"context"

	"crewdesk.app/core/core/db"
	"crewdesk.app/core/internal/model"
)

type eventLogStore struct {
	q db.Querier
}

const eventLogColumns = `id, workspace_id, actor_id, event_type, channel, payload, created_at`

func (s *eventLogStore) Create(ctx context.Context, e *model.EventLog) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO event_logs (id, workspace_id, actor_id, event_type, channel, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+eventLogColumns,
		e.ID, e.WorkspaceID, e.ActorID, e.EventType, e.Channel, []byte(e.Payload))
	var created model.EventLog
	if err := row.Scan(&created.ID, &created.WorkspaceID, &created.ActorID,
		&created.EventType, &created.Channel, &created.Payload, &created.CreatedAt); err != nil {
		return err
	}
	*e = created
	return nil
}

func (s *eventLogStore) ListByWorkspace(ctx context.Context, workspaceID int64, limit int32) ([]model.EventLog, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+eventLogColumns+` FROM event_logs
		 WHERE workspace_id = $1 ORDER BY created_at DESC LIMIT $2`, workspaceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.EventLog
	for rows.Next() {
		var e model.EventLog
		if err := rows.Scan(&e.ID, &e.WorkspaceID, &e.ActorID,
			&e.EventType, &e.Channel, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
