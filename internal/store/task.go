package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"crewdesk.app/core/core/db"
	"crewdesk.app/core/internal/model"
)

type taskStore struct {
	q db.Querier
}

const taskColumns = `id, project_id, title, description, assignee_id, status, priority, due_date, created_at, updated_at, is_deleted`

func (s *taskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND is_deleted = false`, id)
	return scanTask(row)
}

func (s *taskStore) Create(ctx context.Context, t *model.Task) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO tasks (id, project_id, title, description, assignee_id, status, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns,
		t.ID, t.ProjectID, t.Title, t.Description, t.AssigneeID, t.Status, t.Priority, t.DueDate)
	created, err := scanTask(row)
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

func (s *taskStore) Update(ctx context.Context, t *model.Task) error {
	row := s.q.QueryRow(ctx, `
		UPDATE tasks SET title = $2, description = $3, assignee_id = $4, status = $5,
			priority = $6, due_date = $7, updated_at = now()
		WHERE id = $1 AND is_deleted = false
		RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, t.AssigneeID, t.Status, t.Priority, t.DueDate)
	updated, err := scanTask(row)
	if err != nil {
		return err
	}
	*t = *updated
	return nil
}

// Delete tombstones the task and cascades to its comments and attachments.
func (s *taskStore) Delete(ctx context.Context, id int64) error {
	statements := []string{
		`UPDATE tasks SET is_deleted = true, updated_at = now() WHERE id = $1`,
		`UPDATE task_comments SET is_deleted = true, updated_at = now() WHERE task_id = $1`,
		`UPDATE task_attachments SET is_deleted = true WHERE task_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := s.q.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *taskStore) ListByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE project_id = $1 AND is_deleted = false ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (s *taskStore) ListByAssignee(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE assignee_id = $1 AND is_deleted = false ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.AssigneeID,
		&t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt, &t.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]model.Task, error) {
	defer rows.Close()
	var result []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}
