package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"crewdesk.app/core/core/db"
	"crewdesk.app/core/internal/model"
)

type projectStore struct {
	q db.Querier
}

const projectColumns = `id, workspace_id, name, description, status, created_at, updated_at, is_deleted`

func (s *projectStore) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND is_deleted = false`, id)
	return scanProject(row)
}

func (s *projectStore) Create(ctx context.Context, p *model.Project) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO projects (id, workspace_id, name, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+projectColumns,
		p.ID, p.WorkspaceID, p.Name, p.Description, p.Status)
	created, err := scanProject(row)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (s *projectStore) Update(ctx context.Context, p *model.Project) error {
	row := s.q.QueryRow(ctx, `
		UPDATE projects SET name = $2, description = $3, status = $4, updated_at = now()
		WHERE id = $1 AND is_deleted = false
		RETURNING `+projectColumns,
		p.ID, p.Name, p.Description, p.Status)
	updated, err := scanProject(row)
	if err != nil {
		return err
	}
	*p = *updated
	return nil
}

// Delete tombstones the project and cascades to its tasks, comments and
// attachments at write time.
func (s *projectStore) Delete(ctx context.Context, id int64) error {
	statements := []string{
		`UPDATE projects SET is_deleted = true, updated_at = now() WHERE id = $1`,
		`UPDATE tasks SET is_deleted = true, updated_at = now() WHERE project_id = $1`,
		`UPDATE task_comments SET is_deleted = true, updated_at = now()
		 WHERE task_id IN (SELECT id FROM tasks WHERE project_id = $1)`,
		`UPDATE task_attachments SET is_deleted = true
		 WHERE task_id IN (SELECT id FROM tasks WHERE project_id = $1)`,
	}
	for _, stmt := range statements {
		if _, err := s.q.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *projectStore) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Project, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE workspace_id = $1 AND is_deleted = false ORDER BY created_at`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &p.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
