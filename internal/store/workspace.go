package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"crewdesk.app/core/core/db"
	"crewdesk.app/core/internal/model"
)

type workspaceStore struct {
	q db.Querier
}

const workspaceColumns = `id, owner_id, name, slug, description, status, created_at, updated_at, is_deleted`

func (s *workspaceStore) GetByID(ctx context.Context, id int64) (*model.Workspace, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1 AND is_deleted = false`, id)
	return scanWorkspace(row)
}

func (s *workspaceStore) GetBySlug(ctx context.Context, slug string) (*model.Workspace, error) {
	// Slug uniqueness only holds among live rows; tombstoned workspaces free
	// their slug.
	row := s.q.QueryRow(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE slug = $1 AND is_deleted = false`, slug)
	return scanWorkspace(row)
}

func (s *workspaceStore) Create(ctx context.Context, ws *model.Workspace) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO workspaces (id, owner_id, name, slug, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+workspaceColumns,
		ws.ID, ws.OwnerID, ws.Name, ws.Slug, ws.Description, ws.Status)
	created, err := scanWorkspace(row)
	if err != nil {
		return err
	}
	*ws = *created
	return nil
}

func (s *workspaceStore) Update(ctx context.Context, ws *model.Workspace) error {
	row := s.q.QueryRow(ctx, `
		UPDATE workspaces SET name = $2, slug = $3, description = $4, status = $5, updated_at = now()
		WHERE id = $1 AND is_deleted = false
		RETURNING `+workspaceColumns,
		ws.ID, ws.Name, ws.Slug, ws.Description, ws.Status)
	updated, err := scanWorkspace(row)
	if err != nil {
		return err
	}
	*ws = *updated
	return nil
}

// Delete tombstones the workspace and cascades the logical delete to its
// projects, tasks, comments and attachments at write time. Callers run it
// inside a transaction.
func (s *workspaceStore) Delete(ctx context.Context, id int64) error {
	statements := []string{
		`UPDATE workspaces SET is_deleted = true, updated_at = now() WHERE id = $1`,
		`UPDATE projects SET is_deleted = true, updated_at = now() WHERE workspace_id = $1`,
		`UPDATE tasks SET is_deleted = true, updated_at = now()
		 WHERE project_id IN (SELECT id FROM projects WHERE workspace_id = $1)`,
		`UPDATE task_comments SET is_deleted = true, updated_at = now()
		 WHERE task_id IN (
			SELECT t.id FROM tasks t
			JOIN projects p ON p.id = t.project_id
			WHERE p.workspace_id = $1)`,
		`UPDATE task_attachments SET is_deleted = true
		 WHERE task_id IN (
			SELECT t.id FROM tasks t
			JOIN projects p ON p.id = t.project_id
			WHERE p.workspace_id = $1)`,
	}
	for _, stmt := range statements {
		if _, err := s.q.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *workspaceStore) ListByOwner(ctx context.Context, ownerID int64) ([]model.Workspace, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces
		 WHERE owner_id = $1 AND is_deleted = false ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectWorkspaces(rows)
}

func (s *workspaceStore) ListByMember(ctx context.Context, userID int64) ([]model.Workspace, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+prefixColumns("w.", workspaceColumns)+` FROM workspaces w
		 JOIN workspace_members m ON m.workspace_id = w.id
		 WHERE m.user_id = $1 AND w.is_deleted = false ORDER BY w.created_at`, userID)
	if err != nil {
		return nil, err
	}
	return collectWorkspaces(rows)
}

func scanWorkspace(row pgx.Row) (*model.Workspace, error) {
	var ws model.Workspace
	err := row.Scan(&ws.ID, &ws.OwnerID, &ws.Name, &ws.Slug, &ws.Description,
		&ws.Status, &ws.CreatedAt, &ws.UpdatedAt, &ws.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

func collectWorkspaces(rows pgx.Rows) ([]model.Workspace, error) {
	defer rows.Close()
	var result []model.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ws)
	}
	return result, rows.Err()
}
