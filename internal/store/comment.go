package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"crewdesk.app/core/core/db"
	"crewdesk.app/core/internal/model"
)

type commentStore struct {
	q db.Querier
}

const commentColumns = `id, task_id, author_id, body, created_at, updated_at, is_deleted`

func (s *commentStore) GetByID(ctx context.Context, id int64) (*model.TaskComment, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM task_comments WHERE id = $1 AND is_deleted = false`, id)
	return scanComment(row)
}

func (s *commentStore) Create(ctx context.Context, c *model.TaskComment) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO task_comments (id, task_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING `+commentColumns,
		c.ID, c.TaskID, c.AuthorID, c.Body)
	created, err := scanComment(row)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

func (s *commentStore) Update(ctx context.Context, c *model.TaskComment) error {
	row := s.q.QueryRow(ctx, `
		UPDATE task_comments SET body = $2, updated_at = now()
		WHERE id = $1 AND is_deleted = false
		RETURNING `+commentColumns,
		c.ID, c.Body)
	updated, err := scanComment(row)
	if err != nil {
		return err
	}
	*c = *updated
	return nil
}

func (s *commentStore) Delete(ctx context.Context, id int64) error {
	_, err := s.q.Exec(ctx,
		`UPDATE task_comments SET is_deleted = true, updated_at = now() WHERE id = $1`, id)
	return err
}

func (s *commentStore) ListByTask(ctx context.Context, taskID int64) ([]model.TaskComment, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+commentColumns+` FROM task_comments
		 WHERE task_id = $1 AND is_deleted = false ORDER BY created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TaskComment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func scanComment(row pgx.Row) (*model.TaskComment, error) {
	var c model.TaskComment
	err := row.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body,
		&c.CreatedAt, &c.UpdatedAt, &c.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
