package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"crewdesk.app/core/core/db"
	"crewdesk.app/core/internal/model"
)

type attachmentStore struct {
	q db.Querier
}

const attachmentColumns = `id, task_id, uploader_id, file_name, file_path, mime_type, size_bytes, created_at, is_deleted`

func (s *attachmentStore) GetByID(ctx context.Context, id int64) (*model.TaskAttachment, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+attachmentColumns+` FROM task_attachments WHERE id = $1 AND is_deleted = false`, id)
	return scanAttachment(row)
}

func (s *attachmentStore) Create(ctx context.Context, a *model.TaskAttachment) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO task_attachments (id, task_id, uploader_id, file_name, file_path, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+attachmentColumns,
		a.ID, a.TaskID, a.UploaderID, a.FileName, a.FilePath, a.MimeType, a.SizeBytes)
	created, err := scanAttachment(row)
	if err != nil {
		return err
	}
	*a = *created
	return nil
}

func (s *attachmentStore) Delete(ctx context.Context, id int64) error {
	_, err := s.q.Exec(ctx,
		`UPDATE task_attachments SET is_deleted = true WHERE id = $1`, id)
	return err
}

func (s *attachmentStore) ListByTask(ctx context.Context, taskID int64) ([]model.TaskAttachment, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+attachmentColumns+` FROM task_attachments
		 WHERE task_id = $1 AND is_deleted = false ORDER BY created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TaskAttachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func scanAttachment(row pgx.Row) (*model.TaskAttachment, error) {
	var a model.TaskAttachment
	err := row.Scan(&a.ID, &a.TaskID, &a.UploaderID, &a.FileName, &a.FilePath,
		&a.MimeType, &a.SizeBytes, &a.CreatedAt, &a.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
