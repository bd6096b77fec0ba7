package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"crewdesk.app/core/core/db"
	"crewdesk.app/core/internal/model"
)

type membershipStore struct {
	q db.Querier
}

const membershipColumns = `workspace_id, user_id, role, joined_at`

func (s *membershipStore) IsMember(ctx context.Context, workspaceID, userID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM workspace_members
			WHERE workspace_id = $1 AND user_id = $2)`,
		workspaceID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *membershipStore) GetMember(ctx context.Context, workspaceID, userID int64) (*model.Membership, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM workspace_members
		 WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID)
	return scanMembership(row)
}

func (s *membershipStore) AddMember(ctx context.Context, m *model.Membership) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (workspace_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, joined_at = EXCLUDED.joined_at
		RETURNING `+membershipColumns,
		m.WorkspaceID, m.UserID, m.Role)
	added, err := scanMembership(row)
	if err != nil {
		return err
	}
	*m = *added
	return nil
}

func (s *membershipStore) RemoveMember(ctx context.Context, workspaceID, userID int64) error {
	_, err := s.q.Exec(ctx,
		`DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID)
	return err
}

func (s *membershipStore) UpdateMemberRole(ctx context.Context, workspaceID, userID int64, role model.MemberRole) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE workspace_members SET role = $3 WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *membershipStore) ListMembers(ctx context.Context, workspaceID int64) ([]model.Membership, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+membershipColumns+` FROM workspace_members
		 WHERE workspace_id = $1 ORDER BY joined_at`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}

func scanMembership(row pgx.Row) (*model.Membership, error) {
	var m model.Membership
	err := row.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
