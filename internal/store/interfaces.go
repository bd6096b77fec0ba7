package store

import (
	"context"
	"errors"

	"crewdesk.app/core/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist or has been
// tombstoned. It is the only not-found signal stores emit; services translate
// it into the caller-facing error taxonomy.
var ErrNotFound = errors.New("not found")

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error // soft delete
}

// WorkspaceStore defines the contract for workspace data access
type WorkspaceStore interface {
	GetByID(ctx context.Context, id int64) (*model.Workspace, error)
	GetBySlug(ctx context.Context, slug string) (*model.Workspace, error)
	Create(ctx context.Context, ws *model.Workspace) error
	Update(ctx context.Context, ws *model.Workspace) error
	Delete(ctx context.Context, id int64) error // soft delete, cascades to projects and below
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Workspace, error)
	ListByMember(ctx context.Context, userID int64) ([]model.Workspace, error)
}

// MembershipStore defines the contract for the workspace/user join.
type MembershipStore interface {
	IsMember(ctx context.Context, workspaceID, userID int64) (bool, error)
	GetMember(ctx context.Context, workspaceID, userID int64) (*model.Membership, error)
	// AddMember upserts: re-adding an existing member refreshes role and
	// joined_at instead of duplicating the row.
	AddMember(ctx context.Context, m *model.Membership) error
	// RemoveMember is a no-op when no such membership exists.
	RemoveMember(ctx context.Context, workspaceID, userID int64) error
	UpdateMemberRole(ctx context.Context, workspaceID, userID int64, role model.MemberRole) error
	ListMembers(ctx context.Context, workspaceID int64) ([]model.Membership, error)
}

// ProjectStore defines the contract for project data access
type ProjectStore interface {
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	Create(ctx context.Context, p *model.Project) error
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id int64) error // soft delete, cascades to tasks and below
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Project, error)
}

// TaskStore defines the contract for task data access
type TaskStore interface {
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	Create(ctx context.Context, t *model.Task) error
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id int64) error // soft delete, cascades to comments/attachments
	ListByProject(ctx context.Context, projectID int64) ([]model.Task, error)
	ListByAssignee(ctx context.Context, userID int64) ([]model.Task, error)
}

// CommentStore defines the contract for task comment data access
type CommentStore interface {
	GetByID(ctx context.Context, id int64) (*model.TaskComment, error)
	Create(ctx context.Context, c *model.TaskComment) error
	Update(ctx context.Context, c *model.TaskComment) error
	Delete(ctx context.Context, id int64) error // soft delete
	ListByTask(ctx context.Context, taskID int64) ([]model.TaskComment, error)
}

// AttachmentStore defines the contract for task attachment metadata access
type AttachmentStore interface {
	GetByID(ctx context.Context, id int64) (*model.TaskAttachment, error)
	Create(ctx context.Context, a *model.TaskAttachment) error
	Delete(ctx context.Context, id int64) error // soft delete
	ListByTask(ctx context.Context, taskID int64) ([]model.TaskAttachment, error)
}

// EventLogStore persists the audit trail of published domain events.
type EventLogStore interface {
	Create(ctx context.Context, e *model.EventLog) error
	ListByWorkspace(ctx context.Context, workspaceID int64, limit int32) ([]model.EventLog, error)
}
