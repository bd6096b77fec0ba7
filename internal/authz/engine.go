// Package authz centralizes the permission rules for every mutation. Checks
// return (false, nil) for a plain denial; an error means the check itself
// could not run. Services translate denials into forbidden errors so the
// policy here stays free of error-shaping concerns.
package authz

import (
	"context"
	"errors"
	"time"

	"crewdesk.app/core/internal/event"
	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/store"
)

type Engine struct {
	memberships store.MembershipStore
	projects    store.ProjectStore
	tasks       store.TaskStore
	users       store.UserStore

	commentEditWindow time.Duration
}

func NewEngine(
	memberships store.MembershipStore,
	projects store.ProjectStore,
	tasks store.TaskStore,
	users store.UserStore,
	commentEditWindow time.Duration,
) *Engine {
	return &Engine{
		memberships:       memberships,
		projects:          projects,
		tasks:             tasks,
		users:             users,
		commentEditWindow: commentEditWindow,
	}
}

// Workspace update and delete are owner-only. owner_id on the workspace row
// is authoritative; the owner's membership row is informational.

func (e *Engine) CanUpdateWorkspace(actorID int64, ws *model.Workspace) bool {
	return ws.OwnerID == actorID
}

func (e *Engine) CanDeleteWorkspace(actorID int64, ws *model.Workspace) bool {
	return ws.OwnerID == actorID
}

// CanManageMembers allows the workspace owner and admin-role members to add
// or remove members.
func (e *Engine) CanManageMembers(ctx context.Context, actorID int64, ws *model.Workspace) (bool, error) {
	if ws.OwnerID == actorID {
		return true, nil
	}
	member, err := e.memberships.GetMember(ctx, ws.ID, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return member.Role == model.MemberRoleAdmin, nil
}

// CanAccessWorkspace gates every read and write scoped to a workspace:
// membership is the only thing that grants access.
func (e *Engine) CanAccessWorkspace(ctx context.Context, actorID, workspaceID int64) (bool, error) {
	return e.memberships.IsMember(ctx, workspaceID, actorID)
}

func (e *Engine) CanAccessProject(ctx context.Context, actorID int64, project *model.Project) (bool, error) {
	return e.CanAccessWorkspace(ctx, actorID, project.WorkspaceID)
}

// CanAccessTask resolves task -> project -> workspace and checks membership.
func (e *Engine) CanAccessTask(ctx context.Context, actorID int64, task *model.Task) (bool, error) {
	project, err := e.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return e.CanAccessWorkspace(ctx, actorID, project.WorkspaceID)
}

// CanUpdateComment requires authorship and that the comment is still inside
// the edit window, measured from its creation time.
func (e *Engine) CanUpdateComment(actorID int64, comment *model.TaskComment, now time.Time) bool {
	if comment.AuthorID != actorID {
		return false
	}
	if e.commentEditWindow <= 0 {
		return true
	}
	return now.Sub(comment.CreatedAt) <= e.commentEditWindow
}

// CanDeleteComment requires authorship only; authors may remove their own
// comments at any time.
func (e *Engine) CanDeleteComment(actorID int64, comment *model.TaskComment) bool {
	return comment.AuthorID == actorID
}

// CanDeleteAttachment requires the actor to be the uploader.
func (e *Engine) CanDeleteAttachment(actorID int64, attachment *model.TaskAttachment) bool {
	return attachment.UploaderID == actorID
}

// User profile operations are allowed for the user themselves or a global
// admin.

func (e *Engine) CanViewUser(ctx context.Context, actorID, targetID int64) (bool, error) {
	return e.selfOrAdmin(ctx, actorID, targetID)
}

func (e *Engine) CanUpdateUser(ctx context.Context, actorID, targetID int64) (bool, error) {
	return e.selfOrAdmin(ctx, actorID, targetID)
}

func (e *Engine) CanDeleteUser(ctx context.Context, actorID, targetID int64) (bool, error) {
	return e.selfOrAdmin(ctx, actorID, targetID)
}

func (e *Engine) selfOrAdmin(ctx context.Context, actorID, targetID int64) (bool, error) {
	if actorID == targetID {
		return true, nil
	}
	actor, err := e.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return actor.IsAdmin, nil
}

// CanSubscribe authorizes a real-time channel subscription. The decision is
// re-derived from the channel name alone: the referenced task or project is
// resolved to its workspace and the actor must be a member.
func (e *Engine) CanSubscribe(ctx context.Context, actorID int64, channel string) (bool, error) {
	kind, id, err := event.ParseChannel(channel)
	if err != nil {
		return false, err
	}

	var projectID int64
	switch kind {
	case event.ChannelKindTask:
		task, err := e.tasks.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		projectID = task.ProjectID
	case event.ChannelKindProject:
		projectID = id
	}

	project, err := e.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return e.CanAccessWorkspace(ctx, actorID, project.WorkspaceID)
}
