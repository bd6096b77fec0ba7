package service

import (
	"context"
	"errors"

	"crewdesk.app/core/common/id"
	"crewdesk.app/core/core/apperr"
	"crewdesk.app/core/internal/authz"
	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/store"
)

type WorkspaceService interface {
	Create(ctx context.Context, actorID int64, name string, description *string) (*model.Workspace, error)
	Get(ctx context.Context, actorID, workspaceID int64) (*model.Workspace, error)
	Update(ctx context.Context, actorID, workspaceID int64, name string, description *string) (*model.Workspace, error)
	Delete(ctx context.Context, actorID, workspaceID int64) error
	AddMember(ctx context.Context, actorID, workspaceID, userID int64, role model.MemberRole) error
	RemoveMember(ctx context.Context, actorID, workspaceID, userID int64) error
	ListMembers(ctx context.Context, actorID, workspaceID int64) ([]model.Membership, error)
	ListForUser(ctx context.Context, actorID int64) ([]model.Workspace, error)
}

type workspaceService struct {
	workspaces  store.WorkspaceStore
	memberships store.MembershipStore
	users       store.UserStore
	authz       *authz.Engine
	txRunner    TxRunner
}

func NewWorkspaceService(
	workspaces store.WorkspaceStore,
	memberships store.MembershipStore,
	users store.UserStore,
	authzEngine *authz.Engine,
	txRunner TxRunner,
) WorkspaceService {
	return &workspaceService{
		workspaces:  workspaces,
		memberships: memberships,
		users:       users,
		authz:       authzEngine,
		txRunner:    txRunner,
	}
}

func (s *workspaceService) Create(ctx context.Context, actorID int64, name string, description *string) (*model.Workspace, error) {
	wsName, err := model.NewWorkspaceName(name)
	if err != nil {
		return nil, err
	}
	slug, err := wsName.Slug()
	if err != nil {
		return nil, err
	}

	if err := s.ensureSlugAvailable(ctx, slug, 0); err != nil {
		return nil, err
	}

	ws := &model.Workspace{
		ID:          id.New(),
		OwnerID:     actorID,
		Name:        wsName.String(),
		Slug:        slug,
		Description: description,
		Status:      model.WorkspaceStatusActive,
	}

	// Workspace and owner membership commit together or not at all.
	err = s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if err := sp.Workspaces().Create(ctx, ws); err != nil {
			return err
		}
		return sp.Memberships().AddMember(ctx, &model.Membership{
			WorkspaceID: ws.ID,
			UserID:      actorID,
			Role:        model.MemberRoleOwner,
		})
	})
	if err != nil {
		return nil, apperr.Persistence(err, "creating workspace")
	}

	return ws, nil
}

func (s *workspaceService) Get(ctx context.Context, actorID, workspaceID int64) (*model.Workspace, error) {
	ws, err := s.loadWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	ok, err := s.authz.CanAccessWorkspace(ctx, actorID, workspaceID)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("view", "workspace")
	}
	return ws, nil
}

func (s *workspaceService) Update(ctx context.Context, actorID, workspaceID int64, name string, description *string) (*model.Workspace, error) {
	ws, err := s.loadWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if !s.authz.CanUpdateWorkspace(actorID, ws) {
		return nil, apperr.Forbidden("update", "workspace")
	}

	wsName, err := model.NewWorkspaceName(name)
	if err != nil {
		return nil, err
	}
	slug, err := wsName.Slug()
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(ctx, slug, ws.ID); err != nil {
		return nil, err
	}

	updated := ws.WithName(wsName.String(), slug)
	updated.Description = description
	if err := s.workspaces.Update(ctx, &updated); err != nil {
		return nil, apperr.Persistence(err, "updating workspace")
	}
	return &updated, nil
}

func (s *workspaceService) Delete(ctx context.Context, actorID, workspaceID int64) error {
	ws, err := s.loadWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	if !s.authz.CanDeleteWorkspace(actorID, ws) {
		return apperr.Forbidden("delete", "workspace")
	}

	// The store cascades the tombstone down to projects, tasks, comments and
	// attachment metadata in one transaction.
	err = s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		return sp.Workspaces().Delete(ctx, workspaceID)
	})
	if err != nil {
		return apperr.Persistence(err, "deleting workspace")
	}
	return nil
}

func (s *workspaceService) AddMember(ctx context.Context, actorID, workspaceID, userID int64, role model.MemberRole) error {
	ws, err := s.loadWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	ok, err := s.authz.CanManageMembers(ctx, actorID, ws)
	if err != nil {
		return apperr.Persistence(err, "checking member management permission")
	}
	if !ok {
		return apperr.Forbidden("manage members of", "workspace")
	}

	if role != model.MemberRoleAdmin && role != model.MemberRoleMember {
		return apperr.Validation("role must be admin or member")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("user")
		}
		return apperr.Persistence(err, "loading user")
	}

	// Upsert: adding an existing member refreshes the role instead of failing.
	if err := s.memberships.AddMember(ctx, &model.Membership{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}); err != nil {
		return apperr.Persistence(err, "adding workspace member")
	}
	return nil
}

func (s *workspaceService) RemoveMember(ctx context.Context, actorID, workspaceID, userID int64) error {
	ws, err := s.loadWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}

	ok, err := s.authz.CanManageMembers(ctx, actorID, ws)
	if err != nil {
		return apperr.Persistence(err, "checking member management permission")
	}
	if !ok {
		return apperr.Forbidden("manage members of", "workspace")
	}

	if userID == ws.OwnerID {
		return apperr.Validation("the workspace owner cannot be removed")
	}

	// Removing a non-member is a no-op by contract.
	if err := s.memberships.RemoveMember(ctx, workspaceID, userID); err != nil {
		return apperr.Persistence(err, "removing workspace member")
	}
	return nil
}

func (s *workspaceService) ListMembers(ctx context.Context, actorID, workspaceID int64) ([]model.Membership, error) {
	if _, err := s.loadWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}

	ok, err := s.authz.CanAccessWorkspace(ctx, actorID, workspaceID)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("view", "workspace")
	}

	members, err := s.memberships.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, apperr.Persistence(err, "listing workspace members")
	}
	return members, nil
}

func (s *workspaceService) ListForUser(ctx context.Context, actorID int64) ([]model.Workspace, error) {
	workspaces, err := s.workspaces.ListByMember(ctx, actorID)
	if err != nil {
		return nil, apperr.Persistence(err, "listing workspaces")
	}
	return workspaces, nil
}

func (s *workspaceService) loadWorkspace(ctx context.Context, workspaceID int64) (*model.Workspace, error) {
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("workspace")
		}
		return nil, apperr.Persistence(err, "loading workspace")
	}
	return ws, nil
}

func (s *workspaceService) ensureSlugAvailable(ctx context.Context, slug string, selfID int64) error {
	existing, err := s.workspaces.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return apperr.Persistence(err, "checking slug availability")
	}
	if existing.ID == selfID {
		return nil
	}
	return apperr.Conflict("workspace slug %q is already taken", slug)
}
