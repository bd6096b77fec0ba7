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

type ProjectService interface {
	Create(ctx context.Context, actorID, workspaceID int64, name string, description *string) (*model.Project, error)
	Get(ctx context.Context, actorID, projectID int64) (*model.Project, error)
	UpdateStatus(ctx context.Context, actorID, projectID int64, status model.ProjectStatus) (*model.Project, error)
	Delete(ctx context.Context, actorID, projectID int64) error
	ListByWorkspace(ctx context.Context, actorID, workspaceID int64) ([]model.Project, error)
}

type projectService struct {
	workspaces store.WorkspaceStore
	projects   store.ProjectStore
	authz      *authz.Engine
	txRunner   TxRunner
}

func NewProjectService(
	workspaces store.WorkspaceStore,
	projects store.ProjectStore,
	authzEngine *authz.Engine,
	txRunner TxRunner,
) ProjectService {
	return &projectService{
		workspaces: workspaces,
		projects:   projects,
		authz:      authzEngine,
		txRunner:   txRunner,
	}
}

func (s *projectService) Create(ctx context.Context, actorID, workspaceID int64, name string, description *string) (*model.Project, error) {
	// A tombstoned workspace reads as missing, so creating under it fails
	// with not found rather than resurrecting anything.
	if _, err := s.workspaces.GetByID(ctx, workspaceID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("workspace")
		}
		return nil, apperr.Persistence(err, "loading workspace")
	}

	ok, err := s.authz.CanAccessWorkspace(ctx, actorID, workspaceID)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("create", "project")
	}

	projectName, err := model.NewName(name)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		ID:          id.New(),
		WorkspaceID: workspaceID,
		Name:        projectName.String(),
		Description: description,
		Status:      model.ProjectStatusActive,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperr.Persistence(err, "creating project")
	}
	return project, nil
}

func (s *projectService) Get(ctx context.Context, actorID, projectID int64) (*model.Project, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := s.authz.CanAccessProject(ctx, actorID, project)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("view", "project")
	}
	return project, nil
}

func (s *projectService) UpdateStatus(ctx context.Context, actorID, projectID int64, status model.ProjectStatus) (*model.Project, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := s.authz.CanAccessProject(ctx, actorID, project)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("update", "project")
	}

	switch status {
	case model.ProjectStatusActive, model.ProjectStatusCompleted, model.ProjectStatusArchived:
	default:
		return nil, apperr.Validation("unknown project status %q", status)
	}

	updated := project.WithStatus(status)
	if err := s.projects.Update(ctx, &updated); err != nil {
		return nil, apperr.Persistence(err, "updating project")
	}
	return &updated, nil
}

func (s *projectService) Delete(ctx context.Context, actorID, projectID int64) error {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}

	ok, err := s.authz.CanAccessProject(ctx, actorID, project)
	if err != nil {
		return apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return apperr.Forbidden("delete", "project")
	}

	// Cascades the tombstone to tasks, comments and attachment metadata.
	err = s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		return sp.Projects().Delete(ctx, projectID)
	})
	if err != nil {
		return apperr.Persistence(err, "deleting project")
	}
	return nil
}

func (s *projectService) ListByWorkspace(ctx context.Context, actorID, workspaceID int64) ([]model.Project, error) {
	ok, err := s.authz.CanAccessWorkspace(ctx, actorID, workspaceID)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("view", "workspace")
	}

	projects, err := s.projects.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperr.Persistence(err, "listing projects")
	}
	return projects, nil
}

func (s *projectService) loadProject(ctx context.Context, projectID int64) (*model.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("project")
		}
		return nil, apperr.Persistence(err, "loading project")
	}
	return project, nil
}
