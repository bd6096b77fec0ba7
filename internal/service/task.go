package service

import (
	"context"
	"errors"
	"time"

	"crewdesk.app/core/common/id"
	"crewdesk.app/core/core/apperr"
	"crewdesk.app/core/internal/authz"
	"crewdesk.app/core/internal/event"
	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/store"
)

type CreateTaskParams struct {
	Title       string
	Description *string
	AssigneeID  *int64
	Priority    model.TaskPriority
	DueDate     *time.Time
}

// UpdateTaskParams carries the fields to change; nil means leave as is.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	AssigneeID  *int64
	Priority    *model.TaskPriority
	Status      *model.TaskStatus
	DueDate     *time.Time
}

type TaskService interface {
	Create(ctx context.Context, actorID, projectID int64, params CreateTaskParams) (*model.Task, error)
	Get(ctx context.Context, actorID, taskID int64) (*model.Task, error)
	Update(ctx context.Context, actorID, taskID int64, params UpdateTaskParams) (*model.Task, error)
	// Complete marks the task completed from any non-terminal status. Calling
	// it on an already completed task is a no-op success.
	Complete(ctx context.Context, actorID, taskID int64) (*model.Task, error)
	Delete(ctx context.Context, actorID, taskID int64) error
	ListByProject(ctx context.Context, actorID, projectID int64) ([]model.Task, error)
}

type taskService struct {
	projects store.ProjectStore
	tasks    store.TaskStore
	authz    *authz.Engine
	bus      *event.Bus
	txRunner TxRunner
	now      func() time.Time
}

func NewTaskService(
	projects store.ProjectStore,
	tasks store.TaskStore,
	authzEngine *authz.Engine,
	bus *event.Bus,
	txRunner TxRunner,
) TaskService {
	return &taskService{
		projects: projects,
		tasks:    tasks,
		authz:    authzEngine,
		bus:      bus,
		txRunner: txRunner,
		now:      time.Now,
	}
}

func (s *taskService) Create(ctx context.Context, actorID, projectID int64, params CreateTaskParams) (*model.Task, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("project")
		}
		return nil, apperr.Persistence(err, "loading project")
	}

	ok, err := s.authz.CanAccessProject(ctx, actorID, project)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("create", "task")
	}

	title, err := model.NewTaskTitle(params.Title)
	if err != nil {
		return nil, err
	}
	if params.DueDate != nil && params.DueDate.Before(s.now()) {
		return nil, apperr.Validation("due date cannot be in the past")
	}

	priority := params.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}

	task := &model.Task{
		ID:          id.New(),
		ProjectID:   projectID,
		Title:       title.String(),
		Description: params.Description,
		AssigneeID:  params.AssigneeID,
		Status:      model.TaskStatusPending,
		Priority:    priority,
		DueDate:     params.DueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperr.Persistence(err, "creating task")
	}

	// Published only after the row is committed.
	s.bus.Publish(ctx, event.TaskCreated{Task: *task, ActorID: actorID})
	return task, nil
}

func (s *taskService) Get(ctx context.Context, actorID, taskID int64) (*model.Task, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTaskAccess(ctx, actorID, task, "view"); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, actorID, taskID int64, params UpdateTaskParams) (*model.Task, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTaskAccess(ctx, actorID, task, "update"); err != nil {
		return nil, err
	}

	updated := *task
	if params.Title != nil {
		title, err := model.NewTaskTitle(*params.Title)
		if err != nil {
			return nil, err
		}
		updated.Title = title.String()
	}
	if params.Description != nil {
		updated.Description = params.Description
	}
	if params.AssigneeID != nil {
		updated = updated.WithAssignee(params.AssigneeID)
	}
	if params.Priority != nil {
		updated.Priority = *params.Priority
	}
	if params.DueDate != nil {
		if params.DueDate.Before(s.now()) {
			return nil, apperr.Validation("due date cannot be in the past")
		}
		updated.DueDate = params.DueDate
	}

	completing := false
	if params.Status != nil {
		if !task.Status.CanTransitionTo(*params.Status) {
			return nil, apperr.Validation("cannot transition task from %s to %s", task.Status, *params.Status)
		}
		completing = *params.Status == model.TaskStatusCompleted && task.Status != model.TaskStatusCompleted
		updated = updated.WithStatus(*params.Status)
	}

	if err := s.tasks.Update(ctx, &updated); err != nil {
		return nil, apperr.Persistence(err, "updating task")
	}

	if completing {
		s.bus.Publish(ctx, event.TaskCompleted{Task: updated, ActorID: actorID})
	}
	return &updated, nil
}

func (s *taskService) Complete(ctx context.Context, actorID, taskID int64) (*model.Task, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTaskAccess(ctx, actorID, task, "complete"); err != nil {
		return nil, err
	}

	// Idempotent: a second completion returns the task unchanged and does not
	// re-publish the event.
	if task.Status == model.TaskStatusCompleted {
		return task, nil
	}
	if task.Status == model.TaskStatusCancelled {
		return nil, apperr.Validation("cannot complete a cancelled task")
	}

	completed := task.MarkCompleted()
	if err := s.tasks.Update(ctx, &completed); err != nil {
		return nil, apperr.Persistence(err, "completing task")
	}

	s.bus.Publish(ctx, event.TaskCompleted{Task: completed, ActorID: actorID})
	return &completed, nil
}

func (s *taskService) Delete(ctx context.Context, actorID, taskID int64) error {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.requireTaskAccess(ctx, actorID, task, "delete"); err != nil {
		return err
	}

	err = s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		return sp.Tasks().Delete(ctx, taskID)
	})
	if err != nil {
		return apperr.Persistence(err, "deleting task")
	}
	return nil
}

func (s *taskService) ListByProject(ctx context.Context, actorID, projectID int64) ([]model.Task, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("project")
		}
		return nil, apperr.Persistence(err, "loading project")
	}

	ok, err := s.authz.CanAccessProject(ctx, actorID, project)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("view", "project")
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Persistence(err, "listing tasks")
	}
	return tasks, nil
}

func (s *taskService) loadTask(ctx context.Context, taskID int64) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("task")
		}
		return nil, apperr.Persistence(err, "loading task")
	}
	return task, nil
}

func (s *taskService) requireTaskAccess(ctx context.Context, actorID int64, task *model.Task, action string) error {
	ok, err := s.authz.CanAccessTask(ctx, actorID, task)
	if err != nil {
		return apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return apperr.Forbidden(action, "task")
	}
	return nil
}
