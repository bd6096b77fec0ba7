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

type CommentService interface {
	Add(ctx context.Context, actorID, taskID int64, body string) (*model.TaskComment, error)
	// Update allows the author to edit their comment while it is still inside
	// the configured edit window.
	Update(ctx context.Context, actorID, commentID int64, body string) (*model.TaskComment, error)
	Delete(ctx context.Context, actorID, commentID int64) error
	ListByTask(ctx context.Context, actorID, taskID int64) ([]model.TaskComment, error)
}

type commentService struct {
	tasks    store.TaskStore
	comments store.CommentStore
	authz    *authz.Engine
	bus      *event.Bus
	now      func() time.Time
}

func NewCommentService(
	tasks store.TaskStore,
	comments store.CommentStore,
	authzEngine *authz.Engine,
	bus *event.Bus,
) CommentService {
	return &commentService{
		tasks:    tasks,
		comments: comments,
		authz:    authzEngine,
		bus:      bus,
		now:      time.Now,
	}
}

func (s *commentService) Add(ctx context.Context, actorID, taskID int64, body string) (*model.TaskComment, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("task")
		}
		return nil, apperr.Persistence(err, "loading task")
	}

	ok, err := s.authz.CanAccessTask(ctx, actorID, task)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("comment on", "task")
	}

	content, err := model.NewCommentContent(body)
	if err != nil {
		return nil, err
	}

	comment := &model.TaskComment{
		ID:       id.New(),
		TaskID:   taskID,
		AuthorID: actorID,
		Body:     content.String(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Persistence(err, "creating comment")
	}

	s.bus.Publish(ctx, event.CommentAdded{Comment: *comment, ActorID: actorID})
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actorID, commentID int64, body string) (*model.TaskComment, error) {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !s.authz.CanUpdateComment(actorID, comment, now) {
		return nil, apperr.Forbidden("update", "comment")
	}

	content, err := model.NewCommentContent(body)
	if err != nil {
		return nil, err
	}

	updated := comment.WithBody(content.String(), now)
	if err := s.comments.Update(ctx, &updated); err != nil {
		return nil, apperr.Persistence(err, "updating comment")
	}

	s.bus.Publish(ctx, event.CommentUpdated{Comment: updated, ActorID: actorID})
	return &updated, nil
}

func (s *commentService) Delete(ctx context.Context, actorID, commentID int64) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}

	if !s.authz.CanDeleteComment(actorID, comment) {
		return apperr.Forbidden("delete", "comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return apperr.Persistence(err, "deleting comment")
	}
	return nil
}

func (s *commentService) ListByTask(ctx context.Context, actorID, taskID int64) ([]model.TaskComment, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("task")
		}
		return nil, apperr.Persistence(err, "loading task")
	}

	ok, err := s.authz.CanAccessTask(ctx, actorID, task)
	if err != nil {
		return nil, apperr.Persistence(err, "checking workspace membership")
	}
	if !ok {
		return nil, apperr.Forbidden("view", "task")
	}

	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperr.Persistence(err, "listing comments")
	}
	return comments, nil
}

func (s *commentService) loadComment(ctx context.Context, commentID int64) (*model.TaskComment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("comment")
		}
		return nil, apperr.Persistence(err, "loading comment")
	}
	return comment, nil
}
