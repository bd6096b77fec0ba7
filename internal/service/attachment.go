package service

import (
	"context"
	"errors"
	"fmt"

	"crewdesk.app/core/common/id"
	"crewdesk.app/core/core/apperr"
	"crewdesk.app/core/internal/authz"
	"crewdesk.app/core/internal/event"
	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/storage"
	"crewdesk.app/core/internal/store"
)

type UploadAttachmentParams struct {
	FileName string
	MimeType string
	Content  []byte
}

type AttachmentService interface {
	// Upload stores the file content first and only then persists metadata,
	// so a metadata row never points at bytes that were not written.
	Upload(ctx context.Context, actorID, taskID int64, params UploadAttachmentParams) (*model.TaskAttachment, error)
	Delete(ctx context.Context, actorID, attachmentID int64) error
	ListByTask(ctx context.Context, actorID, taskID int64) ([]model.TaskAttachment, error)
}

type attachmentService struct {
	tasks       store.TaskStore
	attachments store.AttachmentStore
	files       storage.FileStore
	authz       *authz.Engine
	bus         *event.Bus
	namespace   string
}

func NewAttachmentService(
	tasks store.TaskStore,
	attachments store.AttachmentStore,
	files storage.FileStore,
	authzEngine *authz.Engine,
	bus *event.Bus,
	namespace string,
) AttachmentService {
	return &attachmentService{
		tasks:       tasks,
		attachments: attachments,
		files:       files,
		authz:       authzEngine,
		bus:         bus,
		namespace:   namespace,
	}
}

func (s *attachmentService) Upload(ctx context.Context, actorID, taskID int64, params UploadAttachmentParams) (*model.TaskAttachment, error) {
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
		return nil, apperr.Forbidden("attach files to", "task")
	}

	fileName, err := model.NewFileName(params.FileName)
	if err != nil {
		return nil, err
	}
	if len(params.Content) == 0 {
		return nil, apperr.Validation("attachment content is required")
	}

	attachmentID := id.New()
	path, err := model.NewFilePath(
		fmt.Sprintf("%s/%d/%d/%s", s.namespace, taskID, attachmentID, fileName.String()),
		s.namespace,
	)
	if err != nil {
		return nil, err
	}

	finalPath, err := s.files.Store(ctx, params.Content, path.String())
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			return nil, apperr.Validation("attachment exceeds the maximum allowed size")
		}
		return nil, apperr.Persistence(err, "storing attachment content")
	}

	attachment := &model.TaskAttachment{
		ID:         attachmentID,
		TaskID:     taskID,
		UploaderID: actorID,
		FileName:   fileName.String(),
		FilePath:   finalPath,
		MimeType:   params.MimeType,
		SizeBytes:  int64(len(params.Content)),
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperr.Persistence(err, "creating attachment metadata")
	}

	s.bus.Publish(ctx, event.AttachmentUploaded{Attachment: *attachment, ActorID: actorID})
	return attachment, nil
}

func (s *attachmentService) Delete(ctx context.Context, actorID, attachmentID int64) error {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("attachment")
		}
		return apperr.Persistence(err, "loading attachment")
	}

	if !s.authz.CanDeleteAttachment(actorID, attachment) {
		return apperr.Forbidden("delete", "attachment")
	}

	// Metadata is tombstoned; the bytes stay on disk for later garbage
	// collection.
	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return apperr.Persistence(err, "deleting attachment")
	}
	return nil
}

func (s *attachmentService) ListByTask(ctx context.Context, actorID, taskID int64) ([]model.TaskAttachment, error) {
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

	attachments, err := s.attachments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperr.Persistence(err, "listing attachments")
	}
	return attachments, nil
}
