package service_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"crewdesk.app/core/common/id"
	"crewdesk.app/core/core/apperr"
	"crewdesk.app/core/internal/authz"
	"crewdesk.app/core/internal/event"
	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/service"
	"crewdesk.app/core/internal/storage"
	"crewdesk.app/core/internal/store"
)

type mockFileStore struct {
	storeFn    func(ctx context.Context, content []byte, path string) (string, error)
	storeCalls int
}

func (m *mockFileStore) Store(ctx context.Context, content []byte, path string) (string, error) {
	m.storeCalls++
	if m.storeFn != nil {
		return m.storeFn(ctx, content, path)
	}
	return path, nil
}

func (m *mockFileStore) Read(_ context.Context, _ string) ([]byte, error) {
	return nil, storage.ErrFileNotFound
}

func (m *mockFileStore) Exists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

var _ = Describe("AttachmentService", func() {
	var (
		svc             service.AttachmentService
		mockTasks       *mockTaskStore
		mockAttachments *mockAttachmentStore
		files           *mockFileStore
		recorder        *eventRecorder
		ctx             context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockTasks = &mockTaskStore{
			getByIDFn: func(_ context.Context, taskID int64) (*model.Task, error) {
				if taskID == 9 {
					return &model.Task{ID: 9, ProjectID: 5}, nil
				}
				return nil, store.ErrNotFound
			},
		}
		mockAttachments = &mockAttachmentStore{}
		files = &mockFileStore{}
		mockProjects := &mockProjectStore{
			getByIDFn: func(_ context.Context, _ int64) (*model.Project, error) {
				return &model.Project{ID: 5, WorkspaceID: 1}, nil
			},
		}
		mockMemberships := &mockMembershipStore{
			isMemberFn: func(_ context.Context, workspaceID, userID int64) (bool, error) {
				return workspaceID == 1 && (userID == 10 || userID == 20), nil
			},
		}
		Expect(id.Init(1)).To(Succeed())

		engine := authz.NewEngine(mockMemberships, mockProjects, mockTasks, &mockUserStore{}, 0)
		bus, rec := newRecordedBus()
		recorder = rec
		svc = service.NewAttachmentService(mockTasks, mockAttachments, files, engine, bus, "attachments")
	})

	Describe("Upload", func() {
		params := service.UploadAttachmentParams{
			FileName: "report.pdf",
			MimeType: "application/pdf",
			Content:  []byte("pdf bytes"),
		}

		It("stores content before metadata and publishes the event", func() {
			mockAttachments.createFn = func(_ context.Context, a *model.TaskAttachment) error {
				Expect(files.storeCalls).To(Equal(1))
				Expect(recorder.events).To(BeEmpty())
				return nil
			}

			attachment, err := svc.Upload(ctx, 10, 9, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(attachment.UploaderID).To(Equal(int64(10)))
			Expect(attachment.SizeBytes).To(Equal(int64(len(params.Content))))
			Expect(strings.HasPrefix(attachment.FilePath, "attachments/9/")).To(BeTrue())
			Expect(strings.HasSuffix(attachment.FilePath, "/report.pdf")).To(BeTrue())

			Expect(recorder.events).To(HaveLen(1))
			uploaded, ok := recorder.events[0].(event.AttachmentUploaded)
			Expect(ok).To(BeTrue())
			Expect(uploaded.Channel()).To(Equal("task.9"))
		})

		It("does not write metadata when content storage fails", func() {
			files.storeFn = func(_ context.Context, _ []byte, _ string) (string, error) {
				return "", errors.New("disk full")
			}

			_, err := svc.Upload(ctx, 10, 9, params)
			Expect(errors.Is(err, apperr.ErrPersistence)).To(BeTrue())
			Expect(mockAttachments.createCalls).To(BeZero())
			Expect(recorder.events).To(BeEmpty())
		})

		It("maps oversize content to a validation error", func() {
			files.storeFn = func(_ context.Context, _ []byte, _ string) (string, error) {
				return "", storage.ErrFileTooLarge
			}

			_, err := svc.Upload(ctx, 10, 9, params)
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
		})

		It("rejects file names with path separators", func() {
			bad := params
			bad.FileName = "../../etc/passwd"

			_, err := svc.Upload(ctx, 10, 9, bad)
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
			Expect(files.storeCalls).To(BeZero())
		})

		It("denies non-members", func() {
			_, err := svc.Upload(ctx, 30, 9, params)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			mockAttachments.getByIDFn = func(_ context.Context, attachmentID int64) (*model.TaskAttachment, error) {
				if attachmentID == 2 {
					return &model.TaskAttachment{ID: 2, TaskID: 9, UploaderID: 10}, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("lets the uploader delete", func() {
			Expect(svc.Delete(ctx, 10, 2)).To(Succeed())
			Expect(mockAttachments.deleteCalls).To(Equal(1))
		})

		It("denies other members", func() {
			err := svc.Delete(ctx, 20, 2)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})

		It("returns not found for a missing attachment", func() {
			err := svc.Delete(ctx, 10, 404)
			Expect(errors.Is(err, apperr.ErrNotFound)).To(BeTrue())
		})
	})
})
