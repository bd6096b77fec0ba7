package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"crewdesk.app/core/common/id"
	"crewdesk.app/core/core/apperr"
	"crewdesk.app/core/internal/authz"
	"crewdesk.app/core/internal/event"
	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/service"
	"crewdesk.app/core/internal/store"
)

var _ = Describe("CommentService", func() {
	var (
		svc          service.CommentService
		mockTasks    *mockTaskStore
		mockComments *mockCommentStore
		recorder     *eventRecorder
		ctx          context.Context
	)

	editWindow := 30 * time.Minute

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
		mockComments = &mockCommentStore{}
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

		engine := authz.NewEngine(mockMemberships, mockProjects, mockTasks, &mockUserStore{}, editWindow)
		bus, rec := newRecordedBus()
		recorder = rec
		svc = service.NewCommentService(mockTasks, mockComments, engine, bus)
	})

	Describe("Add", func() {
		It("persists the comment and publishes the event afterwards", func() {
			mockComments.createFn = func(_ context.Context, c *model.TaskComment) error {
				Expect(recorder.events).To(BeEmpty())
				return nil
			}

			comment, err := svc.Add(ctx, 10, 9, "Looks good to me")
			Expect(err).NotTo(HaveOccurred())
			Expect(comment.AuthorID).To(Equal(int64(10)))
			Expect(comment.TaskID).To(Equal(int64(9)))

			Expect(recorder.events).To(HaveLen(1))
			added, ok := recorder.events[0].(event.CommentAdded)
			Expect(ok).To(BeTrue())
			Expect(added.Channel()).To(Equal("task.9"))
		})

		It("trims and validates the body", func() {
			_, err := svc.Add(ctx, 10, 9, "   a   ")
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
			Expect(mockComments.createCalls).To(BeZero())
		})

		It("denies non-members", func() {
			_, err := svc.Add(ctx, 30, 9, "Looks good to me")
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})

		It("returns not found for a missing task", func() {
			_, err := svc.Add(ctx, 10, 404, "Looks good to me")
			Expect(errors.Is(err, apperr.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		commentAgedBy := func(age time.Duration) {
			mockComments.getByIDFn = func(_ context.Context, commentID int64) (*model.TaskComment, error) {
				if commentID == 4 {
					return &model.TaskComment{
						ID:        4,
						TaskID:    9,
						AuthorID:  10,
						Body:      "Original",
						CreatedAt: time.Now().Add(-age),
					}, nil
				}
				return nil, store.ErrNotFound
			}
		}

		It("lets the author edit inside the window and publishes the event", func() {
			commentAgedBy(5 * time.Minute)

			comment, err := svc.Update(ctx, 10, 4, "Revised thoughts")
			Expect(err).NotTo(HaveOccurred())
			Expect(comment.Body).To(Equal("Revised thoughts"))

			Expect(recorder.events).To(HaveLen(1))
			_, ok := recorder.events[0].(event.CommentUpdated)
			Expect(ok).To(BeTrue())
		})

		It("denies the author after the window has passed", func() {
			commentAgedBy(editWindow + time.Minute)

			_, err := svc.Update(ctx, 10, 4, "Revised thoughts")
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
			Expect(mockComments.updateCalls).To(BeZero())
		})

		It("denies non-authors even inside the window", func() {
			commentAgedBy(time.Minute)

			_, err := svc.Update(ctx, 20, 4, "Revised thoughts")
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			mockComments.getByIDFn = func(_ context.Context, _ int64) (*model.TaskComment, error) {
				return &model.TaskComment{
					ID:        4,
					TaskID:    9,
					AuthorID:  10,
					CreatedAt: time.Now().Add(-48 * time.Hour),
				}, nil
			}
		})

		It("lets the author delete regardless of comment age", func() {
			Expect(svc.Delete(ctx, 10, 4)).To(Succeed())
			Expect(mockComments.deleteCalls).To(Equal(1))
		})

		It("denies non-authors", func() {
			err := svc.Delete(ctx, 20, 4)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})
})
