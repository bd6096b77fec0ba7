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

var _ = Describe("TaskService", func() {
	var (
		svc             service.TaskService
		mockProjects    *mockProjectStore
		mockTasks       *mockTaskStore
		mockMemberships *mockMembershipStore
		recorder        *eventRecorder
		ctx             context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockProjects = &mockProjectStore{
			getByIDFn: func(_ context.Context, projectID int64) (*model.Project, error) {
				if projectID == 5 {
					return &model.Project{ID: 5, WorkspaceID: 1}, nil
				}
				return nil, store.ErrNotFound
			},
		}
		mockTasks = &mockTaskStore{}
		// User 10 and 20 are members of workspace 1; 30 is not.
		mockMemberships = &mockMembershipStore{
			isMemberFn: func(_ context.Context, workspaceID, userID int64) (bool, error) {
				return workspaceID == 1 && (userID == 10 || userID == 20), nil
			},
		}
		Expect(id.Init(1)).To(Succeed())

		engine := authz.NewEngine(mockMemberships, mockProjects, mockTasks, &mockUserStore{}, 0)
		bus, rec := newRecordedBus()
		recorder = rec
		svc = service.NewTaskService(mockProjects, mockTasks, engine, bus, &mockTxRunner{})
	})

	Describe("Create", func() {
		It("creates a pending task and publishes the creation event afterwards", func() {
			var captured *model.Task
			mockTasks.createFn = func(_ context.Context, t *model.Task) error {
				captured = t
				Expect(recorder.events).To(BeEmpty())
				return nil
			}

			task, err := svc.Create(ctx, 10, 5, service.CreateTaskParams{Title: "Ship the release"})
			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.TaskStatusPending))
			Expect(task.Priority).To(Equal(model.TaskPriorityMedium))
			Expect(captured.ProjectID).To(Equal(int64(5)))

			Expect(recorder.events).To(HaveLen(1))
			created, ok := recorder.events[0].(event.TaskCreated)
			Expect(ok).To(BeTrue())
			Expect(created.ActorID).To(Equal(int64(10)))
			Expect(created.Channel()).To(Equal("project.5"))
		})

		It("rejects a due date in the past", func() {
			yesterday := time.Now().Add(-24 * time.Hour)
			_, err := svc.Create(ctx, 10, 5, service.CreateTaskParams{
				Title:   "Ship the release",
				DueDate: &yesterday,
			})
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
			Expect(mockTasks.createCalls).To(BeZero())
			Expect(recorder.events).To(BeEmpty())
		})

		It("denies non-members", func() {
			_, err := svc.Create(ctx, 30, 5, service.CreateTaskParams{Title: "Ship the release"})
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
			Expect(recorder.events).To(BeEmpty())
		})

		It("returns not found for a missing project", func() {
			_, err := svc.Create(ctx, 10, 404, service.CreateTaskParams{Title: "Ship the release"})
			Expect(errors.Is(err, apperr.ErrNotFound)).To(BeTrue())
		})

		It("rejects a too-short title", func() {
			_, err := svc.Create(ctx, 10, 5, service.CreateTaskParams{Title: "ab"})
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
		})
	})

	Describe("Complete", func() {
		taskWithStatus := func(status model.TaskStatus) {
			mockTasks.getByIDFn = func(_ context.Context, taskID int64) (*model.Task, error) {
				if taskID == 9 {
					return &model.Task{ID: 9, ProjectID: 5, Title: "Ship it", Status: status}, nil
				}
				return nil, store.ErrNotFound
			}
		}

		It("completes a pending task and publishes the completion event", func() {
			taskWithStatus(model.TaskStatusPending)
			var persisted *model.Task
			mockTasks.updateFn = func(_ context.Context, t *model.Task) error {
				persisted = t
				return nil
			}

			task, err := svc.Complete(ctx, 10, 9)
			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.TaskStatusCompleted))
			Expect(persisted.Status).To(Equal(model.TaskStatusCompleted))

			Expect(recorder.events).To(HaveLen(1))
			completed, ok := recorder.events[0].(event.TaskCompleted)
			Expect(ok).To(BeTrue())
			Expect(completed.Channel()).To(Equal("task.9"))
		})

		It("is idempotent on an already completed task", func() {
			taskWithStatus(model.TaskStatusCompleted)

			task, err := svc.Complete(ctx, 10, 9)
			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.TaskStatusCompleted))
			Expect(mockTasks.updateCalls).To(BeZero())
			Expect(recorder.events).To(BeEmpty())
		})

		It("rejects completing a cancelled task", func() {
			taskWithStatus(model.TaskStatusCancelled)

			_, err := svc.Complete(ctx, 10, 9)
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
		})

		It("checks existence before permission", func() {
			taskWithStatus(model.TaskStatusPending)

			_, err := svc.Complete(ctx, 30, 404)
			Expect(errors.Is(err, apperr.ErrNotFound)).To(BeTrue())

			_, err = svc.Complete(ctx, 30, 9)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		BeforeEach(func() {
			mockTasks.getByIDFn = func(_ context.Context, taskID int64) (*model.Task, error) {
				if taskID == 9 {
					return &model.Task{ID: 9, ProjectID: 5, Title: "Ship it", Status: model.TaskStatusPending}, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("applies a legal status transition", func() {
			status := model.TaskStatusInProgress
			task, err := svc.Update(ctx, 10, 9, service.UpdateTaskParams{Status: &status})
			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.TaskStatusInProgress))
			Expect(recorder.events).To(BeEmpty())
		})

		It("rejects an illegal status transition", func() {
			status := model.TaskStatusCompleted
			_, err := svc.Update(ctx, 10, 9, service.UpdateTaskParams{Status: &status})
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
			Expect(mockTasks.updateCalls).To(BeZero())
		})

		It("publishes a completion event when the update path completes the task", func() {
			mockTasks.getByIDFn = func(_ context.Context, _ int64) (*model.Task, error) {
				return &model.Task{ID: 9, ProjectID: 5, Title: "Ship it", Status: model.TaskStatusInProgress}, nil
			}

			status := model.TaskStatusCompleted
			_, err := svc.Update(ctx, 10, 9, service.UpdateTaskParams{Status: &status})
			Expect(err).NotTo(HaveOccurred())
			Expect(recorder.events).To(HaveLen(1))
			_, ok := recorder.events[0].(event.TaskCompleted)
			Expect(ok).To(BeTrue())
		})

		It("rejects moving the due date into the past", func() {
			yesterday := time.Now().Add(-24 * time.Hour)
			_, err := svc.Update(ctx, 10, 9, service.UpdateTaskParams{DueDate: &yesterday})
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
		})

		It("denies non-members", func() {
			_, err := svc.Update(ctx, 30, 9, service.UpdateTaskParams{})
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})
})
