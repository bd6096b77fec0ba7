package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"crewdesk.app/core/common/id"
	"crewdesk.app/core/core/apperr"
	"crewdesk.app/core/internal/authz"
	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/service"
	"crewdesk.app/core/internal/store"
)

var _ = Describe("ProjectService", func() {
	var (
		svc            service.ProjectService
		mockWorkspaces *mockWorkspaceStore
		mockProjects   *mockProjectStore
		ctx            context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockWorkspaces = &mockWorkspaceStore{
			getByIDFn: func(_ context.Context, wsID int64) (*model.Workspace, error) {
				if wsID == 1 {
					return &model.Workspace{ID: 1, OwnerID: 10}, nil
				}
				return nil, store.ErrNotFound
			},
		}
		mockProjects = &mockProjectStore{}
		mockMemberships := &mockMembershipStore{
			isMemberFn: func(_ context.Context, workspaceID, userID int64) (bool, error) {
				return workspaceID == 1 && (userID == 10 || userID == 20), nil
			},
		}
		Expect(id.Init(1)).To(Succeed())

		engine := authz.NewEngine(mockMemberships, mockProjects, &mockTaskStore{}, &mockUserStore{}, 0)
		txRunner := &mockTxRunner{
			withTxFn: func(ctx context.Context, fn func(stores service.StoreProvider) error) error {
				return fn(&mockStoreProvider{projects: mockProjects})
			},
		}
		svc = service.NewProjectService(mockWorkspaces, mockProjects, engine, txRunner)
	})

	Describe("Create", func() {
		It("creates an active project for any member", func() {
			project, err := svc.Create(ctx, 20, 1, "Launch", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(project.WorkspaceID).To(Equal(int64(1)))
			Expect(project.Status).To(Equal(model.ProjectStatusActive))
			Expect(mockProjects.createCalls).To(Equal(1))
		})

		It("returns not found for a tombstoned workspace", func() {
			_, err := svc.Create(ctx, 10, 404, "Launch", nil)
			Expect(errors.Is(err, apperr.ErrNotFound)).To(BeTrue())
			Expect(mockProjects.createCalls).To(BeZero())
		})

		It("denies non-members", func() {
			_, err := svc.Create(ctx, 30, 1, "Launch", nil)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})

	Describe("UpdateStatus", func() {
		BeforeEach(func() {
			mockProjects.getByIDFn = func(_ context.Context, projectID int64) (*model.Project, error) {
				if projectID == 5 {
					return &model.Project{ID: 5, WorkspaceID: 1, Status: model.ProjectStatusActive}, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("archives a project for a member", func() {
			project, err := svc.UpdateStatus(ctx, 20, 5, model.ProjectStatusArchived)
			Expect(err).NotTo(HaveOccurred())
			Expect(project.Status).To(Equal(model.ProjectStatusArchived))
		})

		It("rejects an unknown status", func() {
			_, err := svc.UpdateStatus(ctx, 20, 5, model.ProjectStatus("bogus"))
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			mockProjects.getByIDFn = func(_ context.Context, _ int64) (*model.Project, error) {
				return &model.Project{ID: 5, WorkspaceID: 1}, nil
			}
		})

		It("tombstones the project for a member", func() {
			Expect(svc.Delete(ctx, 20, 5)).To(Succeed())
			Expect(mockProjects.deleteCalls).To(Equal(1))
		})

		It("denies non-members", func() {
			err := svc.Delete(ctx, 30, 5)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})
})
