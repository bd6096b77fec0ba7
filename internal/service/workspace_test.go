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

var _ = Describe("WorkspaceService", func() {
	var (
		svc             service.WorkspaceService
		mockWorkspaces  *mockWorkspaceStore
		mockMemberships *mockMembershipStore
		mockUsers       *mockUserStore
		ctx             context.Context
	)

	newService := func() service.WorkspaceService {
		engine := authz.NewEngine(mockMemberships, &mockProjectStore{}, &mockTaskStore{}, mockUsers, 0)
		txRunner := &mockTxRunner{
			withTxFn: func(ctx context.Context, fn func(stores service.StoreProvider) error) error {
				return fn(&mockStoreProvider{
					workspaces:  mockWorkspaces,
					memberships: mockMemberships,
				})
			},
		}
		return service.NewWorkspaceService(mockWorkspaces, mockMemberships, mockUsers, engine, txRunner)
	}

	BeforeEach(func() {
		ctx = context.Background()
		mockWorkspaces = &mockWorkspaceStore{}
		mockMemberships = &mockMembershipStore{}
		mockUsers = &mockUserStore{}
		Expect(id.Init(1)).To(Succeed())
		svc = newService()
	})

	Describe("Create", func() {
		It("derives the slug from the name and stores the owner membership", func() {
			var capturedWs *model.Workspace
			var capturedMembership *model.Membership
			mockWorkspaces.createFn = func(_ context.Context, ws *model.Workspace) error {
				capturedWs = ws
				return nil
			}
			mockMemberships.addMemberFn = func(_ context.Context, m *model.Membership) error {
				capturedMembership = m
				return nil
			}

			ws, err := svc.Create(ctx, 10, "My Team", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.Slug).To(Equal("my-team"))
			Expect(ws.OwnerID).To(Equal(int64(10)))
			Expect(ws.Status).To(Equal(model.WorkspaceStatusActive))
			Expect(capturedWs.ID).NotTo(BeZero())
			Expect(capturedMembership.WorkspaceID).To(Equal(ws.ID))
			Expect(capturedMembership.UserID).To(Equal(int64(10)))
			Expect(capturedMembership.Role).To(Equal(model.MemberRoleOwner))
		})

		It("rejects a taken slug with a conflict", func() {
			mockWorkspaces.getBySlugFn = func(_ context.Context, slug string) (*model.Workspace, error) {
				Expect(slug).To(Equal("my-team"))
				return &model.Workspace{ID: 99, Slug: "my-team"}, nil
			}

			_, err := svc.Create(ctx, 10, "My Team", nil)
			Expect(errors.Is(err, apperr.ErrConflict)).To(BeTrue())
			Expect(mockWorkspaces.createCalls).To(BeZero())
		})

		It("rejects a too-short name", func() {
			_, err := svc.Create(ctx, 10, "ab", nil)
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
			Expect(mockWorkspaces.createCalls).To(BeZero())
		})

		It("rejects a name with no sluggable characters", func() {
			_, err := svc.Create(ctx, 10, "???!!!", nil)
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
		})

		It("does not commit the workspace when the membership write fails", func() {
			mockMemberships.addMemberFn = func(_ context.Context, _ *model.Membership) error {
				return errors.New("membership insert failed")
			}

			_, err := svc.Create(ctx, 10, "My Team", nil)
			Expect(errors.Is(err, apperr.ErrPersistence)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		BeforeEach(func() {
			mockWorkspaces.getByIDFn = func(_ context.Context, wsID int64) (*model.Workspace, error) {
				if wsID == 1 {
					return &model.Workspace{ID: 1, OwnerID: 10, Name: "My Team", Slug: "my-team"}, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("renames the workspace and regenerates the slug", func() {
			var captured *model.Workspace
			mockWorkspaces.updateFn = func(_ context.Context, ws *model.Workspace) error {
				captured = ws
				return nil
			}

			ws, err := svc.Update(ctx, 10, 1, "Platform Crew", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.Slug).To(Equal("platform-crew"))
			Expect(captured.Name).To(Equal("Platform Crew"))
		})

		It("allows keeping the current slug on rename", func() {
			mockWorkspaces.getBySlugFn = func(_ context.Context, _ string) (*model.Workspace, error) {
				return &model.Workspace{ID: 1, Slug: "my-team"}, nil
			}

			_, err := svc.Update(ctx, 10, 1, "My Team", nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("denies non-owners", func() {
			_, err := svc.Update(ctx, 20, 1, "Platform Crew", nil)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})

		It("returns not found for a missing workspace", func() {
			_, err := svc.Update(ctx, 10, 404, "Platform Crew", nil)
			Expect(errors.Is(err, apperr.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			mockWorkspaces.getByIDFn = func(_ context.Context, wsID int64) (*model.Workspace, error) {
				if wsID == 1 {
					return &model.Workspace{ID: 1, OwnerID: 10}, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("tombstones the workspace for the owner", func() {
			Expect(svc.Delete(ctx, 10, 1)).To(Succeed())
			Expect(mockWorkspaces.deleteCalls).To(Equal(1))
		})

		It("denies non-owners even if they are members", func() {
			mockMemberships.isMemberFn = func(_ context.Context, _, _ int64) (bool, error) {
				return true, nil
			}

			err := svc.Delete(ctx, 20, 1)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
			Expect(mockWorkspaces.deleteCalls).To(BeZero())
		})
	})

	Describe("AddMember", func() {
		BeforeEach(func() {
			mockWorkspaces.getByIDFn = func(_ context.Context, _ int64) (*model.Workspace, error) {
				return &model.Workspace{ID: 1, OwnerID: 10}, nil
			}
			mockUsers.getByIDFn = func(_ context.Context, userID int64) (*model.User, error) {
				if userID == 20 {
					return &model.User{ID: 20}, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("upserts the membership for the owner", func() {
			Expect(svc.AddMember(ctx, 10, 1, 20, model.MemberRoleMember)).To(Succeed())
			Expect(mockMemberships.addCalls).To(Equal(1))
		})

		It("is idempotent from the caller's view when the member already exists", func() {
			Expect(svc.AddMember(ctx, 10, 1, 20, model.MemberRoleMember)).To(Succeed())
			Expect(svc.AddMember(ctx, 10, 1, 20, model.MemberRoleAdmin)).To(Succeed())
			Expect(mockMemberships.addCalls).To(Equal(2))
		})

		It("rejects granting the owner role", func() {
			err := svc.AddMember(ctx, 10, 1, 20, model.MemberRoleOwner)
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
		})

		It("returns not found for an unknown user", func() {
			err := svc.AddMember(ctx, 10, 1, 404, model.MemberRoleMember)
			Expect(errors.Is(err, apperr.ErrNotFound)).To(BeTrue())
		})

		It("denies plain members", func() {
			mockMemberships.getMemberFn = func(_ context.Context, _, userID int64) (*model.Membership, error) {
				return &model.Membership{UserID: userID, Role: model.MemberRoleMember}, nil
			}

			err := svc.AddMember(ctx, 30, 1, 20, model.MemberRoleMember)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})

	Describe("RemoveMember", func() {
		BeforeEach(func() {
			mockWorkspaces.getByIDFn = func(_ context.Context, _ int64) (*model.Workspace, error) {
				return &model.Workspace{ID: 1, OwnerID: 10}, nil
			}
		})

		It("removes a member and tolerates absent memberships", func() {
			Expect(svc.RemoveMember(ctx, 10, 1, 20)).To(Succeed())
			Expect(svc.RemoveMember(ctx, 10, 1, 20)).To(Succeed())
			Expect(mockMemberships.removeCalls).To(Equal(2))
		})

		It("refuses to remove the workspace owner", func() {
			err := svc.RemoveMember(ctx, 10, 1, 10)
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
			Expect(mockMemberships.removeCalls).To(BeZero())
		})
	})
})
