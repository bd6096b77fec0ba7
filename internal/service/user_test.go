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

var _ = Describe("UserService", func() {
	var (
		svc       service.UserService
		mockUsers *mockUserStore
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockUsers = &mockUserStore{}
		Expect(id.Init(1)).To(Succeed())

		engine := authz.NewEngine(&mockMembershipStore{}, &mockProjectStore{}, &mockTaskStore{}, mockUsers, 0)
		svc = service.NewUserService(mockUsers, engine)
	})

	Describe("Register", func() {
		It("normalizes the email and assigns an id", func() {
			var captured *model.User
			mockUsers.createFn = func(_ context.Context, u *model.User) error {
				captured = u
				return nil
			}

			user, err := svc.Register(ctx, "Dana Q", "  Dana@Example.COM ")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Email).To(Equal("dana@example.com"))
			Expect(captured.ID).NotTo(BeZero())
		})

		It("rejects a duplicate email with a conflict", func() {
			mockUsers.getByEmailFn = func(_ context.Context, _ string) (*model.User, error) {
				return &model.User{ID: 1, Email: "dana@example.com"}, nil
			}

			_, err := svc.Register(ctx, "Dana Q", "dana@example.com")
			Expect(errors.Is(err, apperr.ErrConflict)).To(BeTrue())
			Expect(mockUsers.createCalls).To(BeZero())
		})

		It("rejects a malformed email", func() {
			_, err := svc.Register(ctx, "Dana Q", "not-an-email")
			Expect(errors.Is(err, apperr.ErrValidation)).To(BeTrue())
		})
	})

	Describe("Get", func() {
		BeforeEach(func() {
			mockUsers.getByIDFn = func(_ context.Context, userID int64) (*model.User, error) {
				switch userID {
				case 1:
					return &model.User{ID: 1, IsAdmin: true}, nil
				case 2:
					return &model.User{ID: 2, Name: "Dana"}, nil
				default:
					return nil, store.ErrNotFound
				}
			}
		})

		It("lets users read their own profile", func() {
			user, err := svc.Get(ctx, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Name).To(Equal("Dana"))
		})

		It("lets admins read any profile", func() {
			_, err := svc.Get(ctx, 1, 2)
			Expect(err).NotTo(HaveOccurred())
		})

		It("denies other users", func() {
			_, err := svc.Get(ctx, 2, 1)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		BeforeEach(func() {
			mockUsers.getByIDFn = func(_ context.Context, userID int64) (*model.User, error) {
				if userID == 2 {
					return &model.User{ID: 2, Name: "Dana", Email: "dana@example.com"}, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("updates name and email for the user themselves", func() {
			var captured *model.User
			mockUsers.updateFn = func(_ context.Context, u *model.User) error {
				captured = u
				return nil
			}

			user, err := svc.Update(ctx, 2, 2, "Dana Quinn", "dq@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Name).To(Equal("Dana Quinn"))
			Expect(captured.Email).To(Equal("dq@example.com"))
		})

		It("rejects taking another user's email", func() {
			mockUsers.getByEmailFn = func(_ context.Context, email string) (*model.User, error) {
				if email == "taken@example.com" {
					return &model.User{ID: 3}, nil
				}
				return nil, store.ErrNotFound
			}

			_, err := svc.Update(ctx, 2, 2, "Dana Quinn", "taken@example.com")
			Expect(errors.Is(err, apperr.ErrConflict)).To(BeTrue())
		})

		It("allows keeping the same email", func() {
			_, err := svc.Update(ctx, 2, 2, "Dana Quinn", "dana@example.com")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			mockUsers.getByIDFn = func(_ context.Context, userID int64) (*model.User, error) {
				if userID == 2 {
					return &model.User{ID: 2}, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("soft deletes the user's own account", func() {
			deleted := false
			mockUsers.deleteFn = func(_ context.Context, userID int64) error {
				deleted = true
				Expect(userID).To(Equal(int64(2)))
				return nil
			}

			Expect(svc.Delete(ctx, 2, 2)).To(Succeed())
			Expect(deleted).To(BeTrue())
		})

		It("denies other users", func() {
			err := svc.Delete(ctx, 3, 2)
			Expect(errors.Is(err, apperr.ErrForbidden)).To(BeTrue())
		})
	})
})
