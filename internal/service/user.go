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

type UserService interface {
	Register(ctx context.Context, name, email string) (*model.User, error)
	Get(ctx context.Context, actorID, userID int64) (*model.User, error)
	Update(ctx context.Context, actorID, userID int64, name, email string) (*model.User, error)
	Delete(ctx context.Context, actorID, userID int64) error
}

type userService struct {
	users store.UserStore
	authz *authz.Engine
}

func NewUserService(users store.UserStore, authzEngine *authz.Engine) UserService {
	return &userService{users: users, authz: authzEngine}
}

func (s *userService) Register(ctx context.Context, name, email string) (*model.User, error) {
	userName, err := model.NewName(name)
	if err != nil {
		return nil, err
	}
	userEmail, err := model.NewEmail(email)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, userEmail.String()); err == nil {
		return nil, apperr.Conflict("email %s is already registered", userEmail)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Persistence(err, "checking email availability")
	}

	user := &model.User{
		ID:    id.New(),
		Name:  userName.String(),
		Email: userEmail.String(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Persistence(err, "creating user")
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, actorID, userID int64) (*model.User, error) {
	ok, err := s.authz.CanViewUser(ctx, actorID, userID)
	if err != nil {
		return nil, apperr.Persistence(err, "checking profile access")
	}
	if !ok {
		return nil, apperr.Forbidden("view", "user profile")
	}
	return s.loadUser(ctx, userID)
}

func (s *userService) Update(ctx context.Context, actorID, userID int64, name, email string) (*model.User, error) {
	ok, err := s.authz.CanUpdateUser(ctx, actorID, userID)
	if err != nil {
		return nil, apperr.Persistence(err, "checking profile access")
	}
	if !ok {
		return nil, apperr.Forbidden("update", "user profile")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	userName, err := model.NewName(name)
	if err != nil {
		return nil, err
	}
	userEmail, err := model.NewEmail(email)
	if err != nil {
		return nil, err
	}

	if userEmail.String() != user.Email {
		if _, err := s.users.GetByEmail(ctx, userEmail.String()); err == nil {
			return nil, apperr.Conflict("email %s is already registered", userEmail)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Persistence(err, "checking email availability")
		}
	}

	updated := *user
	updated.Name = userName.String()
	updated.Email = userEmail.String()
	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, apperr.Persistence(err, "updating user")
	}
	return &updated, nil
}

func (s *userService) Delete(ctx context.Context, actorID, userID int64) error {
	ok, err := s.authz.CanDeleteUser(ctx, actorID, userID)
	if err != nil {
		return apperr.Persistence(err, "checking profile access")
	}
	if !ok {
		return apperr.Forbidden("delete", "user profile")
	}

	if _, err := s.loadUser(ctx, userID); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return apperr.Persistence(err, "deleting user")
	}
	return nil
}

func (s *userService) loadUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Persistence(err, "loading user")
	}
	return user, nil
}
