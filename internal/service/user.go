package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// UserService administers users.
type UserService struct {
	users UserStore
	log   *zap.Logger
	newID idGen
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log, newID: newID}
}

// Create registers a user. E-mail addresses are unique.
func (s *UserService) Create(ctx context.Context, req model.NewUserRequest) (model.User, error) {
	if err := req.Validate(); err != nil {
		return model.User{}, err
	}
	u := model.User{
		ID:    s.newID(),
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.User{}, translate(err, "user with email="+u.Email)
	}
	s.log.Info("user created", zap.String("user_id", u.ID))
	return u, nil
}

// List returns the users with the given ids, or a page of all users when
// ids is empty.
func (s *UserService) List(ctx context.Context, ids []string, page model.Page) ([]model.User, error) {
	users, err := s.users.List(ctx, ids, page)
	if err != nil {
		return nil, translate(err, "users")
	}
	return users, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return translate(err, userRef(id))
	}
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}
