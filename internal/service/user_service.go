package service

import (
	"context"
	"fmt"
	"strings"

	"sharovik/internal/domain"
	"sharovik/internal/models"

	"github.com/rs/zerolog"
)

// UserService manages the user directory. Email uniqueness is enforced by the
// store's unique index; the service only translates the violation.
type UserService struct {
	store  domain.UserStore
	logger *zerolog.Logger
}

func NewUserService(store domain.UserStore, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func (s *UserService) Add(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return nil, fmt.Errorf("user email is required: %w", domain.ErrInvalidArgument)
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

// Update patches name and/or email; blank fields keep their current value.
func (s *UserService) Update(ctx context.Context, id int64, name, email string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if email = strings.TrimSpace(email); email != "" {
		user.Email = email
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("user updated")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetUser satisfies domain.UserLookup for the other services.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
