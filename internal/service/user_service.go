package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

type userService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

func (s *userService) Resolve(ctx context.Context, userID string) (model.Actor, error) {
	if userID == "" {
		return model.Actor{}, model.ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to resolve user")
		return model.Actor{}, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user == nil {
		return model.Actor{UserID: userID, Role: model.RoleCustomer}, nil
	}
	return model.Actor{UserID: user.ID, Role: user.Role}, nil
}

func (s *userService) SetRole(ctx context.Context, userID string, role model.Role) error {
	if _, ok := model.ParseRole(string(role)); !ok {
		return model.ErrInvalidRole
	}

	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Str("role", string(role)).Msg("user role changed")
	return nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
