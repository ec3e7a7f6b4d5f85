package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type UserAdminService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserAdminService(repo ports.UserRepository, logger zerolog.Logger) *UserAdminService {
	return &UserAdminService{repo: repo, logger: logger}
}

// ListUsers returns a page of users. Limit defaults to 20 and is capped at 100.
func (s *UserAdminService) ListUsers(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
	filter := ports.ListUsersFilter{
		Active: in.Active,
		Search: strings.TrimSpace(in.Search),
		Page:   in.Page,
		Limit:  in.Limit,
	}
	if in.Role != "" {
		role, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = role
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, domain.Internal("Server error", err)
	}

	items := make([]*domain.PublicUser, 0, len(users))
	for _, u := range users {
		items = append(items, domain.PublicProfile(u))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListUsersResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// SetRole changes a user's role. Admins cannot demote themselves.
func (s *UserAdminService) SetRole(ctx context.Context, actorID, userID, role string) (*domain.PublicUser, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if actorID == userID && r != domain.RoleAdmin {
		return nil, domain.Validation("You cannot change your own role")
	}

	user, err := s.repo.Update(ctx, userID, ports.UserUpdate{Role: &r})
	if err != nil {
		return nil, passThroughOrInternal(err, "Server error")
	}

	s.logger.Info().Str("actor_id", actorID).Str("user_id", userID).Str("role", string(r)).Msg("user role changed")
	return domain.PublicProfile(user), nil
}

// SetActive enables or disables an account. Admins cannot disable themselves.
func (s *UserAdminService) SetActive(ctx context.Context, actorID, userID string, active bool) (*domain.PublicUser, error) {
	if actorID == userID && !active {
		return nil, domain.Validation("You cannot deactivate your own account")
	}

	user, err := s.repo.Update(ctx, userID, ports.UserUpdate{IsActive: &active})
	if err != nil {
		return nil, passThroughOrInternal(err, "Server error")
	}

	s.logger.Info().Str("actor_id", actorID).Str("user_id", userID).Bool("active", active).Msg("user status changed")
	return domain.PublicProfile(user), nil
}
