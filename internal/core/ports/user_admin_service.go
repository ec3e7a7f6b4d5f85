package ports

import (
	"context"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// ListUsersInput carries all parameters for the admin list endpoint.
type ListUsersInput struct {
	Role   string
	Active *bool
	Search string
	Page   int
	Limit  int
}

// ListUsersResult is returned by ListUsers.
type ListUsersResult struct {
	Items      []*domain.PublicUser
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserAdminService covers the admin actions on user records. actorID is the
// admin performing the change.
type UserAdminService interface {
	ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersResult, error)
	SetRole(ctx context.Context, actorID, userID, role string) (*domain.PublicUser, error)
	SetActive(ctx context.Context, actorID, userID string, active bool) (*domain.PublicUser, error)
}
