package ports

import (
	"context"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// UserRepository defines persistence for credential records. Implementations
// must enforce email uniqueness atomically (unique index) and report a
// violation as domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
}

// UserUpdate carries the mutable fields of a user; nil means "leave as is".
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	Organization *domain.Organization
	Role         *domain.Role
	IsActive     *bool
	IsVerified   *bool
}

// ListUsersFilter carries the query parameters of the admin user listing.
type ListUsersFilter struct {
	Role   domain.Role // empty = any
	Active *bool       // nil = any
	Search string      // optional: partial match on name or email
	Page   int         // 1-based
	Limit  int
}
