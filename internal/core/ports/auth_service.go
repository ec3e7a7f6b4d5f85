package ports

import (
	"context"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Role         string
	Organization *domain.Organization
	Phone        string
}

// ProfileUpdateInput holds the self-service editable fields of a user.
type ProfileUpdateInput struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	Organization *domain.Organization
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *domain.PublicUser
	Token string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.PublicUser, error)
	Logout(ctx context.Context, id *domain.Identity)
}

// TokenVerifier turns a bearer token into the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}
