package ports

import (
	"context"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// CommunityRepository persists community profiles. At most one profile per
// user; a second Create must fail with domain.ErrProfileExists.
type CommunityRepository interface {
	Create(ctx context.Context, p *domain.CommunityProfile) (*domain.CommunityProfile, error)
	FindByUserID(ctx context.Context, userID string) (*domain.CommunityProfile, error)
	Update(ctx context.Context, p *domain.CommunityProfile) (*domain.CommunityProfile, error)
}
