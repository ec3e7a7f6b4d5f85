package ports

import (
	"context"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// CommunityProfileInput carries the editable fields of a community profile.
type CommunityProfileInput struct {
	Name         string
	Type         string
	Description  string
	Location     domain.Location
	Demographics domain.Demographics
	ContactInfo  domain.ContactInfo
}

// CommunityService defines use-case operations for community profiles.
type CommunityService interface {
	MyProfile(ctx context.Context, userID string) (*domain.CommunityProfile, error)
	CreateProfile(ctx context.Context, userID string, input CommunityProfileInput) (*domain.CommunityProfile, error)
	UpdateProfile(ctx context.Context, userID string, input CommunityProfileInput) (*domain.CommunityProfile, error)
}
