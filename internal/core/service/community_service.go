package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

type CommunityService struct {
	repo   ports.CommunityRepository
	logger zerolog.Logger
}

func NewCommunityService(repo ports.CommunityRepository, logger zerolog.Logger) *CommunityService {
	return &CommunityService{repo: repo, logger: logger}
}

// MyProfile returns the caller's profile, or domain.ErrProfileNotFound when the
// user has not gone through setup yet.
func (s *CommunityService) MyProfile(ctx context.Context, userID string) (*domain.CommunityProfile, error) {
	p, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, passThroughOrInternal(err, "Server error")
	}
	return p, nil
}

// CreateProfile creates the caller's profile. A second call fails with
// domain.ErrProfileExists, enforced by the repository's unique index.
func (s *CommunityService) CreateProfile(ctx context.Context, userID string, in ports.CommunityProfileInput) (*domain.CommunityProfile, error) {
	if err := validateProfileInput(&in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	profile := &domain.CommunityProfile{
		UserID:       userID,
		Name:         in.Name,
		Type:         in.Type,
		Description:  in.Description,
		Location:     in.Location,
		Demographics: in.Demographics,
		ContactInfo:  in.ContactInfo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, profile)
	if err != nil {
		if domain.KindOf(err) == domain.KindServer {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create community profile")
		}
		return nil, passThroughOrInternal(err, "Server error while creating profile")
	}

	s.logger.Info().Str("user_id", userID).Str("profile_id", created.ID).Msg("community profile created")
	return created, nil
}

// UpdateProfile replaces the editable fields of the caller's profile.
func (s *CommunityService) UpdateProfile(ctx context.Context, userID string, in ports.CommunityProfileInput) (*domain.CommunityProfile, error) {
	if err := validateProfileInput(&in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, passThroughOrInternal(err, "Server error")
	}

	existing.Name = in.Name
	existing.Type = in.Type
	existing.Description = in.Description
	existing.Location = in.Location
	existing.Demographics = in.Demographics
	existing.ContactInfo = in.ContactInfo
	existing.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, passThroughOrInternal(err, "Server error while updating profile")
	}
	return updated, nil
}

func validateProfileInput(in *ports.CommunityProfileInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.Description = strings.TrimSpace(in.Description)
	in.ContactInfo.Email = domain.NormalizeEmail(in.ContactInfo.Email)

	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return domain.Validation("Please provide all required fields: " + strings.Join(missing, ", "))
	}
	if in.Demographics.Population < 0 || in.Demographics.Households < 0 {
		return domain.Validation("demographics cannot be negative")
	}
	return nil
}
