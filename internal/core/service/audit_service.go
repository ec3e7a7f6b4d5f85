package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single audit event. A successful login also stamps the
// user's last login time; failing that is logged, not returned.
func (s *auditService) Record(ctx context.Context, ev domain.AuthEvent) error {
	if err := s.repo.InsertEvent(ctx, &ev); err != nil {
		return fmt.Errorf("record auth event: %w", err)
	}

	if ev.Type == domain.AuthEventLogin && ev.UserID != "" {
		if err := s.repo.TouchLastLogin(ctx, ev.UserID, ev.OccurredAt); err != nil {
			s.log.Warn().Err(err).Str("user_id", ev.UserID).Msg("failed to update last login")
		}
	}

	s.log.Debug().
		Str("type", string(ev.Type)).
		Str("email", ev.Email).
		Str("ip", ev.IP).
		Msg("auth event recorded")

	return nil
}
