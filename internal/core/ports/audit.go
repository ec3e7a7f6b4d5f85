package ports

import (
	"context"
	"time"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// AuditRepository handles audit persistence and login bookkeeping.
type AuditRepository interface {
	// InsertEvent persists an event to the auth_events audit collection.
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
	// TouchLastLogin stamps the user's last successful login time.
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

// AuditService processes authentication audit events.
type AuditService interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}

// AuditSink is what request paths use to hand off events without blocking on
// persistence.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}
