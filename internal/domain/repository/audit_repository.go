// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"bountyhub/internal/domain/entity"

	"github.com/google/uuid"
)

// AuditRepository is the append-only sink for security-relevant events.
// Callers treat writes as fire-and-forget: a failed audit write is logged by
// the caller and must not fail the parent operation.
type AuditRepository interface {
	// Record appends one audit event.
	Record(ctx context.Context, event *entity.AuditEvent) error

	// ListByUser retrieves the most recent events for a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.AuditEvent, error)

	// CountByAction returns how many events of the given action exist for a user.
	CountByAction(ctx context.Context, userID uuid.UUID, action entity.AuditAction) (int, error)
}
