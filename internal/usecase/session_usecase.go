// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"bountyhub/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase defines the interface for session management operations.
type SessionUsecase interface {
	GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error
	RevokeAllOtherSessions(ctx context.Context, userID, currentSessionID uuid.UUID) (int, error)
	CleanupExpiredSessions(ctx context.Context) (int64, error)
	GetSessionStatistics(ctx context.Context, userID uuid.UUID) (*entity.SessionStatistics, error)
	DetectAnomalousActivity(ctx context.Context, userID uuid.UUID) ([]*entity.AnomalousActivity, error)
}
