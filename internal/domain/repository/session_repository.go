// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"
	"time"

	"bountyhub/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for session persistence.
var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRotated is returned when a conditional token rotation matched no
	// row: the presented refresh token was already rotated away (replay) or the
	// session no longer exists.
	ErrSessionRotated = errors.New("session token already rotated")
)

// SessionRepository defines session lifecycle and refresh-token-hash
// persistence. One row per login; the row carries the hash of the single live
// refresh token for that session.
type SessionRepository interface {
	// Create persists a new session with a server-generated ID.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session record by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// ListByUser retrieves all sessions for a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	// Touch updates last-seen. It never extends the session's expiry; the
	// absolute lifetime is fixed at creation.
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error

	// RotateTokenHash atomically replaces the stored refresh hash, but only if
	// the stored hash still equals oldHash. Returns ErrSessionRotated when no
	// row matched, which is how a replayed or concurrently-used token loses.
	RotateTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash string, newExpiry time.Time) error

	// Deactivate marks the session inactive, forces its expiry to now and
	// clears the stored refresh hash so in-flight checks fail immediately.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Delete removes a session row outright ("terminate this device").
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes sessions whose expiry has passed and returns the
	// number of rows removed. Idempotent; safe on a schedule.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountLiveByUser returns the number of live sessions for a user.
	CountLiveByUser(ctx context.Context, userID uuid.UUID) (int, error)
}
