// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"bountyhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterResearcherInput defines the data required to register a researcher account.
type RegisterResearcherInput struct {
	Name        string
	Email       string
	Password    string
	AcceptTerms bool
}

// RegisterOrganizationInput defines the data required to register an
// organization account. Organizations start inactive and require admin approval.
type RegisterOrganizationInput struct {
	Name        string
	Email       string
	Password    string
	AcceptTerms bool
}

// LoginInput defines the data required to log in. The role comes from the
// route, never from the token, and must match the stored account role.
type LoginInput struct {
	Email     string
	Password  string
	Role      entity.Role
	UserAgent string
	IP        string
}

// RefreshInput carries the presented refresh token plus request metadata.
type RefreshInput struct {
	RefreshToken string
}

// LogoutInput carries the refresh token whose session should end.
type LogoutInput struct {
	RefreshToken string
}

// SetUserActiveInput is the admin moderation request.
type SetUserActiveInput struct {
	AdminID uuid.UUID
	UserID  uuid.UUID
	Active  bool
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the token pair and session after a successful login.
type LoginOutput struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *entity.User
	Session          *entity.Session
}

// RefreshOutput returns the rotated token pair. The presented refresh token is
// dead as soon as this output exists.
type RefreshOutput struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	RegisterResearcher(ctx context.Context, input *RegisterResearcherInput) (*RegisterOutput, error)
	RegisterOrganization(ctx context.Context, input *RegisterOrganizationInput) (*RegisterOutput, error)

	// Login authenticates a credential pair against the role-specific surface
	// and opens a new session on success.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Refresh rotates the presented refresh token and issues a new pair.
	// A replayed token fails here and deactivates the session it points at.
	Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)

	// Logout ends the session owning the presented refresh token. Idempotent:
	// an unknown or already-rotated token is not an error.
	Logout(ctx context.Context, input *LogoutInput) error

	// SetUserActive flips an account's active flag. Admin only; deactivation
	// also ends every session the user holds.
	SetUserActive(ctx context.Context, input *SetUserActiveInput) error

	// ListUsersByRole returns accounts with the given role for admin review.
	ListUsersByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)

	// GetAuditTrail returns a user's most recent audit events for admin review.
	// A non-positive limit falls back to a sane default.
	GetAuditTrail(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.AuditEvent, error)
}
