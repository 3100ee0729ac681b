package service

import (
	"errors"
	"time"

	"bountyhub/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kind discriminators. A token of one kind must never be accepted where
// the other is expected.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Verification errors. Distinguishable internally (logs, tests); the delivery
// layer collapses all of them into one generic rejection.
var (
	// ErrTokenExpired is returned when a token is past its embedded expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenMalformed is returned when signature or structure is invalid.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrWrongTokenKind is returned when the kind discriminator does not match.
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// Claims defines the custom claims carried by both token kinds.
// Refresh tokens omit the role; authorization always reloads it from the store.
type Claims struct {
	UserID    uuid.UUID   `json:"uid"`
	Role      entity.Role `json:"role,omitempty"`
	SessionID uuid.UUID   `json:"sid"`
	Kind      string      `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService defines the purely cryptographic token operations: issuing and
// verifying signed tokens plus hashing them for server-side storage. It never
// consults persistent storage; session/user liveness is the caller's job.
type TokenService interface {
	// IssueAccessToken creates a short-lived access token bound to a session.
	IssueAccessToken(userID uuid.UUID, role entity.Role, sessionID uuid.UUID) (string, error)

	// IssueRefreshToken creates a long-lived refresh token bound to a session
	// and reports its expiry so the caller can persist the hash alongside it.
	IssueRefreshToken(userID, sessionID uuid.UUID) (token string, expiresAt time.Time, err error)

	// VerifyAccessToken validates signature, expiry and kind of an access token.
	VerifyAccessToken(token string) (*Claims, error)

	// VerifyRefreshToken validates signature, expiry and kind of a refresh token.
	VerifyRefreshToken(token string) (*Claims, error)

	// HashToken computes the one-way hash under which a token is stored.
	HashToken(token string) string

	// RefreshTokenTTL returns the configured refresh token lifetime.
	RefreshTokenTTL() time.Duration
}
