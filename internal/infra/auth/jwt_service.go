// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bountyhub/config"
	"bountyhub/internal/domain/entity"
	"bountyhub/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Access and refresh tokens are signed with separate secrets so a leaked access
// secret cannot mint refresh tokens.
type jwtService struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}
	return &jwtService{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
		accessTTL:     cfg.Auth.AccessTokenTTL,
		refreshTTL:    cfg.Auth.RefreshTokenTTL,
	}, nil
}

// IssueAccessToken creates a short-lived access token carrying the user's role.
func (s *jwtService) IssueAccessToken(userID uuid.UUID, role entity.Role, sessionID uuid.UUID) (string, error) {
	token, _, err := s.issueToken(userID, role, sessionID, service.TokenKindAccess, s.accessTTL, s.accessSecret)
	return token, err
}

// IssueRefreshToken creates a long-lived refresh token. The role is omitted on
// purpose; authorization always reloads it from the store.
func (s *jwtService) IssueRefreshToken(userID, sessionID uuid.UUID) (string, time.Time, error) {
	return s.issueToken(userID, "", sessionID, service.TokenKindRefresh, s.refreshTTL, s.refreshSecret)
}

// VerifyAccessToken validates signature, expiry and kind of an access token.
func (s *jwtService) VerifyAccessToken(token string) (*service.Claims, error) {
	return s.verifyToken(token, service.TokenKindAccess, s.accessSecret)
}

// VerifyRefreshToken validates signature, expiry and kind of a refresh token.
func (s *jwtService) VerifyRefreshToken(token string) (*service.Claims, error) {
	return s.verifyToken(token, service.TokenKindRefresh, s.refreshSecret)
}

// HashToken computes the SHA-256 hex digest under which a token is stored.
// Only the digest ever touches the database.
func (s *jwtService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshTokenTTL returns the configured duration for refresh tokens.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

// issueToken is a private helper to create a JWT with the service claims.
func (s *jwtService) issueToken(userID uuid.UUID, role entity.Role, sessionID uuid.UUID, kind string, ttl time.Duration, secret string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &service.Claims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// verifyToken parses and validates a token string against a secret and kind.
func (s *jwtService) verifyToken(tokenString, kind, secret string) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, service.ErrTokenExpired
		}
		return nil, service.ErrTokenMalformed
	}
	if !token.Valid {
		return nil, service.ErrTokenMalformed
	}
	if claims.Kind != kind {
		return nil, service.ErrWrongTokenKind
	}

	return claims, nil
}
