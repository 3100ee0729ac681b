package auth

import (
	"testing"
	"time"

	"bountyhub/config"
	"bountyhub/internal/domain/entity"
	"bountyhub/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.SecretKey.Refresh = "test_refresh_secret_key_very_long_for_testing"
	cfg.Auth = &config.AuthConfig{
		AccessTokenTTL:  time.Minute * 15,
		RefreshTokenTTL: time.Hour * 24 * 7,
	}
	return cfg
}

func TestJWTService_IssueAndVerifyTokens(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	assert.NoError(t, err)
	assert.NotNil(t, jwtService)

	userID := uuid.New()
	sessionID := uuid.New()

	// Issue both token kinds
	accessToken, err := jwtService.IssueAccessToken(userID, entity.RoleResearcher, sessionID)
	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	refreshToken, expiresAt, err := jwtService.IssueRefreshToken(userID, sessionID)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour*24*7), expiresAt, time.Minute)

	// Verify access token
	accessClaims, err := jwtService.VerifyAccessToken(accessToken)
	assert.NoError(t, err)
	assert.NotNil(t, accessClaims)
	assert.Equal(t, userID, accessClaims.UserID)
	assert.Equal(t, sessionID, accessClaims.SessionID)
	assert.Equal(t, entity.RoleResearcher, accessClaims.Role)
	assert.Equal(t, service.TokenKindAccess, accessClaims.Kind)

	// Verify refresh token
	refreshClaims, err := jwtService.VerifyRefreshToken(refreshToken)
	assert.NoError(t, err)
	assert.NotNil(t, refreshClaims)
	assert.Equal(t, userID, refreshClaims.UserID)
	assert.Equal(t, sessionID, refreshClaims.SessionID)
	assert.Empty(t, refreshClaims.Role) // Refresh tokens don't carry a role
	assert.Equal(t, service.TokenKindRefresh, refreshClaims.Kind)
}

func TestJWTService_WrongTokenKind(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	assert.NoError(t, err)

	userID := uuid.New()
	sessionID := uuid.New()

	accessToken, err := jwtService.IssueAccessToken(userID, entity.RoleResearcher, sessionID)
	assert.NoError(t, err)

	refreshToken, _, err := jwtService.IssueRefreshToken(userID, sessionID)
	assert.NoError(t, err)

	// Tokens are signed with different secrets, so a cross-kind check fails
	// at the signature stage before the kind discriminator is even reached.
	claims, err := jwtService.VerifyRefreshToken(accessToken)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = jwtService.VerifyAccessToken(refreshToken)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_InvalidToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	assert.NoError(t, err)

	invalidToken := "clearly-not-a-jwt-token-format"
	claims, err := jwtService.VerifyAccessToken(invalidToken)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenMalformed)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	cfg := newTestConfig()
	cfg.Auth.AccessTokenTTL = -time.Minute
	jwtService, err := NewJWTService(cfg)
	assert.NoError(t, err)

	accessToken, err := jwtService.IssueAccessToken(uuid.New(), entity.RoleResearcher, uuid.New())
	assert.NoError(t, err)

	claims, err := jwtService.VerifyAccessToken(accessToken)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestJWTService_TamperedSignature(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	assert.NoError(t, err)

	otherCfg := newTestConfig()
	otherCfg.SecretKey.Access = "a_completely_different_access_secret_key"
	otherService, err := NewJWTService(otherCfg)
	assert.NoError(t, err)

	foreignToken, err := otherService.IssueAccessToken(uuid.New(), entity.RoleAdmin, uuid.New())
	assert.NoError(t, err)

	claims, err := jwtService.VerifyAccessToken(foreignToken)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenMalformed)
}

func TestJWTService_EmptySecrets(t *testing.T) {
	cfg := newTestConfig()
	cfg.SecretKey.Access = ""
	cfg.SecretKey.Refresh = ""

	jwtService, err := NewJWTService(cfg)
	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "jwt secrets must be provided")
}

func TestJWTService_HashToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	assert.NoError(t, err)

	hash := jwtService.HashToken("some-opaque-token")
	assert.Len(t, hash, 64) // sha256 hex

	// Deterministic, and distinct inputs produce distinct digests
	assert.Equal(t, hash, jwtService.HashToken("some-opaque-token"))
	assert.NotEqual(t, hash, jwtService.HashToken("another-token"))
}

func TestJWTService_RefreshTokenTTL(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	assert.NoError(t, err)

	assert.Equal(t, time.Hour*24*7, jwtService.RefreshTokenTTL())
}
