// Package middleware provides HTTP middleware for the echo server.
package middleware

import (
	"log/slog"
	"strings"
	"time"

	deliverycontext "bountyhub/internal/delivery/context"
	"bountyhub/internal/domain/entity"
	domainerrors "bountyhub/internal/domain/errors"
	"bountyhub/internal/domain/repository"
	"bountyhub/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Context keys populated by Authenticate for downstream handlers.
const (
	ContextKeyUserID    = "userID"
	ContextKeyRole      = "role"
	ContextKeySessionID = "sessionID"
)

// AuthMiddleware authenticates requests with a bearer access token. A valid
// signature alone is not enough: the session named by the token must still be
// live and the account still active. Every rejection carries the same external
// 401 so callers cannot tell which check failed; the logs can.
type AuthMiddleware struct {
	tokenService service.TokenService
	sessionRepo  repository.SessionRepository
	userRepo     repository.UserRepository
	logger       *slog.Logger
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(
	tokenService service.TokenService,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// log returns a request-scoped logger if available.
func (m *AuthMiddleware) log(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
}

// Authenticate validates the bearer token and the session behind it, then
// stores the caller's identity on the echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			m.log(c).Debug("Missing or malformed Authorization header")

			return errors.WithStack(domainerrors.ErrUnauthenticated)
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.tokenService.VerifyAccessToken(tokenString)
		if err != nil {
			m.log(c).Debug("Access token verification failed", slog.Any("error", err))

			return errors.WithStack(domainerrors.ErrUnauthenticated)
		}

		ctx := c.Request().Context()

		// The token may outlive its session: logout, replay detection or admin
		// revocation all kill the session while issued tokens still verify.
		session, err := m.sessionRepo.FindByID(ctx, claims.SessionID)
		if err != nil {
			m.log(c).Debug("Session lookup failed", slog.Any("error", err), slog.Any("sessionID", claims.SessionID))

			return errors.WithStack(domainerrors.ErrUnauthenticated)
		}
		if !session.IsLive(time.Now()) {
			m.log(c).Debug("Session is no longer live", slog.Any("sessionID", claims.SessionID))

			return errors.WithStack(domainerrors.ErrSessionExpired)
		}

		user, err := m.userRepo.FindByID(ctx, claims.UserID)
		if err != nil {
			m.log(c).Debug("User lookup failed", slog.Any("error", err), slog.Any("userID", claims.UserID))

			return errors.WithStack(domainerrors.ErrUnauthenticated)
		}
		if !user.Active {
			m.log(c).Debug("User account is inactive", slog.Any("userID", claims.UserID))

			return errors.WithStack(domainerrors.ErrUnauthenticated)
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, user.Role)
		c.Set(ContextKeySessionID, claims.SessionID)

		return next(c)
	}
}

// RequireRole returns middleware that allows only callers holding the given
// role. Must run after Authenticate.
func (m *AuthMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			callerRole, ok := c.Get(ContextKeyRole).(entity.Role)
			if !ok {
				m.log(c).Warn("RequireRole used without Authenticate")

				return errors.WithStack(domainerrors.ErrUnauthenticated)
			}
			if callerRole != role {
				m.log(c).Debug("Role check failed", slog.Any("required", role), slog.Any("actual", callerRole))

				return errors.WithStack(domainerrors.ErrForbidden)
			}

			return next(c)
		}
	}
}
