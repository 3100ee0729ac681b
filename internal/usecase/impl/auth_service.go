// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bountyhub/config"
	deliverycontext "bountyhub/internal/delivery/context"
	"bountyhub/internal/domain/entity"
	domainerrors "bountyhub/internal/domain/errors"
	"bountyhub/internal/domain/repository"
	"bountyhub/internal/domain/service"
	"bountyhub/internal/infra/metrics"
	"bountyhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager         repository.TransactionManager
	userRepo          repository.UserRepository
	sessionRepo       repository.SessionRepository
	auditRepo         repository.AuditRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	deviceParser      service.DeviceParser
	metrics           *metrics.Metrics
	sessionTTL        time.Duration
	maxActiveSessions int
	logger            *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	SessionRepo  repository.SessionRepository
	AuditRepo    repository.AuditRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	DeviceParser service.DeviceParser
	Metrics      *metrics.Metrics
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	sessionTTL := params.TokenService.RefreshTokenTTL()
	maxActiveSessions := 0
	if params.Config != nil && params.Config.Auth != nil {
		if params.Config.Auth.SessionTTL > 0 {
			sessionTTL = params.Config.Auth.SessionTTL
		}
		maxActiveSessions = params.Config.Auth.MaxActiveSessions
	}

	return &authService{
		txManager:         params.TxManager,
		userRepo:          params.UserRepo,
		sessionRepo:       params.SessionRepo,
		auditRepo:         params.AuditRepo,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		deviceParser:      params.DeviceParser,
		metrics:           params.Metrics,
		sessionTTL:        sessionTTL,
		maxActiveSessions: maxActiveSessions,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// recordAudit appends an audit event outside the calling transaction.
// Audit failures are logged and swallowed; they never fail the parent operation.
func (srv *authService) recordAudit(ctx context.Context, action entity.AuditAction, userID, entityID *uuid.UUID, details string) {
	event := &entity.AuditEvent{
		Action:   action,
		UserID:   userID,
		EntityID: entityID,
		Details:  details,
	}
	if err := srv.auditRepo.Record(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to record audit event", slog.String("action", string(action)), slog.Any("error", err))
	}
}

// RegisterResearcher creates an immediately-active researcher account.
func (srv *authService) RegisterResearcher(ctx context.Context, input *usecase.RegisterResearcherInput) (*usecase.RegisterOutput, error) {
	return srv.executeRegistration(ctx, &registrationConfig{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     entity.RoleResearcher,
		// Researchers are usable right away.
		Active:      true,
		AcceptTerms: input.AcceptTerms,
	})
}

// RegisterOrganization creates an organization account that stays inactive
// until an administrator approves it.
func (srv *authService) RegisterOrganization(ctx context.Context, input *usecase.RegisterOrganizationInput) (*usecase.RegisterOutput, error) {
	return srv.executeRegistration(ctx, &registrationConfig{
		Name:        input.Name,
		Email:       input.Email,
		Password:    input.Password,
		Role:        entity.RoleOrganization,
		Active:      false,
		AcceptTerms: input.AcceptTerms,
	})
}

type registrationConfig struct {
	Name        string
	Email       string
	Password    string
	Role        entity.Role
	Active      bool
	AcceptTerms bool
}

func (srv *authService) executeRegistration(ctx context.Context, cfg *registrationConfig) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.Any("role", cfg.Role), slog.String("email", cfg.Email))

	if !cfg.AcceptTerms {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("platform terms must be accepted")
	}

	if err := srv.hasher.ValidatePasswordStrength(cfg.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.Any("role", cfg.Role), slog.String("email", cfg.Email), slog.Any("error", err))

		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(cfg.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("role", cfg.Role), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	now := time.Now()
	newUser := &entity.User{
		Name:            cfg.Name,
		Email:           cfg.Email,
		Role:            cfg.Role,
		PasswordHash:    hashedPassword,
		Active:          cfg.Active,
		TermsAcceptedAt: &now,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByEmail(ctx, cfg.Email)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check for existing user")
		}

		return userRepo.Create(ctx, newUser)
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.Any("role", cfg.Role), slog.String("email", cfg.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("role", cfg.Role), slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{User: newUser}, nil
}

// Login authenticates an email/password pair against the role-specific login
// surface and opens a new session. Every failure before the active check maps
// to the same invalid-credentials error externally; the internal log entries
// stay distinguishable.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email), slog.Any("role", input.Role))

	// 1. Look up the account. An unknown email and a wrong password must be
	// indistinguishable to the caller.
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed: unknown email", slog.String("email", input.Email))
			srv.failLogin(ctx, nil, "unknown email")

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to load user for login")
	}

	// 2. Check the password. bcrypt is CPU-bound; runs outside any transaction.
	if !user.HasLocalCredential() || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed: password mismatch", slog.Any("userID", user.ID))
		srv.failLogin(ctx, &user.ID, "password mismatch")

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	// 3. The role comes from the route. A valid credential presented on the
	// wrong surface is rejected with the same message as a bad password.
	if user.Role != input.Role {
		srv.log(ctx).Warn("Login failed: role mismatch", slog.Any("userID", user.ID), slog.Any("expected", input.Role), slog.Any("actual", user.Role))
		srv.failLogin(ctx, &user.ID, "role mismatch")

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	// 4. Only active accounts may open sessions. Organizations awaiting
	// approval get a dedicated message; credentials were already proven.
	if !user.Active {
		srv.log(ctx).Warn("Login failed: account inactive", slog.Any("userID", user.ID), slog.Any("role", user.Role))
		srv.failLogin(ctx, &user.ID, "account inactive")

		if user.Role == entity.RoleOrganization {
			return nil, domainerrors.ErrPendingApproval.WrapMessage("login failed")
		}

		return nil, domainerrors.ErrAccountInactive.WrapMessage("login failed")
	}

	// 5. Open the session and issue the token pair.
	output, err := srv.openSession(ctx, user, input)
	if err != nil {
		srv.log(ctx).Error("Login failed: could not open session", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, err
	}

	srv.metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	srv.recordAudit(ctx, entity.AuditLoginSuccess, &user.ID, &output.Session.ID, "login from "+output.Session.DeviceBrowser+" on "+output.Session.DeviceOS)
	srv.log(ctx).Info("User logged in", slog.Any("userID", user.ID), slog.Any("sessionID", output.Session.ID))

	return output, nil
}

// failLogin bumps the failure metric and records exactly one audit event per
// failed attempt.
func (srv *authService) failLogin(ctx context.Context, userID *uuid.UUID, reason string) {
	srv.metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
	srv.recordAudit(ctx, entity.AuditLoginFailed, userID, nil, reason)
}

// openSession creates the session row and the token pair bound to it.
// Session ID is generated here so it can be embedded in both tokens before
// the row exists.
func (srv *authService) openSession(ctx context.Context, user *entity.User, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	sessionID := uuid.New()

	accessToken, err := srv.tokenService.IssueAccessToken(user.ID, user.Role, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, refreshExpiresAt, err := srv.tokenService.IssueRefreshToken(user.ID, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	deviceInfo := srv.deviceParser.Parse(input.UserAgent)
	now := time.Now()
	session := &entity.Session{
		ID:             sessionID,
		UserID:         user.ID,
		UserAgent:      input.UserAgent,
		DeviceOS:       deviceInfo.OS,
		DeviceBrowser:  deviceInfo.Browser,
		DeviceClass:    deviceInfo.Class,
		IP:             input.IP,
		TokenHash:      srv.tokenService.HashToken(refreshToken),
		TokenExpiresAt: &refreshExpiresAt,
		Active:         true,
		LastSeenAt:     now,
		// Absolute lifetime. Refreshes never push this out.
		ExpiresAt: now.Add(srv.sessionTTL),
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()
		userRepo := repoFactory.UserRepo()

		if srv.maxActiveSessions > 0 {
			liveCount, err := sessionRepo.CountLiveByUser(ctx, user.ID)
			if err != nil {
				return errors.Wrap(err, "failed to count live sessions")
			}
			if liveCount >= srv.maxActiveSessions {
				return errors.Wrap(domainerrors.ErrSessionLimitExceeded, "active session limit exceeded")
			}
		}

		if err := sessionRepo.Create(ctx, session); err != nil {
			return errors.Wrap(err, "failed to create session")
		}

		return userRepo.UpdateLastLogin(ctx, user.ID, now)
	})
	if err != nil {
		return nil, err
	}

	return &usecase.LoginOutput{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
		User:             user,
		Session:          session,
	}, nil
}

// Refresh rotates the presented refresh token: the stored hash is swapped for
// the new token's hash in one conditional update, so the presented token can
// never verify again. A token that was already rotated away is treated as
// replay and kills the session it points at.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	claims, err := srv.tokenService.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		srv.log(ctx).Warn("Refresh failed: token verification", slog.Any("error", err))
		srv.metrics.RefreshesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()

		return nil, domainerrors.ErrUnauthenticated.WrapMessage("refresh failed")
	}

	presentedHash := srv.tokenService.HashToken(input.RefreshToken)

	var output *usecase.RefreshOutput
	var replayedSessionID *uuid.UUID

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()
		userRepo := repoFactory.UserRepo()

		session, err := sessionRepo.FindByID(ctx, claims.SessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return errors.Wrap(domainerrors.ErrUnauthenticated, "session no longer exists")
			}

			return errors.Wrap(err, "failed to load session for refresh")
		}

		// A cryptographically valid token is worthless once its session died
		// or aged out. The session's absolute lifetime wins.
		if !session.IsLive(time.Now()) {
			return errors.Wrap(domainerrors.ErrSessionExpired, "session not live")
		}

		// The persisted expiry is authoritative over the token's embedded exp.
		// Logout clears it; a shortened server-side window must win too.
		if session.TokenExpiresAt == nil || !session.TokenExpiresAt.After(time.Now()) {
			return errors.Wrap(domainerrors.ErrUnauthenticated, "stored refresh token expired")
		}

		user, err := userRepo.FindByID(ctx, session.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to load user for refresh")
		}
		if !user.Active {
			return errors.Wrap(domainerrors.ErrUnauthenticated, "account deactivated")
		}

		newRefreshToken, newExpiresAt, err := srv.tokenService.IssueRefreshToken(user.ID, session.ID)
		if err != nil {
			return errors.Wrap(err, "failed to issue refresh token")
		}

		// Single-winner swap. If the presented hash no longer matches the
		// stored one, this token was already used: flag the session for
		// deactivation after the transaction.
		newHash := srv.tokenService.HashToken(newRefreshToken)
		if err := sessionRepo.RotateTokenHash(ctx, session.ID, presentedHash, newHash, newExpiresAt); err != nil {
			if errors.Is(err, repository.ErrSessionRotated) {
				sessionID := session.ID
				replayedSessionID = &sessionID

				return errors.Wrap(domainerrors.ErrUnauthenticated, "refresh token already rotated")
			}

			return errors.Wrap(err, "failed to rotate refresh token")
		}

		accessToken, err := srv.tokenService.IssueAccessToken(user.ID, user.Role, session.ID)
		if err != nil {
			return errors.Wrap(err, "failed to issue access token")
		}

		output = &usecase.RefreshOutput{
			AccessToken:      accessToken,
			RefreshToken:     newRefreshToken,
			RefreshExpiresAt: newExpiresAt,
		}

		return nil
	})

	if replayedSessionID != nil {
		srv.handleReplay(ctx, claims.UserID, *replayedSessionID)
	}

	if err != nil {
		if replayedSessionID == nil {
			srv.log(ctx).Warn("Refresh failed", slog.Any("sessionID", claims.SessionID), slog.Any("error", err))
			srv.metrics.RefreshesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		}

		return nil, err
	}

	srv.metrics.RefreshesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	srv.recordAudit(ctx, entity.AuditTokenRefreshed, &claims.UserID, &claims.SessionID, "")
	srv.log(ctx).Debug("Refresh token rotated", slog.Any("sessionID", claims.SessionID))

	return output, nil
}

// handleReplay deactivates a session whose refresh token was presented after
// rotation. Either the token was stolen or two clients raced; in both cases
// the safe move is to end the session and force a fresh login.
func (srv *authService) handleReplay(ctx context.Context, userID, sessionID uuid.UUID) {
	srv.log(ctx).Warn("Refresh token replay detected, deactivating session",
		slog.Any("userID", userID), slog.Any("sessionID", sessionID))
	srv.metrics.RefreshesTotal.WithLabelValues(metrics.OutcomeReplay).Inc()

	if err := srv.sessionRepo.Deactivate(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		srv.log(ctx).Error("Failed to deactivate replayed session", slog.Any("sessionID", sessionID), slog.Any("error", err))
	}

	srv.recordAudit(ctx, entity.AuditSessionRevoked, &userID, &sessionID, "refresh token replay")
}

// Logout ends the session owning the presented refresh token. Logging out
// with an invalid, expired or already-rotated token succeeds silently; the
// desired end state (no live session for that token) already holds.
func (srv *authService) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	claims, err := srv.tokenService.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		srv.log(ctx).Debug("Logout with unverifiable token", slog.Any("error", err))

		return nil
	}

	if err := srv.sessionRepo.Deactivate(ctx, claims.SessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}

		return errors.Wrap(err, "failed to deactivate session during logout")
	}

	srv.metrics.LogoutsTotal.Inc()
	srv.recordAudit(ctx, entity.AuditLogout, &claims.UserID, &claims.SessionID, "")
	srv.log(ctx).Info("User logged out", slog.Any("userID", claims.UserID), slog.Any("sessionID", claims.SessionID))

	return nil
}

// SetUserActive flips an account's active flag. Deactivation also ends every
// session the user holds, so a banned account cannot coast on issued tokens.
func (srv *authService) SetUserActive(ctx context.Context, input *usecase.SetUserActiveInput) error {
	srv.log(ctx).Info("Setting user active flag",
		slog.Any("adminID", input.AdminID), slog.Any("userID", input.UserID), slog.Bool("active", input.Active))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		sessionRepo := repoFactory.SessionRepo()

		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound.WrapMessage("cannot moderate unknown user")
			}

			return errors.Wrap(err, "failed to load user for moderation")
		}

		if err := userRepo.SetActive(ctx, user.ID, input.Active); err != nil {
			return errors.Wrap(err, "failed to set active flag")
		}

		if !input.Active {
			sessions, err := sessionRepo.ListByUser(ctx, user.ID)
			if err != nil {
				return errors.Wrap(err, "failed to list sessions for deactivation")
			}
			for _, session := range sessions {
				if !session.Active {
					continue
				}
				if err := sessionRepo.Deactivate(ctx, session.ID); err != nil {
					return errors.Wrap(err, "failed to deactivate session")
				}
			}
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to set user active flag", slog.Any("userID", input.UserID), slog.Any("error", err))

		return err
	}

	action := entity.AuditUserDeactivated
	if input.Active {
		action = entity.AuditUserActivated
	}
	srv.recordAudit(ctx, action, &input.UserID, nil, fmt.Sprintf("by admin %s", input.AdminID))

	return nil
}

// ListUsersByRole returns accounts with the given role for admin review.
func (srv *authService) ListUsersByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	users, err := srv.userRepo.ListByRole(ctx, role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users by role")
	}

	return users, nil
}

// defaultAuditTrailLimit caps audit listings when the caller does not ask for
// a specific page size.
const defaultAuditTrailLimit = 50

// GetAuditTrail returns a user's most recent audit events, newest first.
func (srv *authService) GetAuditTrail(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultAuditTrailLimit
	}

	events, err := srv.auditRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list audit events")
	}

	return events, nil
}
