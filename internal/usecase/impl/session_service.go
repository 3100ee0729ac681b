// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "bountyhub/internal/delivery/context"
	"bountyhub/internal/domain/entity"
	domainerrors "bountyhub/internal/domain/errors"
	"bountyhub/internal/domain/repository"
	"bountyhub/internal/infra/metrics"
	"bountyhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Anomaly detection thresholds.
const (
	excessiveSessionCount    = 10
	rapidCreationWindow      = 5 * time.Minute
	longLivedSessionDuration = 30 * 24 * time.Hour
	excessiveFailedLogins    = 5
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager   repository.TransactionManager
	sessionRepo repository.SessionRepository
	auditRepo   repository.AuditRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	SessionRepo repository.SessionRepository
	AuditRepo   repository.AuditRepository
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		txManager:   params.TxManager,
		sessionRepo: params.SessionRepo,
		auditRepo:   params.AuditRepo,
		metrics:     params.Metrics,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetActiveSessions retrieves all live sessions for a user, newest first.
func (srv *sessionService) GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	srv.log(ctx).Debug("Getting active sessions", slog.Any("userID", userID))

	sessions, err := srv.sessionRepo.ListByUser(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to get active sessions", slog.Any("error", err), slog.Any("userID", userID))

		return nil, errors.Wrap(err, "failed to get active sessions")
	}

	now := time.Now()
	live := make([]*entity.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.IsLive(now) {
			live = append(live, session)
		}
	}

	return live, nil
}

// RevokeSession ends a specific session after verifying ownership.
func (srv *sessionService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	srv.log(ctx).Info("Revoking session", slog.Any("userID", userID), slog.Any("sessionID", sessionID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		session, err := sessionRepo.FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return errors.Wrap(domainerrors.ErrNotFound, "session not found")
			}

			return errors.Wrap(err, "failed to find session")
		}

		// Ownership check happens before any mutation. A session ID is not a
		// capability; only the owner may end it through this path.
		if session.UserID != userID {
			return errors.Wrap(domainerrors.ErrForbidden, "session does not belong to user")
		}

		// Terminating a single named device removes the row outright.
		return sessionRepo.Delete(ctx, sessionID)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke session", slog.Any("error", err), slog.Any("userID", userID), slog.Any("sessionID", sessionID))

		return err
	}

	srv.metrics.SessionsRevokedTotal.Inc()
	srv.recordRevocation(ctx, userID, sessionID, "revoked by owner")
	srv.log(ctx).Info("Successfully revoked session", slog.Any("userID", userID), slog.Any("sessionID", sessionID))

	return nil
}

// RevokeAllOtherSessions ends every live session except the current one and
// reports how many were ended. "Log me out everywhere else."
func (srv *sessionService) RevokeAllOtherSessions(ctx context.Context, userID, currentSessionID uuid.UUID) (int, error) {
	srv.log(ctx).Info("Revoking all other sessions", slog.Any("userID", userID), slog.Any("currentSessionID", currentSessionID))

	revoked := 0
	var revokedIDs []uuid.UUID

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		sessions, err := sessionRepo.ListByUser(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list sessions")
		}

		now := time.Now()
		for _, session := range sessions {
			if session.ID == currentSessionID || !session.IsLive(now) {
				continue
			}
			if err := sessionRepo.Deactivate(ctx, session.ID); err != nil {
				return errors.Wrap(err, "failed to deactivate session")
			}
			revoked++
			revokedIDs = append(revokedIDs, session.ID)
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke all other sessions", slog.Any("error", err), slog.Any("userID", userID))

		return 0, err
	}

	for _, id := range revokedIDs {
		srv.metrics.SessionsRevokedTotal.Inc()
		srv.recordRevocation(ctx, userID, id, "revoked via revoke-others")
	}
	srv.log(ctx).Info("Successfully revoked other sessions", slog.Any("userID", userID), slog.Int("count", revoked))

	return revoked, nil
}

// CleanupExpiredSessions removes sessions past their absolute expiry and
// reports the number removed. Safe to run on a schedule; deleting nothing is
// a normal outcome.
func (srv *sessionService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	srv.log(ctx).Info("Cleaning up expired sessions")

	deleted, err := srv.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		srv.log(ctx).Error("Failed to cleanup expired sessions", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to cleanup expired sessions")
	}

	srv.log(ctx).Info("Cleaned up expired sessions", slog.Int64("deletedCount", deleted))

	return deleted, nil
}

// GetSessionStatistics provides a statistical overview of a user's sessions.
func (srv *sessionService) GetSessionStatistics(ctx context.Context, userID uuid.UUID) (*entity.SessionStatistics, error) {
	srv.log(ctx).Debug("Getting session statistics", slog.Any("userID", userID))

	sessions, err := srv.sessionRepo.ListByUser(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to get session statistics", slog.Any("error", err), slog.Any("userID", userID))

		return nil, errors.Wrap(err, "failed to get session statistics")
	}

	return calculateSessionStatistics(sessions, time.Now()), nil
}

// calculateSessionStatistics reduces a session list to its summary numbers.
func calculateSessionStatistics(sessions []*entity.Session, now time.Time) *entity.SessionStatistics {
	stats := &entity.SessionStatistics{
		TotalSessions: len(sessions),
	}
	if len(sessions) == 0 {
		return stats
	}

	oldest := sessions[0].CreatedAt
	newest := sessions[0].CreatedAt
	for _, session := range sessions {
		if session.IsLive(now) {
			stats.TotalLiveSessions++
		}
		if session.CreatedAt.Before(oldest) {
			oldest = session.CreatedAt
		}
		if session.CreatedAt.After(newest) {
			newest = session.CreatedAt
		}
	}
	stats.OldestSession = &oldest
	stats.NewestSession = &newest

	return stats
}

// DetectAnomalousActivity analyzes a user's sessions for suspicious patterns.
// Advisory output only; nothing here gates authorization.
func (srv *sessionService) DetectAnomalousActivity(ctx context.Context, userID uuid.UUID) ([]*entity.AnomalousActivity, error) {
	srv.log(ctx).Debug("Detecting anomalous activity", slog.Any("userID", userID))

	sessions, err := srv.sessionRepo.ListByUser(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to detect anomalous activity", slog.Any("error", err), slog.Any("userID", userID))

		return nil, errors.Wrap(err, "failed to detect anomalous activity")
	}

	now := time.Now()
	anomalies := detectSessionAnomalies(sessions, now)

	// The audit trail sees failures that never produced a session.
	failedLogins, err := srv.auditRepo.CountByAction(ctx, userID, entity.AuditLoginFailed)
	if err != nil {
		srv.log(ctx).Error("Failed to count failed logins", slog.Any("error", err), slog.Any("userID", userID))
	} else if anomaly := detectFailedLoginBurst(failedLogins, now); anomaly != nil {
		anomalies = append(anomalies, anomaly)
	}

	srv.log(ctx).Debug("Analyzed sessions for anomalies", slog.Any("userID", userID), slog.Int("anomaliesFound", len(anomalies)))

	return anomalies, nil
}

// detectFailedLoginBurst flags accounts accumulating failed login attempts.
func detectFailedLoginBurst(failedCount int, now time.Time) *entity.AnomalousActivity {
	if failedCount > excessiveFailedLogins {
		return &entity.AnomalousActivity{
			Type:        "excessive_failed_logins",
			Description: "Account has accumulated an unusually high number of failed login attempts",
			Severity:    "high",
			DetectedAt:  now,
		}
	}

	return nil
}

// detectSessionAnomalies runs every detector over the session list.
func detectSessionAnomalies(sessions []*entity.Session, now time.Time) []*entity.AnomalousActivity {
	var anomalies []*entity.AnomalousActivity

	if anomaly := detectExcessiveSessions(sessions, now); anomaly != nil {
		anomalies = append(anomalies, anomaly)
	}
	anomalies = append(anomalies, detectRapidSessionCreation(sessions, now)...)
	anomalies = append(anomalies, detectLongLivedSessions(sessions, now)...)

	return anomalies
}

// detectExcessiveSessions checks if the user has too many live sessions.
func detectExcessiveSessions(sessions []*entity.Session, now time.Time) *entity.AnomalousActivity {
	liveCount := 0
	for _, session := range sessions {
		if session.IsLive(now) {
			liveCount++
		}
	}

	if liveCount > excessiveSessionCount {
		return &entity.AnomalousActivity{
			Type:        "excessive_sessions",
			Description: "User has an unusually high number of live sessions",
			Severity:    "medium",
			DetectedAt:  now,
		}
	}

	return nil
}

// detectRapidSessionCreation checks for sessions created in rapid succession.
// Sessions arrive newest first from the repository.
func detectRapidSessionCreation(sessions []*entity.Session, now time.Time) []*entity.AnomalousActivity {
	var anomalies []*entity.AnomalousActivity

	for i := 1; i < len(sessions); i++ {
		timeDiff := sessions[i-1].CreatedAt.Sub(sessions[i].CreatedAt)
		if timeDiff >= 0 && timeDiff < rapidCreationWindow {
			sessionID := sessions[i-1].ID
			anomalies = append(anomalies, &entity.AnomalousActivity{
				Type:        "rapid_session_creation",
				Description: "Multiple sessions created in rapid succession",
				Severity:    "high",
				DetectedAt:  now,
				SessionID:   &sessionID,
			})
		}
	}

	return anomalies
}

// detectLongLivedSessions flags very old live sessions (potential forgotten devices).
func detectLongLivedSessions(sessions []*entity.Session, now time.Time) []*entity.AnomalousActivity {
	var anomalies []*entity.AnomalousActivity

	for _, session := range sessions {
		if session.IsLive(now) && now.Sub(session.CreatedAt) > longLivedSessionDuration {
			sessionID := session.ID
			anomalies = append(anomalies, &entity.AnomalousActivity{
				Type:        "long_lived_session",
				Description: "Session has been live for an unusually long time",
				Severity:    "low",
				DetectedAt:  now,
				SessionID:   &sessionID,
			})
		}
	}

	return anomalies
}

// recordRevocation appends a SESSION_REVOKED audit event; failures are logged
// and swallowed.
func (srv *sessionService) recordRevocation(ctx context.Context, userID, sessionID uuid.UUID, details string) {
	event := &entity.AuditEvent{
		Action:   entity.AuditSessionRevoked,
		UserID:   &userID,
		EntityID: &sessionID,
		Details:  details,
	}
	if err := srv.auditRepo.Record(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to record audit event", slog.Any("error", err))
	}
}
