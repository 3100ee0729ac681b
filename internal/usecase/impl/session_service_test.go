package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"bountyhub/internal/domain/entity"
	domainerrors "bountyhub/internal/domain/errors"
	"bountyhub/internal/domain/repository"
	"bountyhub/internal/infra/metrics"
	"bountyhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sessionTestDeps struct {
	sessionRepo *mockSessionRepo
	auditRepo   *mockAuditRepo
}

func newTestSessionService() (usecase.SessionUsecase, *sessionTestDeps) {
	deps := &sessionTestDeps{
		sessionRepo: new(mockSessionRepo),
		auditRepo:   new(mockAuditRepo),
	}
	deps.auditRepo.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()

	txManager := &fakeTxManager{factory: &fakeRepoFactory{
		sessionRepo: deps.sessionRepo,
		auditRepo:   deps.auditRepo,
	}}

	svc := NewSessionService(SessionServiceParams{
		TxManager:   txManager,
		SessionRepo: deps.sessionRepo,
		AuditRepo:   deps.auditRepo,
		Metrics:     metrics.New(),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return svc, deps
}

func sessionAt(userID uuid.UUID, createdAt time.Time, active bool) *entity.Session {
	expiresAt := createdAt.Add(7 * 24 * time.Hour)
	if !active {
		expiresAt = createdAt
	}

	return &entity.Session{
		ID:         uuid.New(),
		UserID:     userID,
		Active:     active,
		CreatedAt:  createdAt,
		LastSeenAt: createdAt,
		ExpiresAt:  expiresAt,
	}
}

func TestGetActiveSessions_FiltersDeadSessions(t *testing.T) {
	svc, deps := newTestSessionService()
	userID := uuid.New()
	now := time.Now()

	live := sessionAt(userID, now.Add(-time.Hour), true)
	revoked := sessionAt(userID, now.Add(-2*time.Hour), false)
	aged := sessionAt(userID, now.Add(-30*24*time.Hour), true)
	aged.ExpiresAt = now.Add(-time.Hour)

	deps.sessionRepo.On("ListByUser", mock.Anything, userID).
		Return([]*entity.Session{live, revoked, aged}, nil)

	sessions, err := svc.GetActiveSessions(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, live.ID, sessions[0].ID)
}

func TestRevokeSession_Success(t *testing.T) {
	svc, deps := newTestSessionService()
	userID := uuid.New()
	session := sessionAt(userID, time.Now().Add(-time.Hour), true)

	deps.sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	deps.sessionRepo.On("Delete", mock.Anything, session.ID).Return(nil)

	err := svc.RevokeSession(context.Background(), userID, session.ID)

	require.NoError(t, err)
	deps.sessionRepo.AssertCalled(t, "Delete", mock.Anything, session.ID)
	assert.Equal(t, []entity.AuditAction{entity.AuditSessionRevoked}, deps.auditRepo.recordedActions())
}

func TestRevokeSession_NotOwner(t *testing.T) {
	svc, deps := newTestSessionService()
	session := sessionAt(uuid.New(), time.Now().Add(-time.Hour), true)

	deps.sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)

	err := svc.RevokeSession(context.Background(), uuid.New(), session.ID)

	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	deps.sessionRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRevokeSession_NotFound(t *testing.T) {
	svc, deps := newTestSessionService()
	sessionID := uuid.New()

	deps.sessionRepo.On("FindByID", mock.Anything, sessionID).Return(nil, repository.ErrSessionNotFound)

	err := svc.RevokeSession(context.Background(), uuid.New(), sessionID)

	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRevokeAllOtherSessions(t *testing.T) {
	svc, deps := newTestSessionService()
	userID := uuid.New()
	now := time.Now()

	current := sessionAt(userID, now.Add(-time.Hour), true)
	other1 := sessionAt(userID, now.Add(-2*time.Hour), true)
	other2 := sessionAt(userID, now.Add(-3*time.Hour), true)
	dead := sessionAt(userID, now.Add(-4*time.Hour), false)

	deps.sessionRepo.On("ListByUser", mock.Anything, userID).
		Return([]*entity.Session{current, other1, other2, dead}, nil)
	deps.sessionRepo.On("Deactivate", mock.Anything, other1.ID).Return(nil)
	deps.sessionRepo.On("Deactivate", mock.Anything, other2.ID).Return(nil)

	revoked, err := svc.RevokeAllOtherSessions(context.Background(), userID, current.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, revoked)
	deps.sessionRepo.AssertNotCalled(t, "Deactivate", mock.Anything, current.ID)
	deps.sessionRepo.AssertNotCalled(t, "Deactivate", mock.Anything, dead.ID)
}

func TestCleanupExpiredSessions(t *testing.T) {
	svc, deps := newTestSessionService()

	deps.sessionRepo.On("DeleteExpired", mock.Anything).Return(int64(3), nil)

	deleted, err := svc.CleanupExpiredSessions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestCalculateSessionStatistics(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	oldest := sessionAt(userID, now.Add(-48*time.Hour), false)
	middle := sessionAt(userID, now.Add(-24*time.Hour), true)
	newest := sessionAt(userID, now.Add(-time.Hour), true)

	stats := calculateSessionStatistics([]*entity.Session{newest, middle, oldest}, now)

	assert.Equal(t, 3, stats.TotalSessions)
	assert.Equal(t, 2, stats.TotalLiveSessions)
	require.NotNil(t, stats.OldestSession)
	require.NotNil(t, stats.NewestSession)
	assert.Equal(t, oldest.CreatedAt, *stats.OldestSession)
	assert.Equal(t, newest.CreatedAt, *stats.NewestSession)
}

func TestCalculateSessionStatistics_Empty(t *testing.T) {
	stats := calculateSessionStatistics(nil, time.Now())

	assert.Equal(t, 0, stats.TotalSessions)
	assert.Nil(t, stats.OldestSession)
	assert.Nil(t, stats.NewestSession)
}

func TestDetectExcessiveSessions(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	var sessions []*entity.Session
	for i := 0; i < excessiveSessionCount+1; i++ {
		sessions = append(sessions, sessionAt(userID, now.Add(-time.Duration(i)*time.Hour), true))
	}

	anomaly := detectExcessiveSessions(sessions, now)

	require.NotNil(t, anomaly)
	assert.Equal(t, "excessive_sessions", anomaly.Type)
	assert.Equal(t, "medium", anomaly.Severity)

	assert.Nil(t, detectExcessiveSessions(sessions[:excessiveSessionCount], now))
}

func TestDetectRapidSessionCreation(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	// Newest first, as the repository returns them.
	burstNewer := sessionAt(userID, now.Add(-time.Minute), true)
	burstOlder := sessionAt(userID, now.Add(-3*time.Minute), true)
	calm := sessionAt(userID, now.Add(-2*time.Hour), true)

	anomalies := detectRapidSessionCreation([]*entity.Session{burstNewer, burstOlder, calm}, now)

	require.Len(t, anomalies, 1)
	assert.Equal(t, "rapid_session_creation", anomalies[0].Type)
	assert.Equal(t, "high", anomalies[0].Severity)
	require.NotNil(t, anomalies[0].SessionID)
	assert.Equal(t, burstNewer.ID, *anomalies[0].SessionID)
}

func TestDetectAnomalousActivity_FailedLoginBurst(t *testing.T) {
	svc, deps := newTestSessionService()
	userID := uuid.New()

	deps.sessionRepo.On("ListByUser", mock.Anything, userID).
		Return([]*entity.Session{sessionAt(userID, time.Now().Add(-time.Hour), true)}, nil)
	deps.auditRepo.On("CountByAction", mock.Anything, userID, entity.AuditLoginFailed).
		Return(excessiveFailedLogins+1, nil)

	anomalies, err := svc.DetectAnomalousActivity(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "excessive_failed_logins", anomalies[0].Type)
	assert.Equal(t, "high", anomalies[0].Severity)
}

func TestDetectAnomalousActivity_QuietAccount(t *testing.T) {
	svc, deps := newTestSessionService()
	userID := uuid.New()

	deps.sessionRepo.On("ListByUser", mock.Anything, userID).
		Return([]*entity.Session{sessionAt(userID, time.Now().Add(-time.Hour), true)}, nil)
	deps.auditRepo.On("CountByAction", mock.Anything, userID, entity.AuditLoginFailed).
		Return(0, nil)

	anomalies, err := svc.DetectAnomalousActivity(context.Background(), userID)

	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestDetectLongLivedSessions(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	ancient := sessionAt(userID, now.Add(-longLivedSessionDuration-24*time.Hour), true)
	ancient.ExpiresAt = now.Add(24 * time.Hour)
	recent := sessionAt(userID, now.Add(-time.Hour), true)

	anomalies := detectLongLivedSessions([]*entity.Session{ancient, recent}, now)

	require.Len(t, anomalies, 1)
	assert.Equal(t, "long_lived_session", anomalies[0].Type)
	assert.Equal(t, "low", anomalies[0].Severity)
	assert.Equal(t, ancient.ID, *anomalies[0].SessionID)
}
