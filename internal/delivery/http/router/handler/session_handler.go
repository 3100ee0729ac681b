package handler

import (
	"log/slog"
	"net/http"
	"time"

	"bountyhub/internal/delivery/http/middleware"
	"bountyhub/internal/delivery/http/response"
	"bountyhub/internal/domain/entity"
	"bountyhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// sessionView is the public shape of a session. Token hashes stay server-side.
type sessionView struct {
	ID            string    `json:"id"`
	UserAgent     string    `json:"userAgent"`
	DeviceOS      string    `json:"deviceOs"`
	DeviceBrowser string    `json:"deviceBrowser"`
	DeviceClass   string    `json:"deviceClass"`
	IP            string    `json:"ip"`
	Location      string    `json:"location,omitempty"`
	Current       bool      `json:"current"`
	CreatedAt     time.Time `json:"createdAt"`
	LastSeenAt    time.Time `json:"lastSeenAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

func toSessionView(session *entity.Session, currentSessionID uuid.UUID) *sessionView {
	return &sessionView{
		ID:            session.ID.String(),
		UserAgent:     session.UserAgent,
		DeviceOS:      session.DeviceOS,
		DeviceBrowser: session.DeviceBrowser,
		DeviceClass:   session.DeviceClass,
		IP:            session.IP,
		Location:      session.Location,
		Current:       session.ID == currentSessionID,
		CreatedAt:     session.CreatedAt,
		LastSeenAt:    session.LastSeenAt,
		ExpiresAt:     session.ExpiresAt,
	}
}

// SessionHandler holds dependencies for session management handlers.
type SessionHandler struct {
	uc     usecase.SessionUsecase
	logger *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler, injected by Fx.
func NewSessionHandler(uc usecase.SessionUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		uc:     uc,
		logger: logger,
	}
}

// callerIdentity pulls the authenticated user and session IDs off the context.
func callerIdentity(c echo.Context) (userID, sessionID uuid.UUID, ok bool) {
	userID, ok = c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, ok = c.Get(middleware.ContextKeySessionID).(uuid.UUID)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	return userID, sessionID, true
}

// ListSessions returns the caller's live sessions, marking the current one.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	userID, sessionID, ok := callerIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "invalid or expired credentials")
	}

	sessions, err := h.uc.GetActiveSessions(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]*sessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, toSessionView(session, sessionID))
	}

	return response.Success(c, http.StatusOK, views, "Sessions retrieved successfully")
}

// RevokeSession ends one of the caller's sessions by ID.
func (h *SessionHandler) RevokeSession(c echo.Context) error {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "invalid or expired credentials")
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid session ID", "")
	}

	if err := h.uc.RevokeSession(c.Request().Context(), userID, targetID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Session revoked"}, "Session revoked successfully")
}

// RevokeOtherSessions ends every caller session except the current one.
func (h *SessionHandler) RevokeOtherSessions(c echo.Context) error {
	userID, sessionID, ok := callerIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "invalid or expired credentials")
	}

	revoked, err := h.uc.RevokeAllOtherSessions(c.Request().Context(), userID, sessionID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"revoked": revoked}, "Other sessions revoked successfully")
}

// GetStatistics returns a summary of the caller's sessions.
func (h *SessionHandler) GetStatistics(c echo.Context) error {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "invalid or expired credentials")
	}

	stats, err := h.uc.GetSessionStatistics(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, stats, "Session statistics retrieved successfully")
}

// GetAnomalies returns suspicious session patterns for the caller's account.
func (h *SessionHandler) GetAnomalies(c echo.Context) error {
	userID, _, ok := callerIdentity(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "invalid or expired credentials")
	}

	anomalies, err := h.uc.DetectAnomalousActivity(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, anomalies, "Anomalous activity analysis completed")
}
