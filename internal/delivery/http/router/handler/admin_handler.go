package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"bountyhub/internal/delivery/http/middleware"
	"bountyhub/internal/delivery/http/response"
	"bountyhub/internal/domain/entity"
	"bountyhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AdminHandler holds dependencies for administrator moderation handlers.
type AdminHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler, injected by Fx.
func NewAdminHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		uc:     uc,
		logger: logger,
	}
}

// ActivateUser flips a user account to active. Typically used to approve
// pending organization registrations.
func (h *AdminHandler) ActivateUser(c echo.Context) error {
	return h.setUserActive(c, true)
}

// DeactivateUser flips a user account to inactive and ends all its sessions.
func (h *AdminHandler) DeactivateUser(c echo.Context) error {
	return h.setUserActive(c, false)
}

func (h *AdminHandler) setUserActive(c echo.Context, active bool) error {
	adminID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "invalid or expired credentials")
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user ID", "")
	}

	if err := h.uc.SetUserActive(c.Request().Context(), &usecase.SetUserActiveInput{
		AdminID: adminID,
		UserID:  targetID,
		Active:  active,
	}); err != nil {
		return errors.WithStack(err)
	}

	message := "User deactivated successfully"
	if active {
		message = "User activated successfully"
	}

	return response.Success(c, http.StatusOK, map[string]bool{"active": active}, message)
}

// AuditTrail returns a user's most recent audit events.
func (h *AdminHandler) AuditTrail(c echo.Context) error {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user ID", "")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	events, err := h.uc.GetAuditTrail(c.Request().Context(), targetID, limit)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, events, "Audit trail retrieved successfully")
}

// ListUsers returns accounts filtered by the role query parameter.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	role, ok := entity.ParseRole(c.QueryParam("role"))
	if !ok {
		return response.BadRequest(c, "INVALID_INPUT", "Unknown or missing role parameter", "")
	}

	users, err := h.uc.ListUsersByRole(c.Request().Context(), role)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]*userView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}

	return response.Success(c, http.StatusOK, views, "Users retrieved successfully")
}
