// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"bountyhub/config"
	"bountyhub/internal/delivery/http/cookie"
	"bountyhub/internal/delivery/http/response"
	"bountyhub/internal/domain/entity"
	"bountyhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// registerRequest is the JSON body for both registration endpoints.
type registerRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	AcceptTerms bool   `json:"acceptTerms"`
}

// loginRequest is the JSON body for the login endpoint. The role comes from
// the route, not the body.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// refreshRequest is the optional JSON body fallback for clients that do not
// use the refresh cookie.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// userView is the public shape of a user account. The password hash never
// leaves the backend.
type userView struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Role            string     `json:"role"`
	Active          bool       `json:"active"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	TermsAcceptedAt *time.Time `json:"termsAcceptedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func toUserView(user *entity.User) *userView {
	return &userView{
		ID:              user.ID.String(),
		Email:           user.Email,
		Name:            user.Name,
		Role:            user.Role.String(),
		Active:          user.Active,
		LastLoginAt:     user.LastLoginAt,
		TermsAcceptedAt: user.TermsAcceptedAt,
		CreatedAt:       user.CreatedAt,
	}
}

// loginResponse carries the access token in the body; the refresh token rides
// in an HttpOnly cookie.
type loginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	User        *userView `json:"user"`
	SessionID   string    `json:"sessionId"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	cfg    *config.Config
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterResearcher handles researcher account registration.
func (h *AuthHandler) RegisterResearcher(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}

	output, err := h.uc.RegisterResearcher(c.Request().Context(), &usecase.RegisterResearcherInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		AcceptTerms: req.AcceptTerms,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserView(output.User), "Researcher registered successfully")
}

// RegisterOrganization handles organization account registration. The account
// starts inactive until an administrator approves it.
func (h *AuthHandler) RegisterOrganization(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}

	output, err := h.uc.RegisterOrganization(c.Request().Context(), &usecase.RegisterOrganizationInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		AcceptTerms: req.AcceptTerms,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserView(output.User), "Organization registered successfully")
}

// Login handles role-scoped login. The role segment of the route decides
// which account type the credentials are checked against.
func (h *AuthHandler) Login(c echo.Context) error {
	role, ok := entity.ParseRole(c.Param("role"))
	if !ok {
		return response.NotFound(c, "UNKNOWN_ROLE", "unknown login surface")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		Role:      role,
		UserAgent: c.Request().UserAgent(),
		IP:        c.RealIP(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(cookie.BuildRefreshCookie(h.cfg.Cookie, output.RefreshToken, output.RefreshExpiresAt, h.logger))

	return response.Success(c, http.StatusOK, &loginResponse{
		AccessToken: output.AccessToken,
		TokenType:   "Bearer",
		User:        toUserView(output.User),
		SessionID:   output.Session.ID.String(),
	}, "Login successful")
}

// Refresh rotates the refresh token and issues a new access token. The token
// is read from the cookie when present, with a JSON body fallback.
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := h.extractRefreshToken(c)
	if refreshToken == "" {
		return response.Unauthorized(c, "UNAUTHENTICATED", "invalid or expired credentials")
	}

	output, err := h.uc.Refresh(c.Request().Context(), &usecase.RefreshInput{
		RefreshToken: refreshToken,
	})
	if err != nil {
		// The presented token is dead either way; drop the cookie so the
		// client stops replaying it.
		c.SetCookie(cookie.BuildDeletionCookie(h.cfg.Cookie, h.logger))

		return errors.WithStack(err)
	}

	c.SetCookie(cookie.BuildRefreshCookie(h.cfg.Cookie, output.RefreshToken, output.RefreshExpiresAt, h.logger))

	return response.Success(c, http.StatusOK, &refreshResponse{
		AccessToken: output.AccessToken,
		TokenType:   "Bearer",
	}, "Token refreshed successfully")
}

// Logout ends the session behind the presented refresh token. Always clears
// the cookie and always succeeds, even for unknown tokens.
func (h *AuthHandler) Logout(c echo.Context) error {
	refreshToken := h.extractRefreshToken(c)

	if refreshToken != "" {
		if err := h.uc.Logout(c.Request().Context(), &usecase.LogoutInput{RefreshToken: refreshToken}); err != nil {
			return errors.WithStack(err)
		}
	}

	c.SetCookie(cookie.BuildDeletionCookie(h.cfg.Cookie, h.logger))

	return response.Success(c, http.StatusOK, map[string]string{"message": "Successfully logged out"}, "Logout successful")
}

// extractRefreshToken prefers the cookie over the JSON body.
func (h *AuthHandler) extractRefreshToken(c echo.Context) string {
	if ck, err := c.Cookie(h.cfg.Cookie.Name); err == nil && ck.Value != "" {
		return ck.Value
	}

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return ""
	}

	return req.RefreshToken
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
