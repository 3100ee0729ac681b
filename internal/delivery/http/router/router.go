// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"bountyhub/internal/delivery/http/middleware"
	"bountyhub/internal/delivery/http/router/handler"
	"bountyhub/internal/domain/entity"
	"bountyhub/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	SessionHandler *handler.SessionHandler
	AdminHandler   *handler.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
	Metrics        *metrics.Metrics
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	sessionHandler *handler.SessionHandler
	adminHandler   *handler.AdminHandler
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		sessionHandler: params.SessionHandler,
		adminHandler:   params.AdminHandler,
		authMiddleware: params.AuthMiddleware,
		metrics:        params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))

	// Auth routes: registration, role-scoped login, token lifecycle.
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register/researcher", r.authHandler.RegisterResearcher)
		authGroup.POST("/register/organization", r.authHandler.RegisterOrganization)
		authGroup.POST("/login/:role", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	// Session self-management for the authenticated account.
	sessionGroup := e.Group("/sessions")
	sessionGroup.Use(r.authMiddleware.Authenticate)
	{
		sessionGroup.GET("", r.sessionHandler.ListSessions)
		sessionGroup.DELETE("/:id", r.sessionHandler.RevokeSession)
		sessionGroup.POST("/revoke-others", r.sessionHandler.RevokeOtherSessions)
		sessionGroup.GET("/stats", r.sessionHandler.GetStatistics)
		sessionGroup.GET("/anomalies", r.sessionHandler.GetAnomalies)
	}

	// Admin moderation routes.
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.GET("/users", r.adminHandler.ListUsers)
		adminGroup.GET("/users/:id/audit", r.adminHandler.AuditTrail)
		adminGroup.POST("/users/:id/activate", r.adminHandler.ActivateUser)
		adminGroup.POST("/users/:id/deactivate", r.adminHandler.DeactivateUser)
	}
}
