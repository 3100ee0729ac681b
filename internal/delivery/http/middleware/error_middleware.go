package middleware

import (
	"log/slog"
	"net/http"

	deliverycontext "bountyhub/internal/delivery/context"
	"bountyhub/internal/delivery/http/response"
	domainerrors "bountyhub/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware centralizes error-to-response mapping. Handlers return
// errors; this translates them into the unified response envelope.
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware.
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError is installed as echo's HTTPErrorHandler.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			logger.Error("Application error", slog.Any("error", err), slog.String("errorCode", appErr.ErrorCode()))
		}
		if writeErr := response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details()); writeErr != nil {
			logger.Error("Failed to write error response", slog.Any("error", writeErr))
		}

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		if writeErr := response.Error(c, httpErr.Code, "HTTP_ERROR", message, ""); writeErr != nil {
			logger.Error("Failed to write error response", slog.Any("error", writeErr))
		}

		return
	}

	// Anything unrecognized is an internal failure. Log the cause, return a
	// generic body so internals never leak.
	logger.Error("Unhandled error", slog.Any("error", err))
	if writeErr := response.InternalServerError(c, "INTERNAL_ERROR", "internal server error"); writeErr != nil {
		logger.Error("Failed to write error response", slog.Any("error", writeErr))
	}
}
