// Package response provides unified HTTP response structures and helpers.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the unified envelope for all API responses.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo carries machine-readable error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Success sends a successful response with the given status code and data.
func Success(c echo.Context, code int, data any, message string) error {
	return c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Error sends a failed response with the given status code and error info.
func Error(c echo.Context, code int, errorCode, message, details string) error {
	return c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
		Error: &ErrorInfo{
			Code:    errorCode,
			Details: details,
		},
	})
}

// BadRequest sends a 400 response.
func BadRequest(c echo.Context, errorCode, message, details string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, details)
}

// BindingError sends a 400 response for request binding failures.
func BindingError(c echo.Context, errorCode, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, "")
}

// Unauthorized sends a 401 response.
func Unauthorized(c echo.Context, errorCode, message string) error {
	return Error(c, http.StatusUnauthorized, errorCode, message, "")
}

// Forbidden sends a 403 response.
func Forbidden(c echo.Context, errorCode, message string) error {
	return Error(c, http.StatusForbidden, errorCode, message, "")
}

// NotFound sends a 404 response.
func NotFound(c echo.Context, errorCode, message string) error {
	return Error(c, http.StatusNotFound, errorCode, message, "")
}

// Conflict sends a 409 response.
func Conflict(c echo.Context, errorCode, message string) error {
	return Error(c, http.StatusConflict, errorCode, message, "")
}

// InternalServerError sends a 500 response.
func InternalServerError(c echo.Context, errorCode, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, "")
}
