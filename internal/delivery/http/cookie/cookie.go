// Package cookie builds the HTTP cookies that carry the refresh token.
package cookie

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bountyhub/config"
)

// parseSameSite maps a config string onto http.SameSite. Unknown values fall
// back to Lax with a warning rather than failing startup.
func parseSameSite(value string, logger *slog.Logger) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		if logger != nil {
			logger.Warn("Unknown cookie sameSite value, falling back to Lax", slog.String("value", value))
		}

		return http.SameSiteLaxMode
	}
}

// BuildRefreshCookie returns a cookie holding the refresh token. The cookie is
// HttpOnly so scripts never see the token; expiry tracks the token's own.
func BuildRefreshCookie(cfg *config.CookieConfig, token string, expiresAt time.Time, logger *slog.Logger) *http.Cookie {
	cookie := &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     cfg.Path,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: parseSameSite(cfg.SameSite, logger),
	}
	if cfg.Domain != "" {
		cookie.Domain = cfg.Domain
	}

	return cookie
}

// BuildDeletionCookie returns a cookie that instructs the browser to drop the
// refresh cookie. Attributes must match the original or browsers keep it.
func BuildDeletionCookie(cfg *config.CookieConfig, logger *slog.Logger) *http.Cookie {
	cookie := &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     cfg.Path,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: parseSameSite(cfg.SameSite, logger),
	}
	if cfg.Domain != "" {
		cookie.Domain = cfg.Domain
	}

	return cookie
}
