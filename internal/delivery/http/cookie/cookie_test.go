package cookie

import (
	"net/http"
	"testing"
	"time"

	"bountyhub/config"

	"github.com/stretchr/testify/assert"
)

func testCookieConfig() *config.CookieConfig {
	return &config.CookieConfig{
		Name:     "refreshToken",
		Path:     "/",
		SameSite: "strict",
		Secure:   true,
	}
}

func TestBuildRefreshCookie(t *testing.T) {
	cfg := testCookieConfig()
	expiresAt := time.Now().Add(time.Hour)

	cookie := BuildRefreshCookie(cfg, "token-value", expiresAt, nil)

	assert.Equal(t, "refreshToken", cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Empty(t, cookie.Domain)
	assert.WithinDuration(t, expiresAt, cookie.Expires, time.Second)
	assert.Greater(t, cookie.MaxAge, 0)
}

func TestBuildRefreshCookie_WithDomain(t *testing.T) {
	cfg := testCookieConfig()
	cfg.Domain = "example.com"

	cookie := BuildRefreshCookie(cfg, "token-value", time.Now().Add(time.Hour), nil)

	assert.Equal(t, "example.com", cookie.Domain)
}

func TestBuildDeletionCookie(t *testing.T) {
	cfg := testCookieConfig()

	cookie := BuildDeletionCookie(cfg, nil)

	assert.Equal(t, "refreshToken", cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.Equal(t, time.Unix(0, 0).UTC(), cookie.Expires)
	assert.True(t, cookie.HttpOnly)
}

func TestParseSameSite(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  http.SameSite
	}{
		{name: "empty defaults to lax", value: "", want: http.SameSiteLaxMode},
		{name: "lax", value: "lax", want: http.SameSiteLaxMode},
		{name: "strict", value: "strict", want: http.SameSiteStrictMode},
		{name: "none", value: "none", want: http.SameSiteNoneMode},
		{name: "mixed case", value: "Strict", want: http.SameSiteStrictMode},
		{name: "unknown falls back to lax", value: "bogus", want: http.SameSiteLaxMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSameSite(tt.value, nil))
		})
	}
}
