package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"secretKey": map[string]any{
			"access":  "",
			"refresh": "",
		},
		"auth": map[string]any{
			"accessTokenTTL": "15m",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "SECRETKEY_REFRESH", want: "secretKey.refresh"},
		{envKey: "AUTH_ACCESSTOKENTTL", want: "auth.accessTokenTTL"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Auth.AccessTokenTTL <= 0 {
		t.Fatal("expected access token TTL default")
	}
	if cfg.Auth.SessionTTL != cfg.Auth.RefreshTokenTTL {
		t.Fatalf("session TTL should default to refresh TTL, got %v vs %v", cfg.Auth.SessionTTL, cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Cookie.Name != "refreshToken" {
		t.Fatalf("unexpected cookie name default: %q", cfg.Cookie.Name)
	}
	if cfg.Cookie.SameSite != "strict" {
		t.Fatalf("unexpected sameSite default: %q", cfg.Cookie.SameSite)
	}
}
