package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session binds a user to one authenticated device/browser instance. It also
// carries the hash of the session's currently-live refresh token: rotation
// overwrites the hash, so at most one refresh token per session can verify.
type Session struct {
	ID             uuid.UUID  // Server-generated; never client-supplied.
	UserID         uuid.UUID  // Owning user.
	UserAgent      string     // Raw User-Agent header from login.
	DeviceOS       string     // Parsed from the user agent; advisory only.
	DeviceBrowser  string     // Parsed from the user agent; advisory only.
	DeviceClass    string     // "desktop", "mobile", "tablet" or "bot"; advisory only.
	IP             string     // Source address at login.
	Location       string     // Coarse location; advisory only.
	TokenHash      string     // SHA-256 hex of the live refresh token; empty after logout.
	TokenExpiresAt *time.Time // Expiry persisted alongside the hash.
	Active         bool
	CreatedAt      time.Time
	LastSeenAt     time.Time // Bumped on every successful refresh.
	ExpiresAt      time.Time // Absolute lifetime; never extended after creation.
}

// IsLive reports whether the session may still authorize requests.
// Token validity is necessary but not sufficient; every authorization path
// must also pass this predicate.
func (s *Session) IsLive(now time.Time) bool {
	return s.Active && s.ExpiresAt.After(now)
}

// SessionStatistics is a per-user overview of session activity.
type SessionStatistics struct {
	TotalSessions     int
	TotalLiveSessions int
	OldestSession     *time.Time
	NewestSession     *time.Time
}

// AnomalousActivity describes a suspicious session pattern. Advisory output
// for the account holder; it never gates authorization.
type AnomalousActivity struct {
	Type        string
	Description string
	Severity    string
	DetectedAt  time.Time
	SessionID   *uuid.UUID
}
