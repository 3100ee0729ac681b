package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies a security-relevant event kind.
type AuditAction string

const (
	AuditLoginSuccess    AuditAction = "LOGIN_SUCCESS"
	AuditLoginFailed     AuditAction = "LOGIN_FAILED"
	AuditTokenRefreshed  AuditAction = "TOKEN_REFRESHED"
	AuditLogout          AuditAction = "LOGOUT"
	AuditSessionRevoked  AuditAction = "SESSION_REVOKED"
	AuditUserActivated   AuditAction = "USER_ACTIVATED"
	AuditUserDeactivated AuditAction = "USER_DEACTIVATED"
)

// AuditEvent is one append-only record of a security-relevant event.
type AuditEvent struct {
	ID        uuid.UUID
	Action    AuditAction
	UserID    *uuid.UUID // Subject of the event, when known.
	EntityID  *uuid.UUID // Related record (usually the session).
	Details   string
	CreatedAt time.Time
}
