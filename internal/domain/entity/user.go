// Package entity contains the core business objects of the platform.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity root: one account per person or organization.
// Role is immutable after creation.
type User struct {
	ID              uuid.UUID  // Server-generated unique identifier.
	Email           string     // Unique login identifier.
	Name            string     // Display name (researcher handle or organization name).
	Role            Role       // RESEARCHER, ORGANIZATION or ADMIN.
	PasswordHash    string     // bcrypt hash; empty means no local credential is set.
	Active          bool       // Inactive accounts can never complete a login.
	LastLoginAt     *time.Time // Bumped on every successful login.
	TermsAcceptedAt *time.Time // Set when the account accepted the platform terms.
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasLocalCredential reports whether the user can authenticate with a password.
func (u *User) HasLocalCredential() bool {
	return u.PasswordHash != ""
}
