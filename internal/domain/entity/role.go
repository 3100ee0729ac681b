// Package entity contains the core business objects of the platform.
package entity

// Role represents the type of account a user holds.
type Role string

const (
	// RoleResearcher indicates a security researcher account.
	RoleResearcher Role = "RESEARCHER"
	// RoleOrganization indicates an organization running bounty programs.
	RoleOrganization Role = "ORGANIZATION"
	// RoleAdmin indicates a platform administrator.
	RoleAdmin Role = "ADMIN"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleResearcher, RoleOrganization, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole maps a login route segment ("researcher", "organization", "admin")
// to its Role. The boolean reports whether the segment was recognized.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "researcher":
		return RoleResearcher, true
	case "organization":
		return RoleOrganization, true
	case "admin":
		return RoleAdmin, true
	default:
		return "", false
	}
}
