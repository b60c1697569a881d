package core

import "fmt"

// Role is the closed set of account roles. It is the sole input to
// authorization decisions, so an unknown value must never sneak past
// ParseRole.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Roles returns every known role, in declaration order.
func Roles() []Role {
	return []Role{RolePatient, RoleDoctor, RoleAdmin}
}

// ParseRole maps a raw string onto a known role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient:
		return RolePatient, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// SignupAllowed reports whether the role may be chosen at registration
// time. Admin accounts are provisioned out-of-band, never via sign-up.
func (r Role) SignupAllowed() bool {
	return r == RolePatient || r == RoleDoctor
}

// DashboardRoute returns the landing route for a role. Every known role
// must be matched explicitly - an unhandled role is an error, not a
// silent fallback to the patient view.
func DashboardRoute(r Role) (string, error) {
	switch r {
	case RolePatient:
		return "/dashboard", nil
	case RoleDoctor:
		return "/doctor/dashboard", nil
	case RoleAdmin:
		return "/admin/dashboard", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
}
