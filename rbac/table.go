// Package rbac implements pure, side-effect-free authorization decisions
// over a static permission rule table. It has zero knowledge of sessions
// or network state.
package rbac

import (
	"fmt"

	"github.com/medgate/medgate/core"
)

// Action is the closed set of operations a role can be granted.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Actions returns every known action, in declaration order.
func Actions() []Action {
	return []Action{ActionRead, ActionWrite, ActionDelete}
}

// Table maps role -> action -> allowed resource names. Absence of a
// role, action, or resource means deny. The table is built once at
// process start and must not be mutated afterwards.
type Table map[core.Role]map[Action][]string

// DefaultTable returns the permission rules of the hospital portal.
func DefaultTable() Table {
	return Table{
		core.RoleAdmin: {
			ActionRead:   {"users", "appointments", "medical_records", "prescriptions", "health_metrics", "departments"},
			ActionWrite:  {"users", "appointments", "medical_records", "prescriptions", "health_metrics", "departments"},
			ActionDelete: {"users", "appointments", "medical_records", "prescriptions", "health_metrics"},
		},
		core.RoleDoctor: {
			ActionRead:   {"appointments", "patients", "medical_records", "prescriptions", "health_metrics", "departments"},
			ActionWrite:  {"appointments", "medical_records", "prescriptions", "health_metrics"},
			ActionDelete: {"appointments"},
		},
		core.RolePatient: {
			ActionRead:   {"appointments", "medical_records", "prescriptions", "health_metrics"},
			ActionWrite:  {"appointments", "health_metrics"},
			ActionDelete: {"appointments"},
		},
	}
}

// Validate checks the table for completeness: every known role must
// carry an entry for every action. Run once at startup so a new role or
// action cannot silently fall through to default-deny.
func (t Table) Validate() error {
	for _, role := range core.Roles() {
		actions, ok := t[role]
		if !ok {
			return fmt.Errorf("permission table: missing role %q", role)
		}
		for _, action := range Actions() {
			if _, ok := actions[action]; !ok {
				return fmt.Errorf("permission table: role %q missing action %q", role, action)
			}
		}
	}
	return nil
}

// Can reports whether the role may perform the action on the resource.
// Total: unknown roles, actions, or resources are denials, never panics.
func (t Table) Can(role core.Role, action Action, resource string) bool {
	actions, ok := t[role]
	if !ok {
		return false
	}
	resources, ok := actions[action]
	if !ok {
		return false
	}
	for _, r := range resources {
		if r == resource {
			return true
		}
	}
	return false
}

// IsRole is a nil-safe role check against a profile.
func IsRole(p *core.Profile, role core.Role) bool {
	return p != nil && p.Role == role
}
