package rbac

import (
	"testing"

	"github.com/medgate/medgate/core"
)

// Requirement: nav items are filtered by role and declaration order is
// preserved when no priorities are set.
func TestVisibleNavItems_FilterAndOrder(t *testing.T) {
	items := DefaultNavItems()

	tests := []struct {
		name      string
		role      core.Role
		wantPaths []string
	}{
		{
			name: "patient sees shared items only",
			role: core.RolePatient,
			wantPaths: []string{
				"/dashboard", "/profile", "/appointments",
				"/disease-detection", "/pharmacy", "/tourism",
			},
		},
		{
			name: "doctor additionally sees patients",
			role: core.RoleDoctor,
			wantPaths: []string{
				"/dashboard", "/profile", "/appointments",
				"/disease-detection", "/pharmacy", "/tourism",
				"/doctor/patients",
			},
		},
		{
			name: "admin sees everything",
			role: core.RoleAdmin,
			wantPaths: []string{
				"/dashboard", "/profile", "/appointments",
				"/disease-detection", "/pharmacy", "/tourism",
				"/doctor/patients", "/admin/users",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			visible := VisibleNavItems(items, test.role)
			if len(visible) != len(test.wantPaths) {
				t.Fatalf("got %d items, want %d", len(visible), len(test.wantPaths))
			}
			for i, path := range test.wantPaths {
				if visible[i].Path != path {
					t.Errorf("item %d path = %q, want %q", i, visible[i].Path, path)
				}
			}
		})
	}
}

// Requirement: unknown roles see nothing.
func TestVisibleNavItems_UnknownRole(t *testing.T) {
	if got := VisibleNavItems(DefaultNavItems(), core.Role("nurse")); len(got) != 0 {
		t.Errorf("unknown role got %d items, want 0", len(got))
	}
}

// Requirement: when priorities are present, items sort by descending
// priority with a stable tie-break on declaration order.
func TestVisibleNavItems_PrioritySort(t *testing.T) {
	everyone := []core.Role{core.RolePatient}
	items := []NavItem{
		{Name: "A", Path: "/a", Roles: everyone},
		{Name: "B", Path: "/b", Roles: everyone, Priority: 10},
		{Name: "C", Path: "/c", Roles: everyone, Priority: 5},
		{Name: "D", Path: "/d", Roles: everyone, Priority: 10},
		{Name: "E", Path: "/e", Roles: everyone},
	}

	visible := VisibleNavItems(items, core.RolePatient)
	wantPaths := []string{"/b", "/d", "/c", "/a", "/e"}
	if len(visible) != len(wantPaths) {
		t.Fatalf("got %d items, want %d", len(visible), len(wantPaths))
	}
	for i, path := range wantPaths {
		if visible[i].Path != path {
			t.Errorf("item %d path = %q, want %q", i, visible[i].Path, path)
		}
	}
}
