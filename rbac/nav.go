package rbac

import (
	"sort"

	"github.com/medgate/medgate/core"
)

// NavItem describes a navigation entry and the roles allowed to see it.
// Priority orders items descending; zero keeps declaration order.
type NavItem struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Roles    []core.Role `json:"roles"`
	Priority int         `json:"priority,omitempty"`
}

// DefaultNavItems returns the portal's navigation descriptors.
func DefaultNavItems() []NavItem {
	everyone := []core.Role{core.RolePatient, core.RoleDoctor, core.RoleAdmin}
	return []NavItem{
		{Name: "Dashboard", Path: "/dashboard", Roles: everyone},
		{Name: "Profile", Path: "/profile", Roles: everyone},
		{Name: "Appointments", Path: "/appointments", Roles: everyone},
		{Name: "Disease Detection", Path: "/disease-detection", Roles: everyone},
		{Name: "Pharmacy", Path: "/pharmacy", Roles: everyone},
		{Name: "Medical Tourism", Path: "/tourism", Roles: everyone},
		{Name: "Patients", Path: "/doctor/patients", Roles: []core.Role{core.RoleDoctor, core.RoleAdmin}},
		{Name: "Users", Path: "/admin/users", Roles: []core.Role{core.RoleAdmin}},
	}
}

// VisibleNavItems filters items down to those the role may see,
// preserving declaration order. When any priority is set, items are
// sorted by descending priority with a stable tie-break on declaration
// order.
func VisibleNavItems(items []NavItem, role core.Role) []NavItem {
	var visible []NavItem
	for _, item := range items {
		for _, r := range item.Roles {
			if r == role {
				visible = append(visible, item)
				break
			}
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Priority > visible[j].Priority
	})

	return visible
}
