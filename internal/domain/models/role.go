package models

// Role is the closed set of account roles. Permissions are derived from the
// role's capability set, never from per-user permission lists.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleApplicator Role = "applicator"
	RoleBasic      Role = "basic"
)

// Capability names a single permitted action category.
type Capability string

const (
	CapManageUsers       Capability = "manage_users"
	CapCreateUser        Capability = "create_user"
	CapManageFields      Capability = "manage_fields"
	CapManageWarehouses  Capability = "manage_warehouses"
	CapManageStock       Capability = "manage_stock"
	CapManageFumigations Capability = "manage_fumigations"
	CapApplyFumigations  Capability = "apply_fumigations"
	CapViewReports       Capability = "view_reports"
)

// roleCapabilities is the authoritative capability set per role.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageUsers:       true,
		CapCreateUser:        true,
		CapManageFields:      true,
		CapManageWarehouses:  true,
		CapManageStock:       true,
		CapManageFumigations: true,
		CapApplyFumigations:  true,
		CapViewReports:       true,
	},
	RoleManager: {
		CapCreateUser:        true,
		CapManageFields:      true,
		CapManageWarehouses:  true,
		CapManageStock:       true,
		CapManageFumigations: true,
		CapViewReports:       true,
	},
	RoleApplicator: {
		CapApplyFumigations: true,
		CapViewReports:      true,
	},
	RoleBasic: {
		CapViewReports: true,
	},
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the requested capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}
