// Package authz holds the fixed role-to-capability table. Every call
// site goes through Require/CanPerform so the rules cannot drift
// between handlers.
package authz

import "fleet-dispatch/internal/common/apperr"

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleFuel       Role = "fuel"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleManager, RoleFuel:
		return true
	}
	return false
}

type Action string

const (
	ActionShiftCreate Action = "shift.create"
	ActionShiftUpdate Action = "shift.update"
	ActionShiftDelete Action = "shift.delete"

	ActionPackageCreate       Action = "package.create"
	ActionPackageUpdate       Action = "package.update"
	ActionPackageStatusChange Action = "package.status_change"
	ActionPackageDelete       Action = "package.delete"

	// Fine recording rides on shift update but is named separately so
	// audit entries can distinguish it.
	ActionFineRecord Action = "fine.record"

	ActionBusManage    Action = "bus.manage"
	ActionDriverManage Action = "driver.manage"

	ActionAgencyCreate    Action = "agency.create"
	ActionAgencyDelete    Action = "agency.delete"
	ActionUserRoleChange  Action = "user.role_change"
	ActionCrossAgencyList Action = "agency.cross_list"
)

// capabilities is the single source of truth. Not user-editable at
// runtime.
var capabilities = map[Role]map[Action]bool{
	RoleSuperadmin: {
		ActionShiftCreate:         true,
		ActionShiftUpdate:         true,
		ActionShiftDelete:         true,
		ActionPackageCreate:       true,
		ActionPackageUpdate:       true,
		ActionPackageStatusChange: true,
		ActionPackageDelete:       true,
		ActionFineRecord:          true,
		ActionBusManage:           true,
		ActionDriverManage:        true,
		ActionAgencyCreate:        true,
		ActionAgencyDelete:        true,
		ActionUserRoleChange:      true,
		ActionCrossAgencyList:     true,
	},
	RoleAdmin: {
		ActionShiftCreate:         true,
		ActionShiftUpdate:         true,
		ActionShiftDelete:         true,
		ActionPackageCreate:       true,
		ActionPackageUpdate:       true,
		ActionPackageStatusChange: true,
		ActionPackageDelete:       true,
		ActionFineRecord:          true,
		ActionBusManage:           true,
		ActionDriverManage:        true,
	},
	RoleManager: {
		ActionShiftCreate:         true,
		ActionShiftUpdate:         true,
		ActionShiftDelete:         true,
		ActionPackageCreate:       true,
		ActionPackageUpdate:       true,
		ActionPackageStatusChange: true,
		ActionPackageDelete:       true,
		ActionFineRecord:          true,
	},
	RoleFuel: {},
}

func CanPerform(role Role, action Action) bool {
	return capabilities[role][action]
}

// Require returns ForbiddenRole naming both the role and the denied
// action. The operation must not have started when this is called.
func Require(role Role, action Action) error {
	if CanPerform(role, action) {
		return nil
	}
	return apperr.E(apperr.ForbiddenRole, "role %q may not perform %q", role, action)
}
