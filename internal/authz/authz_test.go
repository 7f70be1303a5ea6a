package authz

import (
	"errors"
	"strings"
	"testing"

	"fleet-dispatch/internal/common/apperr"
)

func TestCapabilityTable(t *testing.T) {
	tests := []struct {
		role    Role
		action  Action
		allowed bool
	}{
		{RoleSuperadmin, ActionShiftCreate, true},
		{RoleSuperadmin, ActionAgencyCreate, true},
		{RoleSuperadmin, ActionUserRoleChange, true},
		{RoleSuperadmin, ActionCrossAgencyList, true},

		{RoleAdmin, ActionShiftCreate, true},
		{RoleAdmin, ActionShiftUpdate, true},
		{RoleAdmin, ActionShiftDelete, true},
		{RoleAdmin, ActionFineRecord, true},
		{RoleAdmin, ActionPackageCreate, true},
		{RoleAdmin, ActionBusManage, true},
		{RoleAdmin, ActionAgencyCreate, false},
		{RoleAdmin, ActionAgencyDelete, false},
		{RoleAdmin, ActionUserRoleChange, false},
		{RoleAdmin, ActionCrossAgencyList, false},

		{RoleManager, ActionShiftCreate, true},
		{RoleManager, ActionShiftUpdate, true},
		{RoleManager, ActionShiftDelete, true},
		{RoleManager, ActionFineRecord, true},
		{RoleManager, ActionPackageCreate, true},
		{RoleManager, ActionPackageStatusChange, true},
		{RoleManager, ActionPackageDelete, true},
		{RoleManager, ActionBusManage, false},
		{RoleManager, ActionAgencyCreate, false},

		{RoleFuel, ActionShiftCreate, false},
		{RoleFuel, ActionShiftUpdate, false},
		{RoleFuel, ActionShiftDelete, false},
		{RoleFuel, ActionPackageCreate, false},
		{RoleFuel, ActionFineRecord, false},
		{RoleFuel, ActionAgencyCreate, false},
	}

	for _, tt := range tests {
		if got := CanPerform(tt.role, tt.action); got != tt.allowed {
			t.Errorf("CanPerform(%s, %s) = %v, want %v", tt.role, tt.action, got, tt.allowed)
		}
	}
}

func TestRequireNamesRoleAndAction(t *testing.T) {
	err := Require(RoleFuel, ActionShiftCreate)
	if err == nil {
		t.Fatal("expected an error for fuel creating a shift")
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.ForbiddenRole {
		t.Fatalf("expected ForbiddenRole, got %v", err)
	}
	if !strings.Contains(ae.Msg, "fuel") || !strings.Contains(ae.Msg, string(ActionShiftCreate)) {
		t.Errorf("message should name role and action: %q", ae.Msg)
	}
}

func TestRequireAllowed(t *testing.T) {
	if err := Require(RoleManager, ActionShiftUpdate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []Role{RoleSuperadmin, RoleAdmin, RoleManager, RoleFuel} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%s) = false", role)
		}
	}
	if ValidRole("dispatcher") {
		t.Error("ValidRole accepted an unknown role")
	}
}
