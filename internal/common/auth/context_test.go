package auth

import (
	"context"
	"errors"
	"testing"

	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/apperr"
)

func TestCheckAgency(t *testing.T) {
	tests := []struct {
		name    string
		actor   AuthContext
		ref     string
		wantErr bool
	}{
		{"own agency", AuthContext{Role: authz.RoleManager, AgencyName: "Alpha"}, "Alpha", false},
		{"empty ref means own", AuthContext{Role: authz.RoleManager, AgencyName: "Alpha"}, "", false},
		{"other agency denied", AuthContext{Role: authz.RoleManager, AgencyName: "Alpha"}, "Beta", true},
		{"admin other agency denied", AuthContext{Role: authz.RoleAdmin, AgencyName: "Alpha"}, "Beta", true},
		{"superadmin any agency", AuthContext{Role: authz.RoleSuperadmin}, "Beta", false},
		{"superadmin no agency", AuthContext{Role: authz.RoleSuperadmin}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.actor.CheckAgency(tt.ref)
			if tt.wantErr {
				if !apperr.IsKind(err, apperr.ForbiddenCrossTenant) {
					t.Fatalf("expected ForbiddenCrossTenant, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEffectiveAgency(t *testing.T) {
	manager := AuthContext{Role: authz.RoleManager, AgencyName: "Alpha"}
	if got := manager.EffectiveAgency(""); got != "Alpha" {
		t.Errorf("manager empty ref: got %q", got)
	}
	if got := manager.EffectiveAgency("Alpha"); got != "Alpha" {
		t.Errorf("manager own ref: got %q", got)
	}

	super := AuthContext{Role: authz.RoleSuperadmin}
	if got := super.EffectiveAgency("Beta"); got != "Beta" {
		t.Errorf("superadmin explicit ref: got %q", got)
	}
	if got := super.EffectiveAgency(""); got != "" {
		t.Errorf("superadmin no ref: got %q", got)
	}
}

type fakePrincipalStore struct {
	principal *Principal
	err       error
}

func (f *fakePrincipalStore) GetPrincipal(ctx context.Context, id string) (*Principal, error) {
	return f.principal, f.err
}

func TestResolve(t *testing.T) {
	store := &fakePrincipalStore{principal: &Principal{
		ID: "u1", Username: "jdoe", Role: authz.RoleManager, AgencyName: "Alpha", Active: true,
	}}
	actor, err := NewResolver(store).Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if actor.PrincipalID != "u1" || actor.Role != authz.RoleManager || actor.AgencyName != "Alpha" {
		t.Errorf("unexpected context: %+v", actor)
	}
}

func TestResolveRejectsInactiveAndUnknown(t *testing.T) {
	if _, err := NewResolver(&fakePrincipalStore{}).Resolve(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown principal")
	}

	inactive := &fakePrincipalStore{principal: &Principal{ID: "u2", Role: authz.RoleAdmin, Active: false}}
	if _, err := NewResolver(inactive).Resolve(context.Background(), "u2"); err == nil {
		t.Error("expected error for inactive principal")
	}

	failing := &fakePrincipalStore{err: errors.New("db down")}
	if _, err := NewResolver(failing).Resolve(context.Background(), "u3"); err == nil {
		t.Error("expected error when store fails")
	}
}
