package auth

import (
	"context"
	"fmt"

	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/apperr"
)

// AuthContext is the resolved tenant scope of a request. It is passed
// as an explicit argument into every aggregate operation; aggregates
// never re-derive tenant scope on their own.
type AuthContext struct {
	PrincipalID string
	Username    string
	Role        authz.Role
	AgencyName  string // empty for superadmin
}

func (a AuthContext) IsSuperadmin() bool {
	return a.Role == authz.RoleSuperadmin
}

// CheckAgency is the single tenant-isolation enforcement point. An
// empty ref means "the principal's own agency" and always passes.
// Superadmin may reference any agency or none.
func (a AuthContext) CheckAgency(ref string) error {
	if a.IsSuperadmin() || ref == "" || ref == a.AgencyName {
		return nil
	}
	return apperr.E(apperr.ForbiddenCrossTenant,
		"agency %q is outside the principal's tenant scope", ref)
}

// EffectiveAgency resolves the agency an operation targets: the
// explicit reference for superadmin, the principal's own otherwise.
func (a AuthContext) EffectiveAgency(ref string) string {
	if a.IsSuperadmin() && ref != "" {
		return ref
	}
	if a.AgencyName != "" {
		return a.AgencyName
	}
	return ref
}

// Principal is the minimal user record the resolver needs. The agency
// package's user repository implements PrincipalStore against the
// users table.
type Principal struct {
	ID         string
	Username   string
	Role       authz.Role
	AgencyName string
	Active     bool
}

type PrincipalStore interface {
	GetPrincipal(ctx context.Context, id string) (*Principal, error)
}

type Resolver struct {
	store PrincipalStore
}

func NewResolver(store PrincipalStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve loads the principal and produces the request's AuthContext.
// Token claims are not trusted for role/agency; the users table is.
func (r *Resolver) Resolve(ctx context.Context, principalID string) (AuthContext, error) {
	p, err := r.store.GetPrincipal(ctx, principalID)
	if err != nil {
		return AuthContext{}, fmt.Errorf("resolve principal %s: %w", principalID, err)
	}
	if p == nil || !p.Active {
		return AuthContext{}, fmt.Errorf("principal %s is unknown or inactive", principalID)
	}
	if !authz.ValidRole(p.Role) {
		return AuthContext{}, fmt.Errorf("principal %s has unknown role %q", principalID, p.Role)
	}
	return AuthContext{
		PrincipalID: p.ID,
		Username:    p.Username,
		Role:        p.Role,
		AgencyName:  p.AgencyName,
	}, nil
}
