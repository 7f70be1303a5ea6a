package service

import (
	"context"

	"fleet-dispatch/internal/agency/model"
	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/apperr"
	"fleet-dispatch/internal/common/auth"
)

type AgencyStore interface {
	Insert(ctx context.Context, agency model.Agency) (*model.Agency, error)
	GetByName(ctx context.Context, name string) (*model.Agency, error)
	List(ctx context.Context) ([]model.Agency, error)
	CountDependents(ctx context.Context, name string) (int, error)
	Delete(ctx context.Context, name string) (bool, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateRole(ctx context.Context, id string, role authz.Role) (bool, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, principalID, action, resourceType, resourceID, description string, metadata map[string]string)
}

type AgencyService struct {
	agencies AgencyStore
	users    UserStore
	audit    AuditRecorder
}

func NewAgencyService(agencies AgencyStore, users UserStore, audit AuditRecorder) *AgencyService {
	return &AgencyService{agencies: agencies, users: users, audit: audit}
}

type CreateAgencyRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (s *AgencyService) CreateAgency(ctx context.Context, actor auth.AuthContext, req CreateAgencyRequest) (*model.Agency, error) {
	if err := authz.Require(actor.Role, authz.ActionAgencyCreate); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperr.E(apperr.Validation, "name is required")
	}

	existing, err := s.agencies.GetByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.E(apperr.Validation, "agency %q already exists", req.Name)
	}

	agency, err := s.agencies.Insert(ctx, model.Agency{
		Name:     req.Name,
		Location: req.Location,
		Active:   true,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.PrincipalID, string(authz.ActionAgencyCreate), "agency", agency.Name, "agency created", nil)
	return agency, nil
}

// DeleteAgency refuses while any user, bus or driver still belongs to
// the agency.
func (s *AgencyService) DeleteAgency(ctx context.Context, actor auth.AuthContext, name string) error {
	if err := authz.Require(actor.Role, authz.ActionAgencyDelete); err != nil {
		return err
	}

	agency, err := s.agencies.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if agency == nil {
		return apperr.E(apperr.NotFound, "agency %q not found", name)
	}

	dependents, err := s.agencies.CountDependents(ctx, name)
	if err != nil {
		return err
	}
	if dependents > 0 {
		return apperr.E(apperr.Validation, "agency %q still has %d dependent records", name, dependents)
	}

	deleted, err := s.agencies.Delete(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.E(apperr.NotFound, "agency %q not found", name)
	}

	s.audit.Record(ctx, actor.PrincipalID, string(authz.ActionAgencyDelete), "agency", name, "agency deleted", nil)
	return nil
}

// ListAgencies returns all agencies for superadmin, the caller's own
// record otherwise.
func (s *AgencyService) ListAgencies(ctx context.Context, actor auth.AuthContext) ([]model.Agency, error) {
	if authz.CanPerform(actor.Role, authz.ActionCrossAgencyList) {
		return s.agencies.List(ctx)
	}

	own, err := s.agencies.GetByName(ctx, actor.AgencyName)
	if err != nil {
		return nil, err
	}
	if own == nil {
		return []model.Agency{}, nil
	}
	return []model.Agency{*own}, nil
}

func (s *AgencyService) ChangeUserRole(ctx context.Context, actor auth.AuthContext, userID string, role authz.Role) error {
	if err := authz.Require(actor.Role, authz.ActionUserRoleChange); err != nil {
		return err
	}
	if !authz.ValidRole(role) {
		return apperr.E(apperr.Validation, "invalid role %q", role)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.E(apperr.NotFound, "user %s not found", userID)
	}

	changed, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if !changed {
		return apperr.E(apperr.NotFound, "user %s not found", userID)
	}

	s.audit.Record(ctx, actor.PrincipalID, string(authz.ActionUserRoleChange), "user", userID,
		"role changed to "+string(role), map[string]string{"previous_role": string(user.Role)})
	return nil
}
