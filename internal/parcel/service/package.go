package service

import (
	"context"
	"fmt"
	"time"

	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/apperr"
	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/parcel/model"
	shiftmodel "fleet-dispatch/internal/shift/model"
	"fleet-dispatch/pkg/uuid"
)

type PackageStore interface {
	Insert(ctx context.Context, pkg model.Package) (*model.Package, error)
	GetByID(ctx context.Context, id string) (*model.Package, error)
	Update(ctx context.Context, pkg *model.Package) error
	Delete(ctx context.Context, id string) (bool, error)
}

type ShiftResolver interface {
	GetByID(ctx context.Context, id string) (*shiftmodel.Shift, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, principalID, action, resourceType, resourceID, description string, metadata map[string]string)
}

type PackageService struct {
	repo   PackageStore
	shifts ShiftResolver
	audit  AuditRecorder
	now    func() time.Time
}

func NewPackageService(repo PackageStore, shifts ShiftResolver, audit AuditRecorder) *PackageService {
	return &PackageService{repo: repo, shifts: shifts, audit: audit, now: time.Now}
}

type CreatePackageRequest struct {
	ShiftID       string  `json:"shift_id"`
	SenderName    string  `json:"sender_name"`
	SenderPhone   string  `json:"sender_phone"`
	ReceiverName  string  `json:"receiver_name"`
	ReceiverPhone string  `json:"receiver_phone"`
	Weight        float64 `json:"weight"`
	Price         float64 `json:"price"`
	Notes         string  `json:"notes"`
}

// CrossAgencyWarning is returned instead of a hard denial when a
// package rides on another agency's shift. Deliberate relaxation:
// agency attribution on shifts sometimes lags operational reality.
const CrossAgencyWarning = "package references a shift owned by another agency"

// CreatePackage seeds the package status from the referenced shift: a
// shift that already has an endTime yields Delivered with deliveredAt
// copied from it, anything else yields In Transit.
func (s *PackageService) CreatePackage(ctx context.Context, actor auth.AuthContext, req CreatePackageRequest) (*model.Package, string, error) {
	if err := authz.Require(actor.Role, authz.ActionPackageCreate); err != nil {
		return nil, "", err
	}
	if req.ShiftID == "" {
		return nil, "", apperr.E(apperr.Validation, "shiftId is required")
	}
	if req.Price < 0 {
		return nil, "", apperr.E(apperr.Validation, "price must not be negative")
	}

	shift, err := s.shifts.GetByID(ctx, req.ShiftID)
	if err != nil {
		return nil, "", err
	}
	if shift == nil {
		return nil, "", apperr.E(apperr.NotFound, "shift %s not found", req.ShiftID)
	}

	agency := actor.AgencyName
	if agency == "" {
		agency = shift.AgencyName
	}
	var warning string
	if !actor.IsSuperadmin() && shift.AgencyName != actor.AgencyName {
		warning = CrossAgencyWarning
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate package id: %w", err)
	}

	pkg := model.Package{
		ID:            id,
		AgencyName:    agency,
		ShiftID:       req.ShiftID,
		SenderName:    req.SenderName,
		SenderPhone:   req.SenderPhone,
		ReceiverName:  req.ReceiverName,
		ReceiverPhone: req.ReceiverPhone,
		Weight:        req.Weight,
		Price:         req.Price,
		Notes:         req.Notes,
	}
	pkg.Status, pkg.DeliveredAt = deriveStatus(shift)

	created, err := s.repo.Insert(ctx, pkg)
	if err != nil {
		return nil, "", err
	}

	s.audit.Record(ctx, actor.PrincipalID, string(authz.ActionPackageCreate), "package", created.ID,
		fmt.Sprintf("package on shift %s", created.ShiftID), nil)

	return created, warning, nil
}

func deriveStatus(shift *shiftmodel.Shift) (model.Status, *time.Time) {
	if shift.EndTime != nil {
		deliveredAt := *shift.EndTime
		return model.StatusDelivered, &deliveredAt
	}
	return model.StatusInTransit, nil
}

func (s *PackageService) GetPackage(ctx context.Context, actor auth.AuthContext, id string) (*model.Package, error) {
	pkg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, apperr.E(apperr.NotFound, "package %s not found", id)
	}
	if err := actor.CheckAgency(pkg.AgencyName); err != nil {
		return nil, err
	}
	return pkg, nil
}

type UpdatePackageRequest struct {
	ShiftID       *string  `json:"shift_id,omitempty"`
	SenderName    *string  `json:"sender_name,omitempty"`
	SenderPhone   *string  `json:"sender_phone,omitempty"`
	ReceiverName  *string  `json:"receiver_name,omitempty"`
	ReceiverPhone *string  `json:"receiver_phone,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// UpdatePackage applies a partial edit. Reassigning the shift re-runs
// the same derivation and cross-agency policy as creation.
func (s *PackageService) UpdatePackage(ctx context.Context, actor auth.AuthContext, id string, req UpdatePackageRequest) (*model.Package, string, error) {
	if err := authz.Require(actor.Role, authz.ActionPackageUpdate); err != nil {
		return nil, "", err
	}

	pkg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if pkg == nil {
		return nil, "", apperr.E(apperr.NotFound, "package %s not found", id)
	}
	if err := actor.CheckAgency(pkg.AgencyName); err != nil {
		return nil, "", err
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, "", apperr.E(apperr.Validation, "price must not be negative")
	}

	updated := *pkg
	var warning string

	if req.ShiftID != nil && *req.ShiftID != pkg.ShiftID {
		if *req.ShiftID == "" {
			return nil, "", apperr.E(apperr.Validation, "shiftId must not be empty")
		}
		shift, err := s.shifts.GetByID(ctx, *req.ShiftID)
		if err != nil {
			return nil, "", err
		}
		if shift == nil {
			return nil, "", apperr.E(apperr.NotFound, "shift %s not found", *req.ShiftID)
		}
		if !actor.IsSuperadmin() && shift.AgencyName != actor.AgencyName {
			warning = CrossAgencyWarning
		}
		updated.ShiftID = *req.ShiftID
		updated.Status, updated.DeliveredAt = deriveStatus(shift)
	}

	if req.SenderName != nil {
		updated.SenderName = *req.SenderName
	}
	if req.SenderPhone != nil {
		updated.SenderPhone = *req.SenderPhone
	}
	if req.ReceiverName != nil {
		updated.ReceiverName = *req.ReceiverName
	}
	if req.ReceiverPhone != nil {
		updated.ReceiverPhone = *req.ReceiverPhone
	}
	if req.Weight != nil {
		updated.Weight = *req.Weight
	}
	if req.Price != nil {
		updated.Price = *req.Price
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, "", err
	}

	s.audit.Record(ctx, actor.PrincipalID, string(authz.ActionPackageUpdate), "package", updated.ID, "package updated", nil)
	return &updated, warning, nil
}

// UpdateStatus advances the package through the closed five-state set.
// Statuses move only by explicit caller action; entering Delivered
// stamps deliveredAt once.
func (s *PackageService) UpdateStatus(ctx context.Context, actor auth.AuthContext, id string, status model.Status, notes string) (*model.Package, error) {
	if err := authz.Require(actor.Role, authz.ActionPackageStatusChange); err != nil {
		return nil, err
	}
	if !model.ValidStatus(status) {
		return nil, apperr.E(apperr.Validation, "invalid package status %q", status)
	}

	pkg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, apperr.E(apperr.NotFound, "package %s not found", id)
	}
	if err := actor.CheckAgency(pkg.AgencyName); err != nil {
		return nil, err
	}

	updated := *pkg
	updated.Status = status
	if notes != "" {
		updated.Notes = notes
	}
	if status == model.StatusDelivered && updated.DeliveredAt == nil {
		now := s.now()
		updated.DeliveredAt = &now
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.PrincipalID, string(authz.ActionPackageStatusChange), "package", updated.ID,
		fmt.Sprintf("status -> %s", status), nil)
	return &updated, nil
}

func (s *PackageService) DeletePackage(ctx context.Context, actor auth.AuthContext, id string) error {
	if err := authz.Require(actor.Role, authz.ActionPackageDelete); err != nil {
		return err
	}

	pkg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if pkg == nil {
		return apperr.E(apperr.NotFound, "package %s not found", id)
	}
	if err := actor.CheckAgency(pkg.AgencyName); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.E(apperr.NotFound, "package %s not found", id)
	}

	s.audit.Record(ctx, actor.PrincipalID, string(authz.ActionPackageDelete), "package", id, "package deleted", nil)
	return nil
}
