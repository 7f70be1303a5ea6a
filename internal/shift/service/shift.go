package service

import (
	"context"
	"fmt"

	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/apperr"
	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/common/logger"
	"fleet-dispatch/internal/shift/model"
	"fleet-dispatch/pkg/uuid"
)

// ShiftService drives the shift lifecycle. The ordering contract: the
// shift's own write commits first, then sync/notify/audit side effects
// run and are allowed to fail independently.
type ShiftService struct {
	repo     ShiftStore
	drivers  DriverDirectory
	sync     ResourceSync
	notifier Notifier
	audit    AuditRecorder
}

func NewShiftService(repo ShiftStore, drivers DriverDirectory, sync ResourceSync, notifier Notifier, audit AuditRecorder) *ShiftService {
	return &ShiftService{repo: repo, drivers: drivers, sync: sync, notifier: notifier, audit: audit}
}

func (s *ShiftService) CreateShift(ctx context.Context, actor auth.AuthContext, req CreateShiftRequest) (*model.Shift, error) {
	if err := authz.Require(actor.Role, authz.ActionShiftCreate); err != nil {
		return nil, err
	}
	if err := actor.CheckAgency(req.AgencyName); err != nil {
		return nil, err
	}

	if req.PlateNumber == "" {
		return nil, apperr.E(apperr.Validation, "plateNumber is required")
	}
	if req.DriverName == "" {
		return nil, apperr.E(apperr.Validation, "driverName is required")
	}
	if req.Origin == "" || req.Destination == "" {
		return nil, apperr.E(apperr.Validation, "origin and destination are required")
	}
	if req.Date == "" {
		return nil, apperr.E(apperr.Validation, "date is required")
	}
	if req.StartTime.IsZero() {
		return nil, apperr.E(apperr.Validation, "startTime is required")
	}

	agency := actor.EffectiveAgency(req.AgencyName)
	if agency == "" {
		return nil, apperr.E(apperr.Validation, "agencyName is required")
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate shift id: %w", err)
	}

	shift, err := s.repo.Insert(ctx, model.Shift{
		ID:          id,
		AgencyName:  agency,
		PlateNumber: req.PlateNumber,
		DriverName:  req.DriverName,
		Origin:      req.Origin,
		Destination: req.Destination,
		Date:        req.Date,
		StartTime:   req.StartTime,
	})
	if err != nil {
		return nil, err
	}

	s.sync.OnShiftAssigned(ctx, shift)

	// Best-effort driver notification; an unresolvable or unreachable
	// driver only logs.
	driver, err := s.drivers.GetDriver(ctx, agency, req.DriverName)
	switch {
	case err != nil:
		logger.Warn("shift_driver_lookup_failed", "Could not resolve driver for notification", "", shift.ID, err.Error())
	case driver == nil:
		logger.Warn("shift_driver_unknown", "Assigned driver not found in agency "+agency, "", shift.ID, "")
	case !driver.Reachable():
		logger.Info("shift_driver_unreachable", "Driver has no contact, notification skipped", "", shift.ID)
	default:
		s.notifier.ShiftAssigned(ctx, shift, driver)
	}

	s.audit.Record(ctx, actor.PrincipalID, string(authz.ActionShiftCreate), "shift", shift.ID,
		fmt.Sprintf("shift %s -> %s on %s", shift.Origin, shift.Destination, shift.Date), nil)

	return shift, nil
}

func (s *ShiftService) GetShift(ctx context.Context, actor auth.AuthContext, id string) (*model.Shift, error) {
	shift, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperr.E(apperr.NotFound, "shift %s not found", id)
	}
	if err := actor.CheckAgency(shift.AgencyName); err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *ShiftService) ListShifts(ctx context.Context, actor auth.AuthContext, agencyName string) ([]model.Shift, error) {
	if err := actor.CheckAgency(agencyName); err != nil {
		return nil, err
	}
	return s.repo.ListByAgency(ctx, actor.EffectiveAgency(agencyName))
}

func (s *ShiftService) UpdateShift(ctx context.Context, actor auth.AuthContext, id string, req UpdateShiftRequest) (*model.Shift, error) {
	if err := authz.Require(actor.Role, authz.ActionShiftUpdate); err != nil {
		return nil, err
	}
	if req.touchesFine() {
		if err := authz.Require(actor.Role, authz.ActionFineRecord); err != nil {
			return nil, err
		}
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.E(apperr.NotFound, "shift %s not found", id)
	}
	if err := actor.CheckAgency(current.AgencyName); err != nil {
		return nil, err
	}
	if req.AgencyName != nil {
		if err := actor.CheckAgency(*req.AgencyName); err != nil {
			return nil, err
		}
	}
	if current.Closed() {
		return nil, apperr.E(apperr.Validation, "shift %s is closed and accepts no further edits", id)
	}

	// Work on a copy; nothing is persisted until every check passes.
	updated := *current
	var changed []string

	if req.AgencyName != nil && *req.AgencyName != "" {
		updated.AgencyName = *req.AgencyName
	}
	if req.PlateNumber != nil && *req.PlateNumber != updated.PlateNumber {
		updated.PlateNumber = *req.PlateNumber
		changed = append(changed, "plateNumber")
	}
	if req.DriverName != nil && *req.DriverName != updated.DriverName {
		updated.DriverName = *req.DriverName
	}
	if req.Origin != nil && *req.Origin != updated.Origin {
		updated.Origin = *req.Origin
		changed = append(changed, "origin")
	}
	if req.Destination != nil && *req.Destination != updated.Destination {
		updated.Destination = *req.Destination
		changed = append(changed, "destination")
	}
	if req.Date != nil && *req.Date != updated.Date {
		updated.Date = *req.Date
		changed = append(changed, "date")
	}
	if req.StartTime != nil && !req.StartTime.Equal(updated.StartTime) {
		updated.StartTime = *req.StartTime
		changed = append(changed, "startTime")
	}

	endTimeSet := current.EndTime == nil && req.EndTime != nil
	actualEndSet := current.ActualEndTime == nil && req.ActualEndTime != nil
	if req.EndTime != nil {
		updated.EndTime = req.EndTime
	}
	if req.ActualEndTime != nil {
		updated.ActualEndTime = req.ActualEndTime
	}

	if req.touchesFine() {
		fined := updated.Fined
		if req.Fined != nil {
			fined = *req.Fined
		}
		amount := updated.FineAmount
		if req.FineAmount != nil {
			amount = *req.FineAmount
		}
		reason := updated.FineReason
		if req.FineReason != nil {
			reason = *req.FineReason
		}
		if !fined {
			// Turning the fine off clears both fields in the same write.
			amount, reason = 0, ""
		}
		if err := model.ValidateFine(fined, amount, reason); err != nil {
			return nil, err
		}
		updated.Fined = fined
		updated.FineAmount = amount
		updated.FineReason = reason
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	// The shift write is committed; everything below is advisory.
	if endTimeSet {
		s.sync.OnShiftCompleted(ctx, &updated)
	}
	if actualEndSet {
		s.sync.OnActualEndRecorded(ctx, &updated)
	}
	if len(changed) > 0 {
		s.notifier.ShiftUpdated(ctx, &updated, changed)
	}

	action := authz.ActionShiftUpdate
	if req.touchesFine() {
		action = authz.ActionFineRecord
	}
	s.audit.Record(ctx, actor.PrincipalID, string(action), "shift", updated.ID,
		"shift updated", map[string]string{"changed": fmt.Sprintf("%v", changed)})

	return &updated, nil
}

// DeleteShift removes the shift outright. It deliberately does not
// reverse any bus/driver status the shift's lifecycle already applied.
func (s *ShiftService) DeleteShift(ctx context.Context, actor auth.AuthContext, id string) error {
	if err := authz.Require(actor.Role, authz.ActionShiftDelete); err != nil {
		return err
	}

	shift, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if shift == nil {
		return apperr.E(apperr.NotFound, "shift %s not found", id)
	}
	if err := actor.CheckAgency(shift.AgencyName); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.E(apperr.NotFound, "shift %s not found", id)
	}

	s.audit.Record(ctx, actor.PrincipalID, string(authz.ActionShiftDelete), "shift", id, "shift deleted", nil)
	return nil
}
