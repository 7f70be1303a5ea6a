package service

import (
	"context"
	"fmt"
	"time"

	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/apperr"
	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/common/logger"
	"fleet-dispatch/internal/fleet/model"
	shiftmodel "fleet-dispatch/internal/shift/model"
	"fleet-dispatch/pkg/uuid"
)

type FleetStore interface {
	InsertBus(ctx context.Context, bus model.Bus) (*model.Bus, error)
	InsertDriver(ctx context.Context, driver model.Driver) (*model.Driver, error)
	GetBusByPlate(ctx context.Context, agencyName, plateNumber string) (*model.Bus, error)
	GetDriverByName(ctx context.Context, agencyName, nameOrID string) (*model.Driver, error)
	SetBusStatus(ctx context.Context, agencyName, plateNumber string, status model.BusStatus) error
	SetBusStatusIf(ctx context.Context, agencyName, plateNumber string, from, to model.BusStatus) (bool, error)
	SetDriverOffShift(ctx context.Context, agencyName, nameOrID string, at time.Time) error
	SetDriverOffShiftIf(ctx context.Context, agencyName, nameOrID string, at time.Time) (bool, error)
	SetDriverStatus(ctx context.Context, agencyName, nameOrID string, status model.DriverStatus) error
	ListBuses(ctx context.Context, agencyName string) ([]model.Bus, error)
	ListDrivers(ctx context.Context, agencyName string) ([]model.Driver, error)
}

// Registry owns bus and driver availability. The two shift-driven sync
// paths are advisory: every failure inside them is logged and swallowed
// because the shift's own state change is the source of truth.
type Registry struct {
	store FleetStore
	now   func() time.Time
}

func NewRegistry(store FleetStore) *Registry {
	return &Registry{store: store, now: time.Now}
}

// OnShiftCompleted runs when a shift's endTime is set for the first
// time. The bus reset is unconditional: whatever state concurrent
// activity left it in, completion releases it. The driver keeps leave.
func (r *Registry) OnShiftCompleted(ctx context.Context, shift *shiftmodel.Shift) {
	bus, err := r.store.GetBusByPlate(ctx, shift.AgencyName, shift.PlateNumber)
	switch {
	case err != nil:
		logger.Error("sync_bus_lookup_failed", "Bus lookup failed during completion sync", "", shift.ID, err.Error())
	case bus == nil:
		logger.Warn("sync_bus_missing", fmt.Sprintf("No bus %s in agency %s to release", shift.PlateNumber, shift.AgencyName), "", shift.ID, "")
	default:
		if err := r.store.SetBusStatus(ctx, shift.AgencyName, shift.PlateNumber, model.BusAvailable); err != nil {
			logger.Error("sync_bus_release_failed", "Failed to release bus on completion", "", shift.ID, err.Error())
		} else {
			logger.Info("sync_bus_released", fmt.Sprintf("Bus %s set to Available", shift.PlateNumber), "", shift.ID)
		}
	}

	driver, err := r.store.GetDriverByName(ctx, shift.AgencyName, shift.DriverName)
	switch {
	case err != nil:
		logger.Error("sync_driver_lookup_failed", "Driver lookup failed during completion sync", "", shift.ID, err.Error())
	case driver == nil:
		logger.Warn("sync_driver_missing", fmt.Sprintf("No driver %s in agency %s to release", shift.DriverName, shift.AgencyName), "", shift.ID, "")
	case driver.Status == model.DriverOnLeave:
		logger.Info("sync_driver_on_leave", fmt.Sprintf("Driver %s is on leave, status kept", shift.DriverName), "", shift.ID)
	default:
		if err := r.store.SetDriverOffShift(ctx, shift.AgencyName, shift.DriverName, r.now()); err != nil {
			logger.Error("sync_driver_release_failed", "Failed to release driver on completion", "", shift.ID, err.Error())
		} else {
			logger.Info("sync_driver_released", fmt.Sprintf("Driver %s set to Off shift", shift.DriverName), "", shift.ID)
		}
	}
}

// OnActualEndRecorded is the second, idempotent checkpoint. Writes are
// conditioned on the current status so a state set by unrelated
// concurrent activity is not clobbered.
func (r *Registry) OnActualEndRecorded(ctx context.Context, shift *shiftmodel.Shift) {
	changed, err := r.store.SetBusStatusIf(ctx, shift.AgencyName, shift.PlateNumber, model.BusAssigned, model.BusAvailable)
	if err != nil {
		logger.Error("sync_bus_checkpoint_failed", "Conditional bus release failed", "", shift.ID, err.Error())
	} else if changed {
		logger.Info("sync_bus_released", fmt.Sprintf("Bus %s set to Available at actual end", shift.PlateNumber), "", shift.ID)
	}

	changed, err = r.store.SetDriverOffShiftIf(ctx, shift.AgencyName, shift.DriverName, r.now())
	if err != nil {
		logger.Error("sync_driver_checkpoint_failed", "Conditional driver release failed", "", shift.ID, err.Error())
	} else if changed {
		logger.Info("sync_driver_released", fmt.Sprintf("Driver %s set to Off shift at actual end", shift.DriverName), "", shift.ID)
	}
}

// OnShiftAssigned marks the resources busy when a shift is created.
// Best-effort like the release paths.
func (r *Registry) OnShiftAssigned(ctx context.Context, shift *shiftmodel.Shift) {
	if err := r.store.SetBusStatus(ctx, shift.AgencyName, shift.PlateNumber, model.BusAssigned); err != nil {
		logger.Error("sync_bus_assign_failed", "Failed to mark bus Assigned", "", shift.ID, err.Error())
	}
	if err := r.store.SetDriverStatus(ctx, shift.AgencyName, shift.DriverName, model.DriverOnShift); err != nil {
		logger.Error("sync_driver_assign_failed", "Failed to mark driver On Shift", "", shift.ID, err.Error())
	}
}

type CreateBusRequest struct {
	AgencyName  string `json:"agency_name,omitempty"`
	PlateNumber string `json:"plate_number"`
	Capacity    int    `json:"capacity"`
}

func (r *Registry) CreateBus(ctx context.Context, actor auth.AuthContext, req CreateBusRequest) (*model.Bus, error) {
	if err := authz.Require(actor.Role, authz.ActionBusManage); err != nil {
		return nil, err
	}
	if err := actor.CheckAgency(req.AgencyName); err != nil {
		return nil, err
	}
	if req.PlateNumber == "" {
		return nil, apperr.E(apperr.Validation, "plateNumber is required")
	}
	agency := actor.EffectiveAgency(req.AgencyName)
	if agency == "" {
		return nil, apperr.E(apperr.Validation, "agencyName is required")
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate bus id: %w", err)
	}
	return r.store.InsertBus(ctx, model.Bus{
		ID:          id,
		PlateNumber: req.PlateNumber,
		AgencyName:  agency,
		Status:      model.BusAvailable,
		Capacity:    req.Capacity,
	})
}

type CreateDriverRequest struct {
	AgencyName string `json:"agency_name,omitempty"`
	Names      string `json:"names"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

func (r *Registry) CreateDriver(ctx context.Context, actor auth.AuthContext, req CreateDriverRequest) (*model.Driver, error) {
	if err := authz.Require(actor.Role, authz.ActionDriverManage); err != nil {
		return nil, err
	}
	if err := actor.CheckAgency(req.AgencyName); err != nil {
		return nil, err
	}
	if req.Names == "" {
		return nil, apperr.E(apperr.Validation, "names is required")
	}
	agency := actor.EffectiveAgency(req.AgencyName)
	if agency == "" {
		return nil, apperr.E(apperr.Validation, "agencyName is required")
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate driver id: %w", err)
	}
	return r.store.InsertDriver(ctx, model.Driver{
		ID:         id,
		Names:      req.Names,
		AgencyName: agency,
		Phone:      req.Phone,
		Email:      req.Email,
		Status:     model.DriverOffShift,
	})
}

// UpdateBusStatus is the direct admin edit path, distinct from the
// shift-driven sync.
func (r *Registry) UpdateBusStatus(ctx context.Context, actor auth.AuthContext, agencyName, plateNumber string, status model.BusStatus) error {
	if err := authz.Require(actor.Role, authz.ActionBusManage); err != nil {
		return err
	}
	if err := actor.CheckAgency(agencyName); err != nil {
		return err
	}
	if !model.ValidBusStatus(status) {
		return apperr.E(apperr.Validation, "invalid bus status %q", status)
	}
	agency := actor.EffectiveAgency(agencyName)

	bus, err := r.store.GetBusByPlate(ctx, agency, plateNumber)
	if err != nil {
		return err
	}
	if bus == nil {
		return apperr.E(apperr.NotFound, "bus %s not found", plateNumber)
	}
	return r.store.SetBusStatus(ctx, agency, plateNumber, status)
}

func (r *Registry) UpdateDriverStatus(ctx context.Context, actor auth.AuthContext, agencyName, nameOrID string, status model.DriverStatus) error {
	if err := authz.Require(actor.Role, authz.ActionDriverManage); err != nil {
		return err
	}
	if err := actor.CheckAgency(agencyName); err != nil {
		return err
	}
	if !model.ValidDriverStatus(status) {
		return apperr.E(apperr.Validation, "invalid driver status %q", status)
	}
	agency := actor.EffectiveAgency(agencyName)

	driver, err := r.store.GetDriverByName(ctx, agency, nameOrID)
	if err != nil {
		return err
	}
	if driver == nil {
		return apperr.E(apperr.NotFound, "driver %s not found", nameOrID)
	}
	return r.store.SetDriverStatus(ctx, agency, nameOrID, status)
}

func (r *Registry) ListBuses(ctx context.Context, actor auth.AuthContext, agencyName string) ([]model.Bus, error) {
	if err := actor.CheckAgency(agencyName); err != nil {
		return nil, err
	}
	return r.store.ListBuses(ctx, actor.EffectiveAgency(agencyName))
}

func (r *Registry) ListDrivers(ctx context.Context, actor auth.AuthContext, agencyName string) ([]model.Driver, error) {
	if err := actor.CheckAgency(agencyName); err != nil {
		return nil, err
	}
	return r.store.ListDrivers(ctx, actor.EffectiveAgency(agencyName))
}

// GetDriver is used by the shift service to resolve the assigned
// driver for notifications.
func (r *Registry) GetDriver(ctx context.Context, agencyName, nameOrID string) (*model.Driver, error) {
	return r.store.GetDriverByName(ctx, agencyName, nameOrID)
}
