package service

import (
	"context"
	"time"

	fleetmodel "fleet-dispatch/internal/fleet/model"
	"fleet-dispatch/internal/shift/model"
)

type ShiftStore interface {
	Insert(ctx context.Context, shift model.Shift) (*model.Shift, error)
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	Update(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, id string) (bool, error)
	ListByAgency(ctx context.Context, agencyName string) ([]model.Shift, error)
}

// DriverDirectory resolves the assigned driver so notifications can
// check for a reachable contact.
type DriverDirectory interface {
	GetDriver(ctx context.Context, agencyName, nameOrID string) (*fleetmodel.Driver, error)
}

// ResourceSync is the fleet registry seen from the shift side. All
// three calls are advisory; they log their own failures and never
// return one.
type ResourceSync interface {
	OnShiftAssigned(ctx context.Context, shift *model.Shift)
	OnShiftCompleted(ctx context.Context, shift *model.Shift)
	OnActualEndRecorded(ctx context.Context, shift *model.Shift)
}

type Notifier interface {
	ShiftAssigned(ctx context.Context, shift *model.Shift, driver *fleetmodel.Driver)
	ShiftUpdated(ctx context.Context, shift *model.Shift, changedFields []string)
}

type AuditRecorder interface {
	Record(ctx context.Context, principalID, action, resourceType, resourceID, description string, metadata map[string]string)
}

type CreateShiftRequest struct {
	AgencyName  string    `json:"agency_name,omitempty"`
	PlateNumber string    `json:"plate_number"`
	DriverName  string    `json:"driver_name"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Date        string    `json:"date"`
	StartTime   time.Time `json:"start_time"`
}

// UpdateShiftRequest is a partial update; nil means "leave unchanged".
type UpdateShiftRequest struct {
	AgencyName    *string    `json:"agency_name,omitempty"`
	PlateNumber   *string    `json:"plate_number,omitempty"`
	DriverName    *string    `json:"driver_name,omitempty"`
	Origin        *string    `json:"origin,omitempty"`
	Destination   *string    `json:"destination,omitempty"`
	Date          *string    `json:"date,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	ActualEndTime *time.Time `json:"actual_end_time,omitempty"`
	Fined         *bool      `json:"fined,omitempty"`
	FineAmount    *float64   `json:"fine_amount,omitempty"`
	FineReason    *string    `json:"fine_reason,omitempty"`
}

func (r UpdateShiftRequest) touchesFine() bool {
	return r.Fined != nil || r.FineAmount != nil || r.FineReason != nil
}
