package model

import (
	"time"

	"fleet-dispatch/internal/common/apperr"
)

// Shift is the central aggregate: one bus and one driver assigned to a
// route on a given date. Fine fields are a sub-record of the shift and
// share its persistence unit.
type Shift struct {
	ID          string     `json:"id"`
	AgencyName  string     `json:"agency_name"`
	PlateNumber string     `json:"plate_number"`
	DriverName  string     `json:"driver_name"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Date        string     `json:"date"`
	StartTime   time.Time  `json:"start_time"`
	// EndTime is the system-estimated completion; setting it for the
	// first time triggers the primary resource-release sync.
	EndTime *time.Time `json:"end_time,omitempty"`
	// ActualEndTime is the operator-confirmed completion; setting it
	// triggers the secondary, idempotent sync checkpoint.
	ActualEndTime *time.Time `json:"actual_end_time,omitempty"`
	Fined         bool       `json:"fined"`
	FineAmount    float64    `json:"fine_amount"`
	FineReason    string     `json:"fine_reason"`
	CreatedAt     time.Time  `json:"created_at"`
}

type State string

const (
	StateScheduled  State = "Scheduled"
	StateInProgress State = "InProgress"
	StateCompleted  State = "Completed"
	StateClosed     State = "Closed" // terminal
)

// State derives the lifecycle state. Closed wins over Completed: an
// operator-confirmed end is stronger than the estimate.
func (s *Shift) State(now time.Time) State {
	if s.ActualEndTime != nil {
		return StateClosed
	}
	if s.EndTime != nil {
		return StateCompleted
	}
	if now.After(s.StartTime) {
		return StateInProgress
	}
	return StateScheduled
}

func (s *Shift) Closed() bool {
	return s.ActualEndTime != nil
}

// ValidateFine enforces the fine co-presence invariant: fined requires
// a positive amount and a reason; not fined forces both empty.
func ValidateFine(fined bool, amount float64, reason string) error {
	if fined {
		if amount <= 0 {
			return apperr.E(apperr.FineValidation, "fined shift requires fineAmount > 0")
		}
		if reason == "" {
			return apperr.E(apperr.FineValidation, "fined shift requires a non-empty fineReason")
		}
		return nil
	}
	if amount != 0 || reason != "" {
		return apperr.E(apperr.FineValidation, "fineAmount and fineReason must be empty when fined is false")
	}
	return nil
}
