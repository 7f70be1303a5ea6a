package model

import "time"

type Status string

const (
	StatusPending   Status = "Pending"
	StatusInTransit Status = "In Transit"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
	StatusReturned  Status = "Returned"
)

// ValidStatus checks membership in the closed five-state set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// Package rides on a shift. Its status is seeded from the shift's
// completion state at creation and advanced explicitly afterward;
// it is never regressed automatically.
type Package struct {
	ID            string     `json:"id"`
	AgencyName    string     `json:"agency_name"`
	ShiftID       string     `json:"shift_id"`
	SenderName    string     `json:"sender_name"`
	SenderPhone   string     `json:"sender_phone"`
	ReceiverName  string     `json:"receiver_name"`
	ReceiverPhone string     `json:"receiver_phone"`
	Weight        float64    `json:"weight"`
	Price         float64    `json:"price"`
	Status        Status     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
