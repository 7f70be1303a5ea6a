package model

import "time"

type BusStatus string

const (
	BusAvailable        BusStatus = "Available"
	BusAssigned         BusStatus = "Assigned"
	BusUnderMaintenance BusStatus = "Under Maintenance"
)

func ValidBusStatus(s BusStatus) bool {
	switch s {
	case BusAvailable, BusAssigned, BusUnderMaintenance:
		return true
	}
	return false
}

type Bus struct {
	ID          string    `json:"id"`
	PlateNumber string    `json:"plate_number"`
	AgencyName  string    `json:"agency_name"`
	Status      BusStatus `json:"status"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
}

type DriverStatus string

const (
	DriverOnShift  DriverStatus = "On Shift"
	DriverOffShift DriverStatus = "Off shift"
	DriverOnLeave  DriverStatus = "On leave"
)

func ValidDriverStatus(s DriverStatus) bool {
	switch s {
	case DriverOnShift, DriverOffShift, DriverOnLeave:
		return true
	}
	return false
}

type Driver struct {
	ID         string       `json:"id"`
	Names      string       `json:"names"`
	AgencyName string       `json:"agency_name"`
	Phone      string       `json:"phone,omitempty"`
	Email      string       `json:"email,omitempty"`
	Status     DriverStatus `json:"status"`
	LastShift  *time.Time   `json:"last_shift,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Reachable reports whether the driver has a contact a notification
// can be delivered to.
func (d *Driver) Reachable() bool {
	return d.Phone != "" || d.Email != ""
}
