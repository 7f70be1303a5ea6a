package rmq

import "time"

// Messages published on the dispatch.notifications topic exchange.

type ShiftAssignedMessage struct {
	CorrelationID string    `json:"correlation_id"`
	ShiftID       string    `json:"shift_id"`
	AgencyName    string    `json:"agency_name"`
	PlateNumber   string    `json:"plate_number"`
	DriverName    string    `json:"driver_name"`
	DriverPhone   string    `json:"driver_phone,omitempty"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Date          string    `json:"date"`
	StartTime     time.Time `json:"start_time"`
}

type ShiftUpdatedMessage struct {
	CorrelationID string    `json:"correlation_id"`
	ShiftID       string    `json:"shift_id"`
	AgencyName    string    `json:"agency_name"`
	PlateNumber   string    `json:"plate_number"`
	DriverName    string    `json:"driver_name"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Date          string    `json:"date"`
	StartTime     time.Time `json:"start_time"`
	ChangedFields []string  `json:"changed_fields"`
}
