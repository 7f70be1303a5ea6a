package model

import (
	"time"

	"fleet-dispatch/internal/authz"
)

// Agency is the tenant root. Name is the immutable tenant key.
type Agency struct {
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Role       authz.Role `json:"role"`
	AgencyName string     `json:"agency_name,omitempty"` // empty for superadmin
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
}
