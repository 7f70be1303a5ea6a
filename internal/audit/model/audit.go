package model

import "time"

// AuditLog is a write-once record of a privileged mutation. Principal
// identity is captured by value at record time so entries stay accurate
// even if the user later changes role or agency.
type AuditLog struct {
	ID           string            `json:"id"`
	PrincipalID  string            `json:"principal_id"`
	Username     string            `json:"username"`
	Role         string            `json:"role"`
	AgencyName   string            `json:"agency_name,omitempty"`
	Action       string            `json:"action"`
	ResourceType string            `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}
