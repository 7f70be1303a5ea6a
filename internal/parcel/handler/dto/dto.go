package dto

import "fleet-dispatch/internal/parcel/model"

// PackageResponse wraps the package with the optional cross-agency
// warning surfaced on create/update.
type PackageResponse struct {
	Package *model.Package `json:"package"`
	Warning string         `json:"warning,omitempty"`
}

type StatusChangeRequest struct {
	Status model.Status `json:"status"`
	Notes  string       `json:"notes,omitempty"`
}
