// Package audit appends privileged mutations to an immutable trail.
// Recording is a best-effort side effect: it never fails or rolls back
// the operation it describes.
package audit

import (
	"context"
	"time"

	"fleet-dispatch/internal/audit/model"
	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/common/logger"
	"fleet-dispatch/pkg/uuid"
)

type Store interface {
	Insert(ctx context.Context, entry model.AuditLog) error
}

type Recorder struct {
	store      Store
	principals auth.PrincipalStore
	now        func() time.Time
}

func NewRecorder(store Store, principals auth.PrincipalStore) *Recorder {
	return &Recorder{store: store, principals: principals, now: time.Now}
}

// Record captures the principal's username/role/agency by value at call
// time so the entry stays accurate if the user later changes. Every
// failure in here is logged and swallowed.
func (r *Recorder) Record(ctx context.Context, principalID, action, resourceType, resourceID, description string, metadata map[string]string) {
	entry := model.AuditLog{
		PrincipalID:  principalID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
		Metadata:     metadata,
		Timestamp:    r.now(),
	}

	id, err := uuid.NewUUID()
	if err != nil {
		logger.Error("audit_id_failed", "Failed to generate audit entry id", "", "", err.Error())
		return
	}
	entry.ID = id

	principal, err := r.principals.GetPrincipal(ctx, principalID)
	if err != nil {
		logger.Warn("audit_principal_lookup_failed", "Recording audit entry without principal details", "", "", err.Error())
	} else if principal != nil {
		entry.Username = principal.Username
		entry.Role = string(principal.Role)
		entry.AgencyName = principal.AgencyName
	}

	if err := r.store.Insert(ctx, entry); err != nil {
		logger.Error("audit_write_failed", "Failed to write audit entry for "+action, "", "", err.Error())
	}
}
