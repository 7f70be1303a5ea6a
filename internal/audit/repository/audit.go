package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"fleet-dispatch/internal/audit/model"

	"github.com/jackc/pgx/v5"
)

type AuditRepository struct {
	db *pgx.Conn
}

func NewAuditRepository(db *pgx.Conn) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends one entry. The table has no UPDATE or DELETE path in
// this codebase.
func (r *AuditRepository) Insert(ctx context.Context, entry model.AuditLog) error {
	var metadata []byte
	if len(entry.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_logs (
			id, principal_id, username, role, agency_name,
			action, resource_type, resource_id, description, metadata, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		entry.ID, entry.PrincipalID, entry.Username, entry.Role, entry.AgencyName,
		entry.Action, entry.ResourceType, entry.ResourceID, entry.Description,
		metadata, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
