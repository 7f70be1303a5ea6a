package repository

import (
	"context"
	"errors"
	"fmt"

	"fleet-dispatch/internal/agency/model"

	"github.com/jackc/pgx/v5"
)

type AgencyRepository struct {
	db *pgx.Conn
}

func NewAgencyRepository(db *pgx.Conn) *AgencyRepository {
	return &AgencyRepository{db: db}
}

func (r *AgencyRepository) Insert(ctx context.Context, agency model.Agency) (*model.Agency, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO agencies (name, location, active)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, agency.Name, agency.Location, agency.Active).Scan(&agency.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert agency: %w", err)
	}
	return &agency, nil
}

func (r *AgencyRepository) GetByName(ctx context.Context, name string) (*model.Agency, error) {
	var agency model.Agency
	err := r.db.QueryRow(ctx, `
		SELECT name, location, active, created_at
		FROM agencies
		WHERE name = $1
	`, name).Scan(&agency.Name, &agency.Location, &agency.Active, &agency.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agency %s: %w", name, err)
	}
	return &agency, nil
}

func (r *AgencyRepository) List(ctx context.Context) ([]model.Agency, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, location, active, created_at
		FROM agencies
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list agencies: %w", err)
	}
	defer rows.Close()

	agencies := make([]model.Agency, 0)
	for rows.Next() {
		var agency model.Agency
		if err := rows.Scan(&agency.Name, &agency.Location, &agency.Active, &agency.CreatedAt); err != nil {
			return nil, err
		}
		agencies = append(agencies, agency)
	}
	return agencies, rows.Err()
}

// CountDependents returns how many users, buses and drivers still
// reference the agency; deletion is refused while any remain.
func (r *AgencyRepository) CountDependents(ctx context.Context, name string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE agency_name = $1) +
			(SELECT COUNT(*) FROM buses WHERE agency_name = $1) +
			(SELECT COUNT(*) FROM drivers WHERE agency_name = $1)
	`, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count agency dependents: %w", err)
	}
	return count, nil
}

func (r *AgencyRepository) Delete(ctx context.Context, name string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM agencies WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete agency %s: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}
