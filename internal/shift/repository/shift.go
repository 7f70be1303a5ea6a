package repository

import (
	"context"
	"errors"
	"fmt"

	"fleet-dispatch/internal/shift/model"

	"github.com/jackc/pgx/v5"
)

type ShiftRepository struct {
	db *pgx.Conn
}

func NewShiftRepository(db *pgx.Conn) *ShiftRepository {
	return &ShiftRepository{db: db}
}

func (r *ShiftRepository) Insert(ctx context.Context, shift model.Shift) (*model.Shift, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO shifts (
			id, agency_name, plate_number, driver_name, origin, destination,
			date, start_time, end_time, actual_end_time, fined, fine_amount, fine_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`,
		shift.ID, shift.AgencyName, shift.PlateNumber, shift.DriverName,
		shift.Origin, shift.Destination, shift.Date, shift.StartTime,
		shift.EndTime, shift.ActualEndTime, shift.Fined, shift.FineAmount, shift.FineReason,
	).Scan(&shift.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shift: %w", err)
	}
	return &shift, nil
}

func (r *ShiftRepository) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.QueryRow(ctx, `
		SELECT id, agency_name, plate_number, driver_name, origin, destination,
		       date, start_time, end_time, actual_end_time, fined, fine_amount, fine_reason, created_at
		FROM shifts
		WHERE id = $1
	`, id).Scan(
		&shift.ID, &shift.AgencyName, &shift.PlateNumber, &shift.DriverName,
		&shift.Origin, &shift.Destination, &shift.Date, &shift.StartTime,
		&shift.EndTime, &shift.ActualEndTime, &shift.Fined, &shift.FineAmount,
		&shift.FineReason, &shift.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shift %s: %w", id, err)
	}
	return &shift, nil
}

// Update persists the whole shift row in one write so the fine
// sub-record can never be half-applied.
func (r *ShiftRepository) Update(ctx context.Context, shift *model.Shift) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE shifts SET
			agency_name = $2, plate_number = $3, driver_name = $4,
			origin = $5, destination = $6, date = $7, start_time = $8,
			end_time = $9, actual_end_time = $10,
			fined = $11, fine_amount = $12, fine_reason = $13
		WHERE id = $1
	`,
		shift.ID, shift.AgencyName, shift.PlateNumber, shift.DriverName,
		shift.Origin, shift.Destination, shift.Date, shift.StartTime,
		shift.EndTime, shift.ActualEndTime, shift.Fined, shift.FineAmount, shift.FineReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift %s: %w", shift.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shift %s no longer exists", shift.ID)
	}
	return nil
}

func (r *ShiftRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete shift %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ShiftRepository) ListByAgency(ctx context.Context, agencyName string) ([]model.Shift, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, agency_name, plate_number, driver_name, origin, destination,
		       date, start_time, end_time, actual_end_time, fined, fine_amount, fine_reason, created_at
		FROM shifts
		WHERE agency_name = $1
		ORDER BY start_time DESC
	`, agencyName)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	shifts := make([]model.Shift, 0)
	for rows.Next() {
		var shift model.Shift
		if err := rows.Scan(
			&shift.ID, &shift.AgencyName, &shift.PlateNumber, &shift.DriverName,
			&shift.Origin, &shift.Destination, &shift.Date, &shift.StartTime,
			&shift.EndTime, &shift.ActualEndTime, &shift.Fined, &shift.FineAmount,
			&shift.FineReason, &shift.CreatedAt,
		); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}
