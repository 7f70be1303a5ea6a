package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-dispatch/internal/fleet/model"

	"github.com/jackc/pgx/v5"
)

type FleetRepository struct {
	db *pgx.Conn
}

func NewFleetRepository(db *pgx.Conn) *FleetRepository {
	return &FleetRepository{db: db}
}

func (r *FleetRepository) InsertBus(ctx context.Context, bus model.Bus) (*model.Bus, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO buses (id, plate_number, agency_name, status, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, bus.ID, bus.PlateNumber, bus.AgencyName, bus.Status, bus.Capacity).Scan(&bus.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert bus: %w", err)
	}
	return &bus, nil
}

func (r *FleetRepository) InsertDriver(ctx context.Context, driver model.Driver) (*model.Driver, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO drivers (id, names, agency_name, phone, email, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, driver.ID, driver.Names, driver.AgencyName, driver.Phone, driver.Email, driver.Status).Scan(&driver.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert driver: %w", err)
	}
	return &driver, nil
}

// GetBusByPlate returns (nil, nil) when no bus matches; services decide
// whether that is an error.
func (r *FleetRepository) GetBusByPlate(ctx context.Context, agencyName, plateNumber string) (*model.Bus, error) {
	var bus model.Bus
	err := r.db.QueryRow(ctx, `
		SELECT id, plate_number, agency_name, status, capacity, created_at
		FROM buses
		WHERE agency_name = $1 AND plate_number = $2
	`, agencyName, plateNumber).Scan(
		&bus.ID, &bus.PlateNumber, &bus.AgencyName, &bus.Status, &bus.Capacity, &bus.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bus %s: %w", plateNumber, err)
	}
	return &bus, nil
}

// GetDriverByName matches the driver by identifier or by names within
// the agency.
func (r *FleetRepository) GetDriverByName(ctx context.Context, agencyName, nameOrID string) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.QueryRow(ctx, `
		SELECT id, names, agency_name, phone, email, status, last_shift, created_at
		FROM drivers
		WHERE agency_name = $1 AND (id = $2 OR names = $2)
	`, agencyName, nameOrID).Scan(
		&driver.ID, &driver.Names, &driver.AgencyName, &driver.Phone, &driver.Email,
		&driver.Status, &driver.LastShift, &driver.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver %s: %w", nameOrID, err)
	}
	return &driver, nil
}

func (r *FleetRepository) SetBusStatus(ctx context.Context, agencyName, plateNumber string, status model.BusStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE buses SET status = $3
		WHERE agency_name = $1 AND plate_number = $2
	`, agencyName, plateNumber, status)
	if err != nil {
		return fmt.Errorf("failed to set bus %s status: %w", plateNumber, err)
	}
	return nil
}

// SetBusStatusIf writes the status only when the bus currently holds
// the expected one; reports whether a row changed.
func (r *FleetRepository) SetBusStatusIf(ctx context.Context, agencyName, plateNumber string, from, to model.BusStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE buses SET status = $4
		WHERE agency_name = $1 AND plate_number = $2 AND status = $3
	`, agencyName, plateNumber, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to set bus %s status: %w", plateNumber, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FleetRepository) SetDriverOffShift(ctx context.Context, agencyName, nameOrID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE drivers SET status = $3, last_shift = $4
		WHERE agency_name = $1 AND (id = $2 OR names = $2)
	`, agencyName, nameOrID, model.DriverOffShift, at)
	if err != nil {
		return fmt.Errorf("failed to set driver %s off shift: %w", nameOrID, err)
	}
	return nil
}

// SetDriverOffShiftIf releases the driver only from On Shift, so a
// leave or a newer assignment set by concurrent activity is preserved.
func (r *FleetRepository) SetDriverOffShiftIf(ctx context.Context, agencyName, nameOrID string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE drivers SET status = $3, last_shift = $4
		WHERE agency_name = $1 AND (id = $2 OR names = $2) AND status = $5
	`, agencyName, nameOrID, model.DriverOffShift, at, model.DriverOnShift)
	if err != nil {
		return false, fmt.Errorf("failed to set driver %s off shift: %w", nameOrID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FleetRepository) SetDriverStatus(ctx context.Context, agencyName, nameOrID string, status model.DriverStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE drivers SET status = $3
		WHERE agency_name = $1 AND (id = $2 OR names = $2)
	`, agencyName, nameOrID, status)
	if err != nil {
		return fmt.Errorf("failed to set driver %s status: %w", nameOrID, err)
	}
	return nil
}

func (r *FleetRepository) ListBuses(ctx context.Context, agencyName string) ([]model.Bus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, plate_number, agency_name, status, capacity, created_at
		FROM buses
		WHERE agency_name = $1
		ORDER BY plate_number
	`, agencyName)
	if err != nil {
		return nil, fmt.Errorf("failed to list buses: %w", err)
	}
	defer rows.Close()

	buses := make([]model.Bus, 0)
	for rows.Next() {
		var bus model.Bus
		if err := rows.Scan(&bus.ID, &bus.PlateNumber, &bus.AgencyName, &bus.Status, &bus.Capacity, &bus.CreatedAt); err != nil {
			return nil, err
		}
		buses = append(buses, bus)
	}
	return buses, rows.Err()
}

func (r *FleetRepository) ListDrivers(ctx context.Context, agencyName string) ([]model.Driver, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, names, agency_name, phone, email, status, last_shift, created_at
		FROM drivers
		WHERE agency_name = $1
		ORDER BY names
	`, agencyName)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	drivers := make([]model.Driver, 0)
	for rows.Next() {
		var driver model.Driver
		if err := rows.Scan(&driver.ID, &driver.Names, &driver.AgencyName, &driver.Phone, &driver.Email,
			&driver.Status, &driver.LastShift, &driver.CreatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}
