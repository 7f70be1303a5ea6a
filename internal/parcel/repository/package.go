package repository

import (
	"context"
	"errors"
	"fmt"

	"fleet-dispatch/internal/parcel/model"

	"github.com/jackc/pgx/v5"
)

type PackageRepository struct {
	db *pgx.Conn
}

func NewPackageRepository(db *pgx.Conn) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) Insert(ctx context.Context, pkg model.Package) (*model.Package, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO packages (
			id, agency_name, shift_id, sender_name, sender_phone,
			receiver_name, receiver_phone, weight, price, status, notes, delivered_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`,
		pkg.ID, pkg.AgencyName, pkg.ShiftID, pkg.SenderName, pkg.SenderPhone,
		pkg.ReceiverName, pkg.ReceiverPhone, pkg.Weight, pkg.Price, pkg.Status,
		pkg.Notes, pkg.DeliveredAt,
	).Scan(&pkg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert package: %w", err)
	}
	return &pkg, nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id string) (*model.Package, error) {
	var pkg model.Package
	err := r.db.QueryRow(ctx, `
		SELECT id, agency_name, shift_id, sender_name, sender_phone,
		       receiver_name, receiver_phone, weight, price, status, notes, delivered_at, created_at
		FROM packages
		WHERE id = $1
	`, id).Scan(
		&pkg.ID, &pkg.AgencyName, &pkg.ShiftID, &pkg.SenderName, &pkg.SenderPhone,
		&pkg.ReceiverName, &pkg.ReceiverPhone, &pkg.Weight, &pkg.Price, &pkg.Status,
		&pkg.Notes, &pkg.DeliveredAt, &pkg.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package %s: %w", id, err)
	}
	return &pkg, nil
}

func (r *PackageRepository) Update(ctx context.Context, pkg *model.Package) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE packages SET
			shift_id = $2, sender_name = $3, sender_phone = $4,
			receiver_name = $5, receiver_phone = $6, weight = $7, price = $8,
			status = $9, notes = $10, delivered_at = $11
		WHERE id = $1
	`,
		pkg.ID, pkg.ShiftID, pkg.SenderName, pkg.SenderPhone,
		pkg.ReceiverName, pkg.ReceiverPhone, pkg.Weight, pkg.Price,
		pkg.Status, pkg.Notes, pkg.DeliveredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update package %s: %w", pkg.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("package %s no longer exists", pkg.ID)
	}
	return nil
}

func (r *PackageRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete package %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
