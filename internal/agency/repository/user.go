package repository

import (
	"context"
	"errors"
	"fmt"

	"fleet-dispatch/internal/agency/model"
	"fleet-dispatch/internal/authz"
	"fleet-dispatch/internal/common/auth"

	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db *pgx.Conn
}

func NewUserRepository(db *pgx.Conn) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	var agencyName *string
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, phone, role, agency_name, active, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.Phone, &user.Role,
		&agencyName, &user.Active, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	if agencyName != nil {
		user.AgencyName = *agencyName
	}
	return &user, nil
}

// GetPrincipal implements auth.PrincipalStore for the request resolver.
func (r *UserRepository) GetPrincipal(ctx context.Context, id string) (*auth.Principal, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &auth.Principal{
		ID:         user.ID,
		Username:   user.Username,
		Role:       user.Role,
		AgencyName: user.AgencyName,
		Active:     user.Active,
	}, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role authz.Role) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return false, fmt.Errorf("failed to update role for user %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
