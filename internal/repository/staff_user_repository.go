package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-world/internal/model"
)

// StaffUserRepo provides lookups for operator accounts used by the
// staff API.
type StaffUserRepo struct {
	db *sql.DB
}

// NewStaffUserRepo constructs a StaffUserRepo with the given DB handle.
func NewStaffUserRepo(db *sql.DB) *StaffUserRepo {
	return &StaffUserRepo{db: db}
}

// GetByEmail retrieves an active staff account by email.
func (r *StaffUserRepo) GetByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
	const q = `SELECT id, email, password_hash, role, is_active, created_at, updated_at
	           FROM staff_users WHERE email = ? AND is_active = 1`
	var u model.StaffUser
	err := r.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaffUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a staff account by id, used by the /me endpoint.
func (r *StaffUserRepo) GetByID(ctx context.Context, id uint64) (*model.StaffUser, error) {
	const q = `SELECT id, email, password_hash, role, is_active, created_at, updated_at
	           FROM staff_users WHERE id = ?`
	var u model.StaffUser
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaffUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
