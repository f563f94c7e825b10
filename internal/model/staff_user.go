package model

import "time"

// StaffUser is an operator account allowed to open and close rooms
// through the staff API.  Regular visitors never authenticate against
// this service; their identity is established by the external session
// layer.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (STAFF or ADMIN).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type StaffUser struct {
	ID           uint64    // staff_users.id
	Email        string    // staff_users.email
	PasswordHash string    // staff_users.password_hash
	Role         string    // staff_users.role
	IsActive     bool      // staff_users.is_active
	CreatedAt    time.Time // staff_users.created_at
	UpdatedAt    time.Time // staff_users.updated_at
}
