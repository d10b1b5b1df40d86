package model

import "time"

// Roles stored in users.role.  Publishers own sites and sell slot
// capacity; sponsors buy it.
const (
	RolePublisher = "PUBLISHER"
	RoleSponsor   = "SPONSOR"
)

// User is an account that can authenticate against the API.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – normalized (lower-cased) login email, unique.
//  Name         – public display name; shown next to served creatives.
//  PasswordHash – bcrypt hash of the password.
//  Role         – PUBLISHER or SPONSOR.
//  IsActive     – soft-disable flag for the account.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Name         string    // users.name
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
