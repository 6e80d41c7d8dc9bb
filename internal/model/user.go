package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The password hash is kept internal to the repository and
// handler layers; response types never include it.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address.
//  GivenName    – first name.
//  FamilyName   – last name.
//  PasswordHash – stored hash, either bcrypt (current) or a hex SHA-256
//                 digest left over from the legacy scheme.
//  Role         – one of "user", "manager", "admin".
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	Username     string
	Email        string
	GivenName    string
	FamilyName   string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Roles form a closed set.  RoleAdmin is never assignable through signup;
// admin accounts are seeded out-of-band.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)
