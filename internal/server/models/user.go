// Package models defines server-side data models persisted in the database.
package models

import "time"

// Roles assigned at account creation. Role changes happen only through
// direct administrative action (cmd/admin), never through the API.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	Login        string
	PasswordHash string
	PetName      string
	PetBreed     string
	// TOTPSecret is generated once at registration (base32) and never
	// regenerated for the lifetime of the account.
	TOTPSecret string
	Banned     bool
	Role       string
	CreatedAt  time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
