package models

import (
	"time"
)

// User is the subset of a user account this module depends on.
// Accounts are owned by the authentication layer; user settings only
// reference them and are removed together with them.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Username is the unique username for login.
	Username string `gorm:"unique;size:100;not null"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
}

// GetID returns the identifier user settings are scoped by.
func (u *User) GetID() uint64 {
	return u.ID
}
