package entity

import (
	"time"
)

// User is the acting principal. Pages hold back-references to it through
// their audit and checkout fields but never own it.
//
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasIdentity reports whether u refers to a persisted user.
func (u *User) HasIdentity() bool {
	return u != nil && u.ID != ""
}

// SameAs compares identities, not field values.
func (u *User) SameAs(other *User) bool {
	if !u.HasIdentity() || !other.HasIdentity() {
		return false
	}
	return u.ID == other.ID
}
