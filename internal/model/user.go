// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// ID is an xid generated on insert and never changes. Email is unique across
// all users and compared exactly as stored. PasswordHash is a bcrypt string
// and is never serialized; AuthService clears it before returning a user to
// callers outside the service layer.
//
// A user's favorites are not held here. They live in the favorites join
// table and are reached through the catalog queries.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Sanitized returns a copy of u without the password hash.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}
