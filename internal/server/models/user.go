// Package models defines server-side data models persisted in the database
// and returned by the REST API.
package models

import "time"

// User is an account row. PasswordHash never leaves the service layer.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public strips the password hash.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// PublicUser is what sign-up returns.
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
