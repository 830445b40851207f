package models

import "time"

// Credential is a stored website login. Password holds ciphertext while the
// record travels between repository and service, and plaintext once the
// service hands it to its owner.
type Credential struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CredentialInput is the client-supplied part of a Credential.
type CredentialInput struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}
