package models

import "time"

// Card is a stored payment card. CVV and Password are ciphertext at rest,
// Number is stored as entered.
type Card struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	Number     string      `json:"number"`
	Owner      string      `json:"owner"`
	CVV        string      `json:"cvv"`
	Expiration string      `json:"expiration"`
	Password   string      `json:"password"`
	UserID     int64       `json:"userId"`
	CardTypes  []*CardType `json:"cardTypes"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// CardType is seeded reference data such as "Credit" or "Debit".
type CardType struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CardInput is the client-supplied part of a Card; Types lists CardType ids.
type CardInput struct {
	Title      string  `json:"title"`
	Number     string  `json:"number"`
	Owner      string  `json:"owner"`
	CVV        string  `json:"cvv"`
	Expiration string  `json:"expiration"`
	Password   string  `json:"password"`
	Types      []int64 `json:"type"`
}
