package events

import "time"

type EmailChanged struct {
	UserID   string    `json:"userId"`
	OldEmail string    `json:"oldEmail"`
	NewEmail string    `json:"newEmail"`
	At       time.Time `json:"at"`
}

type EmailVerified struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}
