package events

import "time"

type UserRegistered struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	At     time.Time `json:"at"`
}

type UserDeleted struct {
	UserID  string           `json:"userId"`
	Removed map[string]int64 `json:"removed,omitempty"`
	At      time.Time        `json:"at"`
}

type PasswordChanged struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}
