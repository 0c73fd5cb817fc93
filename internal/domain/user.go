package domain

import (
	"net/mail"
	"strings"
	"time"
)

type Role string

const (
	RoleClient   Role = "client"
	RoleOwner    Role = "owner"
	RoleDelivery Role = "delivery"
)

// Valid reports whether r is one of the known account roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleOwner, RoleDelivery:
		return true
	}
	return false
}

// ParseRole accepts the canonical role names plus a few aliases used by older clients.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client":
		return RoleClient, true
	case "owner", "service_provider", "serviceprovider":
		return RoleOwner, true
	case "delivery":
		return RoleDelivery, true
	}
	return "", false
}

type User struct {
	ID           UserID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Email        string    `gorm:"type:text;not null;uniqueIndex:ux_users_email" db:"email" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" db:"password_hash" json:"-"`
	Role         Role      `gorm:"type:text;not null" db:"role" json:"role"`
	Verified     bool      `gorm:"not null;default:false" db:"verified" json:"verified"`
	CreatedAt    time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// NormalizeEmail is applied to every email before it is stored or looked up,
// so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail expects an already normalized address.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
