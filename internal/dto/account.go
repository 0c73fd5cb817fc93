package dto

import (
	"time"

	"accounts/internal/domain"
)

type CreateAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type CreateAccountResponse struct {
	Result
}

type UserProfile struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Verified  bool        `json:"verified"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ProfileFromUser strips credential fields before a user leaves the service.
func ProfileFromUser(u *domain.User) *UserProfile {
	if u == nil {
		return nil
	}
	return &UserProfile{
		ID:        u.ID.String(),
		Email:     u.Email,
		Role:      u.Role,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type UserProfileResponse struct {
	Result
	User *UserProfile `json:"user,omitempty"`
}

type DeleteAccountResponse struct {
	Result
}
