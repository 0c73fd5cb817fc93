package service

import (
	"context"

	"accounts/internal/domain"
	"accounts/internal/dto"
)

// AccountService never returns a Go error: every outcome, including
// unexpected failures, is reported through the embedded dto.Result.
type AccountService interface {
	CreateAccount(ctx context.Context, r dto.CreateAccountRequest) dto.CreateAccountResponse
	Login(ctx context.Context, r dto.LoginRequest) dto.LoginResponse
	FindByID(ctx context.Context, id domain.UserID) dto.UserProfileResponse
	EditProfile(ctx context.Context, id domain.UserID, r dto.EditProfileRequest) dto.EditProfileResponse
	DeleteAccount(ctx context.Context, id domain.UserID) dto.DeleteAccountResponse
	VerifyEmail(ctx context.Context, r dto.VerifyEmailRequest) dto.VerifyEmailResponse
}
