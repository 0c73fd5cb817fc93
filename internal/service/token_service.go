package service

import (
	"context"

	"accounts/internal/domain"
)

type TokenService interface {
	Sign(ctx context.Context, userID domain.UserID) (string, error)
	Verify(ctx context.Context, token string) (domain.UserID, error)
}
