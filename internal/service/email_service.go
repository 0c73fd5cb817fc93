package service

import "context"

type EmailService interface {
	SendVerification(ctx context.Context, to string, code string) error
}
