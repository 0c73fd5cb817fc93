package impl

import (
	"context"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
)

// VerificationIssuer mints one-time email codes. It only writes through the
// store it is handed, so the caller's transaction decides atomicity.
type VerificationIssuer struct {
	NewCode func() string
}

func NewVerificationIssuer() *VerificationIssuer {
	// uuid v4 draws from crypto/rand and carries nothing about the user.
	return &VerificationIssuer{NewCode: uuid.NewString}
}

// Issue replaces any pending verification of userID with a fresh one.
func (vi *VerificationIssuer) Issue(ctx context.Context, vs verificationStore, userID domain.UserID) (*domain.Verification, error) {
	if _, err := vs.DeleteByUserID(ctx, userID); err != nil {
		return nil, err
	}
	v := &domain.Verification{
		ID:        uuid.New(),
		Code:      vi.NewCode(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := vs.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}
