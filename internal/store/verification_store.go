package store

import (
	"context"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationStore struct{ db *gorm.DB }

func (s *Store) Verifications() *VerificationStore { return &VerificationStore{db: s.DB} }

func (v *VerificationStore) Create(ctx context.Context, ver *domain.Verification) error {
	if ver.ID == uuid.Nil {
		ver.ID = uuid.New()
	}
	if ver.CreatedAt.IsZero() {
		ver.CreatedAt = time.Now().UTC()
	}
	err := v.db.WithContext(ctx).Omit(clause.Associations).Create(ver).Error
	return translate(err, ErrDuplicateKey)
}

// GetByCode returns the verification together with its owning user.
func (v *VerificationStore) GetByCode(ctx context.Context, code string) (*domain.Verification, error) {
	var ver domain.Verification
	if err := v.db.WithContext(ctx).Preload("User").First(&ver, "code = ?", code).Error; err != nil {
		return nil, translate(err, ErrDuplicateKey)
	}
	if ver.User == nil {
		return nil, ErrRecordNotFound
	}
	return &ver, nil
}

func (v *VerificationStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx := v.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Verification{})
	return tx.RowsAffected, tx.Error
}

// DeleteByID reports how many rows went away; zero means another
// transaction consumed or replaced the row first.
func (v *VerificationStore) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	tx := v.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Verification{})
	return tx.RowsAffected, tx.Error
}
