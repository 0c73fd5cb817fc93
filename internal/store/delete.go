package store

import (
	"context"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteUserData removes the user's record and everything that references it,
// returning per-table counts captured before deletion. It runs on whatever
// handle s wraps, so callers inside WithTx get it atomically with their
// other writes.
func (s *Store) DeleteUserData(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	deleted := map[string]int64{}
	db := s.DB.WithContext(ctx)

	count := func(label string, query *gorm.DB) error {
		var total int64
		if err := query.Count(&total).Error; err != nil {
			return err
		}
		deleted[label] = total
		return nil
	}

	if err := count("users", db.Model(&domain.User{}).Where("id = ?", userID)); err != nil {
		return nil, err
	}
	if deleted["users"] == 0 {
		return nil, ErrRecordNotFound
	}
	if err := count("verifications", db.Model(&domain.Verification{}).Where("user_id = ?", userID)); err != nil {
		return nil, err
	}
	if err := count("auditLogs", db.Model(&domain.AuditLog{}).Where("user_id = ?", userID)); err != nil {
		return nil, err
	}

	if err := db.Where("user_id = ?", userID).Delete(&domain.Verification{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).Delete(&domain.AuditLog{}).Error; err != nil {
		return nil, err
	}
	tx := db.Where("id = ?", userID).Delete(&domain.User{})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return deleted, nil
}
