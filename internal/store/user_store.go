package store

import (
	"context"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	return translate(u.db.WithContext(ctx).Create(usr).Error, ErrDuplicateEmail)
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, ErrDuplicateKey)
	}
	return &user, nil
}

// GetByIDForUpdate row-locks the user until the surrounding transaction
// ends. Dialects without row locks (sqlite) drop the clause.
func (u *UserStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := u.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, ErrDuplicateKey)
	}
	return &user, nil
}

// GetCredentials loads only what a password check needs.
func (u *UserStore) GetCredentials(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := u.db.WithContext(ctx).
		Select("id", "password_hash").
		First(&user, "email = ?", email).Error
	if err != nil {
		return nil, translate(err, ErrDuplicateKey)
	}
	return &user, nil
}

func (u *UserStore) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	var n int64
	err := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? AND id <> ?", email, except).
		Count(&n).Error
	return n > 0, err
}

// Save writes the named columns of usr (plus updated_at) in one statement.
// Zero values such as verified=false are written too.
func (u *UserStore) Save(ctx context.Context, usr *domain.User, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	usr.UpdatedAt = time.Now().UTC()
	tx := u.db.WithContext(ctx).Model(usr).
		Select(append(append([]string(nil), columns...), "updated_at")).
		Updates(usr)
	if tx.Error != nil {
		return translate(tx.Error, ErrDuplicateEmail)
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (u *UserStore) SetEmailVerified(ctx context.Context, userID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"verified": true, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ReplacePasswordHash swaps oldHash for newHash. It reports false when the
// stored hash is no longer oldHash, leaving the row untouched.
func (u *UserStore) ReplacePasswordHash(ctx context.Context, userID uuid.UUID, oldHash, newHash string) (bool, error) {
	tx := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND password_hash = ?", userID, oldHash).
		Updates(map[string]any{"password_hash": newHash, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}
