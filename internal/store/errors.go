package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrDuplicateKey   = errors.New("duplicate key")
)

const (
	pgUniqueViolation = "23505"
	usersEmailIndex   = "ux_users_email"
)

// isUniqueViolation covers both a translating dialector (gorm.ErrDuplicatedKey)
// and a raw pgx error when the *gorm.DB was opened without TranslateError.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func translate(err error, onDuplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case isUniqueViolation(err):
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == usersEmailIndex {
			onDuplicate = ErrDuplicateEmail
		}
		return errors.Join(onDuplicate, err)
	}
	return err
}
