package db

import (
	"context"
	"fmt"

	"accounts/internal/domain"
	"accounts/pkg/db/migrations"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date. Postgres runs the embedded goose
// migrations; any other dialect (sqlite in tests) falls back to AutoMigrate.
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	if gdb.Dialector.Name() != "postgres" {
		if err := gdb.WithContext(ctx).AutoMigrate(&domain.User{}, &domain.Verification{}, &domain.AuditLog{}); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
		return nil
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
