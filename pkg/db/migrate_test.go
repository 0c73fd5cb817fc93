package db

import (
	"context"
	"fmt"
	"io/fs"
	"testing"

	"accounts/pkg/db/migrations"

	"github.com/stretchr/testify/require"
)

func TestMigrate_SQLiteAutoMigrates(t *testing.T) {
	gdb, err := OpenSQLite(Config{DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())})
	require.NoError(t, err)

	require.NoError(t, Migrate(context.Background(), gdb))

	for _, table := range []string{"users", "verifications", "audit_logs"} {
		require.True(t, gdb.Migrator().HasTable(table), table)
	}
	require.True(t, gdb.Migrator().HasIndex("users", "ux_users_email"))
	require.True(t, gdb.Migrator().HasIndex("verifications", "ux_verifications_user"))
}

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations.Migrations, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.Equal(t, "00001_init.sql", entries[0].Name())
}
