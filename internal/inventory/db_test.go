package inventory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/partsbin-backend/pkg/migrate"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "inventory.db")
	conn, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, migrate.AutoMigrate(conn))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
