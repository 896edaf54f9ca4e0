package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/partsbin-backend/pkg/config"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"":                     "file::memory:?cache=shared&_foreign_keys=on&_busy_timeout=5000",
		"partsbin.db":          "partsbin.db?_foreign_keys=on&_busy_timeout=5000",
		"file:x.db?mode=rwc":   "file:x.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000",
		"a.db?_foreign_keys=0": "a.db?_foreign_keys=0",
	}
	for in, want := range cases {
		if got := SQLiteDSN(in); got != want {
			t.Fatalf("SQLiteDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewSQLiteEnforcesForeignKeys(t *testing.T) {
	ctx := context.Background()
	client, err := New(ctx, config.DBConfig{SQLitePath: filepath.Join(t.TempDir(), "fk.db")}, true, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer client.Close()

	if client.Dialect() != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %s", client.Dialect())
	}
	var enabled int
	if err := client.DB().Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("expected foreign keys on, got %d", enabled)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

type uniqueModel struct {
	ID   int
	Code string `gorm:"uniqueIndex:idx_unique_models_code"`
}

func TestIsUniqueViolation(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:unique_violation?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&uniqueModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	if err := db.Create(&uniqueModel{Code: "a"}).Error; err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err = db.Create(&uniqueModel{Code: "a"}).Error
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if !IsUniqueViolation(err, "unique_models.code") {
		t.Fatalf("expected violation to mention the column, got %v", err)
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated errors must not be unique violations")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil is not a violation")
	}
}

func TestDialect(t *testing.T) {
	client := &Client{conn: newTestDB(t)}
	if client.Dialect() != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %s", client.Dialect())
	}
}
