package database

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"eventraffle/internal/bootstrap/config"
)

func TestOpenCreatesSQLiteDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "raffle.sqlite")

	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if _, err := os.Stat(filepath.Dir(dsn)); err != nil {
		t.Fatalf("sqlite directory not created: %v", err)
	}

	var fk int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("read foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("Open() expected error for unsupported driver")
	}
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(&buf)
	sql := func() (string, int64) { return "SELECT * FROM quota_assignments LIMIT 1", 0 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("Trace(ErrRecordNotFound) wrote %q, want nothing", buf.String())
	}

	l.Trace(context.Background(), time.Now(), sql, errors.New("disk I/O error"))
	if !strings.Contains(buf.String(), "disk I/O error") {
		t.Fatalf("Trace(error) wrote %q, want the error", buf.String())
	}
}
