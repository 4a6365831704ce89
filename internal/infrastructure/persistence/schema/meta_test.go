package schema

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestRecordVersion(t *testing.T) {
	ctx := context.Background()
	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "meta.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Meta{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	if _, found, err := CurrentVersion(ctx, db); err != nil || found {
		t.Fatalf("CurrentVersion() before record = %v, %v", found, err)
	}

	for i := 0; i < 2; i++ {
		if err := RecordVersion(ctx, db); err != nil {
			t.Fatalf("RecordVersion() error = %v", err)
		}
	}

	version, found, err := CurrentVersion(ctx, db)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if !found || version != Version {
		t.Fatalf("CurrentVersion() = %q, %v, want %q", version, found, Version)
	}

	var count int64
	if err := db.Model(&Meta{}).Count(&count).Error; err != nil {
		t.Fatalf("count meta: %v", err)
	}
	if count != 1 {
		t.Fatalf("meta rows = %d, want 1", count)
	}
}
