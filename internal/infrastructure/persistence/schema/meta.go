package schema

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventraffle/internal/errs"
)

// Version is bumped whenever a model change needs more than AutoMigrate.
const Version = "1"

const versionKey = "schema_version"

type Meta struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Key       string    `gorm:"column:key;type:text;uniqueIndex;not null"`
	Value     string    `gorm:"column:value;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (Meta) TableName() string {
	return "schema_meta"
}

// RecordVersion stores Version, overwriting an older value.
func RecordVersion(ctx context.Context, db *gorm.DB) error {
	row := Meta{Key: versionKey, Value: Version}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "record schema version")
	}
	return nil
}

// CurrentVersion reports the recorded version, false before the first init-db.
func CurrentVersion(ctx context.Context, db *gorm.DB) (string, bool, error) {
	var row Meta
	if err := db.WithContext(ctx).Where("key = ?", versionKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query schema version")
	}
	return row.Value, true, nil
}
