package model

type Prize struct {
	PrizeID    uint64 `gorm:"column:prize_id;primaryKey;autoIncrement"`
	EventID    uint64 `gorm:"column:event_id;not null;index"`
	Name       string `gorm:"column:name;type:text;not null"`
	Category   string `gorm:"column:category;type:text;not null;default:''"`
	Stock      int    `gorm:"column:stock;not null"`
	UnitState  string `gorm:"column:unit_state;type:text;not null;default:'available'"`
	IsActive   bool   `gorm:"column:is_active;not null"`
	IsSentinel bool   `gorm:"column:is_sentinel;not null;index"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt  string `gorm:"column:updated_at;type:text;not null"`
}

func (Prize) TableName() string {
	return "prizes"
}
