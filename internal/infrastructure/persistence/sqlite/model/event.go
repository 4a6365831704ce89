package model

type Event struct {
	EventID   uint64 `gorm:"column:event_id;primaryKey;autoIncrement"`
	Name      string `gorm:"column:name;type:text;not null"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
}

func (Event) TableName() string {
	return "events"
}
