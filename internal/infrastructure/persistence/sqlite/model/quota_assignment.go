package model

type QuotaAssignment struct {
	EventID    uint64 `gorm:"column:event_id;primaryKey;autoIncrement:false"`
	PrizeID    uint64 `gorm:"column:prize_id;not null"`
	AssignedAt string `gorm:"column:assigned_at;type:text;not null"`
}

func (QuotaAssignment) TableName() string {
	return "quota_assignments"
}
