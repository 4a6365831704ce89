package model

type RaffleLog struct {
	LogID      uint64 `gorm:"column:log_id;primaryKey;autoIncrement"`
	EventID    uint64 `gorm:"column:event_id;not null;index"`
	PrizeID    uint64 `gorm:"column:prize_id;not null;index:idx_raffle_logs_prize_guest,priority:1"`
	GuestID    uint64 `gorm:"column:guest_id;not null;index:idx_raffle_logs_prize_guest,priority:2"`
	RaffleType string `gorm:"column:raffle_type;type:text;not null"`
	Confirmed  bool   `gorm:"column:confirmed;not null;default:0"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null"`
}

func (RaffleLog) TableName() string {
	return "raffle_logs"
}
