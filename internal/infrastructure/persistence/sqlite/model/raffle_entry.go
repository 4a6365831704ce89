package model

type RaffleEntry struct {
	EntryID         uint64  `gorm:"column:entry_id;primaryKey;autoIncrement"`
	EventID         uint64  `gorm:"column:event_id;not null;index"`
	GuestID         uint64  `gorm:"column:guest_id;not null;uniqueIndex:idx_raffle_entries_guest_prize,priority:1"`
	PrizeID         uint64  `gorm:"column:prize_id;not null;uniqueIndex:idx_raffle_entries_guest_prize,priority:2;index:idx_raffle_entries_prize_status,priority:1"`
	Status          string  `gorm:"column:status;type:text;not null;default:'pending';index:idx_raffle_entries_prize_status,priority:2"`
	Position        int     `gorm:"column:position;not null;default:0"`
	Participants    int     `gorm:"column:participants;not null;default:0"`
	DrawnAt         *string `gorm:"column:drawn_at;type:text"`
	Origin          string  `gorm:"column:origin;type:text;not null;default:'system'"`
	CorrelationID   string  `gorm:"column:correlation_id;type:text;not null;default:''"`
	ReplacedGuestID *uint64 `gorm:"column:replaced_guest_id"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt       string  `gorm:"column:updated_at;type:text;not null"`
}

func (RaffleEntry) TableName() string {
	return "raffle_entries"
}
