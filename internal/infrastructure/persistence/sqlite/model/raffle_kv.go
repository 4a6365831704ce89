package model

type RaffleKV struct {
	Key       string  `gorm:"column:key;type:text;primaryKey"`
	Value     string  `gorm:"column:value;type:text;not null"`
	ExpiresAt *string `gorm:"column:expires_at;type:text"`
	UpdatedAt string  `gorm:"column:updated_at;type:text;not null"`
}

func (RaffleKV) TableName() string {
	return "raffle_kv"
}
