package model

// All lists every table model in migration order.
func All() []any {
	return []any{
		&Event{},
		&Guest{},
		&Attendance{},
		&Prize{},
		&RaffleEntry{},
		&RaffleLog{},
		&QuotaAssignment{},
		&RaffleKV{},
	}
}
