package model

type Guest struct {
	GuestID        uint64 `gorm:"column:guest_id;primaryKey;autoIncrement"`
	EventID        uint64 `gorm:"column:event_id;not null;index"`
	EmployeeNumber string `gorm:"column:employee_number;type:text;not null;default:''"`
	FullName       string `gorm:"column:full_name;type:text;not null"`
	Email          string `gorm:"column:email;type:text;not null;default:''"`
	Employer       string `gorm:"column:employer;type:text;not null;default:''"`
	Role           string `gorm:"column:role;type:text;not null;default:''"`
	RaffleCategory string `gorm:"column:raffle_category;type:text;not null;default:''"`
	CreatedAt      string `gorm:"column:created_at;type:text;not null"`
}

func (Guest) TableName() string {
	return "guests"
}

// Attendance is the check-in record; a guest without one is not eligible for anything.
type Attendance struct {
	GuestID    uint64 `gorm:"column:guest_id;primaryKey"`
	AttendedAt string `gorm:"column:attended_at;type:text;not null"`
}

func (Attendance) TableName() string {
	return "attendances"
}
