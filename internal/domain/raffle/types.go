package raffle

import (
	"fmt"
	"strings"
)

type RaffleType string

const (
	TypePublic  RaffleType = "public"
	TypeGeneral RaffleType = "general"
)

func ParseRaffleType(raw string) (RaffleType, error) {
	switch RaffleType(strings.ToLower(strings.TrimSpace(raw))) {
	case TypePublic, "":
		return TypePublic, nil
	case TypeGeneral:
		return TypeGeneral, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRaffleType, raw)
	}
}

type EntryStatus string

const (
	StatusPending EntryStatus = "pending"
	StatusWon     EntryStatus = "won"
	StatusLost    EntryStatus = "lost"
)

// UnitState is the explicit state of a single physical prize unit.
type UnitState string

const (
	UnitAvailable UnitState = "available"
	UnitWon       UnitState = "won"
)

// Origin records how an entry came to exist.
type Origin string

const (
	OriginManual     Origin = "manual"
	OriginBulkImport Origin = "bulk-import"
	OriginScan       Origin = "scan"
	OriginSystem     Origin = "system"
)

func ParseOrigin(raw string) (Origin, error) {
	switch Origin(strings.ToLower(strings.TrimSpace(raw))) {
	case OriginSystem, "":
		return OriginSystem, nil
	case OriginManual:
		return OriginManual, nil
	case OriginBulkImport:
		return OriginBulkImport, nil
	case OriginScan:
		return OriginScan, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrigin, raw)
	}
}

type Event struct {
	ID        uint64
	Name      string
	CreatedAt string
}

type Guest struct {
	ID             uint64
	EventID        uint64
	EmployeeNumber string
	FullName       string
	Email          string
	Employer       string
	Role           string
	RaffleCategory string
	Attended       bool
}

type Prize struct {
	ID        uint64
	EventID   uint64
	Name      string
	Category  string
	Stock     int
	UnitState UnitState
	Active    bool
	// Sentinel marks the event's general raffle pool; it is not a physical prize.
	Sentinel bool
}

type Entry struct {
	ID              uint64
	EventID         uint64
	GuestID         uint64
	PrizeID         uint64
	Status          EntryStatus
	Position        int
	Participants    int
	DrawnAt         string
	Origin          Origin
	CorrelationID   string
	ReplacedGuestID uint64
	CreatedAt       string
}

type RaffleLog struct {
	ID        uint64
	EventID   uint64
	PrizeID   uint64
	GuestID   uint64
	Type      RaffleType
	Confirmed bool
	CreatedAt string
}

// QuotaAssignment designates the public prize that guarantees the protected subgroup a win.
// It is written once per event and never changed by the engine.
type QuotaAssignment struct {
	EventID    uint64
	PrizeID    uint64
	AssignedAt string
}

// PendingEntry pairs an entry with the guest it belongs to.
type PendingEntry struct {
	Entry Entry
	Guest Guest
}
