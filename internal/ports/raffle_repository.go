package ports

import (
	"context"

	"eventraffle/internal/domain/raffle"
)

type PrizeFilter struct {
	EventID         uint64
	PrizeID         uint64
	ActiveOnly      bool
	IncludeSentinel bool
}

type EntryFilter struct {
	EventID uint64
	PrizeID uint64
	GuestID uint64
	// Status limits results to one status when set.
	Status raffle.EntryStatus
}

type LogFilter struct {
	EventID       uint64
	PrizeID       uint64
	GuestID       uint64
	ConfirmedOnly bool
	Limit         int
}

type EntryCreate struct {
	EventID       uint64
	GuestID       uint64
	PrizeID       uint64
	Origin        raffle.Origin
	CorrelationID string
	CreatedAt     string
}

type WinUpdate struct {
	EntryID         uint64
	Position        int
	Participants    int
	DrawnAt         string
	ReplacedGuestID uint64
}

// WinnerRecord is a won entry joined with its guest and prize.
type WinnerRecord struct {
	Entry raffle.Entry
	Guest raffle.Guest
	Prize raffle.Prize
}

type EntryCounts struct {
	Pending int
	Won     int
	Lost    int
}

// RaffleReadRepository lookups return the raffle package's not-found sentinels.
type RaffleReadRepository interface {
	GetEvent(ctx context.Context, eventID uint64) (raffle.Event, error)
	GetPrize(ctx context.Context, prizeID uint64) (raffle.Prize, error)
	ListPrizes(ctx context.Context, filter PrizeFilter) ([]raffle.Prize, error)
	FindSentinelPrize(ctx context.Context, eventID uint64) (raffle.Prize, bool, error)
	GetGuest(ctx context.Context, guestID uint64) (raffle.Guest, error)
	ListGuests(ctx context.Context, eventID uint64) ([]raffle.Guest, error)
	GetEntry(ctx context.Context, entryID uint64) (raffle.Entry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]raffle.PendingEntry, error)
	CountEntries(ctx context.Context, filter EntryFilter) (EntryCounts, error)
	CountWinners(ctx context.Context, prizeID uint64) (int, error)
	ListWinners(ctx context.Context, eventID uint64, prizeID uint64) ([]WinnerRecord, error)
	ListLogs(ctx context.Context, filter LogFilter) ([]raffle.RaffleLog, error)
	GetQuotaAssignment(ctx context.Context, eventID uint64) (*raffle.QuotaAssignment, error)
}

type RaffleRepository interface {
	RaffleReadRepository

	CreateEvent(ctx context.Context, event raffle.Event) (raffle.Event, error)
	CreateGuest(ctx context.Context, guest raffle.Guest) (raffle.Guest, error)
	MarkAttendance(ctx context.Context, guestID uint64, at string) error
	CreatePrize(ctx context.Context, prize raffle.Prize) (raffle.Prize, error)

	// CreateEntry reports false when the (guest, prize) entry already exists.
	CreateEntry(ctx context.Context, input EntryCreate) (raffle.Entry, bool, error)
	// MarkEntryWon flips a pending entry to won and reports false if it was not pending.
	MarkEntryWon(ctx context.Context, input WinUpdate) (bool, error)
	// MarkPendingLost closes every other pending entry of a prize after a draw.
	MarkPendingLost(ctx context.Context, prizeID uint64, drawnAt string, participants int) (int64, error)
	// TransitionEntry moves an entry between statuses, reporting false if it was not in from.
	TransitionEntry(ctx context.Context, entryID uint64, from, to raffle.EntryStatus) (bool, error)
	// UpdateStock is an optimistic compare-and-set on the prize stock.
	UpdateStock(ctx context.Context, prizeID uint64, expected, next int) (bool, error)

	AppendLog(ctx context.Context, log raffle.RaffleLog) (raffle.RaffleLog, error)
	// ConfirmLatestLog confirms the newest unconfirmed log of (prize, guest).
	ConfirmLatestLog(ctx context.Context, prizeID, guestID uint64) (bool, error)
	UnconfirmLogs(ctx context.Context, prizeID, guestID uint64) error

	// CreateQuotaAssignment reports false when the event already has one.
	CreateQuotaAssignment(ctx context.Context, assignment raffle.QuotaAssignment) (bool, error)
}
