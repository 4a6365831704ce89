package ports

import "context"

// WinnerNotice is published once per committed winner.
type WinnerNotice struct {
	EventID       uint64 `json:"event_id"`
	PrizeID       uint64 `json:"prize_id"`
	PrizeName     string `json:"prize_name"`
	GuestID       uint64 `json:"guest_id"`
	GuestName     string `json:"guest_name"`
	Email         string `json:"email"`
	RaffleType    string `json:"raffle_type"`
	Position      int    `json:"position"`
	CorrelationID string `json:"correlation_id"`
	DrawnAt       string `json:"drawn_at"`
}

// WinnerNotifier dispatches winner notices. Delivery is best effort.
type WinnerNotifier interface {
	NotifyWinner(ctx context.Context, notice WinnerNotice) error
}
