package notify

import (
	"context"
	"log/slog"

	"eventraffle/internal/bootstrap/logging"
	"eventraffle/internal/ports"
)

// LogNotifier writes winner notices to the context logger.
type LogNotifier struct{}

var _ ports.WinnerNotifier = LogNotifier{}

func (LogNotifier) NotifyWinner(ctx context.Context, notice ports.WinnerNotice) error {
	logging.Info(
		logging.WithComponent(ctx, "notify.log"),
		"winner notice",
		slog.Uint64("event_id", notice.EventID),
		slog.Uint64("prize_id", notice.PrizeID),
		slog.String("prize", notice.PrizeName),
		slog.Uint64("guest_id", notice.GuestID),
		slog.String("guest", notice.GuestName),
		slog.String("raffle_type", notice.RaffleType),
		slog.Int("position", notice.Position),
	)
	return nil
}

// NoopNotifier drops every notice.
type NoopNotifier struct{}

var _ ports.WinnerNotifier = NoopNotifier{}

func (NoopNotifier) NotifyWinner(context.Context, ports.WinnerNotice) error { return nil }
