package raffle

import (
	"context"

	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
	"eventraffle/internal/ports"
)

// WinnerRow is a winner with the raffle that produced it.
type WinnerRow struct {
	EntryID         uint64
	PrizeID         uint64
	PrizeName       string
	GuestID         uint64
	EmployeeNumber  string
	FullName        string
	Employer        string
	Type            domainraffle.RaffleType
	Position        int
	DrawnAt         string
	ReplacedGuestID uint64
}

func (s *Service) ListLogs(ctx context.Context, filter ports.LogFilter) ([]domainraffle.RaffleLog, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	logs, err := s.repo.ListLogs(ctx, filter)
	if err != nil {
		return nil, errs.Wrap(err, "list raffle logs")
	}
	return logs, nil
}

// ListWinners reports every winner of an event. The raffle type comes from the
// confirmed log when one exists, otherwise from the prize itself.
func (s *Service) ListWinners(ctx context.Context, eventID uint64) ([]WinnerRow, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	records, err := s.repo.ListWinners(ctx, eventID, 0)
	if err != nil {
		return nil, errs.Wrapf(err, "list winners of event %d", eventID)
	}
	logs, err := s.repo.ListLogs(ctx, ports.LogFilter{EventID: eventID, ConfirmedOnly: true})
	if err != nil {
		return nil, errs.Wrapf(err, "list confirmed logs of event %d", eventID)
	}

	type winKey struct{ prizeID, guestID uint64 }
	logged := make(map[winKey]domainraffle.RaffleType, len(logs))
	for _, l := range logs {
		key := winKey{prizeID: l.PrizeID, guestID: l.GuestID}
		if _, ok := logged[key]; !ok {
			logged[key] = l.Type
		}
	}

	rows := make([]WinnerRow, 0, len(records))
	for _, rec := range records {
		typ := logged[winKey{prizeID: rec.Entry.PrizeID, guestID: rec.Entry.GuestID}]
		rows = append(rows, WinnerRow{
			EntryID:         rec.Entry.ID,
			PrizeID:         rec.Prize.ID,
			PrizeName:       rec.Prize.Name,
			GuestID:         rec.Guest.ID,
			EmployeeNumber:  rec.Guest.EmployeeNumber,
			FullName:        rec.Guest.FullName,
			Employer:        rec.Guest.Employer,
			Type:            domainraffle.ResolveRaffleType(typ, rec.Prize, s.rules),
			Position:        rec.Entry.Position,
			DrawnAt:         rec.Entry.DrawnAt,
			ReplacedGuestID: rec.Entry.ReplacedGuestID,
		})
	}
	return rows, nil
}
