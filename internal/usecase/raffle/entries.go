package raffle

import (
	"context"
	"log/slog"

	"eventraffle/internal/bootstrap/logging"
	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
	"eventraffle/internal/ports"
)

type CreateEntriesInput struct {
	PrizeID uint64
	Type    domainraffle.RaffleType
	Origin  domainraffle.Origin
}

type CreateGeneralEntriesInput struct {
	EventID uint64
	Origin  domainraffle.Origin
}

// EntryReport counts the outcome of one entry-creation pass.
type EntryReport struct {
	PrizeID        uint64
	Type           domainraffle.RaffleType
	CorrelationID  string
	Eligible       int
	Created        int
	AlreadyEntered int
	// Excluded counts public guests skipped because they already won another non-vehicle prize.
	Excluded int
}

// CreateEntries enters every eligible guest into a prize. Re-running it never duplicates entries.
func (s *Service) CreateEntries(ctx context.Context, input CreateEntriesInput) (EntryReport, error) {
	if err := s.ready(ctx); err != nil {
		return EntryReport{}, err
	}

	prize, err := s.repo.GetPrize(ctx, input.PrizeID)
	if err != nil {
		return EntryReport{}, errs.Wrapf(err, "load prize %d", input.PrizeID)
	}
	typ, err := raffleTypeFor(prize, input.Type)
	if err != nil {
		return EntryReport{}, err
	}
	origin, err := domainraffle.ParseOrigin(string(input.Origin))
	if err != nil {
		return EntryReport{}, err
	}

	unlock := s.locks.lock(prizeLockKey(prize))
	defer unlock()

	var report EntryReport
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		prize, err := s.repo.GetPrize(txCtx, input.PrizeID)
		if err != nil {
			return err
		}
		if !prize.Active && !prize.Sentinel {
			return domainraffle.ErrPrizeInactive
		}
		report, err = s.createEntriesTx(txCtx, prize, typ, origin)
		return err
	}); err != nil {
		return EntryReport{}, errs.Wrapf(err, "create entries for prize %d", input.PrizeID)
	}

	s.logEntries(ctx, report)
	return report, nil
}

// CreateGeneralEntries enters every general-eligible guest into the event's general raffle.
func (s *Service) CreateGeneralEntries(ctx context.Context, input CreateGeneralEntriesInput) (EntryReport, error) {
	if err := s.ready(ctx); err != nil {
		return EntryReport{}, err
	}
	origin, err := domainraffle.ParseOrigin(string(input.Origin))
	if err != nil {
		return EntryReport{}, err
	}

	unlock := s.locks.lock(generalLockKey(input.EventID))
	defer unlock()

	var report EntryReport
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		prize, err := s.ensureGeneralPrizeTx(txCtx, input.EventID)
		if err != nil {
			return err
		}
		report, err = s.createEntriesTx(txCtx, prize, domainraffle.TypeGeneral, origin)
		return err
	}); err != nil {
		return EntryReport{}, errs.Wrapf(err, "create general entries for event %d", input.EventID)
	}

	s.logEntries(ctx, report)
	return report, nil
}

func (s *Service) createEntriesTx(
	ctx context.Context,
	prize domainraffle.Prize,
	typ domainraffle.RaffleType,
	origin domainraffle.Origin,
) (EntryReport, error) {
	guests, err := s.repo.ListGuests(ctx, prize.EventID)
	if err != nil {
		return EntryReport{}, errs.Wrap(err, "load guests")
	}
	wins, err := s.loadWinsTx(ctx, prize.EventID)
	if err != nil {
		return EntryReport{}, err
	}

	eligible := domainraffle.EligibleGuests(typ, guests, prize, wins, s.rules)
	if len(eligible) == 0 {
		return EntryReport{}, domainraffle.ErrNoEligibleGuests
	}

	report := EntryReport{
		PrizeID:       prize.ID,
		Type:          typ,
		CorrelationID: s.newID(),
		Eligible:      len(eligible),
	}
	createdAt := nowUTCString()
	for _, guest := range eligible {
		if typ == domainraffle.TypePublic && domainraffle.BlockedBySecondaryRule(guest, prize, wins) {
			report.Excluded++
			continue
		}

		_, inserted, err := s.repo.CreateEntry(ctx, ports.EntryCreate{
			EventID:       prize.EventID,
			GuestID:       guest.ID,
			PrizeID:       prize.ID,
			Origin:        origin,
			CorrelationID: report.CorrelationID,
			CreatedAt:     createdAt,
		})
		if err != nil {
			return EntryReport{}, errs.Wrapf(err, "create entry for guest %d", guest.ID)
		}
		if inserted {
			report.Created++
		} else {
			report.AlreadyEntered++
		}
	}
	return report, nil
}

// ensureGeneralPrizeTx returns the event's sentinel prize, creating it on first use.
func (s *Service) ensureGeneralPrizeTx(ctx context.Context, eventID uint64) (domainraffle.Prize, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return domainraffle.Prize{}, errs.Wrapf(err, "load event %d", eventID)
	}

	prize, found, err := s.repo.FindSentinelPrize(ctx, eventID)
	if err != nil {
		return domainraffle.Prize{}, err
	}
	if found {
		return prize, nil
	}

	prize, err = s.repo.CreatePrize(ctx, domainraffle.Prize{
		EventID:   eventID,
		Name:      s.rules.GeneralPrizeName,
		Stock:     s.generalStock,
		UnitState: domainraffle.UnitAvailable,
		Active:    true,
		Sentinel:  true,
	})
	if err != nil {
		return domainraffle.Prize{}, errs.Wrap(err, "create general raffle prize")
	}

	logging.Info(
		logging.WithComponent(ctx, "usecase.raffle"),
		"general raffle prize created",
		slog.Uint64("event_id", eventID),
		slog.Uint64("prize_id", prize.ID),
	)
	return prize, nil
}

func (s *Service) logEntries(ctx context.Context, report EntryReport) {
	logging.Info(
		logging.WithComponent(ctx, "usecase.raffle"),
		"entries created",
		slog.Uint64("prize_id", report.PrizeID),
		slog.String("raffle_type", string(report.Type)),
		slog.String("correlation_id", report.CorrelationID),
		slog.Int("eligible", report.Eligible),
		slog.Int("created", report.Created),
		slog.Int("already_entered", report.AlreadyEntered),
		slog.Int("excluded", report.Excluded),
	)
}
