package raffle

import (
	"context"
	"fmt"
	"log/slog"

	"eventraffle/internal/bootstrap/logging"
	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
	"eventraffle/internal/ports"
)

type ReplaceInput struct {
	EventID uint64
	GuestID uint64
	Notify  bool
}

// ReplaceGeneralWinner withdraws one general raffle winner and draws a single
// replacement who inherits the position. Other winners are untouched. When nobody
// can replace the guest the whole operation rolls back.
func (s *Service) ReplaceGeneralWinner(ctx context.Context, input ReplaceInput) (DrawResult, error) {
	if err := s.ready(ctx); err != nil {
		return DrawResult{}, err
	}

	unlock := s.locks.lock(generalLockKey(input.EventID))
	defer unlock()

	var result DrawResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.replaceGeneralWinnerTx(txCtx, input)
		return err
	}); err != nil {
		return DrawResult{}, errs.Wrapf(err, "replace general winner %d in event %d", input.GuestID, input.EventID)
	}

	logging.Info(
		logging.WithComponent(ctx, "usecase.raffle"),
		"general winner replaced",
		slog.Uint64("event_id", result.EventID),
		slog.Uint64("replaced_guest_id", result.ReplacedGuestID),
		slog.Int("winners", len(result.Winners)),
	)
	if input.Notify {
		s.notifyWinners(ctx, result)
	}
	return result, nil
}

func (s *Service) replaceGeneralWinnerTx(ctx context.Context, input ReplaceInput) (DrawResult, error) {
	prize, found, err := s.repo.FindSentinelPrize(ctx, input.EventID)
	if err != nil {
		return DrawResult{}, err
	}
	if !found {
		return DrawResult{}, fmt.Errorf("%w: event %d has no general raffle", domainraffle.ErrNotAWinner, input.EventID)
	}

	current, err := s.repo.ListEntries(ctx, ports.EntryFilter{
		PrizeID: prize.ID,
		GuestID: input.GuestID,
		Status:  domainraffle.StatusWon,
	})
	if err != nil {
		return DrawResult{}, errs.Wrap(err, "load current winner")
	}
	if len(current) == 0 {
		return DrawResult{}, domainraffle.ErrNotAWinner
	}
	replaced := current[0].Entry

	ok, err := s.repo.TransitionEntry(ctx, replaced.ID, domainraffle.StatusWon, domainraffle.StatusLost)
	if err != nil {
		return DrawResult{}, err
	}
	if !ok {
		return DrawResult{}, fmt.Errorf("%w: entry %d", domainraffle.ErrConcurrentModification, replaced.ID)
	}
	if err := s.repo.UnconfirmLogs(ctx, prize.ID, input.GuestID); err != nil {
		return DrawResult{}, err
	}

	if err := s.reopenGeneralPoolTx(ctx, prize, input.GuestID); err != nil {
		return DrawResult{}, err
	}

	dc, err := s.loadDrawContextTx(ctx, prize.ID, domainraffle.TypeGeneral)
	if err != nil {
		return DrawResult{}, err
	}
	set, err := dc.resolve(1, s.rules)
	if err != nil {
		return DrawResult{}, err
	}

	return s.commitWinnersTx(ctx, commitInput{
		prize:           dc.prize,
		typ:             domainraffle.TypeGeneral,
		picks:           set.Draw(s.picker),
		participants:    set.Participants,
		drawnAt:         nowUTCString(),
		closeRest:       true,
		position:        replaced.Position,
		replacedGuestID: input.GuestID,
		staleErr:        domainraffle.ErrConcurrentModification,
	})
}

// reopenGeneralPoolTx makes every general-eligible guest, except current winners and
// the replaced guest, hold a pending entry again.
func (s *Service) reopenGeneralPoolTx(ctx context.Context, prize domainraffle.Prize, replacedGuestID uint64) error {
	guests, err := s.repo.ListGuests(ctx, prize.EventID)
	if err != nil {
		return errs.Wrap(err, "load guests")
	}
	wins, err := s.loadWinsTx(ctx, prize.EventID)
	if err != nil {
		return err
	}

	correlationID := s.newID()
	createdAt := nowUTCString()
	for _, guest := range domainraffle.EligibleGuests(domainraffle.TypeGeneral, guests, prize, wins, s.rules) {
		if guest.ID == replacedGuestID || wins.WonGeneral(guest.ID) {
			continue
		}

		entry, inserted, err := s.repo.CreateEntry(ctx, ports.EntryCreate{
			EventID:       prize.EventID,
			GuestID:       guest.ID,
			PrizeID:       prize.ID,
			Origin:        domainraffle.OriginSystem,
			CorrelationID: correlationID,
			CreatedAt:     createdAt,
		})
		if err != nil {
			return errs.Wrapf(err, "create entry for guest %d", guest.ID)
		}
		if inserted || entry.Status != domainraffle.StatusLost {
			continue
		}
		if _, err := s.repo.TransitionEntry(ctx, entry.ID, domainraffle.StatusLost, domainraffle.StatusPending); err != nil {
			return err
		}
	}
	return nil
}
