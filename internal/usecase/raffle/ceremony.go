package raffle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"eventraffle/internal/bootstrap/logging"
	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
)

type SelectInput struct {
	PrizeID uint64
	Type    domainraffle.RaffleType
}

// Selection is a previewed, uncommitted winner.
type Selection struct {
	Token        string
	PrizeID      uint64
	EntryID      uint64
	GuestID      uint64
	FullName     string
	Employer     string
	Type         domainraffle.RaffleType
	LogID        uint64
	Participants int
}

type ConfirmInput struct {
	PrizeID uint64
	// EntryID 0 confirms the cached selection for the prize.
	EntryID uint64
	// Token, when set, must match the cached selection.
	Token  string
	Notify bool
}

type cachedSelection struct {
	EntryID uint64 `json:"entry_id"`
	Token   string `json:"token"`
}

// SelectCandidate previews one winner. Only an unconfirmed log row is written.
func (s *Service) SelectCandidate(ctx context.Context, input SelectInput) (Selection, error) {
	if err := s.ready(ctx); err != nil {
		return Selection{}, err
	}

	prize, err := s.repo.GetPrize(ctx, input.PrizeID)
	if err != nil {
		return Selection{}, errs.Wrapf(err, "load prize %d", input.PrizeID)
	}
	typ, err := raffleTypeFor(prize, input.Type)
	if err != nil {
		return Selection{}, err
	}

	unlock := s.locks.lock(prizeLockKey(prize))
	defer unlock()

	var selection Selection
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		dc, err := s.loadDrawContextTx(txCtx, input.PrizeID, typ)
		if err != nil {
			return err
		}
		set, err := dc.resolve(1, s.rules)
		if err != nil {
			return err
		}

		picks := set.Draw(s.picker)
		if len(picks) == 0 {
			return domainraffle.ErrNoEligibleGuests
		}
		pick := picks[0]

		log, err := s.repo.AppendLog(txCtx, domainraffle.RaffleLog{
			EventID:   dc.prize.EventID,
			PrizeID:   dc.prize.ID,
			GuestID:   pick.Entry.GuestID,
			Type:      typ,
			Confirmed: false,
			CreatedAt: nowUTCString(),
		})
		if err != nil {
			return err
		}

		selection = Selection{
			Token:        s.newID(),
			PrizeID:      dc.prize.ID,
			EntryID:      pick.Entry.ID,
			GuestID:      pick.Guest.ID,
			FullName:     pick.Guest.FullName,
			Employer:     pick.Guest.Employer,
			Type:         typ,
			LogID:        log.ID,
			Participants: set.Participants,
		}
		return nil
	}); err != nil {
		return Selection{}, errs.Wrapf(err, "select candidate for prize %d", input.PrizeID)
	}

	if raw, err := json.Marshal(cachedSelection{EntryID: selection.EntryID, Token: selection.Token}); err == nil {
		s.setCacheBestEffort(ctx, cacheCeremonyKey(selection.PrizeID), string(raw))
	}

	logging.Info(
		logging.WithComponent(ctx, "usecase.raffle.ceremony"),
		"candidate selected",
		slog.Uint64("prize_id", selection.PrizeID),
		slog.Uint64("entry_id", selection.EntryID),
		slog.String("token", selection.Token),
	)
	return selection, nil
}

// ConfirmCandidate commits a previewed selection. An entry that is no longer pending,
// or no longer a legal winner, fails with ErrStaleSelection.
func (s *Service) ConfirmCandidate(ctx context.Context, input ConfirmInput) (DrawResult, error) {
	if err := s.ready(ctx); err != nil {
		return DrawResult{}, err
	}

	entryID, err := s.selectedEntry(ctx, input)
	if err != nil {
		return DrawResult{}, err
	}

	prize, err := s.repo.GetPrize(ctx, input.PrizeID)
	if err != nil {
		return DrawResult{}, errs.Wrapf(err, "load prize %d", input.PrizeID)
	}
	typ, err := raffleTypeFor(prize, "")
	if err != nil {
		return DrawResult{}, err
	}

	unlock := s.locks.lock(prizeLockKey(prize))
	defer unlock()

	var result DrawResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		entry, err := s.repo.GetEntry(txCtx, entryID)
		if err != nil {
			return err
		}
		if entry.PrizeID != input.PrizeID {
			return fmt.Errorf("%w: entry %d, prize %d", domainraffle.ErrPrizeMismatch, entryID, input.PrizeID)
		}
		if entry.Status != domainraffle.StatusPending {
			return fmt.Errorf("%w: entry %d is %s", domainraffle.ErrStaleSelection, entryID, entry.Status)
		}

		dc, err := s.loadDrawContextTx(txCtx, input.PrizeID, typ)
		if err != nil {
			return err
		}
		set, err := dc.resolve(1, s.rules)
		if err != nil {
			if errs.Match(err, domainraffle.ErrNoEligibleGuests, domainraffle.ErrQuotaUnsatisfiable) != nil {
				return fmt.Errorf("%w: %v", domainraffle.ErrStaleSelection, err)
			}
			return err
		}
		if !set.Admits(entryID) {
			return fmt.Errorf("%w: entry %d can no longer win", domainraffle.ErrStaleSelection, entryID)
		}

		var pick domainraffle.PendingEntry
		for _, pe := range dc.pending {
			if pe.Entry.ID == entryID {
				pick = pe
				break
			}
		}

		result, err = s.commitWinnersTx(txCtx, commitInput{
			prize:        dc.prize,
			typ:          typ,
			picks:        []domainraffle.PendingEntry{pick},
			participants: set.Participants,
			drawnAt:      nowUTCString(),
			closeRest:    !dc.prize.Sentinel,
			confirmLog:   true,
			staleErr:     domainraffle.ErrStaleSelection,
		})
		return err
	}); err != nil {
		return DrawResult{}, errs.Wrapf(err, "confirm entry %d for prize %d", entryID, input.PrizeID)
	}

	s.deleteCacheBestEffort(ctx, cacheCeremonyKey(input.PrizeID))
	s.logDraw(ctx, "selection confirmed", result)
	if input.Notify {
		s.notifyWinners(ctx, result)
	}
	return result, nil
}

// DiscardCandidate forgets the cached selection. Its unconfirmed log row stays as audit.
func (s *Service) DiscardCandidate(ctx context.Context, prizeID uint64) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return wrapContextErr(err)
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, cacheCeremonyKey(prizeID)); err != nil {
		return errs.Wrapf(err, "discard selection for prize %d", prizeID)
	}
	return nil
}

func (s *Service) selectedEntry(ctx context.Context, input ConfirmInput) (uint64, error) {
	if input.EntryID != 0 && input.Token == "" {
		return input.EntryID, nil
	}
	if s.cache == nil {
		return 0, domainraffle.ErrNoSelection
	}

	raw, found, err := s.cache.Get(ctx, cacheCeremonyKey(input.PrizeID))
	if err != nil {
		return 0, errs.Wrap(err, "read cached selection")
	}
	if !found {
		return 0, domainraffle.ErrNoSelection
	}

	var cached cachedSelection
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return 0, errs.Wrap(err, "decode cached selection")
	}
	if input.Token != "" && input.Token != cached.Token {
		return 0, fmt.Errorf("%w: selection token does not match", domainraffle.ErrStaleSelection)
	}
	if input.EntryID != 0 && input.EntryID != cached.EntryID {
		return 0, fmt.Errorf("%w: entry %d is not the current selection", domainraffle.ErrStaleSelection, input.EntryID)
	}
	return cached.EntryID, nil
}
