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

type DrawInput struct {
	PrizeID uint64
	Count   int
	// Type defaults to the prize's own raffle: general for the sentinel prize, public otherwise.
	Type   domainraffle.RaffleType
	Notify bool
}

type DrawGeneralInput struct {
	EventID uint64
	Count   int
	Notify  bool
}

type Winner struct {
	EntryID       uint64
	GuestID       uint64
	FullName      string
	Email         string
	Employer      string
	Position      int
	Protected     bool
	CorrelationID string
	DrawnAt       string
}

type DrawResult struct {
	EventID         uint64
	PrizeID         uint64
	PrizeName       string
	Type            domainraffle.RaffleType
	Winners         []Winner
	Participants    int
	Lost            int64
	StockAfter      int
	ReplacedGuestID uint64
}

// Draw selects up to Count winners for a prize in one transaction.
func (s *Service) Draw(ctx context.Context, input DrawInput) (DrawResult, error) {
	if err := s.ready(ctx); err != nil {
		return DrawResult{}, err
	}

	prize, err := s.repo.GetPrize(ctx, input.PrizeID)
	if err != nil {
		return DrawResult{}, errs.Wrapf(err, "load prize %d", input.PrizeID)
	}
	typ, err := raffleTypeFor(prize, input.Type)
	if err != nil {
		return DrawResult{}, err
	}

	unlock := s.locks.lock(prizeLockKey(prize))
	defer unlock()

	var result DrawResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.drawTx(txCtx, input.PrizeID, typ, input.Count)
		return err
	}); err != nil {
		return DrawResult{}, errs.Wrapf(err, "draw prize %d", input.PrizeID)
	}

	s.logDraw(ctx, "draw committed", result)
	if input.Notify {
		s.notifyWinners(ctx, result)
	}
	return result, nil
}

// DrawGeneral draws the event's general raffle, creating its sentinel prize if needed.
func (s *Service) DrawGeneral(ctx context.Context, input DrawGeneralInput) (DrawResult, error) {
	if err := s.ready(ctx); err != nil {
		return DrawResult{}, err
	}

	unlock := s.locks.lock(generalLockKey(input.EventID))
	defer unlock()

	var result DrawResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		prize, err := s.ensureGeneralPrizeTx(txCtx, input.EventID)
		if err != nil {
			return err
		}
		result, err = s.drawTx(txCtx, prize.ID, domainraffle.TypeGeneral, input.Count)
		return err
	}); err != nil {
		return DrawResult{}, errs.Wrapf(err, "draw general raffle for event %d", input.EventID)
	}

	s.logDraw(ctx, "general draw committed", result)
	if input.Notify {
		s.notifyWinners(ctx, result)
	}
	return result, nil
}

func (s *Service) drawTx(ctx context.Context, prizeID uint64, typ domainraffle.RaffleType, count int) (DrawResult, error) {
	dc, err := s.loadDrawContextTx(ctx, prizeID, typ)
	if err != nil {
		return DrawResult{}, err
	}

	set, err := dc.resolve(count, s.rules)
	if err != nil {
		return DrawResult{}, err
	}

	picks := set.Draw(s.picker)
	return s.commitWinnersTx(ctx, commitInput{
		prize:        dc.prize,
		typ:          typ,
		picks:        picks,
		participants: set.Participants,
		drawnAt:      nowUTCString(),
		closeRest:    true,
		staleErr:     domainraffle.ErrConcurrentModification,
	})
}

// drawContext is everything candidate resolution needs, loaded inside one transaction.
type drawContext struct {
	prize   domainraffle.Prize
	typ     domainraffle.RaffleType
	pending []domainraffle.PendingEntry
	wins    domainraffle.WinLedger
	quota   domainraffle.QuotaState
}

func (dc drawContext) resolve(requested int, rules domainraffle.Rules) (domainraffle.CandidateSet, error) {
	return domainraffle.ResolveCandidates(domainraffle.CandidateInput{
		Type:      dc.typ,
		Prize:     dc.prize,
		Requested: requested,
		Pending:   dc.pending,
		Quota:     dc.quota,
		Wins:      dc.wins,
		Rules:     rules,
	})
}

func (s *Service) loadDrawContextTx(ctx context.Context, prizeID uint64, typ domainraffle.RaffleType) (drawContext, error) {
	prize, err := s.repo.GetPrize(ctx, prizeID)
	if err != nil {
		return drawContext{}, errs.Wrap(err, "load prize")
	}
	if !prize.Active && !prize.Sentinel {
		return drawContext{}, domainraffle.ErrPrizeInactive
	}

	prize, _, err = s.restoreStockTx(ctx, prize)
	if err != nil {
		return drawContext{}, err
	}

	pending, err := s.repo.ListEntries(ctx, ports.EntryFilter{
		PrizeID: prize.ID,
		Status:  domainraffle.StatusPending,
	})
	if err != nil {
		return drawContext{}, errs.Wrap(err, "load pending entries")
	}

	wins, err := s.loadWinsTx(ctx, prize.EventID)
	if err != nil {
		return drawContext{}, err
	}

	assignment, err := s.repo.GetQuotaAssignment(ctx, prize.EventID)
	if err != nil {
		return drawContext{}, errs.Wrap(err, "load quota assignment")
	}

	return drawContext{
		prize:   prize,
		typ:     typ,
		pending: pending,
		wins:    wins,
		quota:   domainraffle.QuotaStateFrom(assignment, wins),
	}, nil
}

func (s *Service) loadWinsTx(ctx context.Context, eventID uint64) (domainraffle.WinLedger, error) {
	records, err := s.repo.ListWinners(ctx, eventID, 0)
	if err != nil {
		return domainraffle.WinLedger{}, errs.Wrap(err, "load event winners")
	}

	wins := make([]domainraffle.Win, 0, len(records))
	for _, rec := range records {
		wins = append(wins, domainraffle.Win{
			GuestID:   rec.Entry.GuestID,
			PrizeID:   rec.Entry.PrizeID,
			Vehicle:   s.rules.IsVehicle(rec.Prize),
			Sentinel:  rec.Prize.Sentinel,
			Protected: s.rules.IsProtected(rec.Guest),
		})
	}
	return domainraffle.NewWinLedger(wins), nil
}

type commitInput struct {
	prize        domainraffle.Prize
	typ          domainraffle.RaffleType
	picks        []domainraffle.PendingEntry
	participants int
	drawnAt      string
	// closeRest marks every other pending entry of the prize lost.
	closeRest bool
	// confirmLog flips an existing unconfirmed log instead of appending a new one.
	confirmLog bool
	// position overrides the computed winner position when non-zero.
	position        int
	replacedGuestID uint64
	staleErr        error
}

func (s *Service) commitWinnersTx(ctx context.Context, in commitInput) (DrawResult, error) {
	base := 0
	if in.position == 0 {
		existing, err := s.repo.CountWinners(ctx, in.prize.ID)
		if err != nil {
			return DrawResult{}, errs.Wrap(err, "count existing winners")
		}
		base = existing
	}

	result := DrawResult{
		EventID:         in.prize.EventID,
		PrizeID:         in.prize.ID,
		PrizeName:       in.prize.Name,
		Type:            in.typ,
		Participants:    in.participants,
		StockAfter:      in.prize.Stock,
		ReplacedGuestID: in.replacedGuestID,
		Winners:         make([]Winner, 0, len(in.picks)),
	}

	for i, pick := range in.picks {
		position := in.position
		if position == 0 {
			position = base + i + 1
		}

		ok, err := s.repo.MarkEntryWon(ctx, ports.WinUpdate{
			EntryID:         pick.Entry.ID,
			Position:        position,
			Participants:    in.participants,
			DrawnAt:         in.drawnAt,
			ReplacedGuestID: in.replacedGuestID,
		})
		if err != nil {
			return DrawResult{}, err
		}
		if !ok {
			return DrawResult{}, fmt.Errorf("%w: entry %d", in.staleErr, pick.Entry.ID)
		}

		if err := s.writeWinLogTx(ctx, in, pick.Entry.GuestID); err != nil {
			return DrawResult{}, err
		}

		result.Winners = append(result.Winners, Winner{
			EntryID:       pick.Entry.ID,
			GuestID:       pick.Guest.ID,
			FullName:      pick.Guest.FullName,
			Email:         pick.Guest.Email,
			Employer:      pick.Guest.Employer,
			Position:      position,
			Protected:     s.rules.IsProtected(pick.Guest),
			CorrelationID: pick.Entry.CorrelationID,
			DrawnAt:       in.drawnAt,
		})
	}

	if !in.prize.Sentinel {
		next := in.prize.Stock - len(in.picks)
		if next < 0 {
			return DrawResult{}, domainraffle.ErrInsufficientStock
		}
		ok, err := s.repo.UpdateStock(ctx, in.prize.ID, in.prize.Stock, next)
		if err != nil {
			return DrawResult{}, err
		}
		if !ok {
			return DrawResult{}, fmt.Errorf("%w: stock of prize %d changed", domainraffle.ErrConcurrentModification, in.prize.ID)
		}
		result.StockAfter = next
	}

	if in.closeRest {
		lost, err := s.repo.MarkPendingLost(ctx, in.prize.ID, in.drawnAt, in.participants)
		if err != nil {
			return DrawResult{}, err
		}
		result.Lost = lost
	}

	return result, nil
}

func (s *Service) writeWinLogTx(ctx context.Context, in commitInput, guestID uint64) error {
	if in.confirmLog {
		confirmed, err := s.repo.ConfirmLatestLog(ctx, in.prize.ID, guestID)
		if err != nil {
			return err
		}
		if confirmed {
			return nil
		}
	}

	_, err := s.repo.AppendLog(ctx, domainraffle.RaffleLog{
		EventID:   in.prize.EventID,
		PrizeID:   in.prize.ID,
		GuestID:   guestID,
		Type:      in.typ,
		Confirmed: true,
		CreatedAt: in.drawnAt,
	})
	return err
}

func (s *Service) notifyWinners(ctx context.Context, result DrawResult) {
	if s.notifier == nil {
		return
	}

	logCtx := logging.WithComponent(ctx, "usecase.raffle")
	for _, w := range result.Winners {
		notice := ports.WinnerNotice{
			EventID:       result.EventID,
			PrizeID:       result.PrizeID,
			PrizeName:     result.PrizeName,
			GuestID:       w.GuestID,
			GuestName:     w.FullName,
			Email:         w.Email,
			RaffleType:    string(result.Type),
			Position:      w.Position,
			CorrelationID: w.CorrelationID,
			DrawnAt:       w.DrawnAt,
		}
		if err := s.notifier.NotifyWinner(ctx, notice); err != nil {
			logging.Warn(
				logCtx,
				"winner notification failed",
				slog.Uint64("prize_id", result.PrizeID),
				slog.Uint64("guest_id", w.GuestID),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
}

func (s *Service) logDraw(ctx context.Context, msg string, result DrawResult) {
	logging.Info(
		logging.WithComponent(ctx, "usecase.raffle"),
		msg,
		slog.Uint64("event_id", result.EventID),
		slog.Uint64("prize_id", result.PrizeID),
		slog.String("raffle_type", string(result.Type)),
		slog.Int("winners", len(result.Winners)),
		slog.Int("participants", result.Participants),
		slog.Int64("lost", result.Lost),
	)
}

// raffleTypeFor checks a requested type against the prize. The general raffle only
// runs on the event's sentinel prize and the public raffle never does.
func raffleTypeFor(prize domainraffle.Prize, requested domainraffle.RaffleType) (domainraffle.RaffleType, error) {
	want := domainraffle.TypePublic
	if prize.Sentinel {
		want = domainraffle.TypeGeneral
	}
	if requested == "" || requested == want {
		return want, nil
	}
	return "", fmt.Errorf("%w: %s raffle on prize %d", domainraffle.ErrInvalidRaffleType, requested, prize.ID)
}
