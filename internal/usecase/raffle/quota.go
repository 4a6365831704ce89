package raffle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"eventraffle/internal/bootstrap/logging"
	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
	"eventraffle/internal/ports"
)

type AssignQuotaInput struct {
	EventID uint64
	// PrizeID 0 picks a random prize that can carry the quota.
	PrizeID uint64
}

type QuotaResult struct {
	Assignment domainraffle.QuotaAssignment
	Created    bool
}

// AssignQuota designates the event's guaranteed subgroup prize. The assignment is
// written once; repeating it for the same prize is a no-op.
func (s *Service) AssignQuota(ctx context.Context, input AssignQuotaInput) (QuotaResult, error) {
	if err := s.ready(ctx); err != nil {
		return QuotaResult{}, err
	}

	unlock := s.locks.lock("quota:" + strconv.FormatUint(input.EventID, 10))
	defer unlock()

	var result QuotaResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetEvent(txCtx, input.EventID); err != nil {
			return err
		}

		existing, err := s.repo.GetQuotaAssignment(txCtx, input.EventID)
		if err != nil {
			return errs.Wrap(err, "load quota assignment")
		}
		if existing != nil {
			if input.PrizeID != 0 && input.PrizeID != existing.PrizeID {
				return fmt.Errorf("%w: event %d already designates prize %d", domainraffle.ErrQuotaAlreadyAssigned, input.EventID, existing.PrizeID)
			}
			result = QuotaResult{Assignment: *existing}
			return nil
		}

		wins, err := s.loadWinsTx(txCtx, input.EventID)
		if err != nil {
			return err
		}
		if public, _ := wins.QuotaCounts(); public > 0 {
			return fmt.Errorf("%w: event %d", domainraffle.ErrQuotaFilled, input.EventID)
		}

		prize, err := s.pickQuotaPrizeTx(txCtx, input)
		if err != nil {
			return err
		}

		assignment := domainraffle.QuotaAssignment{
			EventID:    input.EventID,
			PrizeID:    prize.ID,
			AssignedAt: nowUTCString(),
		}
		created, err := s.repo.CreateQuotaAssignment(txCtx, assignment)
		if err != nil {
			return err
		}
		if !created {
			return fmt.Errorf("%w: event %d", domainraffle.ErrQuotaAlreadyAssigned, input.EventID)
		}
		result = QuotaResult{Assignment: assignment, Created: true}
		return nil
	}); err != nil {
		return QuotaResult{}, errs.Wrapf(err, "assign quota for event %d", input.EventID)
	}

	if result.Created {
		logging.Info(
			logging.WithComponent(ctx, "usecase.raffle.quota"),
			"quota prize assigned",
			slog.Uint64("event_id", result.Assignment.EventID),
			slog.Uint64("prize_id", result.Assignment.PrizeID),
		)
	}
	return result, nil
}

func (s *Service) pickQuotaPrizeTx(ctx context.Context, input AssignQuotaInput) (domainraffle.Prize, error) {
	if input.PrizeID != 0 {
		prize, err := s.repo.GetPrize(ctx, input.PrizeID)
		if err != nil {
			return domainraffle.Prize{}, err
		}
		if prize.EventID != input.EventID {
			return domainraffle.Prize{}, fmt.Errorf("%w: prize %d is not part of event %d", domainraffle.ErrPrizeMismatch, prize.ID, input.EventID)
		}
		if ok, err := s.canCarryQuotaTx(ctx, prize); err != nil || !ok {
			if err != nil {
				return domainraffle.Prize{}, err
			}
			return domainraffle.Prize{}, fmt.Errorf("%w: prize %d", domainraffle.ErrQuotaPrizeIneligible, prize.ID)
		}
		return prize, nil
	}

	prizes, err := s.repo.ListPrizes(ctx, ports.PrizeFilter{EventID: input.EventID, ActiveOnly: true})
	if err != nil {
		return domainraffle.Prize{}, errs.Wrap(err, "list prizes")
	}

	candidates := make([]domainraffle.Prize, 0, len(prizes))
	for _, prize := range prizes {
		ok, err := s.canCarryQuotaTx(ctx, prize)
		if err != nil {
			return domainraffle.Prize{}, err
		}
		if ok {
			candidates = append(candidates, prize)
		}
	}

	picked := domainraffle.PickN(s.picker, candidates, 1)
	if len(picked) == 0 {
		return domainraffle.Prize{}, fmt.Errorf("%w: no undrawn prize in event %d", domainraffle.ErrQuotaPrizeIneligible, input.EventID)
	}
	return picked[0], nil
}

func (s *Service) canCarryQuotaTx(ctx context.Context, prize domainraffle.Prize) (bool, error) {
	if !s.rules.CanCarryQuota(prize) {
		return false, nil
	}
	winners, err := s.repo.CountWinners(ctx, prize.ID)
	if err != nil {
		return false, errs.Wrapf(err, "count winners of prize %d", prize.ID)
	}
	return winners == 0, nil
}
