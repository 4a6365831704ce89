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

type FixStockInput struct {
	EventID uint64
	PrizeID uint64
	DryRun  bool
}

type StockCheck struct {
	PrizeID uint64
	Name    string
	Stock   int
	Winners int
	Action  domainraffle.StockAction
	Applied bool
}

type StockReport struct {
	DryRun   bool
	Checked  int
	Restored int
	Warnings int
	// Items lists only prizes that needed attention.
	Items []StockCheck
}

// RestoreStock resets a physical prize with no stock and no winner back to one unit.
func (s *Service) RestoreStock(ctx context.Context, prizeID uint64) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}

	prize, err := s.repo.GetPrize(ctx, prizeID)
	if err != nil {
		return false, errs.Wrapf(err, "load prize %d", prizeID)
	}

	unlock := s.locks.lock(prizeLockKey(prize))
	defer unlock()

	restored := false
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		prize, err := s.repo.GetPrize(txCtx, prizeID)
		if err != nil {
			return err
		}
		_, restored, err = s.restoreStockTx(txCtx, prize)
		return err
	}); err != nil {
		return false, errs.Wrapf(err, "restore stock of prize %d", prizeID)
	}
	return restored, nil
}

// FixStock sweeps physical prizes. Restores are applied unless DryRun; overstock
// warnings are only reported.
func (s *Service) FixStock(ctx context.Context, input FixStockInput) (StockReport, error) {
	if err := s.ready(ctx); err != nil {
		return StockReport{}, err
	}

	logCtx := logging.WithComponent(ctx, "usecase.raffle.stock")
	report := StockReport{DryRun: input.DryRun}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		report = StockReport{DryRun: input.DryRun}

		prizes, err := s.repo.ListPrizes(txCtx, ports.PrizeFilter{
			EventID: input.EventID,
			PrizeID: input.PrizeID,
		})
		if err != nil {
			return errs.Wrap(err, "list prizes")
		}

		for _, prize := range prizes {
			report.Checked++

			winners, err := s.repo.CountWinners(txCtx, prize.ID)
			if err != nil {
				return errs.Wrapf(err, "count winners of prize %d", prize.ID)
			}

			check := StockCheck{
				PrizeID: prize.ID,
				Name:    prize.Name,
				Stock:   prize.Stock,
				Winners: winners,
				Action:  domainraffle.ClassifyStock(prize.Stock, winners),
			}

			switch check.Action {
			case domainraffle.StockHealthy:
				continue
			case domainraffle.StockRestore:
				report.Restored++
				if !input.DryRun {
					ok, err := s.repo.UpdateStock(txCtx, prize.ID, prize.Stock, 1)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("%w: stock of prize %d changed", domainraffle.ErrConcurrentModification, prize.ID)
					}
					check.Applied = true
				}
			case domainraffle.StockWarning:
				report.Warnings++
				logging.Warn(
					logCtx,
					"prize has stock despite a recorded winner",
					slog.Uint64("prize_id", prize.ID),
					slog.String("prize", prize.Name),
					slog.Int("stock", prize.Stock),
					slog.Int("winners", winners),
				)
			}
			report.Items = append(report.Items, check)
		}
		return nil
	}); err != nil {
		return StockReport{}, errs.Wrap(err, "fix prize stock")
	}

	logging.Info(
		logCtx,
		"stock sweep finished",
		slog.Bool("dry_run", report.DryRun),
		slog.Int("checked", report.Checked),
		slog.Int("restored", report.Restored),
		slog.Int("warnings", report.Warnings),
	)
	return report, nil
}

// restoreStockTx repairs the legacy "stock 0, nobody won" state before a draw.
func (s *Service) restoreStockTx(ctx context.Context, prize domainraffle.Prize) (domainraffle.Prize, bool, error) {
	if prize.Sentinel || prize.Stock > 0 {
		return prize, false, nil
	}

	winners, err := s.repo.CountWinners(ctx, prize.ID)
	if err != nil {
		return prize, false, errs.Wrap(err, "count prize winners")
	}
	if domainraffle.ClassifyStock(prize.Stock, winners) != domainraffle.StockRestore {
		return prize, false, nil
	}

	ok, err := s.repo.UpdateStock(ctx, prize.ID, prize.Stock, 1)
	if err != nil {
		return prize, false, err
	}
	if !ok {
		return prize, false, fmt.Errorf("%w: stock of prize %d changed", domainraffle.ErrConcurrentModification, prize.ID)
	}

	logging.Info(
		logging.WithComponent(ctx, "usecase.raffle.stock"),
		"prize stock restored",
		slog.Uint64("prize_id", prize.ID),
		slog.Int("previous_stock", prize.Stock),
	)

	prize.Stock = 1
	prize.UnitState = domainraffle.UnitAvailable
	return prize, true, nil
}
