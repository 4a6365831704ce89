package raffle

import (
	"context"
	"math"

	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
	"eventraffle/internal/ports"
)

type RaffleStatistics struct {
	EventID      uint64
	TotalPrizes  int
	ActivePrizes int
	DrawnPrizes  int
	TotalStock   int
	Pending      int
	Won          int
	Lost         int
	// CompletionRate is the percentage of entries no longer pending.
	CompletionRate    float64
	EligibleAttendees int
	Categories        []CategoryStock
}

type CategoryStock struct {
	Category   string
	Prizes     int
	TotalStock int
}

type PrizeResults struct {
	Prize          domainraffle.Prize
	TotalEntries   int
	Pending        int
	Won            int
	Lost           int
	StockRemaining int
	Complete       bool
	Winners        []WinnerRow
}

// Statistics summarizes an event. The general raffle pool is not counted as a prize.
func (s *Service) Statistics(ctx context.Context, eventID uint64) (RaffleStatistics, error) {
	if err := s.ready(ctx); err != nil {
		return RaffleStatistics{}, err
	}
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return RaffleStatistics{}, errs.Wrapf(err, "load event %d", eventID)
	}

	prizes, err := s.repo.ListPrizes(ctx, ports.PrizeFilter{EventID: eventID})
	if err != nil {
		return RaffleStatistics{}, errs.Wrap(err, "list prizes")
	}
	counts, err := s.repo.CountEntries(ctx, ports.EntryFilter{EventID: eventID})
	if err != nil {
		return RaffleStatistics{}, errs.Wrap(err, "count entries")
	}
	guests, err := s.repo.ListGuests(ctx, eventID)
	if err != nil {
		return RaffleStatistics{}, errs.Wrap(err, "list guests")
	}

	stats := RaffleStatistics{
		EventID: eventID,
		Pending: counts.Pending,
		Won:     counts.Won,
		Lost:    counts.Lost,
	}

	byCategory := make(map[string]int)
	for _, prize := range prizes {
		stats.TotalPrizes++
		stats.TotalStock += prize.Stock
		if prize.Active {
			stats.ActivePrizes++
		}
		winners, err := s.repo.CountWinners(ctx, prize.ID)
		if err != nil {
			return RaffleStatistics{}, errs.Wrapf(err, "count winners of prize %d", prize.ID)
		}
		if winners > 0 {
			stats.DrawnPrizes++
		}

		idx, ok := byCategory[prize.Category]
		if !ok {
			idx = len(stats.Categories)
			byCategory[prize.Category] = idx
			stats.Categories = append(stats.Categories, CategoryStock{Category: prize.Category})
		}
		stats.Categories[idx].Prizes++
		stats.Categories[idx].TotalStock += prize.Stock
	}

	for _, g := range guests {
		if g.Attended {
			stats.EligibleAttendees++
		}
	}

	stats.CompletionRate = completionRate(counts)
	return stats, nil
}

func (s *Service) PrizeResults(ctx context.Context, prizeID uint64) (PrizeResults, error) {
	if err := s.ready(ctx); err != nil {
		return PrizeResults{}, err
	}

	prize, err := s.repo.GetPrize(ctx, prizeID)
	if err != nil {
		return PrizeResults{}, errs.Wrapf(err, "load prize %d", prizeID)
	}
	counts, err := s.repo.CountEntries(ctx, ports.EntryFilter{PrizeID: prizeID})
	if err != nil {
		return PrizeResults{}, errs.Wrap(err, "count entries")
	}

	all, err := s.ListWinners(ctx, prize.EventID)
	if err != nil {
		return PrizeResults{}, err
	}
	winners := make([]WinnerRow, 0, counts.Won)
	for _, row := range all {
		if row.PrizeID == prizeID {
			winners = append(winners, row)
		}
	}

	return PrizeResults{
		Prize:          prize,
		TotalEntries:   counts.Pending + counts.Won + counts.Lost,
		Pending:        counts.Pending,
		Won:            counts.Won,
		Lost:           counts.Lost,
		StockRemaining: prize.Stock,
		Complete:       counts.Pending == 0,
		Winners:        winners,
	}, nil
}

func completionRate(c ports.EntryCounts) float64 {
	total := c.Pending + c.Won + c.Lost
	if total == 0 {
		return 0
	}
	rate := float64(total-c.Pending) / float64(total) * 100
	return math.Round(rate*100) / 100
}
