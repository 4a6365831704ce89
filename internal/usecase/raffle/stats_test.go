package raffle

import (
	"context"
	"testing"

	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/ports"
)

func TestStatisticsAndPrizeResults(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	event := env.event(t, "Gala")
	tv := env.prize(t, event.ID, "Television", 1)
	env.prize(t, event.ID, "Laptop", 2)
	env.guest(t, event.ID, "ana", "GMXT", "General", true)
	env.guest(t, event.ID, "luis", "GMXT", "General", true)
	env.guest(t, event.ID, "absent", "GMXT", "General", false)
	env.enter(t, tv.ID)

	result, err := env.svc.Draw(ctx, DrawInput{PrizeID: tv.ID})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	stats, err := env.svc.Statistics(ctx, event.ID)
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.TotalPrizes != 2 || stats.ActivePrizes != 2 || stats.DrawnPrizes != 1 {
		t.Fatalf("Statistics() prizes = %+v", stats)
	}
	if stats.Won != 1 || stats.Lost != 1 || stats.Pending != 0 || stats.CompletionRate != 100 {
		t.Fatalf("Statistics() entries = %+v", stats)
	}
	if stats.EligibleAttendees != 2 || stats.TotalStock != 2 {
		t.Fatalf("Statistics() = %+v, want 2 attendees and stock 2", stats)
	}

	results, err := env.svc.PrizeResults(ctx, tv.ID)
	if err != nil {
		t.Fatalf("PrizeResults() error = %v", err)
	}
	if !results.Complete || results.TotalEntries != 2 || results.StockRemaining != 0 {
		t.Fatalf("PrizeResults() = %+v", results)
	}
	if len(results.Winners) != 1 || results.Winners[0].GuestID != result.Winners[0].GuestID {
		t.Fatalf("PrizeResults() winners = %+v", results.Winners)
	}
	if results.Winners[0].Type != domainraffle.TypePublic {
		t.Fatalf("winner type = %q, want public", results.Winners[0].Type)
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name    string
		pending int
		won     int
		lost    int
		want    float64
	}{
		{name: "empty", want: 0},
		{name: "all pending", pending: 4, want: 0},
		{name: "one third", pending: 2, won: 1, want: 33.33},
		{name: "done", won: 1, lost: 3, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := completionRate(ports.EntryCounts{Pending: tt.pending, Won: tt.won, Lost: tt.lost})
			if got != tt.want {
				t.Fatalf("completionRate() = %v, want %v", got, tt.want)
			}
		})
	}
}
