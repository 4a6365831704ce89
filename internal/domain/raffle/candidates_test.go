package raffle

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func pending(entryID uint64, g Guest) PendingEntry {
	return PendingEntry{
		Entry: Entry{ID: entryID, EventID: 1, GuestID: g.ID, Status: StatusPending},
		Guest: g,
	}
}

func testPicker() Picker {
	return rand.New(rand.NewPCG(1, 2))
}

func TestResolveCandidatesClampsToStock(t *testing.T) {
	prize := Prize{ID: 10, EventID: 1, Name: "Television", Stock: 1}
	var entries []PendingEntry
	for i := uint64(1); i <= 5; i++ {
		entries = append(entries, pending(i, guest(i, "GMXT", "General")))
	}

	set, err := ResolveCandidates(CandidateInput{
		Type:      TypePublic,
		Prize:     prize,
		Requested: 3,
		Pending:   entries,
		Quota:     QuotaState{AssignedPrizeID: 99},
		Rules:     DefaultRules(),
	})
	if err != nil {
		t.Fatalf("ResolveCandidates() error = %v", err)
	}
	if set.Limit != 1 || set.Participants != 5 {
		t.Fatalf("set = limit %d participants %d", set.Limit, set.Participants)
	}
	if got := set.Draw(testPicker()); len(got) != 1 {
		t.Fatalf("Draw() len = %d", len(got))
	}
}

func TestResolveCandidatesErrors(t *testing.T) {
	rules := DefaultRules()
	regular := []PendingEntry{pending(1, guest(1, "GMXT", "General")), pending(2, guest(2, "GMXT", "General"))}

	cases := []struct {
		name string
		in   CandidateInput
		want error
	}{
		{
			name: "no pending entries",
			in:   CandidateInput{Type: TypePublic, Prize: Prize{ID: 1, Stock: 1}, Rules: rules},
			want: ErrNoEligibleGuests,
		},
		{
			name: "no stock",
			in:   CandidateInput{Type: TypePublic, Prize: Prize{ID: 1, Stock: 0}, Pending: regular, Rules: rules},
			want: ErrInsufficientStock,
		},
		{
			name: "designated prize without protected candidates",
			in: CandidateInput{
				Type: TypePublic, Prize: Prize{ID: 1, EventID: 1, Stock: 1}, Pending: regular,
				Quota: QuotaState{AssignedPrizeID: 1}, Rules: rules,
			},
			want: ErrQuotaUnsatisfiable,
		},
		{
			name: "nobody may win",
			in: CandidateInput{
				Type: TypePublic, Prize: Prize{ID: 1, EventID: 1, Stock: 1},
				Pending: []PendingEntry{pending(1, guest(1, "INV", "General"))}, Rules: rules,
			},
			want: ErrNoEligibleGuests,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ResolveCandidates(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("ResolveCandidates() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestResolveCandidatesDesignatedPrizeForcesProtectedWinner(t *testing.T) {
	entries := []PendingEntry{
		pending(1, guest(1, "GMXT", "General")),
		pending(2, guest(2, "IMEX", "General")),
		pending(3, guest(3, "GMXT", "General")),
		pending(4, guest(4, "IMEX", "General")),
	}
	prize := Prize{ID: 5, EventID: 1, Name: "Laptop", Stock: 3}

	set, err := ResolveCandidates(CandidateInput{
		Type: TypePublic, Prize: prize, Requested: 3, Pending: entries,
		Quota: QuotaState{AssignedPrizeID: 5}, Rules: DefaultRules(),
	})
	if err != nil {
		t.Fatalf("ResolveCandidates() error = %v", err)
	}

	winners := set.Draw(testPicker())
	if len(winners) != 3 {
		t.Fatalf("Draw() len = %d, want 3", len(winners))
	}
	protected := 0
	for _, w := range winners {
		if w.Guest.Employer == "IMEX" {
			protected++
		}
	}
	if protected != 1 {
		t.Fatalf("protected winners = %d, want exactly 1", protected)
	}
	if winners[0].Guest.Employer != "IMEX" {
		t.Fatalf("first winner employer = %q, want IMEX", winners[0].Guest.Employer)
	}
}

func TestResolveCandidatesExcludesProtectedFromOtherPrizes(t *testing.T) {
	entries := []PendingEntry{pending(1, guest(1, "IMEX", "General")), pending(2, guest(2, "GMXT", "General"))}

	set, err := ResolveCandidates(CandidateInput{
		Type: TypePublic, Prize: Prize{ID: 6, EventID: 1, Stock: 1}, Requested: 1, Pending: entries,
		Quota: QuotaState{AssignedPrizeID: 5}, Rules: DefaultRules(),
	})
	if err != nil {
		t.Fatalf("ResolveCandidates() error = %v", err)
	}
	if set.Admits(1) || !set.Admits(2) {
		t.Fatalf("Admits() protected=%v regular=%v", set.Admits(1), set.Admits(2))
	}
}

func TestResolveCandidatesDesignatedPrizeAfterSubgroupWon(t *testing.T) {
	entries := []PendingEntry{pending(1, guest(1, "IMEX", "General")), pending(2, guest(2, "GMXT", "General"))}

	set, err := ResolveCandidates(CandidateInput{
		Type: TypePublic, Prize: Prize{ID: 5, EventID: 1, Stock: 2}, Requested: 2, Pending: entries,
		Quota: QuotaState{AssignedPrizeID: 5, PublicSubgroupWinners: 1}, Rules: DefaultRules(),
	})
	if err != nil {
		t.Fatalf("ResolveCandidates() error = %v", err)
	}
	if set.PriorityQuota != 0 || set.Limit != 1 {
		t.Fatalf("set = priority %d limit %d, want 0 and 1", set.PriorityQuota, set.Limit)
	}
	if set.Admits(1) || !set.Admits(2) {
		t.Fatalf("Admits() protected=%v regular=%v", set.Admits(1), set.Admits(2))
	}
}

func TestResolveCandidatesGeneralCapsProtectedWinners(t *testing.T) {
	var entries []PendingEntry
	for i := uint64(1); i <= 4; i++ {
		entries = append(entries, pending(i, guest(i, "IMEX", "IMEX")))
	}
	for i := uint64(5); i <= 10; i++ {
		entries = append(entries, pending(i, guest(i, "GMXT", "General")))
	}
	sentinel := Prize{ID: 1, EventID: 1, Stock: 999999, Sentinel: true}

	cases := []struct {
		name          string
		already       int
		wantPriority  int
		wantProtected int
	}{
		{name: "cap open", already: 0, wantPriority: 2, wantProtected: 2},
		{name: "one slot left", already: 1, wantPriority: 1, wantProtected: 1},
		{name: "cap reached", already: 2, wantPriority: 0, wantProtected: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := ResolveCandidates(CandidateInput{
				Type: TypeGeneral, Prize: sentinel, Requested: 5, Pending: entries,
				Quota: QuotaState{GeneralSubgroupWinners: tc.already}, Rules: DefaultRules(),
			})
			if err != nil {
				t.Fatalf("ResolveCandidates() error = %v", err)
			}
			if set.PriorityQuota != tc.wantPriority {
				t.Fatalf("PriorityQuota = %d, want %d", set.PriorityQuota, tc.wantPriority)
			}

			winners := set.Draw(testPicker())
			if len(winners) != 5 {
				t.Fatalf("Draw() len = %d, want 5", len(winners))
			}
			protected := 0
			for _, w := range winners {
				if w.Guest.Employer == "IMEX" {
					protected++
				}
			}
			if protected != tc.wantProtected {
				t.Fatalf("protected winners = %d, want %d", protected, tc.wantProtected)
			}
		})
	}
}

func TestResolveCandidatesWithoutAssignmentSeatsOneProtected(t *testing.T) {
	entries := []PendingEntry{
		pending(1, guest(1, "IMEX", "General")),
		pending(2, guest(2, "IMEX", "General")),
		pending(3, guest(3, "GMXT", "General")),
	}

	set, err := ResolveCandidates(CandidateInput{
		Type: TypePublic, Prize: Prize{ID: 6, EventID: 1, Stock: 3}, Requested: 3, Pending: entries,
		Rules: DefaultRules(),
	})
	if err != nil {
		t.Fatalf("ResolveCandidates() error = %v", err)
	}
	if set.PriorityQuota != 1 || set.Limit != 2 {
		t.Fatalf("set = priority %d limit %d, want 1 and 2", set.PriorityQuota, set.Limit)
	}
}

func TestPickNReturnsDistinctItems(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	got := PickN(testPicker(), items, 4)
	if len(got) != 4 {
		t.Fatalf("PickN() len = %d", len(got))
	}
	seen := map[int]bool{}
	for _, v := range got {
		if seen[v] {
			t.Fatalf("PickN() duplicate %d in %v", v, got)
		}
		seen[v] = true
	}
	if items[0] != 1 || items[5] != 6 {
		t.Fatalf("PickN() mutated input: %v", items)
	}
	if PickN(CryptoPicker(), items, 10) == nil {
		t.Fatalf("PickN() with crypto picker returned nil")
	}
}
