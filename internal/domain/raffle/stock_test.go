package raffle

import "testing"

func TestClassifyStock(t *testing.T) {
	cases := []struct {
		stock, winners int
		want           StockAction
	}{
		{stock: 1, winners: 0, want: StockHealthy},
		{stock: 0, winners: 1, want: StockHealthy},
		{stock: 0, winners: 0, want: StockRestore},
		{stock: 1, winners: 1, want: StockWarning},
	}
	for _, tc := range cases {
		if got := ClassifyStock(tc.stock, tc.winners); got != tc.want {
			t.Fatalf("ClassifyStock(%d, %d) = %q, want %q", tc.stock, tc.winners, got, tc.want)
		}
	}
	if UnitStateFor(0) != UnitWon || UnitStateFor(1) != UnitAvailable {
		t.Fatalf("UnitStateFor() mismatch")
	}
}

func TestParseRaffleTypeAndOrigin(t *testing.T) {
	if got, err := ParseRaffleType(" General "); err != nil || got != TypeGeneral {
		t.Fatalf("ParseRaffleType() = %q, %v", got, err)
	}
	if _, err := ParseRaffleType("secret"); err == nil {
		t.Fatalf("ParseRaffleType() expected error")
	}
	if got, err := ParseOrigin(""); err != nil || got != OriginSystem {
		t.Fatalf("ParseOrigin() = %q, %v", got, err)
	}
	if _, err := ParseOrigin("carrier"); err == nil {
		t.Fatalf("ParseOrigin() expected error")
	}
}

func TestResolveRaffleType(t *testing.T) {
	rules := DefaultRules()
	tv := Prize{ID: 1, Name: "Television"}
	legacyGeneral := Prize{ID: 2, Name: "general raffle"}

	cases := []struct {
		name   string
		logged RaffleType
		prize  Prize
		want   RaffleType
	}{
		{name: "logged general", logged: TypeGeneral, prize: tv, want: TypeGeneral},
		{name: "no log on regular prize", prize: tv, want: TypePublic},
		{name: "no log on general prize name", prize: legacyGeneral, want: TypeGeneral},
		{name: "no log on sentinel", prize: Prize{ID: 3, Name: "Pool", Sentinel: true}, want: TypeGeneral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveRaffleType(tc.logged, tc.prize, rules); got != tc.want {
				t.Fatalf("ResolveRaffleType() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCanCarryQuota(t *testing.T) {
	rules := DefaultRules()
	if !rules.CanCarryQuota(Prize{Name: "Laptop", Stock: 1, Active: true}) {
		t.Fatalf("CanCarryQuota(laptop) = false")
	}
	for _, p := range []Prize{
		{Name: "Vehicle", Stock: 1, Active: true},
		{Name: "Pool", Stock: 10, Active: true, Sentinel: true},
		{Name: "Laptop", Stock: 0, Active: true},
		{Name: "Laptop", Stock: 1},
	} {
		if rules.CanCarryQuota(p) {
			t.Fatalf("CanCarryQuota(%#v) = true", p)
		}
	}
}
