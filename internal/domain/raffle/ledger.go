package raffle

// Win is one recorded winning entry, flattened with the facts eligibility needs.
type Win struct {
	GuestID   uint64
	PrizeID   uint64
	Vehicle   bool
	Sentinel  bool
	Protected bool
}

// WinLedger indexes an event's winners by guest.
type WinLedger struct {
	byGuest map[uint64][]Win
	all     []Win
}

func NewWinLedger(wins []Win) WinLedger {
	ledger := WinLedger{
		byGuest: make(map[uint64][]Win, len(wins)),
		all:     make([]Win, 0, len(wins)),
	}
	for _, w := range wins {
		ledger.byGuest[w.GuestID] = append(ledger.byGuest[w.GuestID], w)
		ledger.all = append(ledger.all, w)
	}
	return ledger
}

// WonNonVehicleOtherThan reports a public non-vehicle win on any prize other than prizeID.
func (l WinLedger) WonNonVehicleOtherThan(guestID, prizeID uint64) bool {
	for _, w := range l.byGuest[guestID] {
		if !w.Sentinel && !w.Vehicle && w.PrizeID != prizeID {
			return true
		}
	}
	return false
}

func (l WinLedger) WonPublic(guestID uint64) bool {
	for _, w := range l.byGuest[guestID] {
		if !w.Sentinel {
			return true
		}
	}
	return false
}

func (l WinLedger) WonGeneral(guestID uint64) bool {
	for _, w := range l.byGuest[guestID] {
		if w.Sentinel {
			return true
		}
	}
	return false
}

// QuotaCounts counts protected-subgroup winners in the public and general raffles.
func (l WinLedger) QuotaCounts() (public, general int) {
	for _, w := range l.all {
		if !w.Protected {
			continue
		}
		if w.Sentinel {
			general++
		} else {
			public++
		}
	}
	return public, general
}
