package raffle

// PublicEligible decides whether g may enter the public raffle for p.
func PublicEligible(g Guest, p Prize, wins WinLedger, r Rules) bool {
	if !g.Attended {
		return false
	}
	if r.employerDisallowed(g) {
		return false
	}
	if containsTag(r.PublicDisallowedRoles, g.Role) {
		return false
	}
	if !r.categoryAllows(g, p) {
		return false
	}

	if r.IsVehicle(p) {
		if r.IsProtected(g) || containsTag(r.VehicleExcludedRoles, g.Role) {
			return false
		}
		// The vehicle prize does not apply the single-public-win exclusion.
		return true
	}

	// A vehicle win does not use up the guest's single public win.
	return !wins.WonNonVehicleOtherThan(g.ID, p.ID)
}

// BlockedBySecondaryRule is the creation-time filter for public entries: a guest who
// already won a different non-vehicle prize can never legally win p. It is what keeps
// earlier winners out of the vehicle prize, which eligibility itself admits.
func BlockedBySecondaryRule(g Guest, p Prize, wins WinLedger) bool {
	return wins.WonNonVehicleOtherThan(g.ID, p.ID)
}

// GeneralEligible decides whether g may enter the event's general raffle.
func GeneralEligible(g Guest, wins WinLedger, r Rules) bool {
	if !g.Attended {
		return false
	}
	if !containsTag(r.GeneralAllowedRoles, g.Role) {
		return false
	}
	if r.employerDisallowed(g) {
		return false
	}
	return !wins.WonPublic(g.ID)
}

// EligibleGuests filters guests for the given raffle type. prize is ignored for general.
func EligibleGuests(t RaffleType, guests []Guest, prize Prize, wins WinLedger, r Rules) []Guest {
	out := make([]Guest, 0, len(guests))
	for _, g := range guests {
		if g.EventID != prize.EventID {
			continue
		}

		var ok bool
		switch t {
		case TypeGeneral:
			ok = GeneralEligible(g, wins, r)
		default:
			ok = PublicEligible(g, prize, wins, r)
		}
		if ok {
			out = append(out, g)
		}
	}
	return out
}

// CanWin is the draw-time narrowing: stricter than entry eligibility because it
// also applies the secondary rule and the general single-win rule.
func CanWin(t RaffleType, g Guest, p Prize, wins WinLedger, r Rules) bool {
	switch t {
	case TypeGeneral:
		return GeneralEligible(g, wins, r) && !wins.WonGeneral(g.ID)
	default:
		return PublicEligible(g, p, wins, r) && !BlockedBySecondaryRule(g, p, wins)
	}
}
