package raffle

// IsGeneralPrize reports whether p is the general raffle pool, by flag or by legacy name.
func (r Rules) IsGeneralPrize(p Prize) bool {
	return p.Sentinel || sameTag(p.Name, r.GeneralPrizeName)
}

// ResolveRaffleType reconstructs which raffle produced a win: the logged type wins,
// then the general prize, then public.
func ResolveRaffleType(logged RaffleType, p Prize, r Rules) RaffleType {
	switch logged {
	case TypePublic, TypeGeneral:
		return logged
	}
	if r.IsGeneralPrize(p) {
		return TypeGeneral
	}
	return TypePublic
}

// CanCarryQuota reports whether p may be designated as the guaranteed subgroup prize.
func (r Rules) CanCarryQuota(p Prize) bool {
	return p.Active && !p.Sentinel && !r.IsVehicle(p) && p.Stock > 0
}
