package raffle

// QuotaState is the event-level quota context for one draw.
type QuotaState struct {
	// AssignedPrizeID is the designated guaranteed-win prize, 0 when unassigned.
	AssignedPrizeID        uint64
	PublicSubgroupWinners  int
	GeneralSubgroupWinners int
}

// PublicQuotaFilled reports whether the subgroup already holds its one public win.
func (q QuotaState) PublicQuotaFilled() bool {
	return q.PublicSubgroupWinners > 0
}

func QuotaStateFrom(assignment *QuotaAssignment, wins WinLedger) QuotaState {
	public, general := wins.QuotaCounts()
	state := QuotaState{
		PublicSubgroupWinners:  public,
		GeneralSubgroupWinners: general,
	}
	if assignment != nil {
		state.AssignedPrizeID = assignment.PrizeID
	}
	return state
}

type CandidateInput struct {
	Type      RaffleType
	Prize     Prize
	Requested int
	Pending   []PendingEntry
	Quota     QuotaState
	Wins      WinLedger
	Rules     Rules
}

// CandidateSet is the resolved pool for a draw. PriorityQuota winners come from
// Priority first, the remainder up to Limit from Rest.
type CandidateSet struct {
	Limit         int
	PriorityQuota int
	Priority      []PendingEntry
	Rest          []PendingEntry
	Participants  int
}

// ResolveCandidates applies stock clamping, win-eligibility and quota rules. It is
// shared by the committing draw and the ceremony preview.
func ResolveCandidates(in CandidateInput) (CandidateSet, error) {
	if len(in.Pending) == 0 {
		return CandidateSet{}, ErrNoEligibleGuests
	}
	if in.Prize.Stock <= 0 {
		return CandidateSet{}, ErrInsufficientStock
	}

	k := in.Requested
	if k <= 0 {
		k = 1
	}
	k = min(k, in.Prize.Stock, len(in.Pending))

	var protected, others []PendingEntry
	for _, pe := range in.Pending {
		if pe.Entry.Status != StatusPending {
			continue
		}
		if !CanWin(in.Type, pe.Guest, in.Prize, in.Wins, in.Rules) {
			continue
		}
		if in.Rules.IsProtected(pe.Guest) {
			protected = append(protected, pe)
		} else {
			others = append(others, pe)
		}
	}

	set := CandidateSet{Participants: len(in.Pending)}

	switch in.Type {
	case TypeGeneral:
		open := max(in.Rules.GeneralSubgroupCap-in.Quota.GeneralSubgroupWinners, 0)
		set.Priority = protected
		set.PriorityQuota = min(open, len(protected), k)
		set.Rest = others
	default:
		designated := in.Quota.AssignedPrizeID != 0 && in.Quota.AssignedPrizeID == in.Prize.ID
		// Once the subgroup holds a public win every public prize excludes it,
		// the designated one included.
		switch {
		case in.Quota.PublicQuotaFilled():
		case designated:
			if len(protected) == 0 {
				return CandidateSet{}, ErrQuotaUnsatisfiable
			}
			set.Priority = protected
			set.PriorityQuota = 1
		case in.Quota.AssignedPrizeID == 0 && len(protected) > 0:
			// Without an assignment the first draw that can seat the subgroup does so.
			set.Priority = protected
			set.PriorityQuota = 1
		}
		set.Rest = others
	}

	set.Limit = min(k, set.PriorityQuota+len(set.Rest))
	if set.Limit <= 0 {
		return CandidateSet{}, ErrNoEligibleGuests
	}
	return set, nil
}

// Draw picks the winners for the set.
func (s CandidateSet) Draw(p Picker) []PendingEntry {
	winners := make([]PendingEntry, 0, s.Limit)
	winners = append(winners, PickN(p, s.Priority, min(s.PriorityQuota, s.Limit))...)
	winners = append(winners, PickN(p, s.Rest, s.Limit-len(winners))...)
	return winners
}

// Admits reports whether entryID may be the next single winner of this set.
func (s CandidateSet) Admits(entryID uint64) bool {
	pool := s.Rest
	if s.PriorityQuota > 0 {
		pool = s.Priority
	}
	for _, pe := range pool {
		if pe.Entry.ID == entryID {
			return true
		}
	}
	return false
}
