package raffle

import (
	"errors"
	"strings"
)

// Rules holds the product rules that shape eligibility and quotas.
type Rules struct {
	// ProtectedEmployer identifies the protected subgroup by employer affiliation.
	ProtectedEmployer     string
	DisallowedEmployers   []string
	PublicDisallowedRoles []string
	// MatchPrizeCategory limits public entries to guests whose raffle categories list
	// the prize's category. Prizes without a category stay open to everyone.
	MatchPrizeCategory   bool
	VehiclePrizeName     string
	VehicleExcludedRoles []string
	GeneralAllowedRoles  []string
	// GeneralSubgroupCap bounds protected-subgroup winners across one event's general raffle.
	GeneralSubgroupCap int
	GeneralPrizeName   string
}

func DefaultRules() Rules {
	return Rules{
		ProtectedEmployer:     "IMEX",
		DisallowedEmployers:   []string{"INV"},
		PublicDisallowedRoles: []string{"Previous Winners", "New Hire", "Directors", "Not Participating"},
		VehiclePrizeName:      "Vehicle",
		VehicleExcludedRoles:  []string{"Sub-Directors"},
		GeneralAllowedRoles:   []string{"General", "Sub-Directors", "IMEX"},
		GeneralSubgroupCap:    2,
		GeneralPrizeName:      "General Raffle",
	}
}

func (r Rules) Validate() error {
	if strings.TrimSpace(r.ProtectedEmployer) == "" {
		return errors.New("protected employer is required")
	}
	if strings.TrimSpace(r.VehiclePrizeName) == "" {
		return errors.New("vehicle prize name is required")
	}
	if strings.TrimSpace(r.GeneralPrizeName) == "" {
		return errors.New("general prize name is required")
	}
	if len(r.GeneralAllowedRoles) == 0 {
		return errors.New("general allowed roles must not be empty")
	}
	if r.GeneralSubgroupCap < 0 {
		return errors.New("general subgroup cap must not be negative")
	}
	return nil
}

func (r Rules) IsProtected(g Guest) bool {
	return sameTag(g.Employer, r.ProtectedEmployer)
}

func (r Rules) IsVehicle(p Prize) bool {
	return !p.Sentinel && sameTag(p.Name, r.VehiclePrizeName)
}

func (r Rules) employerDisallowed(g Guest) bool {
	return containsTag(r.DisallowedEmployers, g.Employer)
}

func (r Rules) categoryAllows(g Guest, p Prize) bool {
	if !r.MatchPrizeCategory || strings.TrimSpace(p.Category) == "" {
		return true
	}
	for _, c := range strings.Split(g.RaffleCategory, ",") {
		if sameTag(c, p.Category) {
			return true
		}
	}
	return false
}

func sameTag(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func containsTag(set []string, value string) bool {
	for _, item := range set {
		if sameTag(item, value) {
			return true
		}
	}
	return false
}
