package raffle

import (
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
)

const rulesProfileVersion = 1

type rulesSubgroupConfig struct {
	Employer string `toml:"employer"`
}

type rulesPublicConfig struct {
	DisallowedEmployers []string `toml:"disallowed_employers"`
	DisallowedRoles     []string `toml:"disallowed_roles"`
	MatchCategory       *bool    `toml:"match_category"`
}

type rulesVehicleConfig struct {
	PrizeName     string   `toml:"prize_name"`
	ExcludedRoles []string `toml:"excluded_roles"`
}

type rulesGeneralConfig struct {
	PrizeName    string   `toml:"prize_name"`
	AllowedRoles []string `toml:"allowed_roles"`
	SubgroupCap  *int     `toml:"subgroup_cap"`
}

type rulesProfile struct {
	Version  int                 `toml:"version"`
	Subgroup rulesSubgroupConfig `toml:"subgroup"`
	Public   rulesPublicConfig   `toml:"public"`
	Vehicle  rulesVehicleConfig  `toml:"vehicle"`
	General  rulesGeneralConfig  `toml:"general"`
}

// LoadRulesProfile reads a TOML rules profile. Omitted keys keep their defaults; an
// empty path yields the defaults.
func LoadRulesProfile(path string) (domainraffle.Rules, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return domainraffle.DefaultRules(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domainraffle.Rules{}, errs.Wrapf(err, "read rules profile %q", path)
	}
	return ParseRulesProfile(raw)
}

func ParseRulesProfile(raw []byte) (domainraffle.Rules, error) {
	var profile rulesProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return domainraffle.Rules{}, errs.Wrap(err, "decode rules profile")
	}
	if profile.Version != rulesProfileVersion {
		return domainraffle.Rules{}, errors.New("unsupported rules profile version: expected version = 1")
	}

	rules := applyRulesProfile(domainraffle.DefaultRules(), profile)
	if err := rules.Validate(); err != nil {
		return domainraffle.Rules{}, errs.Wrap(err, "validate rules profile")
	}
	return rules, nil
}

func applyRulesProfile(rules domainraffle.Rules, profile rulesProfile) domainraffle.Rules {
	if v := strings.TrimSpace(profile.Subgroup.Employer); v != "" {
		rules.ProtectedEmployer = v
	}
	if profile.Public.DisallowedEmployers != nil {
		rules.DisallowedEmployers = normalizeTags(profile.Public.DisallowedEmployers)
	}
	if profile.Public.DisallowedRoles != nil {
		rules.PublicDisallowedRoles = normalizeTags(profile.Public.DisallowedRoles)
	}
	if profile.Public.MatchCategory != nil {
		rules.MatchPrizeCategory = *profile.Public.MatchCategory
	}
	if v := strings.TrimSpace(profile.Vehicle.PrizeName); v != "" {
		rules.VehiclePrizeName = v
	}
	if profile.Vehicle.ExcludedRoles != nil {
		rules.VehicleExcludedRoles = normalizeTags(profile.Vehicle.ExcludedRoles)
	}
	if v := strings.TrimSpace(profile.General.PrizeName); v != "" {
		rules.GeneralPrizeName = v
	}
	if profile.General.AllowedRoles != nil {
		rules.GeneralAllowedRoles = normalizeTags(profile.General.AllowedRoles)
	}
	if profile.General.SubgroupCap != nil {
		rules.GeneralSubgroupCap = *profile.General.SubgroupCap
	}
	return rules
}

func normalizeTags(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
