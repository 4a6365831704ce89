package raffle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"eventraffle/internal/bootstrap/logging"
	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
)

// Fixture is a YAML description of one event used to seed a database.
type Fixture struct {
	Event  string         `yaml:"event"`
	Guests []FixtureGuest `yaml:"guests"`
	Prizes []FixturePrize `yaml:"prizes"`
	// QuotaPrize names the prize to designate for the protected subgroup.
	QuotaPrize string `yaml:"quota_prize,omitempty"`
}

type FixtureGuest struct {
	EmployeeNumber string `yaml:"employee_number"`
	FullName       string `yaml:"full_name"`
	Email          string `yaml:"email"`
	Employer       string `yaml:"employer"`
	Role           string `yaml:"role"`
	Category       string `yaml:"category"`
	Attended       bool   `yaml:"attended"`
}

type FixturePrize struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Stock    int    `yaml:"stock"`
	Active   *bool  `yaml:"active,omitempty"`
}

type FixtureReport struct {
	EventID  uint64
	Guests   int
	Attended int
	Prizes   map[string]uint64
	Quota    *domainraffle.QuotaAssignment
}

func LoadFixtureFile(path string) (Fixture, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Fixture{}, errors.New("fixture file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, errs.Wrapf(err, "read fixture %q", path)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return Fixture{}, errs.Wrapf(err, "decode fixture %q", path)
	}
	return fixture, nil
}

func (f Fixture) validate() error {
	if strings.TrimSpace(f.Event) == "" {
		return errors.New("fixture event name is required")
	}
	seen := make(map[string]struct{}, len(f.Prizes))
	for i, p := range f.Prizes {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("prizes[%d].name is required", i)
		}
		if p.Stock < 0 {
			return fmt.Errorf("prizes[%d].stock must not be negative", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("prizes[%d]: duplicate prize name %q", i, name)
		}
		seen[name] = struct{}{}
	}
	for i, g := range f.Guests {
		if strings.TrimSpace(g.FullName) == "" {
			return fmt.Errorf("guests[%d].full_name is required", i)
		}
	}
	if q := strings.TrimSpace(f.QuotaPrize); q != "" {
		if _, ok := seen[q]; !ok {
			return fmt.Errorf("quota_prize %q is not a listed prize", q)
		}
	}
	return nil
}

// ImportFixture creates the event with its guests, attendance and prizes in one
// transaction, then applies the quota designation if the fixture names one.
func (s *Service) ImportFixture(ctx context.Context, fixture Fixture) (FixtureReport, error) {
	if err := s.ready(ctx); err != nil {
		return FixtureReport{}, err
	}
	if err := fixture.validate(); err != nil {
		return FixtureReport{}, errs.Wrap(err, "validate fixture")
	}

	report := FixtureReport{Prizes: make(map[string]uint64, len(fixture.Prizes))}
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.CreateEvent(txCtx, domainraffle.Event{Name: strings.TrimSpace(fixture.Event)})
		if err != nil {
			return err
		}
		report.EventID = event.ID

		attendedAt := nowUTCString()
		for _, fg := range fixture.Guests {
			guest, err := s.repo.CreateGuest(txCtx, domainraffle.Guest{
				EventID:        event.ID,
				EmployeeNumber: strings.TrimSpace(fg.EmployeeNumber),
				FullName:       strings.TrimSpace(fg.FullName),
				Email:          strings.TrimSpace(fg.Email),
				Employer:       strings.TrimSpace(fg.Employer),
				Role:           strings.TrimSpace(fg.Role),
				RaffleCategory: strings.TrimSpace(fg.Category),
			})
			if err != nil {
				return err
			}
			report.Guests++

			if !fg.Attended {
				continue
			}
			if err := s.repo.MarkAttendance(txCtx, guest.ID, attendedAt); err != nil {
				return err
			}
			report.Attended++
		}

		for _, fp := range fixture.Prizes {
			active := true
			if fp.Active != nil {
				active = *fp.Active
			}
			prize, err := s.repo.CreatePrize(txCtx, domainraffle.Prize{
				EventID:  event.ID,
				Name:     strings.TrimSpace(fp.Name),
				Category: strings.TrimSpace(fp.Category),
				Stock:    fp.Stock,
				Active:   active,
			})
			if err != nil {
				return err
			}
			report.Prizes[prize.Name] = prize.ID
		}
		return nil
	}); err != nil {
		return FixtureReport{}, errs.Wrap(err, "import fixture")
	}

	if q := strings.TrimSpace(fixture.QuotaPrize); q != "" {
		quota, err := s.AssignQuota(ctx, AssignQuotaInput{EventID: report.EventID, PrizeID: report.Prizes[q]})
		if err != nil {
			return report, err
		}
		report.Quota = &quota.Assignment
	}

	logging.Info(
		logging.WithComponent(ctx, "usecase.raffle.fixtures"),
		"fixture imported",
		slog.Uint64("event_id", report.EventID),
		slog.Int("guests", report.Guests),
		slog.Int("attended", report.Attended),
		slog.Int("prizes", len(report.Prizes)),
	)
	return report, nil
}
