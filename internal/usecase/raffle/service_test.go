package raffle

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "eventraffle/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "eventraffle/internal/infrastructure/persistence/sqlite/uow"
	"eventraffle/internal/ports"
)

type testCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{
		data: make(map[string]string),
	}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []ports.WinnerNotice
	err     error
}

func (n *recordingNotifier) NotifyWinner(_ context.Context, notice ports.WinnerNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

type testEnv struct {
	svc      *Service
	repo     *sqliterepo.RaffleRepository
	uow      *sqliteuow.UnitOfWork
	cache    *testCache
	notifier *recordingNotifier
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "raffle.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		t.Fatalf("set busy_timeout: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func setupService(t *testing.T) testEnv {
	t.Helper()

	db := openTestDB(t)
	env := testEnv{
		repo:     sqliterepo.NewRaffleRepository(db),
		uow:      sqliteuow.NewUnitOfWork(db),
		cache:    newTestCache(),
		notifier: &recordingNotifier{},
	}
	env.svc = NewService(env.repo, env.uow, env.cache, env.notifier, Settings{Rules: domainraffle.DefaultRules()})
	env.svc.picker = rand.New(rand.NewPCG(1, 2))
	return env
}

func (e testEnv) event(t *testing.T, name string) domainraffle.Event {
	t.Helper()
	event, err := e.repo.CreateEvent(context.Background(), domainraffle.Event{Name: name})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	return event
}

func (e testEnv) guest(t *testing.T, eventID uint64, name, employer, role string, attended bool) domainraffle.Guest {
	t.Helper()
	ctx := context.Background()

	guest, err := e.repo.CreateGuest(ctx, domainraffle.Guest{
		EventID:  eventID,
		FullName: name,
		Email:    name + "@example.com",
		Employer: employer,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("CreateGuest() error = %v", err)
	}
	if attended {
		if err := e.repo.MarkAttendance(ctx, guest.ID, "2026-10-16T18:00:00Z"); err != nil {
			t.Fatalf("MarkAttendance() error = %v", err)
		}
		guest.Attended = true
	}
	return guest
}

func (e testEnv) prize(t *testing.T, eventID uint64, name string, stock int) domainraffle.Prize {
	t.Helper()
	prize, err := e.repo.CreatePrize(context.Background(), domainraffle.Prize{
		EventID: eventID,
		Name:    name,
		Stock:   stock,
		Active:  true,
	})
	if err != nil {
		t.Fatalf("CreatePrize() error = %v", err)
	}
	return prize
}

func (e testEnv) enter(t *testing.T, prizeID uint64) EntryReport {
	t.Helper()
	report, err := e.svc.CreateEntries(context.Background(), CreateEntriesInput{PrizeID: prizeID})
	if err != nil {
		t.Fatalf("CreateEntries() error = %v", err)
	}
	return report
}

func (e testEnv) counts(t *testing.T, prizeID uint64) ports.EntryCounts {
	t.Helper()
	counts, err := e.repo.CountEntries(context.Background(), ports.EntryFilter{PrizeID: prizeID})
	if err != nil {
		t.Fatalf("CountEntries() error = %v", err)
	}
	return counts
}

func (e testEnv) stock(t *testing.T, prizeID uint64) int {
	t.Helper()
	prize, err := e.repo.GetPrize(context.Background(), prizeID)
	if err != nil {
		t.Fatalf("GetPrize() error = %v", err)
	}
	return prize.Stock
}

func TestNewServiceFallsBackToDefaults(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, Settings{})
	if svc.Rules().ProtectedEmployer != domainraffle.DefaultRules().ProtectedEmployer {
		t.Fatalf("Rules() = %+v, want defaults", svc.Rules())
	}
	if svc.generalStock != defaultGeneralStock {
		t.Fatalf("generalStock = %d, want %d", svc.generalStock, defaultGeneralStock)
	}

	if _, err := svc.Draw(context.Background(), DrawInput{PrizeID: 1}); !errors.Is(err, errRepoRequired) {
		t.Fatalf("Draw() error = %v, want errRepoRequired", err)
	}
}

func TestCreateEntriesIsIdempotent(t *testing.T) {
	env := setupService(t)
	event := env.event(t, "Gala")
	prize := env.prize(t, event.ID, "Television", 1)
	env.guest(t, event.ID, "ana", "GMXT", "General", true)
	env.guest(t, event.ID, "luis", "GMXT", "General", true)
	env.guest(t, event.ID, "eva", "GMXT", "General", true)
	env.guest(t, event.ID, "absent", "GMXT", "General", false)
	env.guest(t, event.ID, "boss", "GMXT", "Directors", true)
	env.guest(t, event.ID, "vendor", "INV", "General", true)

	first := env.enter(t, prize.ID)
	if first.Eligible != 3 || first.Created != 3 || first.AlreadyEntered != 0 {
		t.Fatalf("first CreateEntries() = %+v, want 3 eligible and created", first)
	}
	if first.CorrelationID == "" {
		t.Fatalf("first CreateEntries() missing correlation id")
	}

	second := env.enter(t, prize.ID)
	if second.Created != 0 || second.AlreadyEntered != 3 {
		t.Fatalf("second CreateEntries() = %+v, want 0 created and 3 already entered", second)
	}
	if second.CorrelationID == first.CorrelationID {
		t.Fatalf("second CreateEntries() reused correlation id %q", second.CorrelationID)
	}

	if got := env.counts(t, prize.ID); got.Pending != 3 {
		t.Fatalf("pending entries = %d, want 3", got.Pending)
	}
}

func TestCreateEntriesWithoutEligibleGuests(t *testing.T) {
	env := setupService(t)
	event := env.event(t, "Gala")
	prize := env.prize(t, event.ID, "Television", 1)
	env.guest(t, event.ID, "absent", "GMXT", "General", false)

	_, err := env.svc.CreateEntries(context.Background(), CreateEntriesInput{PrizeID: prize.ID})
	if !errors.Is(err, domainraffle.ErrNoEligibleGuests) {
		t.Fatalf("CreateEntries() error = %v, want ErrNoEligibleGuests", err)
	}
}

func TestCreateEntriesRejectsInactivePrize(t *testing.T) {
	env := setupService(t)
	event := env.event(t, "Gala")
	env.guest(t, event.ID, "ana", "GMXT", "General", true)
	prize, err := env.repo.CreatePrize(context.Background(), domainraffle.Prize{EventID: event.ID, Name: "Retired", Stock: 1})
	if err != nil {
		t.Fatalf("CreatePrize() error = %v", err)
	}

	_, err = env.svc.CreateEntries(context.Background(), CreateEntriesInput{PrizeID: prize.ID})
	if !errors.Is(err, domainraffle.ErrPrizeInactive) {
		t.Fatalf("CreateEntries() error = %v, want ErrPrizeInactive", err)
	}
}

func TestDrawClampsToStockAndClosesRest(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	event := env.event(t, "Gala")
	prize := env.prize(t, event.ID, "Television", 1)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		env.guest(t, event.ID, name, "GMXT", "General", true)
	}
	env.enter(t, prize.ID)

	result, err := env.svc.Draw(ctx, DrawInput{PrizeID: prize.ID, Count: 5})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if len(result.Winners) != 1 {
		t.Fatalf("Draw() winners = %d, want 1", len(result.Winners))
	}
	if result.Lost != 4 || result.Participants != 5 || result.StockAfter != 0 {
		t.Fatalf("Draw() = %+v, want 4 lost, 5 participants, stock 0", result)
	}
	if result.Winners[0].Position != 1 {
		t.Fatalf("winner position = %d, want 1", result.Winners[0].Position)
	}

	got := env.counts(t, prize.ID)
	if got.Pending != 0 || got.Won != 1 || got.Lost != 4 {
		t.Fatalf("counts = %+v, want 0 pending, 1 won, 4 lost", got)
	}

	stored, err := env.repo.GetPrize(ctx, prize.ID)
	if err != nil {
		t.Fatalf("GetPrize() error = %v", err)
	}
	if stored.Stock != 0 || stored.UnitState != domainraffle.UnitWon {
		t.Fatalf("prize after draw = %+v, want stock 0 and unit won", stored)
	}

	logs, err := env.svc.ListLogs(ctx, ports.LogFilter{PrizeID: prize.ID})
	if err != nil {
		t.Fatalf("ListLogs() error = %v", err)
	}
	if len(logs) != 1 || !logs[0].Confirmed || logs[0].GuestID != result.Winners[0].GuestID {
		t.Fatalf("ListLogs() = %+v, want one confirmed log for the winner", logs)
	}
}

func TestDrawAssignsSequentialPositions(t *testing.T) {
	env := setupService(t)
	event := env.event(t, "Gala")
	prize := env.prize(t, event.ID, "Gift card", 3)
	for _, name := range []string{"a", "b", "c", "d"} {
		env.guest(t, event.ID, name, "GMXT", "General", true)
	}
	env.enter(t, prize.ID)

	result, err := env.svc.Draw(context.Background(), DrawInput{PrizeID: prize.ID, Count: 3})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if len(result.Winners) != 3 || result.StockAfter != 0 {
		t.Fatalf("Draw() = %+v, want 3 winners and stock 0", result)
	}
	seen := make(map[uint64]bool)
	for i, w := range result.Winners {
		if w.Position != i+1 {
			t.Fatalf("winner %d position = %d, want %d", i, w.Position, i+1)
		}
		if seen[w.GuestID] {
			t.Fatalf("guest %d won twice", w.GuestID)
		}
		seen[w.GuestID] = true
	}
}

func TestDrawWithoutEntries(t *testing.T) {
	env := setupService(t)
	event := env.event(t, "Gala")
	prize := env.prize(t, event.ID, "Television", 1)

	_, err := env.svc.Draw(context.Background(), DrawInput{PrizeID: prize.ID})
	if !errors.Is(err, domainraffle.ErrNoEligibleGuests) {
		t.Fatalf("Draw() error = %v, want ErrNoEligibleGuests", err)
	}
}

func TestDrawRejectsGeneralTypeOnPhysicalPrize(t *testing.T) {
	env := setupService(t)
	event := env.event(t, "Gala")
	prize := env.prize(t, event.ID, "Television", 1)

	_, err := env.svc.Draw(context.Background(), DrawInput{PrizeID: prize.ID, Type: domainraffle.TypeGeneral})
	if !errors.Is(err, domainraffle.ErrInvalidRaffleType) {
		t.Fatalf("Draw() error = %v, want ErrInvalidRaffleType", err)
	}
}

func TestDrawUnknownPrize(t *testing.T) {
	env := setupService(t)

	_, err := env.svc.Draw(context.Background(), DrawInput{PrizeID: 404})
	if !errors.Is(err, domainraffle.ErrPrizeNotFound) {
		t.Fatalf("Draw() error = %v, want ErrPrizeNotFound", err)
	}
}

func TestPublicWinnerCannotWinAnotherPrize(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	event := env.event(t, "Gala")
	tv := env.prize(t, event.ID, "Television", 1)
	laptop := env.prize(t, event.ID, "Laptop", 2)
	env.guest(t, event.ID, "ana", "GMXT", "General", true)
	env.guest(t, event.ID, "luis", "GMXT", "General", true)
	env.enter(t, tv.ID)
	env.enter(t, laptop.ID)

	first, err := env.svc.Draw(ctx, DrawInput{PrizeID: tv.ID})
	if err != nil {
		t.Fatalf("Draw(tv) error = %v", err)
	}
	winner := first.Winners[0].GuestID

	second, err := env.svc.Draw(ctx, DrawInput{PrizeID: laptop.ID, Count: 2})
	if err != nil {
		t.Fatalf("Draw(laptop) error = %v", err)
	}
	if len(second.Winners) != 1 {
		t.Fatalf("Draw(laptop) winners = %d, want 1", len(second.Winners))
	}
	if second.Winners[0].GuestID == winner {
		t.Fatalf("guest %d won two public prizes", winner)
	}
	if second.StockAfter != 1 {
		t.Fatalf("Draw(laptop) stock after = %d, want 1", second.StockAfter)
	}

	speaker := env.prize(t, event.ID, "Speaker", 1)
	_, err = env.svc.CreateEntries(ctx, CreateEntriesInput{PrizeID: speaker.ID})
	if !errors.Is(err, domainraffle.ErrNoEligibleGuests) {
		t.Fatalf("CreateEntries(speaker) error = %v, want ErrNoEligibleGuests", err)
	}
}

func TestVehicleEntriesSkipPriorWinnersAndSubgroup(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	event := env.event(t, "Gala")
	tv := env.prize(t, event.ID, "Television", 1)
	vehicle := env.prize(t, event.ID, "Vehicle", 1)
	env.guest(t, event.ID, "ana", "GMXT", "General", true)
	env.guest(t, event.ID, "sub", "GMXT", "Sub-Directors", true)
	env.guest(t, event.ID, "imex", "IMEX", "General", true)

	tvReport := env.enter(t, tv.ID)
	if tvReport.Created != 3 {
		t.Fatalf("CreateEntries(tv) created = %d, want 3", tvReport.Created)
	}
	first, err := env.svc.Draw(ctx, DrawInput{PrizeID: tv.ID})
	if err != nil {
		t.Fatalf("Draw(tv) error = %v", err)
	}
	// No quota assignment: the first draw seats the subgroup.
	if !first.Winners[0].Protected {
		t.Fatalf("Draw(tv) winner = %+v, want the subgroup guest", first.Winners[0])
	}

	report := env.enter(t, vehicle.ID)
	if report.Eligible != 1 || report.Created != 1 {
		t.Fatalf("CreateEntries(vehicle) = %+v, want only the regular guest", report)
	}
}

func TestVehicleWinDoesNotUseSinglePublicWin(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	event := env.event(t, "Gala")
	vehicle := env.prize(t, event.ID, "Vehicle", 1)
	laptop := env.prize(t, event.ID, "Laptop", 1)
	speaker := env.prize(t, event.ID, "Speaker", 1)
	ana := env.guest(t, event.ID, "ana", "GMXT", "General", true)

	env.enter(t, vehicle.ID)
	if _, err := env.svc.Draw(ctx, DrawInput{PrizeID: vehicle.ID}); err != nil {
		t.Fatalf("Draw(vehicle) error = %v", err)
	}

	report := env.enter(t, laptop.ID)
	if report.Created != 1 || report.Excluded != 0 {
		t.Fatalf("CreateEntries(laptop) = %+v, want the vehicle winner entered", report)
	}
	result, err := env.svc.Draw(ctx, DrawInput{PrizeID: laptop.ID})
	if err != nil {
		t.Fatalf("Draw(laptop) error = %v", err)
	}
	if len(result.Winners) != 1 || result.Winners[0].GuestID != ana.ID {
		t.Fatalf("Draw(laptop) winners = %+v, want guest %d", result.Winners, ana.ID)
	}

	_, err = env.svc.CreateEntries(ctx, CreateEntriesInput{PrizeID: speaker.ID})
	if !errors.Is(err, domainraffle.ErrNoEligibleGuests) {
		t.Fatalf("CreateEntries(speaker) error = %v, want ErrNoEligibleGuests", err)
	}
}

func TestNonVehicleWinnerIsKeptOutOfVehicle(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	event := env.event(t, "Gala")
	tv := env.prize(t, event.ID, "Television", 1)
	vehicle := env.prize(t, event.ID, "Vehicle", 1)
	env.guest(t, event.ID, "bob", "GMXT", "General", true)

	env.enter(t, tv.ID)
	if _, err := env.svc.Draw(ctx, DrawInput{PrizeID: tv.ID}); err != nil {
		t.Fatalf("Draw(tv) error = %v", err)
	}

	report := env.enter(t, vehicle.ID)
	if report.Eligible != 1 || report.Excluded != 1 || report.Created != 0 {
		t.Fatalf("CreateEntries(vehicle) = %+v, want the tv winner excluded", report)
	}
	_, err := env.svc.Draw(ctx, DrawInput{PrizeID: vehicle.ID})
	if !errors.Is(err, domainraffle.ErrNoEligibleGuests) {
		t.Fatalf("Draw(vehicle) error = %v, want ErrNoEligibleGuests", err)
	}
	if got := env.stock(t, vehicle.ID); got != 1 {
		t.Fatalf("vehicle stock = %d, want 1", got)
	}
}

func TestCreateEntriesMatchesPrizeCategory(t *testing.T) {
	env := setupService(t)
	env.svc.rules.MatchPrizeCategory = true
	ctx := context.Background()
	event := env.event(t, "Gala")
	tv, err := env.repo.CreatePrize(ctx, domainraffle.Prize{EventID: event.ID, Name: "Television", Category: "electronics", Stock: 1, Active: true})
	if err != nil {
		t.Fatalf("CreatePrize() error = %v", err)
	}
	for name, category := range map[string]string{"ana": "electronics,vouchers", "luis": "vouchers"} {
		guest, err := env.repo.CreateGuest(ctx, domainraffle.Guest{EventID: event.ID, FullName: name, Employer: "GMXT", Role: "General", RaffleCategory: category})
		if err != nil {
			t.Fatalf("CreateGuest() error = %v", err)
		}
		if err := env.repo.MarkAttendance(ctx, guest.ID, "2026-10-16T18:00:00Z"); err != nil {
			t.Fatalf("MarkAttendance() error = %v", err)
		}
	}

	report := env.enter(t, tv.ID)
	if report.Eligible != 1 || report.Created != 1 {
		t.Fatalf("CreateEntries() = %+v, want only the guest listing electronics", report)
	}
}

func TestDrawNotifiesWinnersBestEffort(t *testing.T) {
	env := setupService(t)
	event := env.event(t, "Gala")
	prize := env.prize(t, event.ID, "Television", 1)
	env.guest(t, event.ID, "ana", "GMXT", "General", true)
	env.enter(t, prize.ID)
	env.notifier.err = errors.New("broker down")

	result, err := env.svc.Draw(context.Background(), DrawInput{PrizeID: prize.ID, Notify: true})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if len(env.notifier.notices) != 1 {
		t.Fatalf("notices = %d, want 1", len(env.notifier.notices))
	}
	notice := env.notifier.notices[0]
	if notice.GuestID != result.Winners[0].GuestID || notice.PrizeName != "Television" || notice.RaffleType != "public" {
		t.Fatalf("notice = %+v", notice)
	}
}

type staleStockRepo struct {
	ports.RaffleRepository
}

func (staleStockRepo) UpdateStock(context.Context, uint64, int, int) (bool, error) {
	return false, nil
}

func TestDrawRollsBackOnConcurrentStockChange(t *testing.T) {
	env := setupService(t)
	event := env.event(t, "Gala")
	prize := env.prize(t, event.ID, "Television", 1)
	env.guest(t, event.ID, "ana", "GMXT", "General", true)
	env.guest(t, event.ID, "luis", "GMXT", "General", true)
	env.enter(t, prize.ID)

	svc := NewService(staleStockRepo{env.repo}, env.uow, env.cache, nil, Settings{Rules: domainraffle.DefaultRules()})
	_, err := svc.Draw(context.Background(), DrawInput{PrizeID: prize.ID})
	if !errors.Is(err, domainraffle.ErrConcurrentModification) {
		t.Fatalf("Draw() error = %v, want ErrConcurrentModification", err)
	}

	if got := env.counts(t, prize.ID); got.Pending != 2 || got.Won != 0 {
		t.Fatalf("counts after rollback = %+v, want 2 pending", got)
	}
	if got := env.stock(t, prize.ID); got != 1 {
		t.Fatalf("stock after rollback = %d, want 1", got)
	}
	logs, err := env.svc.ListLogs(context.Background(), ports.LogFilter{PrizeID: prize.ID})
	if err != nil {
		t.Fatalf("ListLogs() error = %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("ListLogs() = %d rows, want none after rollback", len(logs))
	}
}

func TestConcurrentDrawsKeepSingleWinRule(t *testing.T) {
	env := setupService(t)
	env.svc.picker = domainraffle.CryptoPicker()
	ctx := context.Background()
	event := env.event(t, "Gala")
	tv := env.prize(t, event.ID, "Television", 1)
	laptop := env.prize(t, event.ID, "Laptop", 1)
	env.guest(t, event.ID, "ana", "GMXT", "General", true)
	env.guest(t, event.ID, "luis", "GMXT", "General", true)
	env.enter(t, tv.ID)
	env.enter(t, laptop.ID)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	for _, id := range []uint64{tv.ID, laptop.ID} {
		wg.Add(1)
		go func(prizeID uint64) {
			defer wg.Done()
			if _, err := env.svc.Draw(ctx, DrawInput{PrizeID: prizeID}); err != nil {
				errCh <- err
			}
		}(id)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("Draw() error = %v", err)
	}

	winners, err := env.svc.ListWinners(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListWinners() error = %v", err)
	}
	if len(winners) != 2 {
		t.Fatalf("ListWinners() = %d, want 2", len(winners))
	}
	if winners[0].GuestID == winners[1].GuestID {
		t.Fatalf("guest %d won both prizes", winners[0].GuestID)
	}
	if env.stock(t, tv.ID) != 0 || env.stock(t, laptop.ID) != 0 {
		t.Fatalf("stock not decremented on both prizes")
	}
}
