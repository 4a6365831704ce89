package raffle

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/google/uuid"

	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/ports"
)

const defaultGeneralStock = 999999

var (
	errRepoRequired = errors.New("raffle repository is required")
	errUoWRequired  = errors.New("raffle unit of work is required")
)

// Settings carries deployment-specific rule configuration.
type Settings struct {
	Rules domainraffle.Rules
	// GeneralStock is the artificial stock given to a newly created general raffle prize.
	GeneralStock int
}

type Service struct {
	repo     ports.RaffleRepository
	uow      ports.UnitOfWork
	cache    ports.Cache
	notifier ports.WinnerNotifier
	rules    domainraffle.Rules
	picker   domainraffle.Picker
	newID    func() string

	generalStock int
	locks        keyedLocks
}

// NewService wires raffle usecases. cache and notifier are optional.
func NewService(
	repo ports.RaffleRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	notifier ports.WinnerNotifier,
	settings Settings,
) *Service {
	rules := settings.Rules
	if rules.Validate() != nil {
		rules = domainraffle.DefaultRules()
	}
	generalStock := settings.GeneralStock
	if generalStock <= 0 {
		generalStock = defaultGeneralStock
	}

	return &Service{
		repo:         repo,
		uow:          uow,
		cache:        cache,
		notifier:     notifier,
		rules:        rules,
		picker:       domainraffle.CryptoPicker(),
		newID:        uuid.NewString,
		generalStock: generalStock,
	}
}

func (s *Service) Rules() domainraffle.Rules {
	return s.rules
}

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return wrapContextErr(err)
	}
	if s.repo == nil {
		return errRepoRequired
	}
	if s.uow == nil {
		return errUoWRequired
	}
	return nil
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value, ceremonyTTL)
}

func (s *Service) deleteCacheBestEffort(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, key)
}

// keyedLocks serializes mutating work per prize, or per event for the general raffle.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func prizeLockKey(p domainraffle.Prize) string {
	if p.Sentinel {
		return generalLockKey(p.EventID)
	}
	return "prize:" + strconv.FormatUint(p.ID, 10)
}

func generalLockKey(eventID uint64) string {
	return "general:" + strconv.FormatUint(eventID, 10)
}
