package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"eventraffle/internal/bootstrap/config"
	"eventraffle/internal/bootstrap/database"
	"eventraffle/internal/bootstrap/logging"
	cacheinfra "eventraffle/internal/infrastructure/cache"
	"eventraffle/internal/infrastructure/notify"
	sqliterepo "eventraffle/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "eventraffle/internal/infrastructure/persistence/sqlite/uow"
	"eventraffle/internal/ports"
	"eventraffle/internal/usecase/raffle"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRaffleRepository,
			fx.As(new(ports.RaffleRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideNotifier),
	fx.Provide(provideSettings),
	fx.Provide(raffle.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithComponent(p.Ctx, "bootstrap.fx")
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

// provideNotifier picks the winner notifier from notify.driver. The NATS connection
// is only opened when that driver is configured.
func provideNotifier(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.WinnerNotifier, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	switch strings.ToLower(strings.TrimSpace(cfg.Notify.Driver)) {
	case "none":
		return notify.NoopNotifier{}, nil
	case "nats":
		n, err := notify.NewNATSNotifier(logCtx, cfg.Notify.NatsURL, cfg.Notify.Subject)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return n.Close()
			},
		})
		return n, nil
	default:
		logging.Debug(logCtx, "winner notices go to the log", slog.String("driver", cfg.Notify.Driver))
		return notify.LogNotifier{}, nil
	}
}

func provideSettings(ctx context.Context, cfg config.Config) (raffle.Settings, error) {
	rules, err := raffle.LoadRulesProfile(cfg.Raffle.RulesFile)
	if err != nil {
		return raffle.Settings{}, err
	}
	if cfg.Raffle.RulesFile != "" {
		logging.Info(
			logging.WithComponent(ctx, "bootstrap.fx"),
			"rules profile loaded",
			slog.String("path", cfg.Raffle.RulesFile),
		)
	}
	return raffle.Settings{
		Rules:        rules,
		GeneralStock: cfg.Raffle.GeneralStock,
	}, nil
}
