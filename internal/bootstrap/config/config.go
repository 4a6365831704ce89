package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"eventraffle/internal/bootstrap/logging"
	"eventraffle/internal/errs"
)

const envPrefix = "RAFFLE"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Raffle   RaffleConfig   `mapstructure:"raffle"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RaffleConfig struct {
	// RulesFile points at an optional TOML rules profile.
	RulesFile string `mapstructure:"rules_file"`
	// GeneralStock is the artificial stock given to the general raffle prize.
	GeneralStock int `mapstructure:"general_stock"`
}

type NotifyConfig struct {
	Driver  string `mapstructure:"driver"`
	NatsURL string `mapstructure:"nats_url"`
	Subject string `mapstructure:"subject"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.config")

	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errs.Wrap(err, "load .env")
		}
	} else {
		logging.Info(logCtx, "loaded environment from .env")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			logging.Warn(logCtx, "config file not found, fallback to defaults and env", slog.String("path", configFile))
		default:
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("notify_driver", cfg.Notify.Driver),
	)

	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if c.Raffle.GeneralStock <= 0 {
		return errors.New("raffle.general_stock must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Notify.Driver)) {
	case "", "log", "none":
	case "nats":
		if strings.TrimSpace(c.Notify.NatsURL) == "" {
			return errors.New("notify.nats_url is required for the nats driver")
		}
	default:
		return errors.New("notify.driver must be log, none or nats")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "eventraffle")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".data/raffle.sqlite")
	v.SetDefault("raffle.rules_file", "")
	v.SetDefault("raffle.general_stock", 999999)
	v.SetDefault("notify.driver", "log")
	v.SetDefault("notify.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("notify.subject", "raffle.winner")
}
