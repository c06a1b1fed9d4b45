package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dipbacktest/internal/config"
	"dipbacktest/internal/engine"
	"dipbacktest/internal/logger"
	"dipbacktest/internal/provider"
	"dipbacktest/internal/repository"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

type app struct {
	cfg    *config.Config
	log    *logger.Logger
	out    io.Writer
	errOut io.Writer
}

// setup loads the config file, applies flag overrides, validates the result and
// builds the logger.
func setup(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	root := cmd.Root()
	return &app{cfg: cfg, log: log, out: root.Writer, errOut: root.ErrWriter}, nil
}

func applyFlags(cmd *cli.Command, cfg *config.Config) {
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"symbol", &cfg.Backtest.Symbol},
		{"start", &cfg.Backtest.StartDate},
		{"end", &cfg.Backtest.EndDate},
		{"cash", &cfg.Backtest.StartingCash},
		{"drop", &cfg.Strategy.DropThreshold},
		{"gain", &cfg.Strategy.GainThreshold},
		{"provider", &cfg.Provider.Name},
		{"file", &cfg.Provider.File.Path},
		{"feed", &cfg.Provider.Alpaca.Feed},
		{"store", &cfg.Storage.Driver},
		{"duckdb", &cfg.Storage.DuckDBPath},
		{"chart", &cfg.Output.ChartPath},
		{"csv", &cfg.Output.CSVPath},
		{"log-level", &cfg.Logging.Level},
		{"log-format", &cfg.Logging.Format},
	}
	for _, o := range overrides {
		if cmd.IsSet(o.flag) {
			*o.dst = cmd.String(o.flag)
		}
	}

	if cmd.IsSet("lookback") {
		cfg.Strategy.Lookback = int(cmd.Int("lookback"))
	}
	if cmd.IsSet("workers") {
		cfg.Sweep.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("open") {
		cfg.Output.OpenChart = cmd.Bool("open")
	}
	if cmd.IsSet("drops") {
		cfg.Sweep.Drops = splitList(cmd.String("drops"))
	}
	if cmd.IsSet("gains") {
		cfg.Sweep.Gains = splitList(cmd.String("gains"))
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func noop() {}

// buildProvider returns the configured bar source and a function releasing it.
func buildProvider(ctx context.Context, cfg *config.Config, log *zap.Logger) (engine.PriceSeriesProvider, func(), error) {
	switch cfg.Provider.Name {
	case "alpaca":
		a := cfg.Provider.Alpaca
		return provider.NewAlpacaProvider(provider.AlpacaConfig{
			APIKey:    a.APIKey,
			APISecret: a.APISecret,
			DataURL:   a.DataURL,
			Feed:      a.Feed,
		}, log), noop, nil
	case "polygon":
		p, err := provider.NewPolygonProvider(cfg.Provider.Polygon.APIKey, log)
		return p, noop, err
	case "postgres":
		db, err := repository.NewDatabase(ctx, cfg.Storage.DatabaseURL, log)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		return db, db.Close, nil
	case "file":
		src, err := repository.NewFileSource(cfg.Provider.File.Path, log)
		if err != nil {
			return nil, noop, err
		}
		return src, func() { _ = src.Close() }, nil
	}
	return nil, noop, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider.Name)
}

// buildStore returns the configured result store, or nil for driver "none".
func buildStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (engine.ResultStore, func(), error) {
	switch cfg.Storage.Driver {
	case "", "none":
		return nil, noop, nil
	case "postgres":
		db, err := repository.NewDatabase(ctx, cfg.Storage.DatabaseURL, log)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return db, db.Close, nil
	case "duckdb":
		store, err := repository.NewDuckDBStore(cfg.Storage.DuckDBPath, log)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return nil, noop, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Storage.Driver)
}
