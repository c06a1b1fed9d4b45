package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"dipbacktest/internal/engine"
	"dipbacktest/strategies/threshold"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the backtester.
type Config struct {
	Backtest Backtest `yaml:"backtest"`
	Strategy Strategy `yaml:"strategy"`
	Provider Provider `yaml:"provider"`
	Storage  Storage  `yaml:"storage"`
	Output   Output   `yaml:"output"`
	Sweep    Sweep    `yaml:"sweep"`
	Logging  Logging  `yaml:"logging"`
}

// Backtest holds the run inputs. Dates are YYYY-MM-DD, the end date is inclusive.
type Backtest struct {
	Symbol       string `yaml:"symbol" validate:"required"`
	StartDate    string `yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `yaml:"end_date" validate:"required,datetime=2006-01-02"`
	StartingCash string `yaml:"starting_cash" validate:"required,numeric"`
}

// Strategy holds the threshold rule parameters as decimal strings.
type Strategy struct {
	DropThreshold string `yaml:"drop_threshold" validate:"required,numeric"`
	GainThreshold string `yaml:"gain_threshold" validate:"required,numeric"`
	Lookback      int    `yaml:"lookback" validate:"gte=1"`
}

// Provider selects where daily bars come from.
type Provider struct {
	Name    string  `yaml:"name" validate:"required,oneof=alpaca polygon postgres file"`
	Alpaca  Alpaca  `yaml:"alpaca"`
	Polygon Polygon `yaml:"polygon"`
	File    File    `yaml:"file"`
}

// Alpaca holds credentials and endpoints for the Alpaca market data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
	Feed      string `yaml:"feed" validate:"omitempty,oneof=iex sip delayed_sip otc"`
}

type Polygon struct {
	APIKey string `yaml:"api_key"`
}

type File struct {
	Path string `yaml:"path"`
}

// Storage configures where finished runs are persisted.
type Storage struct {
	Driver      string `yaml:"driver" validate:"required,oneof=none postgres duckdb"`
	DatabaseURL string `yaml:"database_url"`
	DuckDBPath  string `yaml:"duckdb_path"`
}

// Output configures the file reporters. Empty paths disable them.
type Output struct {
	ChartPath string `yaml:"chart_path"`
	CSVPath   string `yaml:"csv_path"`
	OpenChart bool   `yaml:"open_chart"`
}

// Sweep holds the threshold grid for the sweep command.
type Sweep struct {
	Drops   []string `yaml:"drops" validate:"dive,numeric"`
	Gains   []string `yaml:"gains" validate:"dive,numeric"`
	Workers int      `yaml:"workers" validate:"gte=1"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// Default returns the configuration the tool runs with when no file is given.
func Default() *Config {
	return &Config{
		Backtest: Backtest{
			Symbol:       "AAPL",
			StartDate:    "2024-01-01",
			EndDate:      "2025-01-01",
			StartingCash: "1000",
		},
		Strategy: Strategy{
			DropThreshold: threshold.DefaultDropThreshold.String(),
			GainThreshold: threshold.DefaultGainThreshold.String(),
			Lookback:      threshold.DefaultLookback,
		},
		Provider: Provider{
			Name:   "alpaca",
			Alpaca: Alpaca{Feed: "iex"},
		},
		Storage: Storage{
			Driver:     "none",
			DuckDBPath: "backtests.duckdb",
		},
		Output: Output{
			ChartPath: "backtest_plot.svg",
		},
		Sweep: Sweep{
			Drops:   []string{"-0.01", "-0.02", "-0.03", "-0.05"},
			Gains:   []string{"0.02", "0.03", "0.05"},
			Workers: 4,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path over the defaults,
// then applies environment variable overrides. An empty path yields the defaults
// with overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Provider.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		cfg.Provider.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Provider.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Provider.Alpaca.DataURL = v
	}

	// Canonical names used by the Alpaca SDK win.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Provider.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Provider.Alpaca.APISecret = v
	}

	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.Provider.Polygon.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks field formats and the cross-field rules the struct tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := c.RunConfig(); err != nil {
		return err
	}
	if _, err := c.Rule(); err != nil {
		return err
	}

	switch c.Provider.Name {
	case "polygon":
		if c.Provider.Polygon.APIKey == "" {
			return fmt.Errorf("%w: polygon provider needs an api key (POLYGON_API_KEY)", ErrInvalidConfig)
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("%w: postgres provider needs a database url (DATABASE_URL)", ErrInvalidConfig)
		}
	case "file":
		if c.Provider.File.Path == "" {
			return fmt.Errorf("%w: file provider needs a path", ErrInvalidConfig)
		}
	}

	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("%w: postgres storage needs a database url (DATABASE_URL)", ErrInvalidConfig)
		}
	case "duckdb":
		if c.Storage.DuckDBPath == "" {
			return fmt.Errorf("%w: duckdb storage needs a path", ErrInvalidConfig)
		}
	}
	return nil
}

// RunConfig converts the backtest section into the engine's run input.
func (c *Config) RunConfig() (engine.RunConfig, error) {
	start, err := time.Parse(time.DateOnly, c.Backtest.StartDate)
	if err != nil {
		return engine.RunConfig{}, fmt.Errorf("%w: start_date: %w", ErrInvalidConfig, err)
	}
	end, err := time.Parse(time.DateOnly, c.Backtest.EndDate)
	if err != nil {
		return engine.RunConfig{}, fmt.Errorf("%w: end_date: %w", ErrInvalidConfig, err)
	}
	cash, err := decimal.NewFromString(c.Backtest.StartingCash)
	if err != nil {
		return engine.RunConfig{}, fmt.Errorf("%w: starting_cash: %w", ErrInvalidConfig, err)
	}

	runCfg := engine.NewRunConfig(c.Backtest.Symbol, start, end, cash)
	if err := runCfg.Validate(); err != nil {
		return engine.RunConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return runCfg, nil
}

// Rule builds the threshold strategy from the strategy section.
func (c *Config) Rule() (*threshold.Strategy, error) {
	drop, err := decimal.NewFromString(c.Strategy.DropThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: drop_threshold: %w", ErrInvalidConfig, err)
	}
	gain, err := decimal.NewFromString(c.Strategy.GainThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: gain_threshold: %w", ErrInvalidConfig, err)
	}
	s, err := threshold.New(drop, gain, c.Strategy.Lookback)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return s, nil
}

// SweepRules builds the threshold grid from the sweep section, using the strategy lookback.
func (c *Config) SweepRules() ([]*threshold.Strategy, error) {
	drops, err := ParseDecimals(c.Sweep.Drops)
	if err != nil {
		return nil, fmt.Errorf("%w: sweep drops: %w", ErrInvalidConfig, err)
	}
	gains, err := ParseDecimals(c.Sweep.Gains)
	if err != nil {
		return nil, fmt.Errorf("%w: sweep gains: %w", ErrInvalidConfig, err)
	}
	grid, err := threshold.Grid(drops, gains, c.Strategy.Lookback)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return grid, nil
}

// ParseDecimals parses each value, trimming surrounding spaces.
func ParseDecimals(values []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", v, err)
		}
		out = append(out, d)
	}
	return out, nil
}
