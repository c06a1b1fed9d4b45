package engine

import (
	"context"
	"fmt"
	"time"

	"dipbacktest/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine runs a single backtest end to end: fetch, simulate, compare, report, store.
type Engine struct {
	provider  PriceSeriesProvider
	rule      Rule
	reporters []ResultReporter
	store     ResultStore
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Engine)

func WithReporters(reporters ...ResultReporter) Option {
	return func(e *Engine) {
		e.reporters = append(e.reporters, reporters...)
	}
}

// WithStore persists every successful run.
func WithStore(store ResultStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(provider PriceSeriesProvider, rule Rule, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		rule:     rule,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Run(ctx context.Context, cfg RunConfig) (types.Run, error) {
	if err := cfg.Validate(); err != nil {
		return types.Run{}, err
	}
	if e.rule == nil {
		return types.Run{}, fmt.Errorf("%w: nil rule", ErrInvalidInput)
	}
	log := e.logger.With(zap.String("symbol", cfg.Symbol))

	bars, err := e.loadBars(ctx, cfg)
	if err != nil {
		return types.Run{}, err
	}
	log.Info("loaded bars", zap.Int("bars", len(bars)))

	result, err := Simulate(bars, cfg.StartingCash, e.rule)
	if err != nil {
		return types.Run{}, fmt.Errorf("simulate %s: %w", cfg.Symbol, err)
	}
	if result.InsufficientHistory {
		log.Warn("insufficient history, no trades evaluated",
			zap.Int("bars", len(bars)),
			zap.Int("lookback", e.rule.Params().Lookback))
	}

	baseline, err := Baseline(bars, cfg.StartingCash)
	if err != nil {
		return types.Run{}, fmt.Errorf("baseline %s: %w", cfg.Symbol, err)
	}

	run := types.Run{
		ID:           uuid.NewString(),
		Symbol:       cfg.Symbol,
		Start:        cfg.Start,
		End:          cfg.End,
		StartingCash: cfg.StartingCash,
		Params:       e.rule.Params(),
		Result:       result,
		Baseline:     baseline,
		Report:       GenerateReport(result, baseline, cfg.StartingCash),
		CreatedAt:    e.now().UTC(),
	}
	log.Info("simulation finished",
		zap.String("run_id", run.ID),
		zap.Stringer("final_value", run.Result.FinalAccountValue),
		zap.Stringer("buy_and_hold", run.Baseline.FinalValue),
		zap.Int("closed_trades", run.Report.TotalTrades))

	for _, reporter := range e.reporters {
		if err := reporter.Report(ctx, run); err != nil {
			return run, fmt.Errorf("report run %s: %w", run.ID, err)
		}
	}
	if e.store != nil {
		if err := e.store.SaveRun(ctx, run); err != nil {
			return run, fmt.Errorf("save run %s: %w", run.ID, err)
		}
		log.Debug("run saved", zap.String("run_id", run.ID))
	}
	return run, nil
}
