package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dipbacktest/types"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DuckDBStore keeps runs in a local DuckDB file. Money columns are DOUBLE; the
// stored figures are for browsing, the exact values live in the run itself.
type DuckDBStore struct {
	db     *sql.DB
	logger *zap.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBStore opens (or creates) the database at path and creates the run tables.
// Pass ":memory:" for a throwaway store.
func NewDuckDBStore(path string, logger *zap.Logger) (*DuckDBStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &DuckDBStore{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS backtest_runs (
			id                   VARCHAR PRIMARY KEY,
			symbol               VARCHAR NOT NULL,
			start_date           DATE NOT NULL,
			end_date             DATE NOT NULL,
			starting_cash        DOUBLE NOT NULL,
			drop_threshold       DOUBLE NOT NULL,
			gain_threshold       DOUBLE NOT NULL,
			lookback             INTEGER NOT NULL,
			final_value          DOUBLE NOT NULL,
			buy_and_hold         DOUBLE NOT NULL,
			closed_trades        INTEGER NOT NULL,
			insufficient_history BOOLEAN NOT NULL,
			created_at           TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS backtest_signals (
			run_id   VARCHAR NOT NULL,
			date     DATE NOT NULL,
			signal   VARCHAR NOT NULL,
			close    DOUBLE NOT NULL,
			quantity BIGINT NOT NULL,
			cash     DOUBLE NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// SaveRun implements engine.ResultStore.
func (s *DuckDBStore) SaveRun(ctx context.Context, run types.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = s.sq.
		Insert("backtest_runs").
		Columns(
			"id", "symbol", "start_date", "end_date", "starting_cash", "drop_threshold", "gain_threshold",
			"lookback", "final_value", "buy_and_hold", "closed_trades", "insufficient_history", "created_at",
		).
		Values(
			run.ID, run.Symbol, run.Start, run.End,
			run.StartingCash.InexactFloat64(),
			run.Params.DropThreshold.InexactFloat64(),
			run.Params.GainThreshold.InexactFloat64(),
			run.Params.Lookback,
			run.Result.FinalAccountValue.InexactFloat64(),
			run.Baseline.FinalValue.InexactFloat64(),
			run.Report.TotalTrades,
			run.Result.InsufficientHistory,
			run.CreatedAt,
		).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	signals := s.sq.
		Insert("backtest_signals").
		Columns("run_id", "date", "signal", "close", "quantity", "cash")
	n := 0
	for _, b := range run.Result.AnnotatedBars {
		if b.Signal == types.SignalNone {
			continue
		}
		signals = signals.Values(run.ID, b.Date, b.Signal.String(), b.Close.InexactFloat64(), b.Quantity, b.Cash.InexactFloat64())
		n++
	}
	if n > 0 {
		if _, err := signals.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to insert signals: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("run stored in duckdb", zap.String("run_id", run.ID), zap.Int("signals", n))
	return nil
}

// ListRuns returns up to limit stored runs, newest first. limit <= 0 returns all.
func (s *DuckDBStore) ListRuns(ctx context.Context, limit int) ([]types.RunSummary, error) {
	query := s.sq.
		Select(
			"id", "symbol", "start_date", "end_date", "starting_cash", "drop_threshold", "gain_threshold",
			"lookback", "final_value", "buy_and_hold", "closed_trades", "insufficient_history", "created_at",
		).
		From("backtest_runs").
		OrderBy("created_at DESC", "id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunSummary
	for rows.Next() {
		var r types.RunSummary
		var cash, drop, gain, finalValue, buyAndHold float64
		err := rows.Scan(
			&r.ID, &r.Symbol, &r.Start, &r.End, &cash, &drop, &gain,
			&r.Params.Lookback, &finalValue, &buyAndHold, &r.ClosedTrades, &r.InsufficientHistory, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartingCash = decimal.NewFromFloat(cash)
		r.Params.DropThreshold = decimal.NewFromFloat(drop)
		r.Params.GainThreshold = decimal.NewFromFloat(gain)
		r.FinalValue = decimal.NewFromFloat(finalValue)
		r.BuyAndHold = decimal.NewFromFloat(buyAndHold)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// Export writes both tables as Parquet files into dir and returns their paths.
func (s *DuckDBStore) Export(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var paths []string
	for _, table := range []string{"backtest_runs", "backtest_signals"} {
		path := filepath.Join(dir, table+".parquet")
		// COPY takes no bind parameters for the target.
		stmt := fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, escapeLiteral(path))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", table, err)
		}
		paths = append(paths, path)
	}
	s.logger.Info("exported runs", zap.Strings("files", paths))
	return paths, nil
}

func (s *DuckDBStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
