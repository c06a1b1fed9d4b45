package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dipbacktest/types"

	"github.com/Masterminds/squirrel"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Global error declarations.
var (
	ErrAssetNotFound = errors.New("not found in datasource")
	ErrNoCandles     = errors.New("no candles found in datasource")
)

type assetsRepository interface {
	GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error)
}
type candlesRepository interface {
	GetDailyCloses(ctx context.Context, arg dailyClosesParams) ([]dailyCloseRow, error)
}
type runsRepository interface {
	InsertRun(ctx context.Context, run types.Run) error
}

// Database struct that holds the database connection and queries.
type Database struct {
	assets  assetsRepository
	candles candlesRepository
	runs    runsRepository
	conn    *pgxpool.Pool
	logger  *zap.Logger
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string, logger *zap.Logger) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	q := &queries{
		pool: conn,
		sq:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return &Database{
		assets:  q,
		candles: q,
		runs:    q,
		conn:    conn,
		logger:  logger,
	}, nil
}

// Migrate creates the run tables when they are missing. Assets and candles are owned
// by the ingestion side and are expected to exist.
func (db *Database) Migrate(ctx context.Context) error {
	if _, err := db.conn.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}

// FetchDaily implements engine.PriceSeriesProvider over the candle hypertable.
// A ticker with no candles in range yields an empty series.
func (db *Database) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	asset, err := db.GetAssetByTicker(ctx, symbol)
	if err != nil {
		return nil, err
	}
	bars, err := db.GetDailyBars(ctx, asset.Id, start, end)
	if errors.Is(err, ErrNoCandles) {
		db.logger.Debug("no candles in range",
			zap.String("symbol", symbol),
			zap.Time("start", start),
			zap.Time("end", end))
		return []types.Bar{}, nil
	}
	if err != nil {
		return nil, err
	}
	return bars, nil
}

// SaveRun implements engine.ResultStore.
func (db *Database) SaveRun(ctx context.Context, run types.Run) error {
	if err := db.runs.InsertRun(ctx, run); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	db.logger.Debug("run stored in postgres", zap.String("run_id", run.ID))
	return nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id                   UUID PRIMARY KEY,
	symbol               TEXT NOT NULL,
	start_date           DATE NOT NULL,
	end_date             DATE NOT NULL,
	starting_cash        NUMERIC NOT NULL,
	drop_threshold       NUMERIC NOT NULL,
	gain_threshold       NUMERIC NOT NULL,
	lookback             INTEGER NOT NULL,
	final_value          NUMERIC NOT NULL,
	buy_and_hold         NUMERIC NOT NULL,
	closed_trades        INTEGER NOT NULL,
	insufficient_history BOOLEAN NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS backtest_signals (
	run_id   UUID NOT NULL REFERENCES backtest_runs (id) ON DELETE CASCADE,
	date     DATE NOT NULL,
	signal   TEXT NOT NULL,
	close    NUMERIC NOT NULL,
	quantity BIGINT NOT NULL,
	cash     NUMERIC NOT NULL,
	PRIMARY KEY (run_id, date)
);
`
