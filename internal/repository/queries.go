package repository

import (
	"context"
	"fmt"
	"time"

	"dipbacktest/types"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type assetRow struct {
	ID         int32
	Ticker     string
	Name       string
	Type       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

type dailyClosesParams struct {
	AssetID   int32
	StartTime time.Time
	// EndTime is exclusive.
	EndTime time.Time
}

type dailyCloseRow struct {
	Bucket time.Time
	Close  decimal.Decimal
}

// queries runs the SQL behind Database against a pgx pool.
type queries struct {
	pool *pgxpool.Pool
	sq   squirrel.StatementBuilderType
}

func (q *queries) GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	query, args, err := q.assetByTickerQuery(ticker)
	if err != nil {
		return assetRow{}, err
	}
	var a assetRow
	err = q.pool.QueryRow(ctx, query, args...).
		Scan(&a.ID, &a.Ticker, &a.Name, &a.Type, &a.CreatedAt, &a.ModifiedAt)
	return a, err
}

func (q *queries) assetByTickerQuery(ticker string) (string, []any, error) {
	return q.sq.
		Select("id", "ticker", "name", "type", "created_at", "modified_at").
		From("assets").
		Where(squirrel.Eq{"ticker": ticker}).
		ToSql()
}

func (q *queries) GetDailyCloses(ctx context.Context, arg dailyClosesParams) ([]dailyCloseRow, error) {
	query, args, err := q.dailyClosesQuery(arg)
	if err != nil {
		return nil, err
	}
	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (dailyCloseRow, error) {
		var r dailyCloseRow
		err := row.Scan(&r.Bucket, &r.Close)
		return r, err
	})
}

func (q *queries) dailyClosesQuery(arg dailyClosesParams) (string, []any, error) {
	return q.sq.
		Select("time_bucket('1 day', timestamp) AS bucket", "last(close, timestamp) AS close").
		From("candles").
		Where(squirrel.Eq{"asset_id": arg.AssetID}).
		Where(squirrel.GtOrEq{"timestamp": arg.StartTime}).
		Where(squirrel.Lt{"timestamp": arg.EndTime}).
		GroupBy("bucket").
		OrderBy("bucket ASC").
		ToSql()
}

// InsertRun writes the run row and its non-NONE signals in one transaction.
func (q *queries) InsertRun(ctx context.Context, run types.Run) error {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := insertRunQuery(q.sq, run).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert backtest_runs: %w", err)
	}

	if insert, ok := insertSignalsQuery(q.sq, run); ok {
		query, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert backtest_signals: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func insertRunQuery(sq squirrel.StatementBuilderType, run types.Run) squirrel.InsertBuilder {
	return sq.
		Insert("backtest_runs").
		Columns(
			"id", "symbol", "start_date", "end_date", "starting_cash", "drop_threshold", "gain_threshold",
			"lookback", "final_value", "buy_and_hold", "closed_trades", "insufficient_history", "created_at",
		).
		Values(
			run.ID, run.Symbol, run.Start, run.End, run.StartingCash, run.Params.DropThreshold, run.Params.GainThreshold,
			run.Params.Lookback, run.Result.FinalAccountValue, run.Baseline.FinalValue, run.Report.TotalTrades,
			run.Result.InsufficientHistory, run.CreatedAt,
		)
}

// insertSignalsQuery builds one multi-row insert for the BUY and SELL bars of run.
// ok is false when the run emitted no signals.
func insertSignalsQuery(sq squirrel.StatementBuilderType, run types.Run) (insert squirrel.InsertBuilder, ok bool) {
	insert = sq.
		Insert("backtest_signals").
		Columns("run_id", "date", "signal", "close", "quantity", "cash")
	for _, b := range run.Result.AnnotatedBars {
		if b.Signal == types.SignalNone {
			continue
		}
		insert = insert.Values(run.ID, b.Date, b.Signal.String(), b.Close, b.Quantity, b.Cash)
		ok = true
	}
	return insert, ok
}
