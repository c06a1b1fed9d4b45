package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dipbacktest/internal/engine"
	"dipbacktest/mocks"
	"dipbacktest/strategies/threshold"
	"dipbacktest/types"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var zapNop = zap.NewNop()

type mockRunsRepository struct {
	err   error
	saved []types.Run
}

func (m *mockRunsRepository) InsertRun(_ context.Context, run types.Run) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, run)
	return nil
}

// sampleRun is the [100, 97, 99, 103] round trip: BUY on day 2, SELL on day 4.
func sampleRun(t *testing.T, id string, created time.Time) types.Run {
	t.Helper()
	bars := mocks.BarsFromCloses("100", "97", "99", "103")
	cash := decimal.NewFromInt(1000)
	result, err := engine.Simulate(bars, cash, threshold.Default())
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	baseline, err := engine.Baseline(bars, cash)
	if err != nil {
		t.Fatalf("Baseline() error = %v", err)
	}
	return types.Run{
		ID:           id,
		Symbol:       "AAPL",
		Start:        bars[0].Date,
		End:          bars[len(bars)-1].Date,
		StartingCash: cash,
		Params:       threshold.Default().Params(),
		Result:       result,
		Baseline:     baseline,
		Report:       engine.GenerateReport(result, baseline, cash),
		CreatedAt:    created,
	}
}

func TestDatabase_SaveRun(t *testing.T) {
	runs := &mockRunsRepository{}
	db := &Database{runs: runs, logger: zapNop}
	run := sampleRun(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", time.Now().UTC())

	if err := db.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun() unexpected error = %v", err)
	}
	if len(runs.saved) != 1 || runs.saved[0].ID != run.ID {
		t.Errorf("SaveRun() stored %v", runs.saved)
	}

	db.runs = &mockRunsRepository{err: errBoom}
	if err := db.SaveRun(context.Background(), run); !errors.Is(err, errBoom) {
		t.Errorf("SaveRun() error = %v, want %v", err, errBoom)
	}
}

func TestQueries_SQL(t *testing.T) {
	q := &queries{sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}

	query, args, err := q.assetByTickerQuery("AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if want := "SELECT id, ticker, name, type, created_at, modified_at FROM assets WHERE ticker = $1"; query != want {
		t.Errorf("assetByTickerQuery() = %q, want %q", query, want)
	}
	if len(args) != 1 || args[0] != "AAPL" {
		t.Errorf("assetByTickerQuery() args = %v", args)
	}

	query, args, err = q.dailyClosesQuery(dailyClosesParams{AssetID: 3, StartTime: startTime, EndTime: endTime})
	if err != nil {
		t.Fatal(err)
	}
	for _, fragment := range []string{
		"time_bucket('1 day', timestamp) AS bucket",
		"last(close, timestamp) AS close",
		"asset_id = $1",
		"timestamp >= $2",
		"timestamp < $3",
		"GROUP BY bucket ORDER BY bucket ASC",
	} {
		if !strings.Contains(query, fragment) {
			t.Errorf("dailyClosesQuery() = %q, missing %q", query, fragment)
		}
	}
	if len(args) != 3 {
		t.Errorf("dailyClosesQuery() args = %v", args)
	}
}

func TestInsertSignalsQuery(t *testing.T) {
	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	run := sampleRun(t, "run-1", time.Now().UTC())

	insert, ok := insertSignalsQuery(sq, run)
	if !ok {
		t.Fatal("insertSignalsQuery() reported no signals")
	}
	_, args, err := insert.ToSql()
	if err != nil {
		t.Fatal(err)
	}
	// two signal rows of six columns
	if len(args) != 12 {
		t.Errorf("insertSignalsQuery() args = %d, want 12", len(args))
	}
	if args[2] != "BUY" || args[8] != "SELL" {
		t.Errorf("insertSignalsQuery() signals = %v, %v", args[2], args[8])
	}

	run.Result.AnnotatedBars = nil
	if _, ok := insertSignalsQuery(sq, run); ok {
		t.Error("insertSignalsQuery() with no bars reported signals")
	}

	query, _, err := insertRunQuery(sq, run).ToSql()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(query, "INSERT INTO backtest_runs (id,symbol,start_date") {
		t.Errorf("insertRunQuery() = %q", query)
	}
}
