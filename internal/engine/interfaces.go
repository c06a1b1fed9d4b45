package engine

import (
	"context"
	"time"

	"dipbacktest/types"

	"github.com/shopspring/decimal"
)

// PriceSeriesProvider supplies split/dividend adjusted daily bars, ascending by date.
// The end date is inclusive.
type PriceSeriesProvider interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error)
}

// Rule decides when the engine enters and exits. Both checks receive positive prices.
type Rule interface {
	Params() types.RuleParams
	ShouldEnter(reference, current decimal.Decimal) bool
	ShouldExit(entry, current decimal.Decimal) bool
}

type ResultReporter interface {
	Report(ctx context.Context, run types.Run) error
}

type ResultStore interface {
	SaveRun(ctx context.Context, run types.Run) error
}
