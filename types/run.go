package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RuleParams are the tunables of the threshold rule.
type RuleParams struct {
	DropThreshold decimal.Decimal `json:"dropThreshold"`
	GainThreshold decimal.Decimal `json:"gainThreshold"`
	Lookback      int             `json:"lookback"`
}

func (p RuleParams) String() string {
	return fmt.Sprintf("drop=%s gain=%s lookback=%d", p.DropThreshold, p.GainThreshold, p.Lookback)
}

// Run is everything produced by one backtest, as handed to reporters and stores.
type Run struct {
	ID           string
	Symbol       string
	Start        time.Time
	End          time.Time
	StartingCash decimal.Decimal
	Params       RuleParams
	Result       SimulationResult
	Baseline     BaselineResult
	Report       Report
	CreatedAt    time.Time
}

// RunSummary is the stored headline of a run, as listed back from a result store.
type RunSummary struct {
	ID                  string
	Symbol              string
	Start               time.Time
	End                 time.Time
	StartingCash        decimal.Decimal
	Params              RuleParams
	FinalValue          decimal.Decimal
	BuyAndHold          decimal.Decimal
	ClosedTrades        int
	InsufficientHistory bool
	CreatedAt           time.Time
}

// Summary returns the headline figures of r.
func (r Run) Summary() RunSummary {
	return RunSummary{
		ID:                  r.ID,
		Symbol:              r.Symbol,
		Start:               r.Start,
		End:                 r.End,
		StartingCash:        r.StartingCash,
		Params:              r.Params,
		FinalValue:          r.Result.FinalAccountValue,
		BuyAndHold:          r.Baseline.FinalValue,
		ClosedTrades:        r.Report.TotalTrades,
		InsufficientHistory: r.Result.InsufficientHistory,
		CreatedAt:           r.CreatedAt,
	}
}
