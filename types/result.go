package types

import (
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// AnnotatedBar is a bar together with the signal emitted on it and the account
// state right after that bar was processed.
type AnnotatedBar struct {
	Bar
	Signal     Signal
	Cash       decimal.Decimal
	Quantity   int64
	EntryPrice optional.Option[decimal.Decimal]
	Equity     decimal.Decimal
}

type SimulationResult struct {
	FinalAccountValue decimal.Decimal
	AnnotatedBars     []AnnotatedBar
	Trades            []Trade
	// InsufficientHistory is set when the series was too short to compare any bar.
	InsufficientHistory bool
}

func (r SimulationResult) Signals() []Signal {
	signals := make([]Signal, len(r.AnnotatedBars))
	for i, b := range r.AnnotatedBars {
		signals[i] = b.Signal
	}
	return signals
}

func (r SimulationResult) ClosedTrades() []Trade {
	var closed []Trade
	for _, t := range r.Trades {
		if !t.IsOpen() {
			closed = append(closed, t)
		}
	}
	return closed
}

type BaselineResult struct {
	FinalValue decimal.Decimal
}
