package engine

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RunConfig is the explicit input of one backtest run. End is inclusive.
type RunConfig struct {
	Symbol       string
	Start        time.Time
	End          time.Time
	StartingCash decimal.Decimal
}

func NewRunConfig(symbol string, start, end time.Time, startingCash decimal.Decimal) RunConfig {
	return RunConfig{
		Symbol:       strings.ToUpper(strings.TrimSpace(symbol)),
		Start:        start,
		End:          end,
		StartingCash: startingCash,
	}
}

func (c RunConfig) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if c.End.Before(c.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidInput, c.End.Format(time.DateOnly), c.Start.Format(time.DateOnly))
	}
	return ValidateStartingCash(c.StartingCash)
}

type SweepConfig struct {
	workers int
	// progress receives the progress bar; nil disables it.
	progress io.Writer
}

func NewSweepConfig(workers int, progress io.Writer) SweepConfig {
	if workers < 1 {
		workers = 1
	}
	return SweepConfig{
		workers:  workers,
		progress: progress,
	}
}
