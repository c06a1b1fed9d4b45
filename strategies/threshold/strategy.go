package threshold

import (
	"errors"
	"fmt"

	"dipbacktest/types"

	"github.com/shopspring/decimal"
)

var ErrInvalidParams = errors.New("invalid threshold parameters")

var (
	DefaultDropThreshold = decimal.RequireFromString("-0.02")
	DefaultGainThreshold = decimal.RequireFromString("0.03")
)

const DefaultLookback = 1

// Strategy buys after the close falls by more than the drop threshold against the
// close lookback bars earlier, and sells once the unrealized gain over the entry
// price exceeds the gain threshold. Both comparisons are strict.
type Strategy struct {
	params types.RuleParams
}

func New(drop, gain decimal.Decimal, lookback int) (*Strategy, error) {
	if !drop.IsNegative() {
		return nil, fmt.Errorf("%w: drop threshold %s must be negative", ErrInvalidParams, drop)
	}
	if !gain.IsPositive() {
		return nil, fmt.Errorf("%w: gain threshold %s must be positive", ErrInvalidParams, gain)
	}
	if lookback < 1 {
		return nil, fmt.Errorf("%w: lookback %d must be at least 1", ErrInvalidParams, lookback)
	}
	return &Strategy{
		params: types.RuleParams{
			DropThreshold: drop,
			GainThreshold: gain,
			Lookback:      lookback,
		},
	}, nil
}

// Default is -2% to enter, +3% to exit, comparing against the previous bar.
func Default() *Strategy {
	return &Strategy{
		params: types.RuleParams{
			DropThreshold: DefaultDropThreshold,
			GainThreshold: DefaultGainThreshold,
			Lookback:      DefaultLookback,
		},
	}
}

func (s *Strategy) Params() types.RuleParams {
	return s.params
}

// ShouldEnter reports (current-reference)/reference < drop. The ratio is compared
// as current-reference < drop*reference so that boundary values stay exact.
func (s *Strategy) ShouldEnter(reference, current decimal.Decimal) bool {
	return current.Sub(reference).LessThan(reference.Mul(s.params.DropThreshold))
}

// ShouldExit reports (current-entry)/entry > gain, evaluated without division.
func (s *Strategy) ShouldExit(entry, current decimal.Decimal) bool {
	return current.Sub(entry).GreaterThan(entry.Mul(s.params.GainThreshold))
}

func (s *Strategy) String() string {
	return s.params.String()
}

// Grid builds one strategy per (drop, gain) pair, drops varying slowest.
func Grid(drops, gains []decimal.Decimal, lookback int) ([]*Strategy, error) {
	if len(drops) == 0 || len(gains) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidParams)
	}
	grid := make([]*Strategy, 0, len(drops)*len(gains))
	for _, drop := range drops {
		for _, gain := range gains {
			s, err := New(drop, gain, lookback)
			if err != nil {
				return nil, err
			}
			grid = append(grid, s)
		}
	}
	return grid, nil
}
