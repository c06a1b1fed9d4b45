package engine

import (
	"fmt"
	"math"
	"time"

	"dipbacktest/types"

	"github.com/shopspring/decimal"
)

// ValidateBars rejects non-positive closes and sequences that are not strictly
// increasing by date. Empty and single-bar sequences are valid.
func ValidateBars(bars []types.Bar) error {
	for i, bar := range bars {
		if !bar.Close.IsPositive() {
			return fmt.Errorf("%w: close %s on %s", ErrInvalidPriceData, bar.Close, bar.Date.Format(time.DateOnly))
		}
		if i == 0 {
			continue
		}
		prev := bars[i-1].Date
		if bar.Date.Equal(prev) {
			return fmt.Errorf("%w: duplicate bar on %s", ErrInvalidInput, bar.Date.Format(time.DateOnly))
		}
		if bar.Date.Before(prev) {
			return fmt.Errorf("%w: bar %s is before %s", ErrInvalidInput, bar.Date.Format(time.DateOnly), prev.Format(time.DateOnly))
		}
	}
	return nil
}

func ValidateStartingCash(cash decimal.Decimal) error {
	if !cash.IsPositive() {
		return fmt.Errorf("%w: starting cash must be positive, got %s", ErrInvalidInput, cash)
	}
	return nil
}

func validateParams(p types.RuleParams) error {
	if !p.DropThreshold.IsNegative() {
		return fmt.Errorf("%w: drop threshold must be negative, got %s", ErrInvalidInput, p.DropThreshold)
	}
	if !p.GainThreshold.IsPositive() {
		return fmt.Errorf("%w: gain threshold must be positive, got %s", ErrInvalidInput, p.GainThreshold)
	}
	if p.Lookback < 1 {
		return fmt.Errorf("%w: lookback must be at least 1, got %d", ErrInvalidInput, p.Lookback)
	}
	return nil
}

// BarFromFloat converts a provider close into a Bar, rejecting NaN, Inf and non-positive values.
func BarFromFloat(date time.Time, close float64) (types.Bar, error) {
	if math.IsNaN(close) || math.IsInf(close, 0) {
		return types.Bar{}, fmt.Errorf("%w: non-finite close on %s", ErrInvalidPriceData, date.Format(time.DateOnly))
	}
	if close <= 0 {
		return types.Bar{}, fmt.Errorf("%w: close %v on %s", ErrInvalidPriceData, close, date.Format(time.DateOnly))
	}
	return types.NewBar(date, decimal.NewFromFloat(close)), nil
}
