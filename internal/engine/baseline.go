package engine

import (
	"fmt"

	"dipbacktest/types"

	"github.com/shopspring/decimal"
)

// BuyAndHold is the value of startingCash invested at firstClose and held to lastClose.
func BuyAndHold(firstClose, lastClose, startingCash decimal.Decimal) (decimal.Decimal, error) {
	if !firstClose.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: first close %s", ErrInvalidPriceData, firstClose)
	}
	if !lastClose.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: last close %s", ErrInvalidPriceData, lastClose)
	}
	if err := ValidateStartingCash(startingCash); err != nil {
		return decimal.Zero, err
	}
	return startingCash.Mul(lastClose).Div(firstClose), nil
}

func Baseline(bars []types.Bar, startingCash decimal.Decimal) (types.BaselineResult, error) {
	if len(bars) == 0 {
		if err := ValidateStartingCash(startingCash); err != nil {
			return types.BaselineResult{}, err
		}
		return types.BaselineResult{FinalValue: startingCash}, nil
	}
	value, err := BuyAndHold(bars[0].Close, bars[len(bars)-1].Close, startingCash)
	if err != nil {
		return types.BaselineResult{}, err
	}
	return types.BaselineResult{FinalValue: value}, nil
}

// BuyAndHoldCurve is the buy-and-hold value at every bar. Bars are assumed validated.
func BuyAndHoldCurve(bars []types.Bar, startingCash decimal.Decimal) []decimal.Decimal {
	curve := make([]decimal.Decimal, len(bars))
	if len(bars) == 0 || !bars[0].Close.IsPositive() {
		return curve
	}
	first := bars[0].Close
	for i, bar := range bars {
		curve[i] = startingCash.Mul(bar.Close).Div(first)
	}
	return curve
}
