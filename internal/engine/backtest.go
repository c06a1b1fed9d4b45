package engine

import (
	"fmt"
	"time"

	"dipbacktest/types"

	"github.com/shopspring/decimal"
)

// Simulate walks bars once in date order, applying rule to a fresh account holding
// startingCash. Series too short for a single comparison give a no-trade result.
func Simulate(bars []types.Bar, startingCash decimal.Decimal, rule Rule) (types.SimulationResult, error) {
	if rule == nil {
		return types.SimulationResult{}, fmt.Errorf("%w: nil rule", ErrInvalidInput)
	}
	params := rule.Params()
	if err := validateParams(params); err != nil {
		return types.SimulationResult{}, err
	}
	if err := ValidateStartingCash(startingCash); err != nil {
		return types.SimulationResult{}, err
	}
	if err := ValidateBars(bars); err != nil {
		return types.SimulationResult{}, err
	}

	account := NewAccountState(startingCash)
	annotated := make([]types.AnnotatedBar, len(bars))
	for i, bar := range bars {
		annotated[i] = annotate(bar, types.SignalNone, account)
	}

	if len(bars) <= params.Lookback {
		return types.SimulationResult{
			FinalAccountValue:   startingCash,
			AnnotatedBars:       annotated,
			InsufficientHistory: true,
		}, nil
	}

	var trades []types.Trade
	for i := 1; i < len(bars); i++ {
		bar := bars[i]
		signal := types.SignalNone

		if account.IsFlat() {
			if i >= params.Lookback {
				reference := bars[i-params.Lookback].Close
				if reference.IsZero() {
					return types.SimulationResult{}, fmt.Errorf("%w: bar %s", ErrArithmeticHazard, bars[i-params.Lookback].Date.Format(time.DateOnly))
				}
				if rule.ShouldEnter(reference, bar.Close) {
					// The signal fires even when cash cannot cover a single unit.
					signal = types.SignalBuy
					if quantity := account.Affordable(bar.Close); quantity > 0 {
						if err := account.Open(quantity, bar.Close); err != nil {
							return types.SimulationResult{}, err
						}
						trades = append(trades, types.NewTrade(bar.Date, bar.Close, quantity))
					}
				}
			}
		} else {
			entry := account.EntryPrice.Unwrap()
			if rule.ShouldExit(entry, bar.Close) {
				signal = types.SignalSell
				if _, err := account.Close(bar.Close); err != nil {
					return types.SimulationResult{}, err
				}
				last := len(trades) - 1
				trades[last] = trades[last].Closed(bar.Date, bar.Close)
			}
		}

		annotated[i] = annotate(bar, signal, account)
	}

	return types.SimulationResult{
		FinalAccountValue: account.Value(bars[len(bars)-1].Close),
		AnnotatedBars:     annotated,
		Trades:            trades,
	}, nil
}

func annotate(bar types.Bar, signal types.Signal, account *AccountState) types.AnnotatedBar {
	return types.AnnotatedBar{
		Bar:        bar,
		Signal:     signal,
		Cash:       account.Cash,
		Quantity:   account.Quantity,
		EntryPrice: account.EntryPrice,
		Equity:     account.Value(bar.Close),
	}
}
