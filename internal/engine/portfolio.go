package engine

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// AccountState is the cash and single lot owned by one simulation run.
// Quantity > 0 if and only if EntryPrice is set.
type AccountState struct {
	Cash       decimal.Decimal
	Quantity   int64
	EntryPrice optional.Option[decimal.Decimal]
}

func NewAccountState(cash decimal.Decimal) *AccountState {
	return &AccountState{
		Cash:       cash,
		EntryPrice: optional.None[decimal.Decimal](),
	}
}

func (a *AccountState) IsFlat() bool {
	return a.Quantity == 0
}

// Affordable is the number of whole units the cash buys at price.
func (a *AccountState) Affordable(price decimal.Decimal) int64 {
	if !price.IsPositive() || !a.Cash.IsPositive() {
		return 0
	}
	q, _ := a.Cash.QuoRem(price, 0)
	return q.IntPart()
}

func (a *AccountState) Open(quantity int64, price decimal.Decimal) error {
	if !a.IsFlat() {
		return ErrPositionOpen
	}
	if quantity <= 0 || !price.IsPositive() {
		return fmt.Errorf("%w: open %d @ %s", ErrInvalidInput, quantity, price)
	}
	cost := price.Mul(decimal.NewFromInt(quantity))
	if cost.GreaterThan(a.Cash) {
		return fmt.Errorf("%w: cost %s, cash %s", ErrInsufficientCash, cost, a.Cash)
	}
	a.Cash = a.Cash.Sub(cost)
	a.Quantity = quantity
	a.EntryPrice = optional.Some(price)
	return nil
}

// Close sells the whole lot at price and returns the proceeds.
func (a *AccountState) Close(price decimal.Decimal) (decimal.Decimal, error) {
	if a.IsFlat() {
		return decimal.Zero, ErrNoPosition
	}
	proceeds := price.Mul(decimal.NewFromInt(a.Quantity))
	a.Cash = a.Cash.Add(proceeds)
	a.Quantity = 0
	a.EntryPrice = optional.None[decimal.Decimal]()
	return proceeds, nil
}

// Value marks the account to mark.
func (a *AccountState) Value(mark decimal.Decimal) decimal.Decimal {
	return a.Cash.Add(mark.Mul(decimal.NewFromInt(a.Quantity)))
}
