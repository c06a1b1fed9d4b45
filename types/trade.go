package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Trade is one round trip of the single lot. Exit fields are empty while the lot is still held.
type Trade struct {
	EntryDate  time.Time
	EntryPrice decimal.Decimal
	Quantity   int64
	ExitDate   optional.Option[time.Time]
	ExitPrice  optional.Option[decimal.Decimal]
}

func NewTrade(entryDate time.Time, entryPrice decimal.Decimal, quantity int64) Trade {
	return Trade{
		EntryDate:  entryDate,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		ExitDate:   optional.None[time.Time](),
		ExitPrice:  optional.None[decimal.Decimal](),
	}
}

func (t Trade) IsOpen() bool {
	return t.ExitPrice.IsNone()
}

// Closed returns a copy of t exited at price on date.
func (t Trade) Closed(date time.Time, price decimal.Decimal) Trade {
	t.ExitDate = optional.Some(date)
	t.ExitPrice = optional.Some(price)
	return t
}

// PnL is the realized profit of a closed trade, or the profit marked at mark for an open one.
func (t Trade) PnL(mark decimal.Decimal) decimal.Decimal {
	exit := t.ExitPrice.TakeOr(mark)
	return exit.Sub(t.EntryPrice).Mul(decimal.NewFromInt(t.Quantity))
}
