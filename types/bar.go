package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily observation of an instrument. Date is normalised to UTC midnight.
type Bar struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

func NewBar(date time.Time, close decimal.Decimal) Bar {
	return Bar{
		Date:  DateOf(date),
		Close: close,
	}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
