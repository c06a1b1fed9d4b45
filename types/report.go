package types

import (
	"github.com/shopspring/decimal"
)

type Report struct {
	// Absolute performance
	NetProfit        decimal.Decimal
	ReturnPercent    decimal.Decimal
	BuyAndHoldProfit decimal.Decimal
	ExcessReturn     decimal.Decimal

	// Trade-level metrics
	TotalTrades  int
	OpenTrade    bool
	WinRate      decimal.Decimal
	AvgWin       decimal.Decimal
	AvgLoss      decimal.Decimal
	ProfitFactor decimal.Decimal

	// Drawdown & exposure
	MaxDrawdown        decimal.Decimal
	MaxDrawdownPercent decimal.Decimal
	ExposurePercent    decimal.Decimal
}
