package engine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"dipbacktest/mocks"
	"dipbacktest/strategies/threshold"
	"dipbacktest/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simulateCloses(t *testing.T, cash string, closes ...string) (types.SimulationResult, types.BaselineResult) {
	t.Helper()
	bars := mocks.BarsFromCloses(closes...)
	result, err := Simulate(bars, decimal.RequireFromString(cash), threshold.Default())
	require.NoError(t, err)
	baseline, err := Baseline(bars, decimal.RequireFromString(cash))
	require.NoError(t, err)
	return result, baseline
}

func TestGenerateReport(t *testing.T) {
	result, baseline := simulateCloses(t, "1000", "100", "97", "99", "103")
	report := GenerateReport(result, baseline, decimal.NewFromInt(1000))

	tests := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"net profit", report.NetProfit, "60"},
		{"return percent", report.ReturnPercent, "6"},
		{"buy and hold profit", report.BuyAndHoldProfit, "30"},
		{"excess return", report.ExcessReturn, "30"},
		{"win rate", report.WinRate, "100"},
		{"avg win", report.AvgWin, "60"},
		{"avg loss", report.AvgLoss, "0"},
		{"max drawdown", report.MaxDrawdown, "0"},
		{"exposure", report.ExposurePercent, "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", tt.got, tt.want)
		})
	}
	assert.Equal(t, 1, report.TotalTrades)
	assert.False(t, report.OpenTrade)
}

func TestGenerateReport_OpenTradeAndDrawdown(t *testing.T) {
	result, baseline := simulateCloses(t, "1000", "100", "97", "95")
	report := GenerateReport(result, baseline, decimal.NewFromInt(1000))

	assert.Equal(t, 0, report.TotalTrades)
	assert.True(t, report.OpenTrade)
	assert.True(t, report.NetProfit.Equal(decimal.NewFromInt(-20)))
	assert.True(t, report.MaxDrawdown.Equal(decimal.NewFromInt(20)))
	assert.True(t, report.MaxDrawdownPercent.Equal(decimal.NewFromInt(2)))
	assert.True(t, report.WinRate.IsZero())
}

func TestCalcTradeStats(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := []types.Trade{
		types.NewTrade(day, decimal.NewFromInt(97), 10).Closed(day.AddDate(0, 0, 2), decimal.NewFromInt(103)),
		types.NewTrade(day.AddDate(0, 0, 3), decimal.NewFromInt(100), 10).Closed(day.AddDate(0, 0, 4), decimal.NewFromInt(98)),
	}
	winRate, avgWin, avgLoss, profitFactor := calcTradeStats(closed)
	assert.True(t, winRate.Equal(decimal.NewFromInt(50)))
	assert.True(t, avgWin.Equal(decimal.NewFromInt(60)))
	assert.True(t, avgLoss.Equal(decimal.NewFromInt(20)))
	assert.True(t, profitFactor.Equal(decimal.NewFromInt(3)))

	winRate, _, _, profitFactor = calcTradeStats(nil)
	assert.True(t, winRate.IsZero())
	assert.True(t, profitFactor.IsZero())
}

func TestConsoleReporter(t *testing.T) {
	result, baseline := simulateCloses(t, "1000", "100", "97", "99", "103")
	run := types.Run{
		Symbol:       "AAPL",
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		StartingCash: decimal.NewFromInt(1000),
		Params:       threshold.Default().Params(),
		Result:       result,
		Baseline:     baseline,
		Report:       GenerateReport(result, baseline, decimal.NewFromInt(1000)),
	}

	var buf bytes.Buffer
	require.NoError(t, NewConsoleReporter(&buf).Report(context.Background(), run))
	out := buf.String()
	assert.Contains(t, out, "Start: $1000.00, End: $1060.00, Profit: $60.00")
	assert.Contains(t, out, "Buy and Hold Returns: $1030.00, Profit: $30.00")
	assert.Contains(t, out, "drop=-0.02 gain=0.03 lookback=1")
	assert.Contains(t, out, "Closed Trades:         1")
}
