package engine

import (
	"context"
	"fmt"
	"io"

	"dipbacktest/types"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GenerateReport derives summary metrics from a finished simulation.
func GenerateReport(result types.SimulationResult, baseline types.BaselineResult, startingCash decimal.Decimal) types.Report {
	report := types.Report{}
	report.NetProfit = result.FinalAccountValue.Sub(startingCash)
	report.ReturnPercent = percentOf(report.NetProfit, startingCash)
	report.BuyAndHoldProfit = baseline.FinalValue.Sub(startingCash)
	report.ExcessReturn = result.FinalAccountValue.Sub(baseline.FinalValue)

	closed := result.ClosedTrades()
	report.TotalTrades = len(closed)
	report.OpenTrade = len(closed) < len(result.Trades)
	report.WinRate, report.AvgWin, report.AvgLoss, report.ProfitFactor = calcTradeStats(closed)
	report.MaxDrawdown, report.MaxDrawdownPercent = calcDrawdown(result.AnnotatedBars)
	report.ExposurePercent = calcExposure(result.AnnotatedBars)
	return report
}

func calcTradeStats(closed []types.Trade) (winRate, avgWin, avgLoss, profitFactor decimal.Decimal) {
	if len(closed) == 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	}

	sumWins := decimal.Zero
	sumLosses := decimal.Zero // absolute
	wins, losses := 0, 0
	for _, t := range closed {
		pnl := t.PnL(decimal.Zero)
		switch {
		case pnl.IsPositive():
			sumWins = sumWins.Add(pnl)
			wins++
		case pnl.IsNegative():
			sumLosses = sumLosses.Add(pnl.Abs())
			losses++
		}
	}

	winRate = percentOf(decimal.NewFromInt(int64(wins)), decimal.NewFromInt(int64(len(closed))))
	if wins > 0 {
		avgWin = sumWins.Div(decimal.NewFromInt(int64(wins)))
	}
	if losses > 0 {
		avgLoss = sumLosses.Div(decimal.NewFromInt(int64(losses)))
		profitFactor = sumWins.Div(sumLosses)
	}
	return winRate, avgWin, avgLoss, profitFactor
}

// calcDrawdown returns the largest peak-to-trough fall of the equity curve, absolute and in percent of the peak.
func calcDrawdown(bars []types.AnnotatedBar) (decimal.Decimal, decimal.Decimal) {
	maxDD := decimal.Zero
	maxDDPct := decimal.Zero
	peak := decimal.Zero
	for _, b := range bars {
		if b.Equity.GreaterThan(peak) {
			peak = b.Equity
			continue
		}
		dd := peak.Sub(b.Equity)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
		if pct := percentOf(dd, peak); pct.GreaterThan(maxDDPct) {
			maxDDPct = pct
		}
	}
	return maxDD, maxDDPct
}

func calcExposure(bars []types.AnnotatedBar) decimal.Decimal {
	if len(bars) == 0 {
		return decimal.Zero
	}
	held := 0
	for _, b := range bars {
		if b.Quantity > 0 {
			held++
		}
	}
	return percentOf(decimal.NewFromInt(int64(held)), decimal.NewFromInt(int64(len(bars))))
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// ConsoleReporter prints the run summary in the same shape as the original command line tool.
type ConsoleReporter struct {
	w io.Writer
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (c *ConsoleReporter) Report(_ context.Context, run types.Run) error {
	return printReport(c.w, run)
}

func printReport(w io.Writer, run types.Run) error {
	r := run.Report
	lines := []string{
		fmt.Sprintf("Start: $%s, End: $%s, Profit: $%s",
			run.StartingCash.StringFixed(2), run.Result.FinalAccountValue.StringFixed(2), r.NetProfit.StringFixed(2)),
		fmt.Sprintf("Buy and Hold Returns: $%s, Profit: $%s",
			run.Baseline.FinalValue.StringFixed(2), r.BuyAndHoldProfit.StringFixed(2)),
		"",
		"===== Trading Report =====",
		fmt.Sprintf("Symbol:                %s", run.Symbol),
		fmt.Sprintf("Period:                %s -> %s", run.Start.Format("2006-01-02"), run.End.Format("2006-01-02")),
		fmt.Sprintf("Rule:                  %s", run.Params),
		fmt.Sprintf("Bars:                  %d", len(run.Result.AnnotatedBars)),
		"",
		"-- Absolute Performance --",
		fmt.Sprintf("Net Profit:            %s", r.NetProfit.StringFixed(2)),
		fmt.Sprintf("Return %%:              %s", r.ReturnPercent.StringFixed(2)),
		fmt.Sprintf("Excess vs Buy & Hold:  %s", r.ExcessReturn.StringFixed(2)),
		"",
		"-- Trade-Level Metrics --",
		fmt.Sprintf("Closed Trades:         %d", r.TotalTrades),
		fmt.Sprintf("Open At End:           %t", r.OpenTrade),
		fmt.Sprintf("Win Rate %%:            %s", r.WinRate.StringFixed(2)),
		fmt.Sprintf("Avg Win:               %s", r.AvgWin.StringFixed(2)),
		fmt.Sprintf("Avg Loss:              %s", r.AvgLoss.StringFixed(2)),
		fmt.Sprintf("Profit Factor:         %s", r.ProfitFactor.StringFixed(2)),
		"",
		"-- Drawdown Metrics --",
		fmt.Sprintf("Max Drawdown:          %s", r.MaxDrawdown.StringFixed(2)),
		fmt.Sprintf("Max Drawdown %%:        %s", r.MaxDrawdownPercent.StringFixed(2)),
		fmt.Sprintf("Exposure %%:            %s", r.ExposurePercent.StringFixed(2)),
		"==========================",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("print report: %w", err)
		}
	}
	return nil
}
