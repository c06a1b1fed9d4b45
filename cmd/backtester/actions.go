package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"dipbacktest/internal/chart"
	"dipbacktest/internal/engine"
	"dipbacktest/internal/repository"
	"dipbacktest/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func runAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	runCfg, err := a.cfg.RunConfig()
	if err != nil {
		return err
	}
	rule, err := a.cfg.Rule()
	if err != nil {
		return err
	}

	src, closeSrc, err := buildProvider(ctx, a.cfg, a.log.Logger)
	if err != nil {
		return err
	}
	defer closeSrc()
	store, closeStore, err := buildStore(ctx, a.cfg, a.log.Logger)
	if err != nil {
		return err
	}
	defer closeStore()

	reporters := []engine.ResultReporter{engine.NewConsoleReporter(a.out)}
	if path := a.cfg.Output.CSVPath; path != "" {
		reporters = append(reporters, engine.NewCSVReporter(path))
	}
	if path := a.cfg.Output.ChartPath; path != "" {
		reporters = append(reporters, chart.NewSVGReporter(path,
			chart.WithOpen(a.cfg.Output.OpenChart),
			chart.WithLogger(a.log.Logger)))
	}

	opts := []engine.Option{
		engine.WithReporters(reporters...),
		engine.WithLogger(a.log.Logger),
	}
	if store != nil {
		opts = append(opts, engine.WithStore(store))
	}
	_, err = engine.NewEngine(src, rule, opts...).Run(ctx, runCfg)
	return err
}

func sweepAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	runCfg, err := a.cfg.RunConfig()
	if err != nil {
		return err
	}
	grid, err := a.cfg.SweepRules()
	if err != nil {
		return err
	}
	rules := make([]engine.Rule, len(grid))
	for i, s := range grid {
		rules[i] = s
	}

	src, closeSrc, err := buildProvider(ctx, a.cfg, a.log.Logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	bars, err := src.FetchDaily(ctx, runCfg.Symbol, runCfg.Start, runCfg.End)
	if err != nil {
		return fmt.Errorf("%w: %w", engine.ErrFetchFailed, err)
	}
	a.log.Info("sweeping",
		zap.String("symbol", runCfg.Symbol),
		zap.Int("bars", len(bars)),
		zap.Int("rules", len(rules)),
		zap.Int("workers", a.cfg.Sweep.Workers))

	results, err := engine.Sweep(ctx, bars, runCfg.StartingCash, rules, engine.NewSweepConfig(a.cfg.Sweep.Workers, a.errOut))
	if err != nil {
		return err
	}
	baseline, err := engine.Baseline(bars, runCfg.StartingCash)
	if err != nil {
		return err
	}

	ranked := engine.RankSweep(results)
	if top := int(cmd.Int("top")); top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}
	return printSweep(a.out, runCfg, baseline, ranked)
}

func printSweep(w io.Writer, runCfg engine.RunConfig, baseline types.BaselineResult, ranked []engine.SweepResult) error {
	rows := make([][]string, len(ranked))
	for i, r := range ranked {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			r.Params.DropThreshold.String(),
			r.Params.GainThreshold.String(),
			strconv.Itoa(r.Params.Lookback),
			r.Result.FinalAccountValue.StringFixed(2),
			r.Report.ReturnPercent.StringFixed(2),
			r.Report.ExcessReturn.StringFixed(2),
			strconv.Itoa(r.Report.TotalTrades),
			r.Report.WinRate.StringFixed(1),
			r.Report.MaxDrawdownPercent.StringFixed(2),
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Drop", "Gain", "Lookback", "Final", "Return %", "Vs B&H", "Trades", "Win %", "Max DD %").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintf(w, "%s %s -> %s, start $%s, buy and hold $%s\n%s\n",
		runCfg.Symbol, runCfg.Start.Format(time.DateOnly), runCfg.End.Format(time.DateOnly),
		runCfg.StartingCash.StringFixed(2), baseline.FinalValue.StringFixed(2), t.Render())
	return err
}

func runsAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	store, err := repository.NewDuckDBStore(a.cfg.Storage.DuckDBPath, a.log.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if err := printRuns(a.out, runs); err != nil {
		return err
	}

	if dir := cmd.String("export"); dir != "" {
		paths, err := store.Export(ctx, dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(a.out, "exported", p)
		}
	}
	return nil
}

func printRuns(w io.Writer, runs []types.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no stored runs")
		return err
	}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.CreatedAt.Format(time.DateTime),
			r.ID,
			r.Symbol,
			r.Start.Format(time.DateOnly) + " -> " + r.End.Format(time.DateOnly),
			r.Params.String(),
			r.StartingCash.StringFixed(2),
			r.FinalValue.StringFixed(2),
			r.BuyAndHold.StringFixed(2),
			r.FinalValue.Sub(r.BuyAndHold).StringFixed(2),
			strconv.Itoa(r.ClosedTrades),
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Created", "ID", "Symbol", "Period", "Rule", "Start $", "Final $", "B&H $", "Excess", "Trades").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
