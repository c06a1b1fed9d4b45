package engine

import (
	"context"
	"fmt"
	"slices"

	"dipbacktest/types"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type SweepResult struct {
	Params types.RuleParams
	Result types.SimulationResult
	Report types.Report
}

// Sweep simulates every rule against the same bars. Runs share no mutable state and
// execute on at most cfg.workers goroutines. Results keep the order of rules.
func Sweep(ctx context.Context, bars []types.Bar, startingCash decimal.Decimal, rules []Rule, cfg SweepConfig) ([]SweepResult, error) {
	if err := ValidateStartingCash(startingCash); err != nil {
		return nil, err
	}
	if err := ValidateBars(bars); err != nil {
		return nil, err
	}
	baseline, err := Baseline(bars, startingCash)
	if err != nil {
		return nil, err
	}

	workers := cfg.workers
	if workers < 1 {
		workers = 1
	}
	var bar *progressbar.ProgressBar
	if cfg.progress != nil {
		bar = initProgressBar(len(rules), cfg)
	}

	results := make([]SweepResult, len(rules))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rule := range rules {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := Simulate(bars, startingCash, rule)
			if err != nil {
				return fmt.Errorf("rule %d: %w", i, err)
			}
			results[i] = SweepResult{
				Params: rule.Params(),
				Result: result,
				Report: GenerateReport(result, baseline, startingCash),
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return results, nil
}

// RankSweep returns the results ordered by final account value, best first.
func RankSweep(results []SweepResult) []SweepResult {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b SweepResult) int {
		return b.Result.FinalAccountValue.Cmp(a.Result.FinalAccountValue)
	})
	return ranked
}

func initProgressBar(maxTicks int, cfg SweepConfig) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(cfg.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Sweeping thresholds..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
