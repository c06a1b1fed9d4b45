package engine

import (
	"context"
	"fmt"
	"time"

	"dipbacktest/types"
)

// loadBars fetches the series for cfg and rejects anything the simulation cannot trust.
func (e *Engine) loadBars(ctx context.Context, cfg RunConfig) ([]types.Bar, error) {
	bars, err := e.provider.FetchDaily(ctx, cfg.Symbol, cfg.Start, cfg.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s..%s: %w", ErrFetchFailed, cfg.Symbol,
			cfg.Start.Format(time.DateOnly), cfg.End.Format(time.DateOnly), err)
	}
	if err := ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("bars for %s: %w", cfg.Symbol, err)
	}
	return bars, nil
}
