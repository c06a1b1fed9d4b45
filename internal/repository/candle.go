package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dipbacktest/internal/engine"
	"dipbacktest/types"

	"github.com/jackc/pgx/v5"
)

// GetDailyBars aggregates the asset's candles into one close per calendar day, start and
// end inclusive. Returns ErrNoCandles when the range is empty.
func (db *Database) GetDailyBars(ctx context.Context, assetId int, start, end time.Time) ([]types.Bar, error) {
	args := dailyClosesParams{
		AssetID:   int32(assetId),
		StartTime: types.DateOf(start),
		EndTime:   types.DateOf(end).AddDate(0, 0, 1),
	}
	rows, err := db.candles.GetDailyCloses(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCandles
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoCandles
	}
	return convertCloses(rows)
}

func convertCloses(rows []dailyCloseRow) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(rows))
	for _, row := range rows {
		if !row.Close.IsPositive() {
			return nil, fmt.Errorf("%w: close %s on %s", engine.ErrInvalidPriceData, row.Close, row.Bucket.Format(time.DateOnly))
		}
		bars = append(bars, types.NewBar(row.Bucket, row.Close))
	}
	return bars, nil
}
