package provider

import (
	"time"

	"dipbacktest/internal/engine"
	"dipbacktest/types"
)

// dailyClose is one provider row before validation.
type dailyClose struct {
	timestamp time.Time
	close     float64
}

// toBars converts provider rows into bars dated on their UTC calendar day and drops
// rows outside [start, end]. A non-finite or non-positive close fails the whole series.
func toBars(rows []dailyClose, start, end time.Time) ([]types.Bar, error) {
	from, to := types.DateOf(start), types.DateOf(end)
	bars := make([]types.Bar, 0, len(rows))
	for _, row := range rows {
		d := types.DateOf(row.timestamp)
		if d.Before(from) || d.After(to) {
			continue
		}
		bar, err := engine.BarFromFloat(d, row.close)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// queryWindow widens [start, end] to whole days: the end bound is the last instant of end.
func queryWindow(start, end time.Time) (time.Time, time.Time) {
	return types.DateOf(start), types.DateOf(end).AddDate(0, 0, 1).Add(-time.Millisecond)
}
