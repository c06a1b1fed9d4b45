package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dipbacktest/types"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"
)

type aggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

type aggsClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) aggsIterator
}

// polygonAPI adapts the REST client so its generic iterator satisfies aggsClient.
type polygonAPI struct {
	client *polygon.Client
}

func (a polygonAPI) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) aggsIterator {
	return a.client.ListAggs(ctx, params, options...)
}

// PolygonProvider fetches adjusted daily aggregates from Polygon.io.
type PolygonProvider struct {
	client aggsClient
	logger *zap.Logger
}

func NewPolygonProvider(apiKey string, logger *zap.Logger) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New("polygon api key is required")
	}
	return newPolygonProvider(polygonAPI{client: polygon.New(apiKey)}, logger), nil
}

func newPolygonProvider(client aggsClient, logger *zap.Logger) *PolygonProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolygonProvider{client: client, logger: logger}
}

// FetchDaily implements engine.PriceSeriesProvider.
func (p *PolygonProvider) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	symbol = strings.ToUpper(symbol)
	from, to := queryWindow(start, end)

	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(50000)

	rows := aggsToRows(p.client.ListAggs(ctx, params))
	if err := rows.err; err != nil {
		return nil, fmt.Errorf("ListAggs %s: %w", symbol, err)
	}
	bars, err := toBars(rows.closes, start, end)
	if err != nil {
		return nil, fmt.Errorf("polygon %s: %w", symbol, err)
	}
	p.logger.Debug("fetched polygon bars", zap.String("symbol", symbol), zap.Int("bars", len(bars)))
	return bars, nil
}

type aggRows struct {
	closes []dailyClose
	err    error
}

func aggsToRows(iter aggsIterator) aggRows {
	var rows aggRows
	for iter.Next() {
		agg := iter.Item()
		rows.closes = append(rows.closes, dailyClose{
			timestamp: time.Time(agg.Timestamp),
			close:     agg.Close,
		})
	}
	rows.err = iter.Err()
	return rows
}
