package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dipbacktest/types"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"
)

type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

type AlpacaConfig struct {
	APIKey    string
	APISecret string
	// DataURL overrides the market data endpoint; empty uses the SDK default.
	DataURL string
	// Feed is iex, sip, delayed_sip or otc. Empty means iex.
	Feed string
}

// AlpacaProvider fetches split and dividend adjusted daily bars from Alpaca.
type AlpacaProvider struct {
	client barsClient
	feed   marketdata.Feed
	logger *zap.Logger
}

func NewAlpacaProvider(cfg AlpacaConfig, logger *zap.Logger) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.DataURL != "" {
		opts.BaseURL = cfg.DataURL
	}
	return newAlpacaProvider(marketdata.NewClient(opts), cfg.Feed, logger)
}

func newAlpacaProvider(client barsClient, feed string, logger *zap.Logger) *AlpacaProvider {
	f := marketdata.Feed(feed)
	if feed == "" {
		f = marketdata.IEX
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlpacaProvider{client: client, feed: f, logger: logger}
}

// FetchDaily implements engine.PriceSeriesProvider. The SDK call takes no context, so
// cancellation is only observed before the request.
func (p *AlpacaProvider) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)
	from, to := queryWindow(start, end)

	alpacaBars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      from,
		End:        to,
		Feed:       p.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	rows := make([]dailyClose, len(alpacaBars))
	for i, ab := range alpacaBars {
		rows[i] = dailyClose{timestamp: ab.Timestamp, close: ab.Close}
	}
	bars, err := toBars(rows, start, end)
	if err != nil {
		return nil, fmt.Errorf("alpaca %s: %w", symbol, err)
	}
	p.logger.Debug("fetched alpaca bars",
		zap.String("symbol", symbol),
		zap.String("feed", string(p.feed)),
		zap.Int("bars", len(bars)))
	return bars, nil
}
