package provider

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"dipbacktest/internal/engine"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBarsClient struct {
	bars   []marketdata.Bar
	err    error
	symbol string
	req    marketdata.GetBarsRequest
}

func (m *mockBarsClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	m.symbol = symbol
	m.req = req
	return m.bars, m.err
}

var newYork, _ = time.LoadLocation("America/New_York")

// etMidnight is how both vendors stamp a daily bar.
func etMidnight(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, newYork)
}

func TestAlpacaProvider_FetchDaily(t *testing.T) {
	client := &mockBarsClient{bars: []marketdata.Bar{
		{Timestamp: etMidnight(2), Close: 100},
		{Timestamp: etMidnight(3), Close: 97.5},
		{Timestamp: etMidnight(4), Close: 99},
		{Timestamp: etMidnight(5), Close: 103},
	}}
	p := newAlpacaProvider(client, "", nil)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	bars, err := p.FetchDaily(context.Background(), "aapl", start, end)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", client.symbol)
	assert.Equal(t, marketdata.OneDay, client.req.TimeFrame)
	assert.Equal(t, marketdata.All, client.req.Adjustment)
	assert.Equal(t, marketdata.IEX, client.req.Feed)
	assert.Equal(t, start, client.req.Start)
	assert.True(t, client.req.End.After(end))

	// the 5th falls outside the inclusive end date
	require.Len(t, bars, 3)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[1].Date)
	assert.True(t, bars[1].Close.Equal(decimal.RequireFromString("97.5")))
}

func TestAlpacaProvider_Errors(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("client error", func(t *testing.T) {
		boom := errors.New("forbidden")
		p := newAlpacaProvider(&mockBarsClient{err: boom}, "sip", nil)
		_, err := p.FetchDaily(context.Background(), "AAPL", start, end)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("bad close", func(t *testing.T) {
		p := newAlpacaProvider(&mockBarsClient{bars: []marketdata.Bar{
			{Timestamp: etMidnight(2), Close: math.NaN()},
		}}, "", nil)
		_, err := p.FetchDaily(context.Background(), "AAPL", start, end)
		assert.ErrorIs(t, err, engine.ErrInvalidPriceData)
	})

	t.Run("cancelled", func(t *testing.T) {
		client := &mockBarsClient{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newAlpacaProvider(client, "", nil).FetchDaily(ctx, "AAPL", start, end)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, client.symbol)
	})

	t.Run("empty", func(t *testing.T) {
		bars, err := newAlpacaProvider(&mockBarsClient{}, "", nil).FetchDaily(context.Background(), "AAPL", start, end)
		require.NoError(t, err)
		assert.NotNil(t, bars)
		assert.Empty(t, bars)
	})
}
