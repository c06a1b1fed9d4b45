package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"dipbacktest/internal/engine"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements aggsClient for testing.
type mockPolygonAPIClient struct {
	iterator aggsIterator
	params   *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) aggsIterator {
	m.params = params
	return m.iterator
}

// mockPolygonIterator implements aggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++
		return true
	}
	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}
	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

func agg(day int, px float64) models.Agg {
	return models.Agg{Timestamp: models.Millis(etMidnight(day)), Close: px}
}

type PolygonProviderTestSuite struct {
	suite.Suite
	start time.Time
	end   time.Time
}

func TestPolygonProviderSuite(t *testing.T) {
	suite.Run(t, new(PolygonProviderTestSuite))
}

func (suite *PolygonProviderTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonProviderTestSuite) TestNewPolygonProvider_EmptyApiKey() {
	p, err := NewPolygonProvider("", nil)
	suite.Error(err)
	suite.Nil(p)
}

func (suite *PolygonProviderTestSuite) TestNewPolygonProvider_ValidApiKey() {
	p, err := NewPolygonProvider("test-api-key", nil)
	suite.NoError(err)
	suite.NotNil(p)
}

func (suite *PolygonProviderTestSuite) TestFetchDaily() {
	client := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{
		agg(1, 99), agg(2, 100), agg(3, 97), agg(4, 103.25), agg(5, 101),
	}}}
	p := newPolygonProvider(client, nil)

	bars, err := p.FetchDaily(context.Background(), "spy", suite.start, suite.end)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)
	suite.Equal(suite.start, bars[0].Date)
	suite.True(bars[2].Close.Equal(decimal.RequireFromString("103.25")))

	suite.Require().NotNil(client.params)
	suite.Equal("SPY", client.params.Ticker)
	suite.Equal(models.Day, client.params.Timespan)
	suite.Equal(1, client.params.Multiplier)
	suite.Require().NotNil(client.params.Adjusted)
	suite.True(*client.params.Adjusted)
}

func (suite *PolygonProviderTestSuite) TestFetchDaily_IteratorError() {
	boom := errors.New("rate limited")
	client := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{agg(2, 100)}, err: boom}}

	_, err := newPolygonProvider(client, nil).FetchDaily(context.Background(), "SPY", suite.start, suite.end)
	suite.ErrorIs(err, boom)
}

func (suite *PolygonProviderTestSuite) TestFetchDaily_InvalidClose() {
	client := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{agg(2, 100), agg(3, 0)}}}

	_, err := newPolygonProvider(client, nil).FetchDaily(context.Background(), "SPY", suite.start, suite.end)
	suite.ErrorIs(err, engine.ErrInvalidPriceData)
}

func (suite *PolygonProviderTestSuite) TestFetchDaily_Empty() {
	client := &mockPolygonAPIClient{iterator: &mockPolygonIterator{}}

	bars, err := newPolygonProvider(client, nil).FetchDaily(context.Background(), "SPY", suite.start, suite.end)
	suite.NoError(err)
	suite.NotNil(bars)
	suite.Empty(bars)
}
