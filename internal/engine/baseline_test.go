package engine

import (
	"errors"
	"testing"

	"dipbacktest/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyAndHold(t *testing.T) {
	tests := []struct {
		name    string
		first   string
		last    string
		cash    string
		want    string
		wantErr error
	}{
		{"flat price returns cash", "123.45", "123.45", "1000", "1000", nil},
		{"flat price small cash", "50", "50", "500", "500", nil},
		{"three percent up", "100", "103", "1000", "1030", nil},
		{"halved", "100", "50", "1000", "500", nil},
		{"zero first close", "0", "100", "1000", "", ErrInvalidPriceData},
		{"negative first close", "-1", "100", "1000", "", ErrInvalidPriceData},
		{"zero last close", "100", "0", "1000", "", ErrInvalidPriceData},
		{"zero cash", "100", "100", "0", "", ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuyAndHold(decimal.RequireFromString(tt.first), decimal.RequireFromString(tt.last), decimal.RequireFromString(tt.cash))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestBaseline(t *testing.T) {
	got, err := Baseline(mocks.BarsFromCloses("100", "97", "99", "103"), decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, got.FinalValue.Equal(decimal.NewFromInt(1030)))

	got, err = Baseline(nil, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, got.FinalValue.Equal(decimal.NewFromInt(1000)))

	got, err = Baseline(mocks.BarsFromCloses("50"), decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, got.FinalValue.Equal(decimal.NewFromInt(500)))
}

func TestBuyAndHoldCurve(t *testing.T) {
	curve := BuyAndHoldCurve(mocks.BarsFromCloses("100", "97", "99", "103"), decimal.NewFromInt(1000))
	want := []string{"1000", "970", "990", "1030"}
	require.Len(t, curve, len(want))
	for i := range want {
		assert.True(t, curve[i].Equal(decimal.RequireFromString(want[i])), "bar %d: %s", i, curve[i])
	}
	assert.Empty(t, BuyAndHoldCurve(nil, decimal.NewFromInt(1000)))
}
