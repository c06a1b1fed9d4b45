package engine

import (
	"math"
	"testing"
	"time"

	"dipbacktest/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBars(t *testing.T) {
	assert.NoError(t, ValidateBars(nil))
	assert.NoError(t, ValidateBars(mocks.BarsFromCloses("100")))

	gapped := mocks.BarsFromCloses("100", "101", "102")
	gapped[2].Date = gapped[2].Date.AddDate(0, 0, 3)
	assert.NoError(t, ValidateBars(gapped), "gaps for non-trading days are allowed")

	assert.ErrorIs(t, ValidateBars(mocks.BarsFromCloses("100", "0")), ErrInvalidPriceData)
}

func TestBarFromFloat(t *testing.T) {
	date := time.Date(2024, 3, 4, 5, 0, 0, 0, time.UTC)

	bar, err := BarFromFloat(date, 187.25)
	require.NoError(t, err)
	assert.Equal(t, "187.25", bar.Close.String())
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), bar.Date)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -3} {
		_, err := BarFromFloat(date, v)
		assert.ErrorIs(t, err, ErrInvalidPriceData, "value %v", v)
	}
}
