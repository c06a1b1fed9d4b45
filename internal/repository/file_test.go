package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dipbacktest/internal/engine"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestFileSource_CSV(t *testing.T) {
	path := writeFile(t, "aapl.csv", `date,close
2024-01-02,100
2024-01-03,97
2024-01-04,99.5
2024-01-05,103
`)
	src, err := NewFileSource(path, zapNop)
	require.NoError(t, err)
	defer src.Close()

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []string
	}{
		{"whole file", day(1), day(31), []string{"100", "97", "99.5", "103"}},
		{"end is inclusive", day(3), day(4), []string{"97", "99.5"}},
		{"single day", day(5), day(5), []string{"103"}},
		{"empty range", day(10), day(20), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars, err := src.FetchDaily(context.Background(), "AAPL", tt.start, tt.end)
			require.NoError(t, err)
			require.NotNil(t, bars)
			require.Len(t, bars, len(tt.want))
			for i, w := range tt.want {
				assert.True(t, bars[i].Close.Equal(decimal.RequireFromString(w)), "bar %d: got %s want %s", i, bars[i].Close, w)
				assert.Equal(t, time.UTC, bars[i].Date.Location())
			}
		})
	}
}

func TestFileSource_SymbolColumn(t *testing.T) {
	path := writeFile(t, "multi.csv", `date,symbol,close
2024-01-02,AAPL,100
2024-01-02,MSFT,300
2024-01-03,AAPL,97
2024-01-03,MSFT,310
`)
	src, err := NewFileSource(path, nil)
	require.NoError(t, err)
	defer src.Close()

	bars, err := src.FetchDaily(context.Background(), "msft", day(1), day(31))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[1].Close.Equal(decimal.NewFromInt(310)))
	assert.Equal(t, day(3), bars[1].Date)
}

func TestFileSource_InvalidClose(t *testing.T) {
	path := writeFile(t, "bad.csv", `date,close
2024-01-02,100
2024-01-03,-4
`)
	src, err := NewFileSource(path, nil)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.FetchDaily(context.Background(), "AAPL", day(1), day(31))
	assert.ErrorIs(t, err, engine.ErrInvalidPriceData)
}

func TestFileSource_MissingFile(t *testing.T) {
	src, err := NewFileSource(filepath.Join(t.TempDir(), "nope.csv"), nil)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.FetchDaily(context.Background(), "AAPL", day(1), day(31))
	assert.Error(t, err)
}

func TestFileSource_Parquet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aapl.parquet")

	db, err := sql.Open("duckdb", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(fmt.Sprintf(`COPY (
		SELECT * FROM (VALUES (DATE '2024-01-02', 100.0), (DATE '2024-01-03', 97.0), (DATE '2024-01-04', 103.25)) AS t(date, close)
	) TO '%s' (FORMAT PARQUET)`, path))
	require.NoError(t, err)

	src, err := NewFileSource(path, nil)
	require.NoError(t, err)
	defer src.Close()

	bars, err := src.FetchDaily(context.Background(), "AAPL", day(1), day(31))
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.True(t, bars[2].Close.Equal(decimal.RequireFromString("103.25")))
}
