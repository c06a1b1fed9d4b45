package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"dipbacktest/internal/engine"
	"dipbacktest/types"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// FileSource serves daily bars from a local CSV or Parquet file with "date" and
// "close" columns. When the file also carries a "symbol" column, rows are filtered
// by it; otherwise every row is taken as the requested symbol.
type FileSource struct {
	db     *sql.DB
	path   string
	reader string
	logger *zap.Logger
	sq     squirrel.StatementBuilderType
}

// NewFileSource opens an in-memory DuckDB to query the file at path. The format is
// chosen from the extension: .parquet is read with read_parquet, anything else with
// read_csv_auto.
func NewFileSource(path string, logger *zap.Logger) (*FileSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	reader := "read_csv_auto"
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		reader = "read_parquet"
	}
	return &FileSource{
		db:     db,
		path:   path,
		reader: reader,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// FetchDaily implements engine.PriceSeriesProvider. start and end are inclusive dates.
func (f *FileSource) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	source := fmt.Sprintf("%s('%s')", f.reader, escapeLiteral(f.path))

	hasSymbol, err := f.hasColumn(ctx, source, "symbol")
	if err != nil {
		return nil, err
	}

	query := f.sq.
		Select("CAST(date AS DATE) AS day", "CAST(close AS DOUBLE) AS close").
		From(source).
		Where("CAST(date AS DATE) >= CAST(? AS DATE)", types.DateOf(start)).
		Where("CAST(date AS DATE) <= CAST(? AS DATE)", types.DateOf(end)).
		OrderBy("day ASC")
	if hasSymbol {
		query = query.Where("upper(symbol) = ?", strings.ToUpper(symbol))
	}

	rows, err := query.RunWith(f.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", f.path, err)
	}
	defer rows.Close()

	bars := []types.Bar{}
	for rows.Next() {
		var day time.Time
		var px sql.NullFloat64
		if err := rows.Scan(&day, &px); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		if !px.Valid {
			return nil, fmt.Errorf("%w: missing close on %s", engine.ErrInvalidPriceData, day.Format(time.DateOnly))
		}
		bar, err := engine.BarFromFloat(day, px.Float64)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bars: %w", err)
	}

	f.logger.Debug("loaded bars from file",
		zap.String("path", f.path),
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)))
	return bars, nil
}

func (f *FileSource) hasColumn(ctx context.Context, source, column string) (bool, error) {
	rows, err := f.db.QueryContext(ctx, fmt.Sprintf("DESCRIBE SELECT * FROM %s", source))
	if err != nil {
		return false, fmt.Errorf("failed to describe %s: %w", f.path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return false, err
	}
	for rows.Next() {
		// DESCRIBE yields column_name first; the remaining fields are ignored.
		values := make([]any, len(cols))
		var name string
		values[0] = &name
		for i := 1; i < len(values); i++ {
			values[i] = new(any)
		}
		if err := rows.Scan(values...); err != nil {
			return false, err
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (f *FileSource) Close() error {
	if f == nil || f.db == nil {
		return nil
	}
	return f.db.Close()
}
