package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"dipbacktest/types"
)

// CSVReporter writes the annotated bar table of a run to a file.
type CSVReporter struct {
	path string
}

func NewCSVReporter(path string) *CSVReporter {
	return &CSVReporter{path: path}
}

func (c *CSVReporter) Report(_ context.Context, run types.Run) error {
	return writeBarsCSVFile(c.path, run)
}

// writeBarsCSVFile writes the annotated bars to a CSV file at the given path.
func writeBarsCSVFile(path string, run types.Run) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bars file: %w", err)
	}
	defer f.Close()

	if err := writeBarsCSV(f, run); err != nil {
		return err
	}
	return f.Close()
}

// writeBarsCSV writes annotated bars to any io.Writer as CSV.
// You can pass os.Stdout for debugging, or a file.
func writeBarsCSV(w io.Writer, run types.Run) error {
	cw := csv.NewWriter(w)

	header := []string{
		"date", // YYYY-MM-DD
		"close",
		"signal",
		"cash",
		"quantity",
		"equity",
		"buy_and_hold",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bars := make([]types.Bar, len(run.Result.AnnotatedBars))
	for i, ab := range run.Result.AnnotatedBars {
		bars[i] = ab.Bar
	}
	baseline := BuyAndHoldCurve(bars, run.StartingCash)

	for i, ab := range run.Result.AnnotatedBars {
		record := []string{
			ab.Date.Format(time.DateOnly),
			ab.Close.String(),
			ab.Signal.String(),
			ab.Cash.StringFixed(2),
			strconv.FormatInt(ab.Quantity, 10),
			ab.Equity.StringFixed(2),
			baseline[i].StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
