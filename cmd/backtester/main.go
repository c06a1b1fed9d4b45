package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "backtester",
		Usage: "Backtest a buy-the-dip threshold rule against buy and hold on daily closes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config `FILE`. Flags override its values.",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log encoding (console, json)",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			sweepCommand(),
			runsCommand(),
		},
	}
}

func runCommand() *cli.Command {
	flags := append(backtestFlags(),
		&cli.StringFlag{
			Name:  "chart",
			Usage: "Write the SVG chart to `PATH` (empty disables)",
		},
		&cli.StringFlag{
			Name:  "csv",
			Usage: "Write the annotated bars to `PATH` as CSV",
		},
		&cli.BoolFlag{
			Name:  "open",
			Usage: "Open the chart with xdg-open when available",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Persist the run: none, postgres or duckdb",
		},
		&cli.StringFlag{
			Name:  "duckdb",
			Usage: "DuckDB `FILE` for --store duckdb",
		},
	)
	return &cli.Command{
		Name:   "run",
		Usage:  "Run one backtest and report it",
		Flags:  flags,
		Action: runAction,
	}
}

func sweepCommand() *cli.Command {
	flags := append(backtestFlags(),
		&cli.StringFlag{
			Name:  "drops",
			Usage: "Comma separated drop thresholds, e.g. --drops=-0.01,-0.02",
		},
		&cli.StringFlag{
			Name:  "gains",
			Usage: "Comma separated gain thresholds, e.g. --gains=0.02,0.03",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of parallel simulations",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Print only the best `N` results (0 prints all)",
		},
	)
	return &cli.Command{
		Name:   "sweep",
		Usage:  "Simulate a grid of thresholds over the same bars and rank them",
		Flags:  flags,
		Action: sweepAction,
	}
}

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List runs stored in the DuckDB file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "duckdb",
				Usage: "DuckDB `FILE` to read",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Show at most `N` runs",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Also export the run tables as Parquet into `DIR`",
			},
		},
		Action: runsAction,
	}
}

// backtestFlags are shared by run and sweep.
func backtestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "symbol",
			Aliases: []string{"s"},
			Usage:   "Ticker symbol",
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: "Start date in `YYYY-MM-DD` format",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "End date in `YYYY-MM-DD` format, inclusive",
		},
		&cli.StringFlag{
			Name:  "cash",
			Usage: "Starting cash",
		},
		&cli.StringFlag{
			Name:  "drop",
			Usage: "Entry threshold, a negative fraction, e.g. --drop=-0.02",
		},
		&cli.StringFlag{
			Name:  "gain",
			Usage: "Exit threshold, a positive fraction",
		},
		&cli.IntFlag{
			Name:  "lookback",
			Usage: "Bars between the reference close and the current close",
		},
		&cli.StringFlag{
			Name:    "provider",
			Aliases: []string{"p"},
			Usage:   "Bar source: alpaca, polygon, postgres or file",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "CSV or Parquet `FILE` for --provider file",
		},
		&cli.StringFlag{
			Name:  "feed",
			Usage: "Alpaca data feed (iex, sip)",
		},
	}
}
