package chart

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"os/exec"

	"dipbacktest/internal/engine"
	"dipbacktest/types"

	"go.uber.org/zap"
)

const (
	defaultWidth  = 1000
	defaultHeight = 400
	padLeft       = 60
	padTop        = 40
	padRight      = 20
	padBottom     = 40
)

type point struct{ X, Y float64 }

// SVGReporter draws the close series, BUY and SELL markers and the buy-and-hold
// curve of a run into an SVG file.
type SVGReporter struct {
	path   string
	open   bool
	width  int
	height int
	logger *zap.Logger
	// opener launches a viewer; swapped out in tests.
	opener func(path string) error
}

type Option func(*SVGReporter)

// WithOpen asks the reporter to open the chart with xdg-open after writing it.
func WithOpen(open bool) Option {
	return func(r *SVGReporter) { r.open = open }
}

func WithSize(width, height int) Option {
	return func(r *SVGReporter) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *SVGReporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewSVGReporter(path string, opts ...Option) *SVGReporter {
	r := &SVGReporter{
		path:   path,
		width:  defaultWidth,
		height: defaultHeight,
		logger: zap.NewNop(),
		opener: xdgOpen,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SVGReporter) Report(_ context.Context, run types.Run) error {
	if err := os.WriteFile(r.path, Render(run, r.width, r.height), 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	if !r.open {
		r.logger.Info("chart saved", zap.String("path", r.path))
		return nil
	}
	if err := r.opener(r.path); err != nil {
		r.logger.Info("chart saved, no viewer available", zap.String("path", r.path), zap.Error(err))
	}
	return nil
}

func xdgOpen(path string) error {
	bin, err := exec.LookPath("xdg-open")
	if err != nil {
		return err
	}
	return exec.Command(bin, path).Start()
}

// Title is the chart heading: symbol, starting cash and final account value.
func Title(run types.Run) string {
	return fmt.Sprintf("%s Backtest: $%s -> $%s",
		run.Symbol, run.StartingCash.StringFixed(2), run.Result.FinalAccountValue.StringFixed(2))
}

// Render draws run as an SVG document of the given size.
func Render(run types.Run, w, h int) []byte {
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	plotW := float64(w - padLeft - padRight)
	plotH := float64(h - padTop - padBottom)

	var b bytes.Buffer
	fmt.Fprintf(&b, "<svg xmlns='http://www.w3.org/2000/svg' width='%d' height='%d' viewBox='0 0 %d %d'>", w, h, w, h)
	b.WriteString("<rect width='100%' height='100%' fill='#ffffff'/>")
	fmt.Fprintf(&b, "<text x='%d' y='24' fill='#111111' font-family='sans-serif' font-size='16'>%s</text>",
		padLeft, html.EscapeString(Title(run)))

	annotated := run.Result.AnnotatedBars
	if len(annotated) == 0 {
		b.WriteString("</svg>")
		return b.Bytes()
	}

	bars := make([]types.Bar, len(annotated))
	for i, ab := range annotated {
		bars[i] = ab.Bar
	}
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close.InexactFloat64()
	}
	// buy-and-hold value shares the price axis
	baseline := make([]float64, len(bars))
	for i, v := range engine.BuyAndHoldCurve(bars, run.StartingCash) {
		baseline[i] = v.InexactFloat64()
	}

	lo, hi := closes[0], closes[0]
	for i := range closes {
		lo = min(lo, closes[i], baseline[i])
		hi = max(hi, closes[i], baseline[i])
	}
	if hi == lo {
		hi, lo = hi+1, lo-1
	}
	scale := func(i int, y float64) point {
		x := 0.0
		if len(bars) > 1 {
			x = float64(i) * plotW / float64(len(bars)-1)
		}
		return point{
			X: float64(padLeft) + x,
			Y: float64(padTop) + plotH - (y-lo)*plotH/(hi-lo),
		}
	}

	// axes
	fmt.Fprintf(&b, "<line x1='%d' y1='%d' x2='%d' y2='%d' stroke='#888888'/>", padLeft, padTop, padLeft, h-padBottom)
	fmt.Fprintf(&b, "<line x1='%d' y1='%d' x2='%d' y2='%d' stroke='#888888'/>", padLeft, h-padBottom, w-padRight, h-padBottom)
	fmt.Fprintf(&b, "<text x='4' y='%d' font-family='sans-serif' font-size='11'>%.2f</text>", padTop+4, hi)
	fmt.Fprintf(&b, "<text x='4' y='%d' font-family='sans-serif' font-size='11'>%.2f</text>", h-padBottom, lo)
	fmt.Fprintf(&b, "<text x='%d' y='%d' font-family='sans-serif' font-size='11'>%s</text>",
		padLeft, h-padBottom+16, bars[0].Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "<text x='%d' y='%d' font-family='sans-serif' font-size='11' text-anchor='end'>%s</text>",
		w-padRight, h-padBottom+16, bars[len(bars)-1].Date.Format("2006-01-02"))

	writePolyline(&b, closes, scale, "stroke='#1f77b4' stroke-width='1.5'", "close")
	writePolyline(&b, baseline, scale, "stroke='#1f3fff' stroke-width='1' stroke-dasharray='6,4'", "buy-and-hold")

	for i, ab := range annotated {
		p := scale(i, closes[i])
		switch ab.Signal {
		case types.SignalBuy:
			fmt.Fprintf(&b, "<polygon class='buy' points='%.2f,%.2f %.2f,%.2f %.2f,%.2f' fill='#2ca02c'/>",
				p.X, p.Y-7, p.X-6, p.Y+5, p.X+6, p.Y+5)
		case types.SignalSell:
			fmt.Fprintf(&b, "<polygon class='sell' points='%.2f,%.2f %.2f,%.2f %.2f,%.2f' fill='#d62728'/>",
				p.X, p.Y+7, p.X-6, p.Y-5, p.X+6, p.Y-5)
		}
	}

	b.WriteString("</svg>")
	return b.Bytes()
}

func writePolyline(b *bytes.Buffer, ys []float64, scale func(int, float64) point, style, class string) {
	fmt.Fprintf(b, "<polyline class='%s' fill='none' %s points='", class, style)
	for i, y := range ys {
		p := scale(i, y)
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(b, "%.2f,%.2f", p.X, p.Y)
	}
	b.WriteString("'/>")
}
