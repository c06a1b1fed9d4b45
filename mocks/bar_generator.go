package mocks

import (
	"math"
	"math/rand"
	"time"

	"dipbacktest/types"

	"github.com/shopspring/decimal"
)

// BarGenerator produces synthetic daily closes for tests and sweeps.
type BarGenerator struct {
	rng *rand.Rand
}

// NewBarGenerator creates a generator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewBarGenerator(seed int64) *BarGenerator {
	return &BarGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

type BarGeneratorConfig struct {
	// Start is the first trading day of the series
	Start time.Time
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the first close
	InitialPrice float64
	// Volatility is the daily standard deviation of returns (0.02 = 2%)
	Volatility float64
	// Drift is the mean daily return
	Drift float64
}

func DefaultBarConfig() BarGeneratorConfig {
	return BarGeneratorConfig{
		Start:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Count:        252,
		InitialPrice: 100,
		Volatility:   0.02,
		Drift:        0.0003,
	}
}

// Generate follows a geometric Brownian motion, skipping weekends.
// Closes are rounded to cents and never fall below one cent.
func (g *BarGenerator) Generate(cfg BarGeneratorConfig) []types.Bar {
	bars := make([]types.Bar, 0, cfg.Count)
	price := cfg.InitialPrice
	date := types.DateOf(cfg.Start)

	for len(bars) < cfg.Count {
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			date = date.AddDate(0, 0, 1)
			continue
		}
		if len(bars) > 0 {
			// Box-Muller transform for a standard normal draw
			u1 := g.rng.Float64()
			u2 := g.rng.Float64()
			if u1 < 1e-12 {
				u1 = 1e-12
			}
			z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
			price *= math.Exp(cfg.Drift - 0.5*cfg.Volatility*cfg.Volatility + cfg.Volatility*z)
		}
		close := decimal.NewFromFloat(price).Round(2)
		if close.LessThan(decimal.NewFromFloat(0.01)) {
			close = decimal.NewFromFloat(0.01)
		}
		bars = append(bars, types.NewBar(date, close))
		date = date.AddDate(0, 0, 1)
	}
	return bars
}

// BarsFromCloses builds consecutive daily bars from literal closes, starting 2024-01-01.
func BarsFromCloses(closes ...string) []types.Bar {
	bars := make([]types.Bar, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = types.NewBar(start.AddDate(0, 0, i), decimal.RequireFromString(c))
	}
	return bars
}
