package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// DataGenerator generates realistic market data for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how market data is generated.
type GeneratorConfig struct {
	// Symbol is the trading symbol (e.g., "NIFTY")
	Symbol string
	// StartTime is the first bar of the first session
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of data points to generate
	Count int
	// BarsPerSession splits the series into daily sessions. After that many bars
	// the clock jumps to StartTime's time of day on the next calendar date. 0 means one continuous session.
	BarsPerSession int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement per bar (0.002 = 0.2%)
	Volatility float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns an NSE style 5 minute session of 75 bars.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC),
		Interval:       5 * time.Minute,
		Count:          750,
		BarsPerSession: 75,
		InitialPrice:   100.0,
		Volatility:     0.002,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate creates bars following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.MarketData {
	data := make([]types.MarketData, config.Count)
	currentPrice := config.InitialPrice
	sessionStart := config.StartTime
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		if config.BarsPerSession > 0 && i > 0 && i%config.BarsPerSession == 0 {
			sessionStart = sessionStart.AddDate(0, 0, 1)
			currentTime = sessionStart
		}

		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		close := open * (1 + config.Volatility*z)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		data[i] = types.MarketData{
			Id:     "",
			Symbol: config.Symbol,
			Time:   currentTime,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(close, 4),
			Volume: roundToDecimals(volume, 2),
		}

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return data
}

// GenerateBars generates bars and attaches random long and short signals.
// Each bar independently fires a long signal with probability signalRate, and
// otherwise a short signal with the same probability.
func (g *DataGenerator) GenerateBars(config GeneratorConfig, signalRate float64) []types.Bar {
	data := g.Generate(config)
	bars := make([]types.Bar, len(data))

	for i, d := range data {
		bars[i] = types.Bar{MarketData: d}

		switch r := g.rng.Float64(); {
		case r < signalRate:
			bars[i].LongSignal = 1
		case r < 2*signalRate:
			bars[i].ShortSignal = 1
		}
	}

	return bars
}

// WithoutSignals wraps raw market data in bars with both signals at 0.
func WithoutSignals(data []types.MarketData) []types.Bar {
	bars := make([]types.Bar, len(data))
	for i, d := range data {
		bars[i] = types.Bar{MarketData: d}
	}

	return bars
}

func roundToDecimals(value float64, decimals int) float64 {
	multiplier := math.Pow10(decimals)

	return math.Round(value*multiplier) / multiplier
}
