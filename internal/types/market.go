package types

import "time"

// MarketData is one raw OHLCV bar as read from a data file.
type MarketData struct {
	Id     string    `csv:"id" yaml:"id" json:"id"`
	Symbol string    `csv:"symbol" yaml:"symbol" json:"symbol"`
	Time   time.Time `csv:"time" yaml:"time" json:"time"`
	Open   float64   `csv:"open" yaml:"open" json:"open"`
	High   float64   `csv:"high" yaml:"high" json:"high"`
	Low    float64   `csv:"low" yaml:"low" json:"low"`
	Close  float64   `csv:"close" yaml:"close" json:"close"`
	Volume float64   `csv:"volume" yaml:"volume" json:"volume"`
}

// Bar is a MarketData row augmented by a signal provider.
//
// LongSignal and ShortSignal are 0 or 1. They are kept as float64 so a provider
// that leaves a NaN behind is caught by input validation instead of being read as 0.
// A signal on bar i only reflects information available through bar i-1.
type Bar struct {
	MarketData
	LongSignal  float64 `csv:"long_signal" yaml:"long_signal" json:"long_signal"`
	ShortSignal float64 `csv:"short_signal" yaml:"short_signal" json:"short_signal"`
}

// IsLong reports whether the long signal fired on this bar.
func (b Bar) IsLong() bool {
	return b.LongSignal == 1
}

// IsShort reports whether the short signal fired on this bar.
func (b Bar) IsShort() bool {
	return b.ShortSignal == 1
}

// Closes extracts the close column of a raw series.
func Closes(data []MarketData) []float64 {
	closes := make([]float64, len(data))
	for i, d := range data {
		closes[i] = d.Close
	}

	return closes
}

// Highs extracts the high column of a raw series.
func Highs(data []MarketData) []float64 {
	highs := make([]float64, len(data))
	for i, d := range data {
		highs[i] = d.High
	}

	return highs
}

// Lows extracts the low column of a raw series.
func Lows(data []MarketData) []float64 {
	lows := make([]float64, len(data))
	for i, d := range data {
		lows[i] = d.Low
	}

	return lows
}

func Volumes(data []MarketData) []float64 {
	volumes := make([]float64, len(data))
	for i, d := range data {
		volumes[i] = d.Volume
	}

	return volumes
}

// SameDate reports whether two timestamps fall on the same calendar date in a's location.
func SameDate(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
