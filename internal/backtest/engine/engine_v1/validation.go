package engine

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// ValidateBars checks a signal-augmented series before it is simulated.
func ValidateBars(bars []types.Bar) error {
	for i, bar := range bars {
		if bar.Time.IsZero() {
			return errors.Newf(errors.ErrCodeInvalidBarSeries, "bar %d: missing timestamp", i)
		}

		if i > 0 && bar.Time.Before(bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeInvalidBarSeries, "bar %d: timestamp %s is before %s",
				i, bar.Time, bars[i-1].Time)
		}

		prices := []struct {
			name  string
			value float64
		}{
			{"open", bar.Open},
			{"high", bar.High},
			{"low", bar.Low},
			{"close", bar.Close},
		}

		for _, p := range prices {
			if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value <= 0 {
				return errors.Newf(errors.ErrCodeInvalidBarSeries, "bar %d: %s must be a positive number, got %v", i, p.name, p.value)
			}
		}

		if math.IsNaN(bar.Volume) || math.IsInf(bar.Volume, 0) || bar.Volume < 0 {
			return errors.Newf(errors.ErrCodeInvalidBarSeries, "bar %d: volume must be non-negative, got %v", i, bar.Volume)
		}

		if !isSignalValue(bar.LongSignal) {
			return errors.Newf(errors.ErrCodeInvalidBarSeries, "bar %d: long signal must be 0 or 1, got %v", i, bar.LongSignal)
		}

		if !isSignalValue(bar.ShortSignal) {
			return errors.Newf(errors.ErrCodeInvalidBarSeries, "bar %d: short signal must be 0 or 1, got %v", i, bar.ShortSignal)
		}
	}

	return nil
}

func isSignalValue(v float64) bool {
	return v == 0 || v == 1
}

func validateCapital(initialCapital float64) error {
	if math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) || initialCapital < 0 {
		return errors.Newf(errors.ErrCodeInvalidRiskParams, "initial capital must be a non-negative number, got %v", initialCapital)
	}

	return nil
}
