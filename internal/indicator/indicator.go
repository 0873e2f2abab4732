package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// SignalProvider turns a raw bar series into signal-augmented bars.
// A crossover detected on bar i is emitted on bar i+1 so a signal never sees
// the close of the bar it fires on. Bars inside the warm-up window carry no signal.
type SignalProvider interface {
	// Name returns the strategy the provider implements
	Name() types.StrategyName
	// ComputeSignals returns one bar per input bar with LongSignal and ShortSignal set to 0 or 1
	ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error)
}

// periodParam reads a required integer parameter that must be at least min.
func periodParam(name types.StrategyName, params types.StrategyParams, key string, min int) (int, error) {
	v, ok := params.Float(key)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeMissingParameter, "%s requires parameter %q", name, key)
	}

	if math.IsNaN(v) || v != math.Trunc(v) || int(v) < min {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s parameter %q must be an integer >= %d, got %v", name, key, min, v)
	}

	return int(v), nil
}

// periodParamOr is periodParam with a default for a missing key.
func periodParamOr(name types.StrategyName, params types.StrategyParams, key string, min, fallback int) (int, error) {
	if _, ok := params[key]; !ok {
		return fallback, nil
	}

	return periodParam(name, params, key, min)
}

// floatParam reads a required parameter that must be finite and strictly above min.
func floatParam(name types.StrategyName, params types.StrategyParams, key string, min float64) (float64, error) {
	v, ok := params.Float(key)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeMissingParameter, "%s requires parameter %q", name, key)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v <= min {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s parameter %q must be greater than %v, got %v", name, key, min, v)
	}

	return v, nil
}

// thresholdParamOr reads an optional finite parameter.
func thresholdParamOr(name types.StrategyName, params types.StrategyParams, key string, fallback float64) (float64, error) {
	v, ok := params.Float(key)
	if !ok {
		return fallback, nil
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s parameter %q must be finite, got %v", name, key, v)
	}

	return v, nil
}

// floatParamOr is floatParam with a default for a missing key.
func floatParamOr(name types.StrategyName, params types.StrategyParams, key string, min, fallback float64) (float64, error) {
	if _, ok := params[key]; !ok {
		return fallback, nil
	}

	return floatParam(name, params, key, min)
}

// orderedThresholds rejects a low threshold that is not strictly below the high one.
func orderedThresholds(name types.StrategyName, lowKey string, low float64, highKey string, high float64) error {
	if low >= high {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"%s requires %s < %s, got %v and %v", name, lowKey, highKey, low, high)
	}

	return nil
}

// oscillatorParams reads period, oversold and overbought with defaults and
// checks that the thresholds are ordered.
func oscillatorParams(name types.StrategyName, params types.StrategyParams, period int, oversold, overbought float64) (int, float64, float64, error) {
	period, err := periodParamOr(name, params, "period", 2, period)
	if err != nil {
		return 0, 0, 0, err
	}

	oversold, err = thresholdParamOr(name, params, "oversold", oversold)
	if err != nil {
		return 0, 0, 0, err
	}

	overbought, err = thresholdParamOr(name, params, "overbought", overbought)
	if err != nil {
		return 0, 0, 0, err
	}

	if err := orderedThresholds(name, "oversold", oversold, "overbought", overbought); err != nil {
		return 0, 0, 0, err
	}

	return period, oversold, overbought, nil
}

// requireBars fails when the series is too short to produce two consecutive
// values after a warm-up of lookback bars.
func requireBars(name types.StrategyName, data []types.MarketData, lookback int) error {
	required := lookback + 2
	if len(data) < required {
		symbol := ""
		if len(data) > 0 {
			symbol = data[0].Symbol
		}

		return errors.NewInsufficientDataErrorf(required, len(data), symbol,
			"%s needs at least %d bars, got %d", name, required, len(data))
	}

	return nil
}

// crossovers marks the bars where a moves above b (up) or below b (down).
// Values before start are warm-up and never take part in a cross.
func crossovers(a, b []float64, start int) ([]bool, []bool) {
	up := make([]bool, len(a))
	down := make([]bool, len(a))

	for i := max(start+1, 1); i < len(a); i++ {
		up[i] = a[i] > b[i] && a[i-1] <= b[i-1]
		down[i] = a[i] < b[i] && a[i-1] >= b[i-1]
	}

	return up, down
}

// above marks the bars from start on where values[i] > level.
func above(values []float64, level float64, start int) []bool {
	out := make([]bool, len(values))
	for i := max(start, 0); i < len(values); i++ {
		out[i] = values[i] > level
	}

	return out
}

// below marks the bars from start on where values[i] < level.
func below(values []float64, level float64, start int) []bool {
	out := make([]bool, len(values))
	for i := max(start, 0); i < len(values); i++ {
		out[i] = values[i] < level
	}

	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

// shiftedSignals builds bars whose signals fire one bar after the detected event.
func shiftedSignals(data []types.MarketData, long, short []bool) []types.Bar {
	bars := make([]types.Bar, len(data))

	for i, d := range data {
		bars[i] = types.Bar{MarketData: d}

		if i == 0 {
			continue
		}

		if long[i-1] {
			bars[i].LongSignal = 1
		}

		if short[i-1] {
			bars[i].ShortSignal = 1
		}
	}

	return bars
}
