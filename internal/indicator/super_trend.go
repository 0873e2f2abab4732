package indicator

import (
	"math"

	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// SuperTrend tracks ATR bands around the bar midpoint. The trend turns down when
// a close falls under the lower band and up when a close rises over the upper
// band. It goes long on the bar the trend turns up and short on the bar it
// turns down. Parameters: period (default 10), multiplier (default 3).
type SuperTrend struct{}

// NewSuperTrend creates the SUPER_TREND provider.
func NewSuperTrend() SignalProvider {
	return &SuperTrend{}
}

func (s *SuperTrend) Name() types.StrategyName {
	return types.StrategySuperTrend
}

func (s *SuperTrend) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(s.Name(), params, "period", 1, 10)
	if err != nil {
		return nil, err
	}

	multiplier, err := floatParamOr(s.Name(), params, "multiplier", 0, 3)
	if err != nil {
		return nil, err
	}

	if err := requireBars(s.Name(), data, period); err != nil {
		return nil, err
	}

	highs, lows, closes := types.Highs(data), types.Lows(data), types.Closes(data)
	mid := talib.MedPrice(highs, lows)
	atr := talib.Atr(highs, lows, closes, period)

	n := len(data)
	upper := make([]float64, n)
	lower := make([]float64, n)
	turnedUp := make([]bool, n)
	turnedDown := make([]bool, n)
	uptrend := true

	for i := period; i < n; i++ {
		basicUpper := mid[i] + multiplier*atr[i]
		basicLower := mid[i] - multiplier*atr[i]

		// final bands only tighten until the close breaks through them
		if i == period || closes[i-1] > upper[i-1] {
			upper[i] = basicUpper
		} else {
			upper[i] = math.Min(basicUpper, upper[i-1])
		}

		if i == period || closes[i-1] < lower[i-1] {
			lower[i] = basicLower
		} else {
			lower[i] = math.Max(basicLower, lower[i-1])
		}

		switch {
		case uptrend && closes[i] < lower[i]:
			uptrend = false
			turnedDown[i] = true
		case !uptrend && closes[i] > upper[i]:
			uptrend = true
			turnedUp[i] = true
		}
	}

	return shiftedSignals(data, turnedUp, turnedDown), nil
}
