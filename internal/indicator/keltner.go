package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Keltner is long while the close is above EMA + multiplier * average range and
// short while it is below EMA - multiplier * average range. The average range
// is the simple mean of high - low. Parameters: period (default 20), multiplier (default 2).
type Keltner struct{}

// NewKeltner creates the KELTNER provider.
func NewKeltner() SignalProvider {
	return &Keltner{}
}

func (k *Keltner) Name() types.StrategyName {
	return types.StrategyKeltner
}

func (k *Keltner) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(k.Name(), params, "period", 2, 20)
	if err != nil {
		return nil, err
	}

	multiplier, err := floatParamOr(k.Name(), params, "multiplier", 0, 2)
	if err != nil {
		return nil, err
	}

	lookback := period - 1
	if err := requireBars(k.Name(), data, lookback); err != nil {
		return nil, err
	}

	closes := types.Closes(data)
	ranges := make([]float64, len(data))
	for i, d := range data {
		ranges[i] = d.High - d.Low
	}

	middle := talib.Ema(closes, period)
	width := talib.Sma(ranges, period)

	long := make([]bool, len(data))
	short := make([]bool, len(data))

	for i := lookback; i < len(data); i++ {
		long[i] = closes[i] > middle[i]+multiplier*width[i]
		short[i] = closes[i] < middle[i]-multiplier*width[i]
	}

	return shiftedSignals(data, long, short), nil
}
