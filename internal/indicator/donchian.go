package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Donchian trades channel breakouts: long when the close exceeds the previous
// bar's highest high over period, short when it falls under the previous
// lowest low. Parameter: period (default 20).
type Donchian struct{}

// NewDonchian creates the DONCHIAN provider.
func NewDonchian() SignalProvider {
	return &Donchian{}
}

func (d *Donchian) Name() types.StrategyName {
	return types.StrategyDonchian
}

func (d *Donchian) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(d.Name(), params, "period", 2, 20)
	if err != nil {
		return nil, err
	}

	if err := requireBars(d.Name(), data, period); err != nil {
		return nil, err
	}

	closes := types.Closes(data)
	upper := talib.Max(types.Highs(data), period)
	lower := talib.Min(types.Lows(data), period)

	long := make([]bool, len(data))
	short := make([]bool, len(data))

	// the channel of bar i-1 is complete from bar period-1 on
	for i := period; i < len(data); i++ {
		long[i] = closes[i] > upper[i-1]
		short[i] = closes[i] < lower[i-1]
	}

	return shiftedSignals(data, long, short), nil
}
