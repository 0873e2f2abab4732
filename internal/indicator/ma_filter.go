package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// MovingAverageFilter goes long when the close crosses above a smoothed
// average of itself and short when it crosses below. Parameter: period (default 21).
type MovingAverageFilter struct {
	name     types.StrategyName
	average  func(closes []float64, period int) []float64
	lookback func(period int) int
}

// NewDEMA creates the DEMA provider.
func NewDEMA() SignalProvider {
	return &MovingAverageFilter{
		name:     types.StrategyDEMA,
		average:  talib.Dema,
		lookback: func(period int) int { return 2 * (period - 1) },
	}
}

// NewTEMA creates the TEMA provider.
func NewTEMA() SignalProvider {
	return &MovingAverageFilter{
		name:     types.StrategyTEMA,
		average:  talib.Tema,
		lookback: func(period int) int { return 3 * (period - 1) },
	}
}

func (m *MovingAverageFilter) Name() types.StrategyName {
	return m.name
}

func (m *MovingAverageFilter) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(m.name, params, "period", 2, 21)
	if err != nil {
		return nil, err
	}

	lookback := m.lookback(period)
	if err := requireBars(m.name, data, lookback); err != nil {
		return nil, err
	}

	closes := types.Closes(data)
	up, down := crossovers(closes, m.average(closes, period), lookback)

	return shiftedSignals(data, up, down), nil
}
