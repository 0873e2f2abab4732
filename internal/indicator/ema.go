package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// MovingAverageCross goes long when the fast average crosses above the slow one
// and short when it crosses below. Parameters: fast, slow.
type MovingAverageCross struct {
	name    types.StrategyName
	average func(closes []float64, period int) []float64
}

// NewEMACross creates the EMA_CROSS provider.
func NewEMACross() SignalProvider {
	return &MovingAverageCross{name: types.StrategyEMACross, average: talib.Ema}
}

// NewSMACross creates the SMA_CROSS provider.
func NewSMACross() SignalProvider {
	return &MovingAverageCross{name: types.StrategySMACross, average: talib.Sma}
}

func (m *MovingAverageCross) Name() types.StrategyName {
	return m.name
}

func (m *MovingAverageCross) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	fast, err := periodParam(m.name, params, "fast", 1)
	if err != nil {
		return nil, err
	}

	slow, err := periodParam(m.name, params, "slow", 1)
	if err != nil {
		return nil, err
	}

	lookback := max(fast, slow) - 1
	if err := requireBars(m.name, data, lookback); err != nil {
		return nil, err
	}

	closes := types.Closes(data)
	up, down := crossovers(m.average(closes, fast), m.average(closes, slow), lookback)

	return shiftedSignals(data, up, down), nil
}
