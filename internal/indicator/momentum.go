package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Momentum is long while close - close[period] is positive and short while it
// is negative. Parameter: period (default 10).
type Momentum struct{}

// NewMomentum creates the MOMENTUM provider.
func NewMomentum() SignalProvider {
	return &Momentum{}
}

func (m *Momentum) Name() types.StrategyName {
	return types.StrategyMomentum
}

func (m *Momentum) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(m.Name(), params, "period", 1, 10)
	if err != nil {
		return nil, err
	}

	if err := requireBars(m.Name(), data, period); err != nil {
		return nil, err
	}

	mom := talib.Mom(types.Closes(data), period)

	return shiftedSignals(data, above(mom, 0, period), below(mom, 0, period)), nil
}
