package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// TRIX is long while the one bar rate of change of a triple smoothed EMA is
// positive and short while it is negative. Parameter: period (default 15).
type TRIX struct{}

// NewTRIX creates the TRIX provider.
func NewTRIX() SignalProvider {
	return &TRIX{}
}

func (t *TRIX) Name() types.StrategyName {
	return types.StrategyTRIX
}

func (t *TRIX) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(t.Name(), params, "period", 2, 15)
	if err != nil {
		return nil, err
	}

	lookback := 3*(period-1) + 1
	if err := requireBars(t.Name(), data, lookback); err != nil {
		return nil, err
	}

	trix := talib.Trix(types.Closes(data), period)

	return shiftedSignals(data, above(trix, 0, lookback), below(trix, 0, lookback)), nil
}
