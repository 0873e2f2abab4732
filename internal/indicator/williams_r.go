package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// WilliamsR is long while %R (-100 to 0) is below oversold and short while it
// is above overbought. Parameters: period (default 14), oversold (default -80),
// overbought (default -20).
type WilliamsR struct{}

// NewWilliamsR creates the WILLIAMS_R provider.
func NewWilliamsR() SignalProvider {
	return &WilliamsR{}
}

func (w *WilliamsR) Name() types.StrategyName {
	return types.StrategyWilliamsR
}

func (w *WilliamsR) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, oversold, overbought, err := oscillatorParams(w.Name(), params, 14, -80, -20)
	if err != nil {
		return nil, err
	}

	lookback := period - 1
	if err := requireBars(w.Name(), data, lookback); err != nil {
		return nil, err
	}

	wr := talib.WillR(types.Highs(data), types.Lows(data), types.Closes(data), period)

	return shiftedSignals(data, below(wr, oversold, lookback), above(wr, overbought, lookback)), nil
}
