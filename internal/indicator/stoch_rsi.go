package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// StochRSI applies the stochastic formula to RSI over the same period. It is
// long while the result (0 to 100) is below oversold and short while it is above
// overbought. Parameters: period (default 14), oversold (default 20), overbought (default 80).
type StochRSI struct{}

// NewStochRSI creates the STOCH_RSI provider.
func NewStochRSI() SignalProvider {
	return &StochRSI{}
}

func (s *StochRSI) Name() types.StrategyName {
	return types.StrategyStochRSI
}

func (s *StochRSI) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, oversold, overbought, err := oscillatorParams(s.Name(), params, 14, 20, 80)
	if err != nil {
		return nil, err
	}

	lookback := period + period - 1
	if err := requireBars(s.Name(), data, lookback); err != nil {
		return nil, err
	}

	k, _ := talib.StochRsi(types.Closes(data), period, period, 1, talib.SMA)

	return shiftedSignals(data, below(k, oversold, lookback), above(k, overbought, lookback)), nil
}
