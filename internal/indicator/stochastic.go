package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Stochastic is long while fast %K is below oversold and short while it is
// above overbought. Parameters: k_period (default 14), d_period (default 3),
// oversold (default 20), overbought (default 80). d_period only delays the
// first signal so the series lines up with %D.
type Stochastic struct{}

// NewStochastic creates the STOCHASTIC provider.
func NewStochastic() SignalProvider {
	return &Stochastic{}
}

func (s *Stochastic) Name() types.StrategyName {
	return types.StrategyStochastic
}

func (s *Stochastic) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	kPeriod, err := periodParamOr(s.Name(), params, "k_period", 1, 14)
	if err != nil {
		return nil, err
	}

	dPeriod, err := periodParamOr(s.Name(), params, "d_period", 1, 3)
	if err != nil {
		return nil, err
	}

	oversold, err := thresholdParamOr(s.Name(), params, "oversold", 20)
	if err != nil {
		return nil, err
	}

	overbought, err := thresholdParamOr(s.Name(), params, "overbought", 80)
	if err != nil {
		return nil, err
	}

	if err := orderedThresholds(s.Name(), "oversold", oversold, "overbought", overbought); err != nil {
		return nil, err
	}

	lookback := (kPeriod - 1) + (dPeriod - 1)
	if err := requireBars(s.Name(), data, lookback); err != nil {
		return nil, err
	}

	k, _ := talib.StochF(types.Highs(data), types.Lows(data), types.Closes(data), kPeriod, dPeriod, talib.SMA)

	return shiftedSignals(data, below(k, oversold, lookback), above(k, overbought, lookback)), nil
}
