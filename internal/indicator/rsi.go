package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// RSI goes long when RSI drops below oversold and short when it rises above
// overbought. Parameters: period, overbought, oversold.
type RSI struct{}

// NewRSI creates the RSI provider.
func NewRSI() SignalProvider {
	return &RSI{}
}

func (r *RSI) Name() types.StrategyName {
	return types.StrategyRSI
}

func (r *RSI) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParam(r.Name(), params, "period", 2)
	if err != nil {
		return nil, err
	}

	overbought, err := floatParam(r.Name(), params, "overbought", 0)
	if err != nil {
		return nil, err
	}

	oversold, err := floatParam(r.Name(), params, "oversold", 0)
	if err != nil {
		return nil, err
	}

	if oversold >= overbought || overbought >= 100 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"RSI thresholds must satisfy 0 < oversold < overbought < 100, got %v and %v", oversold, overbought)
	}

	if err := requireBars(r.Name(), data, period); err != nil {
		return nil, err
	}

	rsi := talib.Rsi(types.Closes(data), period)

	_, intoOversold := crossovers(rsi, constant(len(rsi), oversold), period)
	intoOverbought, _ := crossovers(rsi, constant(len(rsi), overbought), period)

	return shiftedSignals(data, intoOversold, intoOverbought), nil
}
