package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// ATR trades volatility expansion: long when a close moves up by more than
// multiplier times the average true range, short on the same move down.
// Parameters: period (default 14), multiplier (default 1).
type ATR struct{}

// NewATR creates the ATR provider.
func NewATR() SignalProvider {
	return &ATR{}
}

func (a *ATR) Name() types.StrategyName {
	return types.StrategyATR
}

func (a *ATR) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(a.Name(), params, "period", 1, 14)
	if err != nil {
		return nil, err
	}

	multiplier, err := floatParamOr(a.Name(), params, "multiplier", 0, 1)
	if err != nil {
		return nil, err
	}

	if err := requireBars(a.Name(), data, period); err != nil {
		return nil, err
	}

	closes := types.Closes(data)
	atr := talib.Atr(types.Highs(data), types.Lows(data), closes, period)

	long := make([]bool, len(data))
	short := make([]bool, len(data))

	for i := max(period, 1); i < len(data); i++ {
		move := closes[i] - closes[i-1]
		band := multiplier * atr[i]
		long[i] = move > band
		short[i] = move < -band
	}

	return shiftedSignals(data, long, short), nil
}
