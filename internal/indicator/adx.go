package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// ADX follows the dominant directional index while the trend is strong: long
// while ADX is above threshold and +DI leads -DI, short while -DI leads.
// Parameters: period (default 14), threshold (default 25).
type ADX struct{}

// NewADX creates the ADX provider.
func NewADX() SignalProvider {
	return &ADX{}
}

func (a *ADX) Name() types.StrategyName {
	return types.StrategyADX
}

func (a *ADX) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(a.Name(), params, "period", 2, 14)
	if err != nil {
		return nil, err
	}

	threshold, err := floatParamOr(a.Name(), params, "threshold", 0, 25)
	if err != nil {
		return nil, err
	}

	lookback := 2*period - 1
	if err := requireBars(a.Name(), data, lookback); err != nil {
		return nil, err
	}

	highs, lows, closes := types.Highs(data), types.Lows(data), types.Closes(data)
	adx := talib.Adx(highs, lows, closes, period)
	plusDI := talib.PlusDI(highs, lows, closes, period)
	minusDI := talib.MinusDI(highs, lows, closes, period)

	strong := above(adx, threshold, lookback)
	long := make([]bool, len(data))
	short := make([]bool, len(data))

	for i := range data {
		long[i] = strong[i] && plusDI[i] > minusDI[i]
		short[i] = strong[i] && minusDI[i] > plusDI[i]
	}

	return shiftedSignals(data, long, short), nil
}
