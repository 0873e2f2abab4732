package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Aroon is long while Aroon Up is above level and leads Aroon Down, short in
// the mirrored case. Parameters: period (default 14), level (default 70).
type Aroon struct{}

// NewAroon creates the AROON provider.
func NewAroon() SignalProvider {
	return &Aroon{}
}

func (a *Aroon) Name() types.StrategyName {
	return types.StrategyAroon
}

func (a *Aroon) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(a.Name(), params, "period", 2, 14)
	if err != nil {
		return nil, err
	}

	level, err := floatParamOr(a.Name(), params, "level", 0, 70)
	if err != nil {
		return nil, err
	}

	if err := requireBars(a.Name(), data, period); err != nil {
		return nil, err
	}

	down, up := talib.Aroon(types.Highs(data), types.Lows(data), period)

	upStrong := above(up, level, period)
	downStrong := above(down, level, period)
	long := make([]bool, len(data))
	short := make([]bool, len(data))

	for i := range data {
		long[i] = upStrong[i] && up[i] > down[i]
		short[i] = downStrong[i] && down[i] > up[i]
	}

	return shiftedSignals(data, long, short), nil
}
