package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// OBV is long while on-balance volume is above its simple moving average and
// short while it is below. Parameter: period (default 20).
type OBV struct{}

// NewOBV creates the OBV provider.
func NewOBV() SignalProvider {
	return &OBV{}
}

func (o *OBV) Name() types.StrategyName {
	return types.StrategyOBV
}

func (o *OBV) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(o.Name(), params, "period", 2, 20)
	if err != nil {
		return nil, err
	}

	lookback := period - 1
	if err := requireBars(o.Name(), data, lookback); err != nil {
		return nil, err
	}

	obv := talib.Obv(types.Closes(data), types.Volumes(data))
	average := talib.Sma(obv, period)

	long := make([]bool, len(data))
	short := make([]bool, len(data))

	for i := lookback; i < len(data); i++ {
		long[i] = obv[i] > average[i]
		short[i] = obv[i] < average[i]
	}

	return shiftedSignals(data, long, short), nil
}
