package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// CCI is long while the commodity channel index sits below entry and short
// while it sits above exit. Parameters: period (default 20), entry (default
// -100), exit (default 100).
type CCI struct{}

// NewCCI creates the CCI provider.
func NewCCI() SignalProvider {
	return &CCI{}
}

func (c *CCI) Name() types.StrategyName {
	return types.StrategyCCI
}

func (c *CCI) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(c.Name(), params, "period", 2, 20)
	if err != nil {
		return nil, err
	}

	entry, err := thresholdParamOr(c.Name(), params, "entry", -100)
	if err != nil {
		return nil, err
	}

	exit, err := thresholdParamOr(c.Name(), params, "exit", 100)
	if err != nil {
		return nil, err
	}

	if err := orderedThresholds(c.Name(), "entry", entry, "exit", exit); err != nil {
		return nil, err
	}

	lookback := period - 1
	if err := requireBars(c.Name(), data, lookback); err != nil {
		return nil, err
	}

	cci := talib.Cci(types.Highs(data), types.Lows(data), types.Closes(data), period)

	return shiftedSignals(data, below(cci, entry, lookback), above(cci, exit, lookback)), nil
}
