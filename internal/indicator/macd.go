package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const (
	defaultMACDFast   = 12
	defaultMACDSlow   = 26
	defaultMACDSignal = 9
)

// MACD goes long when the MACD line crosses above its signal line and short
// when it crosses below. Parameters: fast, slow, signal (defaults 12, 26, 9).
type MACD struct{}

// NewMACD creates the MACD provider.
func NewMACD() SignalProvider {
	return &MACD{}
}

func (m *MACD) Name() types.StrategyName {
	return types.StrategyMACD
}

func (m *MACD) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	fast, err := periodParamOr(m.Name(), params, "fast", 2, defaultMACDFast)
	if err != nil {
		return nil, err
	}

	slow, err := periodParamOr(m.Name(), params, "slow", 2, defaultMACDSlow)
	if err != nil {
		return nil, err
	}

	signal, err := periodParamOr(m.Name(), params, "signal", 1, defaultMACDSignal)
	if err != nil {
		return nil, err
	}

	lookback := max(fast, slow) - 1 + signal - 1
	if err := requireBars(m.Name(), data, lookback); err != nil {
		return nil, err
	}

	line, signalLine, _ := talib.Macd(types.Closes(data), fast, slow, signal)
	up, down := crossovers(line, signalLine, lookback)

	return shiftedSignals(data, up, down), nil
}
