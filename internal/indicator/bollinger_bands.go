package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// BollingerBands goes long when the close breaks above the upper band and short
// when it breaks below the lower band. Parameters: period, stddev.
// Bands use the population standard deviation of the window.
type BollingerBands struct{}

// NewBollingerBands creates the BOLLINGER provider.
func NewBollingerBands() SignalProvider {
	return &BollingerBands{}
}

func (b *BollingerBands) Name() types.StrategyName {
	return types.StrategyBollinger
}

func (b *BollingerBands) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParam(b.Name(), params, "period", 2)
	if err != nil {
		return nil, err
	}

	stddev, err := floatParam(b.Name(), params, "stddev", 0)
	if err != nil {
		return nil, err
	}

	lookback := period - 1
	if err := requireBars(b.Name(), data, lookback); err != nil {
		return nil, err
	}

	closes := types.Closes(data)
	upper, _, lower := talib.BBands(closes, period, stddev, stddev, talib.SMA)

	breakout, _ := crossovers(closes, upper, lookback)
	_, breakdown := crossovers(closes, lower, lookback)

	return shiftedSignals(data, breakout, breakdown), nil
}
