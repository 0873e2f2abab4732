package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// PSAR goes long when the close crosses above the parabolic SAR and short when
// it crosses below. Parameters: acceleration (default 0.02), maximum (default 0.2).
type PSAR struct{}

// NewPSAR creates the PSAR provider.
func NewPSAR() SignalProvider {
	return &PSAR{}
}

func (p *PSAR) Name() types.StrategyName {
	return types.StrategyPSAR
}

func (p *PSAR) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	acceleration, err := floatParamOr(p.Name(), params, "acceleration", 0, 0.02)
	if err != nil {
		return nil, err
	}

	maximum, err := floatParamOr(p.Name(), params, "maximum", 0, 0.2)
	if err != nil {
		return nil, err
	}

	if acceleration > maximum {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"PSAR requires acceleration <= maximum, got %v and %v", acceleration, maximum)
	}

	if err := requireBars(p.Name(), data, 1); err != nil {
		return nil, err
	}

	closes := types.Closes(data)
	sar := talib.Sar(types.Highs(data), types.Lows(data), acceleration, maximum)

	up, down := crossovers(closes, sar, 1)

	return shiftedSignals(data, up, down), nil
}
