package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// MFI is long while the money flow index is below oversold and short while it
// is above overbought. Parameters: period (default 14), oversold (default 20),
// overbought (default 80).
type MFI struct{}

// NewMFI creates the MFI provider.
func NewMFI() SignalProvider {
	return &MFI{}
}

func (m *MFI) Name() types.StrategyName {
	return types.StrategyMFI
}

func (m *MFI) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, oversold, overbought, err := oscillatorParams(m.Name(), params, 14, 20, 80)
	if err != nil {
		return nil, err
	}

	if err := requireBars(m.Name(), data, period); err != nil {
		return nil, err
	}

	mfi := talib.Mfi(types.Highs(data), types.Lows(data), types.Closes(data), types.Volumes(data), period)

	return shiftedSignals(data, below(mfi, oversold, period), above(mfi, overbought, period)), nil
}
