package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// UltimateOscillator follows buying pressure: long while the oscillator is above
// upper and short while it is below lower. Parameters: short (default 7),
// medium (default 14), long (default 28), lower (default 30), upper (default 70).
type UltimateOscillator struct{}

// NewUltimateOscillator creates the ULTIMATE_OSC provider.
func NewUltimateOscillator() SignalProvider {
	return &UltimateOscillator{}
}

func (u *UltimateOscillator) Name() types.StrategyName {
	return types.StrategyUltimate
}

func (u *UltimateOscillator) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	shortPeriod, err := periodParamOr(u.Name(), params, "short", 1, 7)
	if err != nil {
		return nil, err
	}

	mediumPeriod, err := periodParamOr(u.Name(), params, "medium", 1, 14)
	if err != nil {
		return nil, err
	}

	longPeriod, err := periodParamOr(u.Name(), params, "long", 1, 28)
	if err != nil {
		return nil, err
	}

	if shortPeriod >= mediumPeriod || mediumPeriod >= longPeriod {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"ULTIMATE_OSC requires short < medium < long, got %d, %d and %d", shortPeriod, mediumPeriod, longPeriod)
	}

	lower, err := thresholdParamOr(u.Name(), params, "lower", 30)
	if err != nil {
		return nil, err
	}

	upper, err := thresholdParamOr(u.Name(), params, "upper", 70)
	if err != nil {
		return nil, err
	}

	if err := orderedThresholds(u.Name(), "lower", lower, "upper", upper); err != nil {
		return nil, err
	}

	if err := requireBars(u.Name(), data, longPeriod); err != nil {
		return nil, err
	}

	uo := talib.UltOsc(types.Highs(data), types.Lows(data), types.Closes(data), shortPeriod, mediumPeriod, longPeriod)

	return shiftedSignals(data, above(uo, upper, longPeriod), below(uo, lower, longPeriod)), nil
}
