package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// ROC is long while the percentage rate of change is above threshold and short
// while it is below -threshold. Parameters: period (default 10), threshold (default 0).
type ROC struct{}

// NewROC creates the ROC provider.
func NewROC() SignalProvider {
	return &ROC{}
}

func (r *ROC) Name() types.StrategyName {
	return types.StrategyROC
}

func (r *ROC) ComputeSignals(data []types.MarketData, params types.StrategyParams) ([]types.Bar, error) {
	period, err := periodParamOr(r.Name(), params, "period", 1, 10)
	if err != nil {
		return nil, err
	}

	threshold, err := thresholdParamOr(r.Name(), params, "threshold", 0)
	if err != nil {
		return nil, err
	}

	// a negative threshold would let both sides fire on the same bar
	if threshold < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "ROC parameter \"threshold\" must be >= 0, got %v", threshold)
	}

	if err := requireBars(r.Name(), data, period); err != nil {
		return nil, err
	}

	roc := talib.Roc(types.Closes(data), period)

	return shiftedSignals(data, above(roc, threshold, period), below(roc, -threshold, period)), nil
}
