package engine

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// SplitWindow is a contiguous slice of the bar series simulated on its own.
type SplitWindow struct {
	Split types.Split
	Bars  []types.Bar
}

// SplitBars returns ALL, then TRAIN (the first trainSplit fraction of bars,
// rounded down) and, when trainSplit is below 1, TEST with the remaining bars.
// The windows share the backing array of bars.
func SplitBars(bars []types.Bar, trainSplit float64) ([]SplitWindow, error) {
	if math.IsNaN(trainSplit) || trainSplit <= 0 || trainSplit > 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidSplit, "train_split must be within (0, 1], got %v", trainSplit)
	}

	cut := int(float64(len(bars)) * trainSplit)

	windows := []SplitWindow{
		{Split: types.SplitAll, Bars: bars},
		{Split: types.SplitTrain, Bars: bars[:cut]},
	}

	if trainSplit < 1 {
		windows = append(windows, SplitWindow{Split: types.SplitTest, Bars: bars[cut:]})
	}

	return windows, nil
}
