package engine

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type GridTestSuite struct {
	suite.Suite
}

func TestGridSuite(t *testing.T) {
	suite.Run(t, new(GridTestSuite))
}

func (suite *GridTestSuite) TestCartesianProductInSortedKeyOrder() {
	grid := BuildParamGrid(types.StrategyBollinger, map[string]ParamValues{
		"stddev_list": {1.5, 2},
		"period_list": {10, 20},
	})

	suite.Equal([]types.StrategyParams{
		{"period": 10, "stddev": 1.5},
		{"period": 10, "stddev": 2},
		{"period": 20, "stddev": 1.5},
		{"period": 20, "stddev": 2},
	}, grid)
}

func (suite *GridTestSuite) TestMovingAverageKeepsFastBelowSlow() {
	for _, name := range []types.StrategyName{types.StrategyEMACross, types.StrategySMACross} {
		grid := BuildParamGrid(name, map[string]ParamValues{
			"fast_list": {5, 9, 21},
			"slow_list": {9, 21},
		})

		suite.Equal([]types.StrategyParams{
			{"fast": 5, "slow": 9},
			{"fast": 5, "slow": 21},
			{"fast": 9, "slow": 21},
		}, grid, string(name))
	}
}

func (suite *GridTestSuite) TestFastSlowFilterOnlyForMovingAverages() {
	grid := BuildParamGrid(types.StrategyMACD, map[string]ParamValues{
		"fast": {26},
		"slow": {12},
	})

	suite.Len(grid, 1)
}

func (suite *GridTestSuite) TestScalarAndListKeysMerge() {
	grid := BuildParamGrid(types.StrategyEMACross, map[string]ParamValues{
		"fast":      {3},
		"fast_list": {5, 9},
		"slow":      {21},
	})

	suite.Equal([]types.StrategyParams{
		{"fast": 5, "slow": 21},
		{"fast": 9, "slow": 21},
	}, grid)
}

func (suite *GridTestSuite) TestDuplicatesRemoved() {
	grid := BuildParamGrid(types.StrategyRSI, map[string]ParamValues{
		"period":     {14, 14, 7},
		"overbought": {70},
		"oversold":   {30},
	})

	suite.Equal([]types.StrategyParams{
		{"overbought": 70, "oversold": 30, "period": 14},
		{"overbought": 70, "oversold": 30, "period": 7},
	}, grid)
}

func (suite *GridTestSuite) TestEmptyParams() {
	grid := BuildParamGrid(types.StrategyMACD, nil)

	suite.Equal([]types.StrategyParams{{}}, grid)
}

func (suite *GridTestSuite) TestEmptyListYieldsNoCombination() {
	grid := BuildParamGrid(types.StrategyEMACross, map[string]ParamValues{
		"fast_list": {},
		"slow_list": {21},
	})

	suite.Empty(grid)
}

func (suite *GridTestSuite) TestCombinationsAreIndependent() {
	grid := BuildParamGrid(types.StrategyEMACross, map[string]ParamValues{
		"fast_list": {5, 9},
		"slow_list": {21},
	})
	suite.Require().Len(grid, 2)

	grid[0]["fast"] = 100

	suite.Equal(9.0, grid[1]["fast"])
}
