package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MarketTestSuite struct {
	suite.Suite
}

func TestMarketSuite(t *testing.T) {
	suite.Run(t, new(MarketTestSuite))
}

func (suite *MarketTestSuite) TestBarSignals() {
	tests := []struct {
		name     string
		bar      Bar
		isLong   bool
		isShort  bool
		resolved SignalDirection
	}{
		{name: "no signal", bar: Bar{}, resolved: SignalDirectionNone},
		{name: "long", bar: Bar{LongSignal: 1}, isLong: true, resolved: SignalDirectionLong},
		{name: "short", bar: Bar{ShortSignal: 1}, isShort: true, resolved: SignalDirectionShort},
		{name: "both resolve to long", bar: Bar{LongSignal: 1, ShortSignal: 1}, isLong: true, isShort: true, resolved: SignalDirectionLong},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.isLong, tc.bar.IsLong())
			suite.Equal(tc.isShort, tc.bar.IsShort())
			suite.Equal(tc.resolved, ResolveSignal(tc.bar))
		})
	}
}

func (suite *MarketTestSuite) TestSameDate() {
	ist := time.FixedZone("IST", 5*3600+1800)
	a := time.Date(2024, 1, 2, 15, 25, 0, 0, ist)

	suite.True(SameDate(a, time.Date(2024, 1, 2, 9, 15, 0, 0, ist)))
	suite.False(SameDate(a, time.Date(2024, 1, 3, 9, 15, 0, 0, ist)))
	// 2024-01-02 20:00 UTC is 2024-01-03 01:30 IST
	suite.False(SameDate(a, time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)))
}

func (suite *MarketTestSuite) TestCloses() {
	data := []MarketData{{Close: 1}, {Close: 2}, {Close: 3}}
	suite.Equal([]float64{1, 2, 3}, Closes(data))
	suite.Empty(Closes(nil))
}

func (suite *MarketTestSuite) TestColumns() {
	data := []MarketData{{High: 3, Low: 1, Volume: 10}, {High: 4, Low: 2, Volume: 20}}
	suite.Equal([]float64{3, 4}, Highs(data))
	suite.Equal([]float64{1, 2}, Lows(data))
	suite.Equal([]float64{10, 20}, Volumes(data))
}

func (suite *MarketTestSuite) TestPositionSides() {
	suite.Equal(PurchaseTypeBuy, PositionTypeLong.EntrySide())
	suite.Equal(PurchaseTypeSell, PositionTypeLong.ExitSide())
	suite.Equal(PurchaseTypeSell, PositionTypeShort.EntrySide())
	suite.Equal(PurchaseTypeBuy, PositionTypeShort.ExitSide())
}

func (suite *MarketTestSuite) TestGrossPnL() {
	suite.InDelta(50.0, GrossPnLFor(PositionTypeLong, 100, 105, 10), 1e-9)
	suite.InDelta(-50.0, GrossPnLFor(PositionTypeShort, 100, 105, 10), 1e-9)
	suite.InDelta(30.0, GrossPnLFor(PositionTypeShort, 101.5, 98.5, 10), 1e-9)
}

func (suite *MarketTestSuite) TestStrategyParams() {
	params := StrategyParams{"slow": 21, "fast": 9}
	suite.Equal([]string{"fast", "slow"}, params.Keys())
	suite.Equal("9-21", params.HyperparamString())

	fast, ok := params.Int("fast")
	suite.True(ok)
	suite.Equal(9, fast)

	_, ok = params.Float("period")
	suite.False(ok)

	long, short := StrategyEMACross.SignalColumns()
	suite.Equal("EMA_CROSS_LONG_SIGNAL", long)
	suite.Equal("EMA_CROSS_SHORT_SIGNAL", short)

	suite.Equal("1.5-20", StrategyParams{"period": 20, "k": 1.5}.HyperparamString())
}
