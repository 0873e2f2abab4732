package metrics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
	day time.Time
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) SetupTest() {
	suite.day = time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
}

func (suite *MetricsTestSuite) samples(values ...float64) []types.EquitySample {
	equity := make([]types.EquitySample, len(values))
	for i, v := range values {
		equity[i] = types.EquitySample{Time: suite.day.AddDate(0, 0, i), Equity: v}
	}

	return equity
}

func (suite *MetricsTestSuite) bars(n int, spacing time.Duration) []types.Bar {
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{MarketData: types.MarketData{
			Time:  suite.day.Add(time.Duration(i) * spacing),
			Open:  100,
			High:  100,
			Low:   100,
			Close: 100,
		}}
	}

	return bars
}

func (suite *MetricsTestSuite) trade(netPnL float64, held time.Duration) types.Trade {
	return types.Trade{
		Direction: types.PositionTypeLong,
		EntryTime: suite.day,
		ExitTime:  suite.day.Add(held),
		Quantity:  1,
		GrossPnL:  netPnL + 1,
		TotalFees: 1,
		NetPnL:    netPnL,
	}
}

func (suite *MetricsTestSuite) requireFinite(m types.Metrics) {
	v := reflect.ValueOf(m)
	for i := 0; i < v.NumField(); i++ {
		if f, ok := v.Field(i).Interface().(float64); ok {
			suite.False(math.IsNaN(f) || math.IsInf(f, 0), "%s is %v", v.Type().Field(i).Name, f)
		}
	}
}

func (suite *MetricsTestSuite) TestNoTrades() {
	m := Compute(nil, suite.samples(1000, 1000, 1000), 1000, suite.bars(3, 24*time.Hour))

	suite.Equal(0, m.Trades)
	suite.Equal(1000.0, m.EquityFinal)
	suite.Zero(m.TotalReturn)
	suite.Zero(m.CAGR)
	suite.Zero(m.Volatility)
	suite.Zero(m.Sharpe)
	suite.Zero(m.Sortino)
	suite.Zero(m.MaxDrawdown)
	suite.Zero(m.Calmar)
	suite.Zero(m.WinRate)
	suite.Zero(m.ProfitFactor)
	suite.Zero(m.Expectancy)
	suite.Zero(m.Exposure)
	suite.Require().Len(m.MonthlyReturns, 1)
	suite.Zero(m.MonthlyReturns[0].Return)
	suite.requireFinite(m)
}

func (suite *MetricsTestSuite) TestEmptyInputs() {
	m := Compute(nil, nil, 5000, nil)

	suite.Equal(5000.0, m.EquityFinal)
	suite.Zero(m.TotalReturn)
	suite.Zero(m.CAGR)
	suite.NotNil(m.MonthlyReturns)
	suite.Empty(m.MonthlyReturns)
	suite.requireFinite(m)
}

func (suite *MetricsTestSuite) TestZeroCapital() {
	m := Compute(nil, suite.samples(0, 0, 0), 0, suite.bars(3, time.Hour))

	suite.Zero(m.TotalReturn)
	suite.Zero(m.CAGR)
	suite.Zero(m.MaxDrawdown)
	suite.requireFinite(m)
}

func (suite *MetricsTestSuite) TestReturnAndRisk() {
	equity := suite.samples(100, 110, 99, 94.05)
	m := Compute(nil, equity, 100, nil)

	suite.InDelta(94.05, m.EquityFinal, 1e-9)
	suite.InDelta(-5.95, m.TotalReturn, 1e-9)

	returns := []float64{110.0/100 - 1, 99.0/110 - 1, 94.05/99 - 1}
	mean := (returns[0] + returns[1] + returns[2]) / 3

	ss := 0.0
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}

	std := math.Sqrt(ss / 2)

	suite.InDelta(std*math.Sqrt(252)*100, m.Volatility, 1e-9)
	suite.InDelta(mean/std*math.Sqrt(252), m.Sharpe, 1e-9)

	negMean := (returns[1] + returns[2]) / 2
	negStd := math.Sqrt(((returns[1]-negMean)*(returns[1]-negMean) + (returns[2]-negMean)*(returns[2]-negMean)) / 1)
	suite.InDelta(mean/(negStd*math.Sqrt(252))*math.Sqrt(252), m.Sortino, 1e-9)

	suite.InDelta(-14.5, m.MaxDrawdown, 1e-9)

	years := 3 / 365.25
	expectedCAGR := (math.Pow(0.9405, 1/years) - 1) * 100
	suite.InDelta(expectedCAGR, m.CAGR, 1e-6)
	suite.InDelta(expectedCAGR/14.5, m.Calmar, 1e-6)
	suite.requireFinite(m)
}

func (suite *MetricsTestSuite) TestCAGRUsesBarSpan() {
	bars := []types.Bar{
		{MarketData: types.MarketData{Time: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{MarketData: types.MarketData{Time: time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)}},
	}
	equity := []types.EquitySample{
		{Time: bars[0].Time, Equity: 100},
		{Time: bars[1].Time, Equity: 121},
	}

	m := Compute(nil, equity, 100, bars)

	years := 730 / 365.25
	suite.InDelta((math.Pow(1.21, 1/years)-1)*100, m.CAGR, 1e-9)
	suite.InDelta(21.0, m.TotalReturn, 1e-9)
}

func (suite *MetricsTestSuite) TestCAGRSameDayUsesOneYear() {
	bars := suite.bars(4, time.Minute)
	equity := []types.EquitySample{{Time: bars[3].Time, Equity: 110}}

	m := Compute(nil, equity, 100, bars)
	suite.InDelta(10.0, m.CAGR, 1e-9)
}

func (suite *MetricsTestSuite) TestDailyEquityCarriesForward() {
	equity := []types.EquitySample{
		{Time: suite.day, Equity: 100},
		{Time: suite.day.Add(time.Hour), Equity: 105},
		{Time: suite.day.AddDate(0, 0, 3), Equity: 110},
	}

	daily := dailyEquity(equity)
	suite.Require().Len(daily, 4)
	suite.Equal(105.0, daily[0].value)
	suite.Equal(105.0, daily[1].value)
	suite.Equal(105.0, daily[2].value)
	suite.Equal(110.0, daily[3].value)

	returns := pctChange(daily)
	suite.Require().Len(returns, 3)
	suite.Zero(returns[0])
	suite.Zero(returns[1])
	suite.InDelta(110.0/105-1, returns[2], 1e-12)
}

func (suite *MetricsTestSuite) TestMonthlyReturns() {
	equity := []types.EquitySample{
		{Time: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), Equity: 100},
		{Time: time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC), Equity: 110},
		{Time: time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC), Equity: 121},
		{Time: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), Equity: 121},
	}

	m := Compute(nil, equity, 100, nil)
	suite.Require().Len(m.MonthlyReturns, 3)

	suite.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), m.MonthlyReturns[0].Month)
	suite.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), m.MonthlyReturns[1].Month)
	suite.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), m.MonthlyReturns[2].Month)

	suite.Zero(m.MonthlyReturns[0].Return)
	suite.InDelta(10.0, m.MonthlyReturns[1].Return, 1e-9)
	suite.InDelta(0.0, m.MonthlyReturns[2].Return, 1e-9)
}

func (suite *MetricsTestSuite) TestTradeStatistics() {
	trades := []types.Trade{
		suite.trade(100, 10*time.Minute),
		suite.trade(-50, 20*time.Minute),
		suite.trade(0, 30*time.Minute),
		suite.trade(200, 40*time.Minute),
		suite.trade(300, 50*time.Minute),
		suite.trade(-10, 60*time.Minute),
	}

	m := Compute(trades, suite.samples(1000, 1540), 1000, nil)

	suite.Equal(6, m.Trades)
	suite.InDelta(540.0, m.NetPnL, 1e-9)
	suite.InDelta(546.0, m.GrossPnL, 1e-9)
	suite.InDelta(6.0, m.TotalFees, 1e-9)
	suite.InDelta(50.0, m.WinRate, 1e-9)
	suite.InDelta(10.0, m.ProfitFactor, 1e-9)
	suite.Equal(300.0, m.BestTrade)
	suite.Equal(-50.0, m.WorstTrade)
	suite.InDelta(50.0, m.MedianTrade, 1e-9)
	suite.InDelta(200.0, m.AvgWin, 1e-9)
	suite.InDelta(-30.0, m.AvgLoss, 1e-9)
	suite.InDelta(85.0, m.Expectancy, 1e-9)
	suite.InDelta(35.0, m.AvgHolding, 1e-9)
	suite.InDelta(35.0, m.MedianHolding, 1e-9)
	suite.Equal(2, m.MaxWinStreak)
	suite.Equal(1, m.MaxLossStreak)
}

func (suite *MetricsTestSuite) TestProfitFactorWithoutLosses() {
	trades := []types.Trade{suite.trade(10, time.Minute), suite.trade(20, time.Minute)}

	m := Compute(trades, suite.samples(100, 130), 100, nil)
	suite.Zero(m.ProfitFactor)
	suite.InDelta(100.0, m.WinRate, 1e-9)
	suite.InDelta(15.0, m.Expectancy, 1e-9)
	suite.requireFinite(m)
}

func (suite *MetricsTestSuite) TestStreaks() {
	tests := []struct {
		name     string
		pnls     []float64
		wantWin  int
		wantLoss int
	}{
		{name: "empty", pnls: nil, wantWin: 0, wantLoss: 0},
		{name: "all wins", pnls: []float64{1, 2, 3}, wantWin: 3, wantLoss: 0},
		{name: "alternating", pnls: []float64{1, -1, 1, -1}, wantWin: 1, wantLoss: 1},
		{name: "zero breaks win streak", pnls: []float64{1, 1, 0, 1}, wantWin: 2, wantLoss: 0},
		{name: "zero breaks loss streak", pnls: []float64{-1, -1, 0, -1, -1, -1}, wantWin: 0, wantLoss: 3},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			win, loss := streaks(tc.pnls)
			suite.Equal(tc.wantWin, win)
			suite.Equal(tc.wantLoss, loss)
		})
	}
}

func (suite *MetricsTestSuite) TestMedian() {
	suite.Zero(median(nil))
	suite.Equal(2.0, median([]float64{3, 1, 2}))
	suite.Equal(2.5, median([]float64{4, 1, 3, 2}))

	values := []float64{3, 1, 2}
	median(values)
	suite.Equal([]float64{3, 1, 2}, values)
}

func (suite *MetricsTestSuite) TestExposure() {
	bars := suite.bars(10, 5*time.Minute)
	trades := []types.Trade{
		suite.trade(1, 10*time.Minute),
		suite.trade(1, 0),
	}

	m := Compute(trades, suite.samples(100, 102), 100, bars)
	suite.InDelta(30.0, m.Exposure, 1e-9)
}

func (suite *MetricsTestSuite) TestModalSpacingIgnoresSessionGaps() {
	bars := suite.bars(6, 5*time.Minute)
	bars[5].Time = bars[4].Time.Add(18 * time.Hour)

	suite.Equal(5*time.Minute, modalSpacing(bars))
	suite.Equal(time.Duration(0), modalSpacing(bars[:1]))
}
