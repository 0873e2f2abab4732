package indicator

import (
	"testing"
	"time"

	talib "github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SignalProviderTestSuite struct {
	suite.Suite
}

func TestSignalProviderSuite(t *testing.T) {
	suite.Run(t, new(SignalProviderTestSuite))
}

func series(closes ...float64) []types.MarketData {
	start := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	data := make([]types.MarketData, len(closes))

	for i, c := range closes {
		data[i] = types.MarketData{
			Symbol: "TEST",
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 100,
		}
	}

	return data
}

func signalIndexes(bars []types.Bar) ([]int, []int) {
	long, short := []int{}, []int{}

	for i, bar := range bars {
		if bar.LongSignal == 1 {
			long = append(long, i)
		}

		if bar.ShortSignal == 1 {
			short = append(short, i)
		}
	}

	return long, short
}

// vShape rises by one per bar for up bars and then falls by one per bar.
func vShape(up, down int) []types.MarketData {
	closes := []float64{}
	price := 100.0

	for i := 0; i < up; i++ {
		price++
		closes = append(closes, price)
	}

	for i := 0; i < down; i++ {
		price--
		closes = append(closes, price)
	}

	return series(closes...)
}

// withSpread widens every bar to close +/- spread.
func withSpread(data []types.MarketData, spread float64) []types.MarketData {
	for i := range data {
		data[i].High = data[i].Close + spread
		data[i].Low = data[i].Close - spread
	}

	return data
}

// indexRange returns from, from+1, ..., to.
func indexRange(from, to int) []int {
	out := []int{}
	for i := from; i <= to; i++ {
		out = append(out, i)
	}

	return out
}

func (suite *SignalProviderTestSuite) TestSMACross() {
	data := series(10, 10, 10, 10, 12, 14, 14, 10, 6, 6)

	bars, err := NewSMACross().ComputeSignals(data, types.StrategyParams{"fast": 2, "slow": 3})
	suite.Require().NoError(err)
	suite.Require().Len(bars, len(data))

	long, short := signalIndexes(bars)
	suite.Equal([]int{5}, long)
	suite.Equal([]int{8}, short)

	for i := range bars {
		suite.Equal(data[i], bars[i].MarketData)
	}
}

func (suite *SignalProviderTestSuite) TestEMACrossOnlyFiresOnCross() {
	data := vShape(40, 40)

	bars, err := NewEMACross().ComputeSignals(data, types.StrategyParams{"fast": 3, "slow": 10})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Empty(long)
	suite.Require().Len(short, 1)
	suite.Greater(short[0], 40)
}

func (suite *SignalProviderTestSuite) TestRSI() {
	closes := []float64{100}
	price := 100.0

	for i := 1; i <= 20; i++ {
		if i%2 == 1 {
			price++
		} else {
			price--
		}

		closes = append(closes, price)
	}

	for i := 0; i < 10; i++ {
		price++
		closes = append(closes, price)
	}

	for i := 0; i < 15; i++ {
		price--
		closes = append(closes, price)
	}

	bars, err := NewRSI().ComputeSignals(series(closes...), types.StrategyParams{
		"period":     5,
		"overbought": 70,
		"oversold":   30,
	})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Require().Len(short, 1)
	suite.Greater(short[0], 21)
	suite.LessOrEqual(short[0], 31)

	suite.Require().Len(long, 1)
	suite.Greater(long[0], 31)
}

func (suite *SignalProviderTestSuite) TestMACD() {
	data := vShape(60, 40)

	bars, err := NewMACD().ComputeSignals(data, types.StrategyParams{})
	suite.Require().NoError(err)

	_, short := signalIndexes(bars)
	suite.Require().NotEmpty(short)
	suite.Greater(short[0], 60)
}

func (suite *SignalProviderTestSuite) TestBollingerBands() {
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = 100
	}

	closes[20] = 110
	closes[30] = 90

	bars, err := NewBollingerBands().ComputeSignals(series(closes...), types.StrategyParams{"period": 5, "stddev": 1.5})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Equal([]int{21}, long)
	suite.Equal([]int{31}, short)
}

func (suite *SignalProviderTestSuite) TestSignalsAreCausal() {
	data := mocks.NewDataGenerator(3).Generate(mocks.DefaultConfig())

	tests := []struct {
		provider SignalProvider
		params   types.StrategyParams
	}{
		{provider: NewEMACross(), params: types.StrategyParams{"fast": 5, "slow": 13}},
		{provider: NewSMACross(), params: types.StrategyParams{"fast": 5, "slow": 13}},
		{provider: NewRSI(), params: types.StrategyParams{"period": 14, "overbought": 65, "oversold": 35}},
		{provider: NewMACD(), params: types.StrategyParams{"fast": 8, "slow": 17, "signal": 5}},
		{provider: NewBollingerBands(), params: types.StrategyParams{"period": 20, "stddev": 1.5}},
		{provider: NewADX(), params: types.StrategyParams{}},
		{provider: NewAroon(), params: types.StrategyParams{}},
		{provider: NewATR(), params: types.StrategyParams{"multiplier": 0.5}},
		{provider: NewCCI(), params: types.StrategyParams{}},
		{provider: NewDEMA(), params: types.StrategyParams{"period": 10}},
		{provider: NewDonchian(), params: types.StrategyParams{}},
		{provider: NewKeltner(), params: types.StrategyParams{"multiplier": 1}},
		{provider: NewMFI(), params: types.StrategyParams{}},
		{provider: NewMomentum(), params: types.StrategyParams{}},
		{provider: NewOBV(), params: types.StrategyParams{}},
		{provider: NewPSAR(), params: types.StrategyParams{}},
		{provider: NewROC(), params: types.StrategyParams{"threshold": 0.1}},
		{provider: NewStochastic(), params: types.StrategyParams{}},
		{provider: NewStochRSI(), params: types.StrategyParams{}},
		{provider: NewSuperTrend(), params: types.StrategyParams{}},
		{provider: NewTEMA(), params: types.StrategyParams{"period": 10}},
		{provider: NewTRIX(), params: types.StrategyParams{}},
		{provider: NewUltimateOscillator(), params: types.StrategyParams{}},
		{provider: NewWilliamsR(), params: types.StrategyParams{}},
	}

	for _, tc := range tests {
		suite.Run(string(tc.provider.Name()), func() {
			full, err := tc.provider.ComputeSignals(data, tc.params)
			suite.Require().NoError(err)

			cut := len(data) / 2
			partial, err := tc.provider.ComputeSignals(data[:cut], tc.params)
			suite.Require().NoError(err)

			suite.Equal(full[:cut], partial)

			suite.Zero(full[0].LongSignal)
			suite.Zero(full[0].ShortSignal)

			for _, bar := range full {
				suite.Contains([]float64{0, 1}, bar.LongSignal)
				suite.Contains([]float64{0, 1}, bar.ShortSignal)
				suite.False(bar.IsLong() && bar.IsShort())
			}
		})
	}
}

func (suite *SignalProviderTestSuite) TestMissingParameters() {
	data := vShape(50, 50)

	tests := []struct {
		name     string
		provider SignalProvider
		params   types.StrategyParams
		code     errors.ErrorCode
	}{
		{name: "ema without slow", provider: NewEMACross(), params: types.StrategyParams{"fast": 5}, code: errors.ErrCodeMissingParameter},
		{name: "sma without fast", provider: NewSMACross(), params: types.StrategyParams{"slow": 5}, code: errors.ErrCodeMissingParameter},
		{name: "rsi without oversold", provider: NewRSI(), params: types.StrategyParams{"period": 14, "overbought": 70}, code: errors.ErrCodeMissingParameter},
		{name: "bollinger without stddev", provider: NewBollingerBands(), params: types.StrategyParams{"period": 20}, code: errors.ErrCodeMissingParameter},
		{name: "zero period", provider: NewEMACross(), params: types.StrategyParams{"fast": 0, "slow": 5}, code: errors.ErrCodeInvalidPeriod},
		{name: "fractional period", provider: NewSMACross(), params: types.StrategyParams{"fast": 2.5, "slow": 5}, code: errors.ErrCodeInvalidPeriod},
		{name: "rsi period one", provider: NewRSI(), params: types.StrategyParams{"period": 1, "overbought": 70, "oversold": 30}, code: errors.ErrCodeInvalidPeriod},
		{name: "macd negative signal", provider: NewMACD(), params: types.StrategyParams{"signal": -1}, code: errors.ErrCodeInvalidPeriod},
		{name: "rsi inverted thresholds", provider: NewRSI(), params: types.StrategyParams{"period": 14, "overbought": 30, "oversold": 70}, code: errors.ErrCodeInvalidParameter},
		{name: "bollinger zero stddev", provider: NewBollingerBands(), params: types.StrategyParams{"period": 20, "stddev": 0}, code: errors.ErrCodeInvalidParameter},
		{name: "adx zero threshold", provider: NewADX(), params: types.StrategyParams{"threshold": 0}, code: errors.ErrCodeInvalidParameter},
		{name: "cci inverted thresholds", provider: NewCCI(), params: types.StrategyParams{"entry": 100, "exit": -100}, code: errors.ErrCodeInvalidParameter},
		{name: "mfi inverted thresholds", provider: NewMFI(), params: types.StrategyParams{"oversold": 80, "overbought": 20}, code: errors.ErrCodeInvalidParameter},
		{name: "psar acceleration above maximum", provider: NewPSAR(), params: types.StrategyParams{"acceleration": 0.5, "maximum": 0.2}, code: errors.ErrCodeInvalidParameter},
		{name: "roc negative threshold", provider: NewROC(), params: types.StrategyParams{"threshold": -1}, code: errors.ErrCodeInvalidParameter},
		{name: "stochastic zero k period", provider: NewStochastic(), params: types.StrategyParams{"k_period": 0}, code: errors.ErrCodeInvalidPeriod},
		{name: "ultimate unordered periods", provider: NewUltimateOscillator(), params: types.StrategyParams{"short": 14, "medium": 7}, code: errors.ErrCodeInvalidPeriod},
		{name: "keltner negative multiplier", provider: NewKeltner(), params: types.StrategyParams{"multiplier": -2}, code: errors.ErrCodeInvalidParameter},
		{name: "trix period one", provider: NewTRIX(), params: types.StrategyParams{"period": 1}, code: errors.ErrCodeInvalidPeriod},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := tc.provider.ComputeSignals(data, tc.params)
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *SignalProviderTestSuite) TestInsufficientData() {
	_, err := NewEMACross().ComputeSignals(series(1, 2, 3), types.StrategyParams{"fast": 2, "slow": 5})
	suite.Require().Error(err)
	suite.True(errors.IsInsufficientDataError(err))

	var insufficient *errors.InsufficientDataError
	suite.Require().True(errors.As(err, &insufficient))
	suite.Equal(6, insufficient.Required)
	suite.Equal(3, insufficient.Actual)
	suite.Equal("TEST", insufficient.Symbol)

	_, err = NewMACD().ComputeSignals(nil, types.StrategyParams{})
	suite.True(errors.IsInsufficientDataError(err))

	// ADX needs 2*period-1 bars of warm-up
	_, err = NewADX().ComputeSignals(vShape(10, 10), types.StrategyParams{"period": 14})
	suite.Require().True(errors.As(err, &insufficient))
	suite.Equal(29, insufficient.Required)
	suite.Equal(errors.ErrCodeInsufficientData, errors.GetCode(err))
}

func (suite *SignalProviderTestSuite) TestMomentumAndROC() {
	data := vShape(20, 20)

	for _, provider := range []SignalProvider{NewMomentum(), NewROC()} {
		suite.Run(string(provider.Name()), func() {
			bars, err := provider.ComputeSignals(data, types.StrategyParams{"period": 3})
			suite.Require().NoError(err)

			long, short := signalIndexes(bars)
			suite.Equal(indexRange(4, 21), long)
			suite.Equal(indexRange(22, 39), short)
		})
	}

	// a three bar move on the ramp never reaches 5%
	bars, err := NewROC().ComputeSignals(data, types.StrategyParams{"period": 3, "threshold": 5})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Empty(long)
	suite.Empty(short)
}

func (suite *SignalProviderTestSuite) TestTRIX() {
	bars, err := NewTRIX().ComputeSignals(vShape(40, 40), types.StrategyParams{"period": 3})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Require().NotEmpty(long)
	suite.Require().NotEmpty(short)
	suite.Equal(8, long[0])
	suite.LessOrEqual(long[len(long)-1], 43)
	suite.GreaterOrEqual(short[0], 43)
	suite.Equal(79, short[len(short)-1])
}

func (suite *SignalProviderTestSuite) TestMovingAverageFilters() {
	closes := []float64{}
	price := 100.0

	// accelerating rise keeps the close above both averages until the turn
	for i := 1; i <= 30; i++ {
		price += 0.01 * float64(i*i)
		closes = append(closes, price)
	}

	for i := 0; i < 20; i++ {
		price -= 3
		closes = append(closes, price)
	}

	data := series(closes...)

	bars, err := NewDEMA().ComputeSignals(data, types.StrategyParams{"period": 5})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Empty(long)
	suite.Equal([]int{31}, short)

	// TEMA overshoots on the fall and the close crosses back above it
	bars, err = NewTEMA().ComputeSignals(data, types.StrategyParams{"period": 5})
	suite.Require().NoError(err)

	long, short = signalIndexes(bars)
	suite.Equal([]int{36}, long)
	suite.Equal([]int{31}, short)
}

func (suite *SignalProviderTestSuite) TestOscillators() {
	data := vShape(20, 20)

	tests := []struct {
		name     string
		provider SignalProvider
		params   types.StrategyParams
		long     []int
		short    []int
	}{
		{
			name:     "williams r",
			provider: NewWilliamsR(),
			params:   types.StrategyParams{"period": 5},
			long:     indexRange(22, 39),
			short:    indexRange(5, 20),
		},
		{
			name:     "stochastic waits for d",
			provider: NewStochastic(),
			params:   types.StrategyParams{"k_period": 5, "d_period": 3},
			long:     indexRange(22, 39),
			short:    indexRange(7, 20),
		},
		{
			name:     "cci",
			provider: NewCCI(),
			params:   types.StrategyParams{"period": 5},
			long:     indexRange(23, 39),
			short:    indexRange(5, 20),
		},
		{
			name:     "mfi",
			provider: NewMFI(),
			params:   types.StrategyParams{"period": 5},
			long:     indexRange(25, 39),
			short:    indexRange(6, 20),
		},
		{
			name:     "ultimate oscillator",
			provider: NewUltimateOscillator(),
			params:   types.StrategyParams{"short": 2, "medium": 3, "long": 4},
			long:     indexRange(5, 20),
			short:    indexRange(22, 39),
		},
		{
			name:     "aroon",
			provider: NewAroon(),
			params:   types.StrategyParams{"period": 5},
			long:     indexRange(6, 21),
			short:    indexRange(23, 39),
		},
		{
			name:     "obv",
			provider: NewOBV(),
			params:   types.StrategyParams{"period": 5},
			long:     indexRange(5, 21),
			short:    indexRange(22, 39),
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			bars, err := tc.provider.ComputeSignals(data, tc.params)
			suite.Require().NoError(err)

			long, short := signalIndexes(bars)
			suite.Equal(tc.long, long)
			suite.Equal(tc.short, short)
		})
	}
}

func (suite *SignalProviderTestSuite) TestADX() {
	bars, err := NewADX().ComputeSignals(vShape(40, 40), types.StrategyParams{"period": 5})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Require().NotEmpty(long)
	suite.Require().NotEmpty(short)

	// first bar after the 2*period-1 warm-up
	suite.Equal(10, long[0])
	suite.Less(long[len(long)-1], 45)
	suite.Greater(short[0], 41)
	suite.Equal(79, short[len(short)-1])
}

func (suite *SignalProviderTestSuite) TestATR() {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}

	closes[20] = 105

	bars, err := NewATR().ComputeSignals(withSpread(series(closes...), 1), types.StrategyParams{"period": 5, "multiplier": 1})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Equal([]int{21}, long)
	suite.Equal([]int{22}, short)
}

func (suite *SignalProviderTestSuite) TestDonchian() {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}

	closes[10] = 105
	closes[20] = 95

	bars, err := NewDonchian().ComputeSignals(series(closes...), types.StrategyParams{"period": 5})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Equal([]int{11}, long)
	suite.Equal([]int{21}, short)
}

func (suite *SignalProviderTestSuite) TestKeltner() {
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = 100
	}

	closes[20] = 110
	closes[30] = 90

	bars, err := NewKeltner().ComputeSignals(withSpread(series(closes...), 1), types.StrategyParams{"period": 5, "multiplier": 2})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Equal([]int{21}, long)
	suite.Equal([]int{31}, short)
}

func (suite *SignalProviderTestSuite) TestTrendFlips() {
	data := withSpread(vShape(30, 30), 0.5)

	bars, err := NewSuperTrend().ComputeSignals(data, types.StrategyParams{"period": 5, "multiplier": 1})
	suite.Require().NoError(err)

	long, short := signalIndexes(bars)
	suite.Empty(long)
	suite.Equal([]int{32}, short)

	bars, err = NewPSAR().ComputeSignals(data, types.StrategyParams{})
	suite.Require().NoError(err)

	_, short = signalIndexes(bars)
	suite.Require().NotEmpty(short)
	suite.Greater(short[0], 30)
}

func (suite *SignalProviderTestSuite) TestStochRSIMatchesOscillator() {
	data := mocks.NewDataGenerator(11).Generate(mocks.DefaultConfig())

	bars, err := NewStochRSI().ComputeSignals(data, types.StrategyParams{"period": 7})
	suite.Require().NoError(err)

	k, _ := talib.StochRsi(types.Closes(data), 7, 7, 1, talib.SMA)
	lookback := 13

	for i := 1; i < len(bars); i++ {
		prev := i - 1
		suite.Equal(prev >= lookback && k[prev] < 20, bars[i].IsLong(), "bar %d", i)
		suite.Equal(prev >= lookback && k[prev] > 80, bars[i].IsShort(), "bar %d", i)
	}
}
