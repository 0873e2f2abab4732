package mocks

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type DataGeneratorTestSuite struct {
	suite.Suite
}

func TestDataGeneratorSuite(t *testing.T) {
	suite.Run(t, new(DataGeneratorTestSuite))
}

func (suite *DataGeneratorTestSuite) TestGenerate() {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 100
	config.BarsPerSession = 0

	data := gen.Generate(config)
	suite.Len(data, 100)

	for i, d := range data {
		suite.Equal(config.Symbol, d.Symbol)
		suite.Positive(d.Open)
		suite.Positive(d.Low)
		suite.GreaterOrEqual(d.High, d.Low)

		if i > 0 {
			suite.Equal(config.Interval, d.Time.Sub(data[i-1].Time))
		}
	}
}

func (suite *DataGeneratorTestSuite) TestSessions() {
	gen := NewDataGenerator(1)
	config := DefaultConfig()
	config.Count = 150

	data := gen.Generate(config)

	suite.True(types.SameDate(data[0].Time, data[74].Time))
	suite.False(types.SameDate(data[74].Time, data[75].Time))
	suite.Equal(config.StartTime.AddDate(0, 0, 1), data[75].Time)
	suite.Equal(time.Date(2024, 1, 1, 15, 25, 0, 0, time.UTC), data[74].Time)
}

func (suite *DataGeneratorTestSuite) TestReproducibility() {
	config := DefaultConfig()

	first := NewDataGenerator(7).GenerateBars(config, 0.1)
	second := NewDataGenerator(7).GenerateBars(config, 0.1)
	suite.Equal(first, second)
}

func (suite *DataGeneratorTestSuite) TestGenerateBarsSignals() {
	bars := NewDataGenerator(3).GenerateBars(DefaultConfig(), 0.2)

	longs, shorts := 0, 0

	for _, bar := range bars {
		suite.False(bar.IsLong() && bar.IsShort())

		if bar.IsLong() {
			longs++
		}

		if bar.IsShort() {
			shorts++
		}
	}

	suite.Positive(longs)
	suite.Positive(shorts)
}

func (suite *DataGeneratorTestSuite) TestWithoutSignals() {
	data := NewDataGenerator(5).Generate(DefaultConfig())
	bars := WithoutSignals(data)

	suite.Len(bars, len(data))

	for _, bar := range bars {
		suite.Equal(types.SignalDirectionNone, types.ResolveSignal(bar))
	}
}
