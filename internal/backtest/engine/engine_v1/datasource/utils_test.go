package datasource

import (
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DatasourceUtilsTestSuite struct {
	suite.Suite
}

func TestDatasourceUtilsSuite(t *testing.T) {
	suite.Run(t, new(DatasourceUtilsTestSuite))
}

func (suite *DatasourceUtilsTestSuite) TestGetIntervalMinutes() {
	tests := []struct {
		interval        Interval
		expectedMinutes int
	}{
		{Interval1m, 1},
		{Interval3m, 3},
		{Interval5m, 5},
		{Interval10m, 10},
		{Interval15m, 15},
		{Interval30m, 30},
		{Interval1h, 60},
		{Interval4h, 240},
		{Interval1d, 1440},
		{Interval1w, 10080},
	}

	for _, tc := range tests {
		suite.Run(string(tc.interval), func() {
			minutes, err := getIntervalMinutes(tc.interval)
			suite.NoError(err)
			suite.Equal(tc.expectedMinutes, minutes)
		})
	}
}

func (suite *DatasourceUtilsTestSuite) TestGetIntervalMinutesUnsupportedInterval() {
	minutes, err := getIntervalMinutes(Interval("invalid"))

	suite.Error(err)
	suite.Equal(0, minutes)
	suite.Contains(err.Error(), "unsupported interval")
}

func (suite *DatasourceUtilsTestSuite) TestNormalizeInterval() {
	tests := []struct {
		input       string
		expected    Interval
		expectError bool
	}{
		{input: "minute", expected: Interval1m},
		{input: "5minute", expected: Interval5m},
		{input: "DAY", expected: Interval1d},
		{input: "15m", expected: Interval15m},
		{input: "7minute", expectError: true},
		{input: "", expectError: true},
	}

	for _, tc := range tests {
		suite.Run(tc.input, func() {
			interval, err := NormalizeInterval(tc.input)
			if tc.expectError {
				suite.Error(err)

				return
			}

			suite.NoError(err)
			suite.Equal(tc.expected, interval)
		})
	}
}

func (suite *DatasourceUtilsTestSuite) TestParseDataFileName() {
	tests := []struct {
		name     string
		path     string
		symbol   string
		interval Interval
		ok       bool
	}{
		{name: "broker style", path: "data/historical/HDFCBANK_minute.csv", symbol: "HDFCBANK", interval: Interval1m, ok: true},
		{name: "short interval", path: "NIFTY_5m.parquet", symbol: "NIFTY", interval: Interval5m, ok: true},
		{name: "symbol with underscore", path: "BANK_NIFTY_15minute.csv", symbol: "BANK_NIFTY", interval: Interval15m, ok: true},
		{name: "no interval", path: "/tmp/prices.csv", symbol: "prices", ok: false},
		{name: "unknown interval", path: "AAPL_2020.parquet", symbol: "AAPL_2020", ok: false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			symbol, interval, ok := ParseDataFileName(tc.path)
			suite.Equal(tc.symbol, symbol)
			suite.Equal(tc.interval, interval)
			suite.Equal(tc.ok, ok)
		})
	}
}

func (suite *DatasourceUtilsTestSuite) TestNullToNaN() {
	suite.Equal(1.5, nullToNaN(sql.NullFloat64{Float64: 1.5, Valid: true}))
	suite.True(math.IsNaN(nullToNaN(sql.NullFloat64{})))
}
