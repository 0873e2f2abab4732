package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval10m Interval = "10m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
	Interval1w  Interval = "1w"
)

type DataSource interface {
	// Initialize loads a CSV or Parquet bar file. The file needs open, high, low,
	// close and volume columns plus a time or date column. A missing symbol
	// column is filled from the file name.
	Initialize(path string) error
	// ReadAll yields bars in ascending time order.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool)
	// Count returns the number of rows in the data source
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources
	Close() error
}

// ReadBars collects ReadAll into a slice.
func ReadBars(ds DataSource, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.MarketData, error) {
	var bars []types.MarketData

	for bar, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}
