package engine

import (
	"context"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Lifecycle callback types for backtest phases.
// Callbacks are invoked one at a time even when runs execute in parallel.
// Callbacks with an error return abort the backtest when they fail.

// OnBacktestStartCallback is called once before any run starts.
type OnBacktestStartCallback func(totalRuns int, totalStrategies int, totalDataFiles int) error

// OnBacktestEndCallback is called when the entire backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnRunStartCallback is called when a run is scheduled.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, runName string, dataFilePath string, totalDataPoints int) error

// OnRunEndCallback is called when a run finishes, successfully or not.
type OnRunEndCallback func(result RunResult)

// OnProcessDataCallback is called after each finished run with the number of
// runs done so far.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
	OnProcessData   *OnProcessDataCallback
}

// RunResult is the outcome of one (data file, strategy, parameter set) run.
type RunResult struct {
	ID       string
	Name     string
	Symbol   string
	Interval string
	Strategy types.StrategyName
	Params   types.StrategyParams
	DataPath string
	// Stats has one entry per simulated split, ALL first.
	Stats []types.RunStats
	// ResultFolder holds the run's trade and equity files. Empty when nothing was written.
	ResultFolder string
	// Err is set when the run failed. A failed run has no Stats.
	Err error
}

// Failed reports whether the run ended with an error.
func (r RunResult) Failed() bool {
	return r.Err != nil
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetConfigPath reads the configuration from a file and initializes the engine with it.
	SetConfigPath(path string) error
	// SetDataPath sets the bar files to backtest. Accepts glob patterns (e.g. "data/*.csv").
	// File names follow <SYMBOL>_<interval>.<ext>.
	SetDataPath(path string) error
	// SetResultsFolder sets the output directory for saving backtest results.
	// Each run with trades gets a folder named <SYMBOL>_<interval>_<STRATEGY>_<hyperparams>.
	SetResultsFolder(folder string) error
	// SetDataSource sets the data source used to load bar files.
	SetDataSource(dataSource datasource.DataSource) error
	// Run executes the whole parameter grid. A failing run is reported on its
	// RunResult and does not stop the others. The returned error is set when the
	// backtest as a whole could not complete.
	Run(ctx context.Context, callbacks LifecycleCallbacks) ([]RunResult, error)
	// GetConfigSchema returns the JSON schema of the engine configuration
	GetConfigSchema() (string, error)
}
