package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/cache"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/metrics"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	initialized   bool
	dataPaths     []string
	resultsFolder string
	log           *logger.Logger
	registry      indicator.SignalRegistry
	feeCache      *cache.FeeScheduleCache
	commissionFee commission_fee.CommissionFee
	datasource    datasource.DataSource
}

// dataset is one loaded bar file shared read-only by all of its runs.
type dataset struct {
	path     string
	symbol   string
	interval string
	bars     []types.MarketData
	err      error
}

// runJob is one (data file, strategy, parameter set) combination of the grid.
type runJob struct {
	index    int
	id       string
	name     string
	dataset  *dataset
	strategy types.StrategyName
	params   types.StrategyParams
}

// runOutput keeps what the persistence phase needs from a finished run.
type runOutput struct {
	result engine.RunResult
	// all is the simulation of the ALL split.
	all      SimulationResult
	features []types.Bar
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:        EmptyConfig(),
		initialized:   false,
		dataPaths:     nil,
		resultsFolder: "",
		log:           logger.NewNopLogger(),
		registry:      nil,
		feeCache:      nil,
		commissionFee: nil,
		datasource:    nil,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed, err := ParseConfig(config)
	if err != nil {
		return err
	}

	b.config = parsed

	log, err := logger.NewLogger()
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
	}

	b.log = log.Named("backtest")

	b.registry = indicator.NewDefaultSignalRegistry()

	b.feeCache = cache.NewFeeScheduleCache(b.config.FeeSchedulePath)

	var schedule *commission_fee.FeeSchedule

	if b.config.Broker == commission_fee.BrokerDiscount {
		schedule, err = b.feeCache.Get()
		if err != nil {
			return err
		}
	}

	b.commissionFee, err = commission_fee.GetCommissionFeeHandler(b.config.Broker, schedule)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create commission fee", err)
	}

	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.String("broker", string(b.config.Broker)),
		zap.Float64("initial_capital", b.config.InitialCapital),
		zap.Int("strategies", len(b.config.Strategies)),
	)

	return nil
}

// SetConfigPath implements engine.Engine.
func (b *BacktestEngineV1) SetConfigPath(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		b.log.Error("Failed to read config",
			zap.String("path", path),
			zap.Error(err),
		)

		return errors.Wrapf(errors.ErrCodeBacktestConfigError, err, "failed to read config %s", path)
	}

	return b.Initialize(string(content))
}

// SetDataPath implements engine.Engine.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	// use glob to get all the files that match the path
	files, err := filepath.Glob(path)
	if err != nil {
		b.log.Error("Failed to set data path",
			zap.String("path", path),
			zap.Error(err),
		)

		return errors.Wrap(errors.ErrCodeBacktestDataPathError, "invalid data path pattern", err)
	}

	// Convert all paths to absolute paths
	absolutePaths := make([]string, len(files))

	for i, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			b.log.Error("Failed to get absolute path",
				zap.String("path", file),
				zap.Error(err),
			)

			return errors.Wrap(errors.ErrCodeBacktestDataPathError, "failed to resolve data path", err)
		}

		absolutePaths[i] = absPath
	}

	b.dataPaths = absolutePaths
	b.log.Debug("Data paths set",
		zap.Strings("files", absolutePaths),
	)

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	b.log.Debug("Results folder set",
		zap.String("folder", folder),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(datasource datasource.DataSource) error {
	b.datasource = datasource

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (results []engine.RunResult, err error) {
	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	datasets := b.loadDatasets(ctx)
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled while loading data", err)
	}

	jobs := b.buildJobs(datasets)

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(len(jobs), len(b.config.Strategies), len(b.dataPaths)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCallbackFailed, "OnBacktestStart callback failed", err)
		}
	}

	// clean the results folder
	if err := os.RemoveAll(b.resultsFolder); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to clean results folder", err)
	}

	if err := os.MkdirAll(b.resultsFolder, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create results folder", err)
	}

	outputs, err := b.runGrid(ctx, jobs, callbacks)

	results = make([]engine.RunResult, len(outputs))
	for i, output := range outputs {
		results[i] = output.result
	}

	if err != nil {
		return results, err
	}

	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", err)
	}

	if err := b.persist(outputs); err != nil {
		return results, err
	}

	for i, output := range outputs {
		results[i] = output.result
	}

	b.log.Info("Backtest finished",
		zap.Int("runs", len(results)),
		zap.String("results", b.resultsFolder),
	)

	return results, nil
}

// loadDatasets reads every data file once. The data source holds a single
// file at a time, so files are loaded one after another.
func (b *BacktestEngineV1) loadDatasets(ctx context.Context) []*dataset {
	datasets := make([]*dataset, 0, len(b.dataPaths))

	for _, path := range b.dataPaths {
		if ctx.Err() != nil {
			break
		}

		symbol, interval, ok := datasource.ParseDataFileName(path)
		if !ok {
			b.log.Warn("Data file name does not follow <SYMBOL>_<interval>",
				zap.String("path", path),
			)
		}

		ds := &dataset{
			path:     path,
			symbol:   symbol,
			interval: string(interval),
		}

		if b.config.Symbol != "" {
			ds.symbol = b.config.Symbol
		}

		if b.config.Interval != "" {
			ds.interval = b.config.Interval
		}

		if err := b.datasource.Initialize(path); err != nil {
			ds.err = err
		} else {
			ds.bars, ds.err = datasource.ReadBars(b.datasource, b.config.StartTime, b.config.EndTime)
		}

		if ds.err == nil && len(ds.bars) == 0 {
			ds.err = errors.Newf(errors.ErrCodeNoDataFound, "no bars in %s for the configured time range", path)
		}

		if ds.err != nil {
			b.log.Error("Failed to load data file",
				zap.String("path", path),
				zap.Error(ds.err),
			)
		} else {
			b.log.Debug("Loaded data file",
				zap.String("path", path),
				zap.String("symbol", ds.symbol),
				zap.String("interval", ds.interval),
				zap.Int("bars", len(ds.bars)),
			)
		}

		datasets = append(datasets, ds)
	}

	return datasets
}

func (b *BacktestEngineV1) buildJobs(datasets []*dataset) []runJob {
	var jobs []runJob

	for _, ds := range datasets {
		for _, strategy := range b.config.Strategies {
			for _, params := range BuildParamGrid(strategy.Name, strategy.Params) {
				jobs = append(jobs, runJob{
					index:    len(jobs),
					id:       uuid.New().String(),
					name:     RunName(ds.symbol, ds.interval, strategy.Name, params),
					dataset:  ds,
					strategy: strategy.Name,
					params:   params,
				})
			}
		}
	}

	return jobs
}

func (b *BacktestEngineV1) maxParallel() int {
	if b.config.MaxParallel > 0 {
		return b.config.MaxParallel
	}

	return runtime.NumCPU()
}

// runGrid executes the jobs concurrently. Outputs are indexed like jobs.
// Callbacks are serialized and a failing callback stops the grid.
func (b *BacktestEngineV1) runGrid(ctx context.Context, jobs []runJob, callbacks engine.LifecycleCallbacks) ([]runOutput, error) {
	outputs := make([]runOutput, len(jobs))

	for i, job := range jobs {
		outputs[i].result = job.pendingResult()
	}

	var (
		callbackMu sync.Mutex
		done       int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.maxParallel())

	for _, job := range jobs {
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			if groupCtx.Err() != nil {
				outputs[job.index].result.Err = errors.Wrap(errors.ErrCodeBacktestCancelled, "run not started", groupCtx.Err())

				return nil
			}

			if callbacks.OnRunStart != nil {
				callbackMu.Lock()
				err := (*callbacks.OnRunStart)(job.id, job.name, job.dataset.path, len(job.dataset.bars))
				callbackMu.Unlock()

				if err != nil {
					outputs[job.index].result.Err = err

					return errors.Wrap(errors.ErrCodeCallbackFailed, "OnRunStart callback failed", err)
				}
			}

			outputs[job.index] = b.executeRun(groupCtx, job)

			callbackMu.Lock()
			defer callbackMu.Unlock()

			done++

			if callbacks.OnRunEnd != nil {
				(*callbacks.OnRunEnd)(outputs[job.index].result)
			}

			if callbacks.OnProcessData != nil {
				if err := (*callbacks.OnProcessData)(done, len(jobs)); err != nil {
					return errors.Wrap(errors.ErrCodeCallbackFailed, "OnProcessData callback failed", err)
				}
			}

			return nil
		})
	}

	err := group.Wait()

	for i := range outputs {
		if outputs[i].result.Stats == nil && outputs[i].result.Err == nil {
			outputs[i].result.Err = errors.New(errors.ErrCodeBacktestCancelled, "run not started")
		}
	}

	return outputs, err
}

func (j runJob) pendingResult() engine.RunResult {
	return engine.RunResult{
		ID:       j.id,
		Name:     j.name,
		Symbol:   j.dataset.symbol,
		Interval: j.dataset.interval,
		Strategy: j.strategy,
		Params:   j.params,
		DataPath: j.dataset.path,
	}
}

// executeRun computes signals once and simulates every split. It owns all of its state.
func (b *BacktestEngineV1) executeRun(ctx context.Context, job runJob) runOutput {
	output := runOutput{result: job.pendingResult()}
	log := b.log.With(zap.String("run", job.name))

	fail := func(err error) runOutput {
		log.Warn("Run failed", zap.Error(err))
		output.result.Err = err
		output.result.Stats = nil

		return output
	}

	if job.dataset.err != nil {
		return fail(job.dataset.err)
	}

	provider, err := b.registry.GetProvider(job.strategy)
	if err != nil {
		return fail(err)
	}

	bars, err := provider.ComputeSignals(job.dataset.bars, job.params)
	if err != nil {
		return fail(err)
	}

	windows, err := SplitBars(bars, b.config.TrainSplit)
	if err != nil {
		return fail(err)
	}

	stats := make([]types.RunStats, 0, len(windows))

	for _, window := range windows {
		sim, err := NewSimulator(
			window.Bars,
			b.config.InitialCapital,
			b.config.RiskParams(),
			b.commissionFee,
			b.config.IntradayOnly,
			&logger.Logger{Logger: log.With(zap.String("split", string(window.Split)))},
		)
		if err != nil {
			return fail(err)
		}

		result, err := sim.Run(ctx)
		if err != nil {
			return fail(err)
		}

		if window.Split == types.SplitAll {
			output.all = result
		}

		stats = append(stats, types.RunStats{
			ID:          job.id,
			Timestamp:   time.Now(),
			Name:        job.name,
			Symbol:      job.dataset.symbol,
			Strategy:    job.strategy,
			Hyperparams: job.params.HyperparamString(),
			Split:       window.Split,
			DataPath:    job.dataset.path,
			Metrics:     metrics.Compute(result.Trades, result.Equity, b.config.InitialCapital, window.Bars),
		})
	}

	if b.config.SaveFeatures {
		output.features = bars
	}

	output.result.Stats = stats

	log.Debug("Run finished",
		zap.Int("trades", len(output.all.Trades)),
		zap.Float64("net_pnl", stats[0].Metrics.NetPnL),
	)

	return output
}

// persist writes the outputs of successful runs in grid order.
func (b *BacktestEngineV1) persist(outputs []runOutput) error {
	store, err := NewResultStore(b.log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		return err
	}

	var summary []types.RunStats

	for i := range outputs {
		output := &outputs[i]
		if output.result.Failed() {
			continue
		}

		folder := getResultFolder(b.resultsFolder, output.result.Name)

		if len(output.all.Trades) > 0 {
			if err := store.RecordTrades(output.result.Name, output.all.Trades); err != nil {
				return err
			}

			if err := store.RecordEquity(output.result.Name, output.all.Equity); err != nil {
				return err
			}

			files, err := store.WriteRun(output.result.Name, folder)
			if err != nil {
				return err
			}

			output.result.ResultFolder = folder
			output.result.Stats[0].TradesFilePath = files.Trades
			output.result.Stats[0].EquityFilePath = files.Equity
		}

		if output.features != nil {
			if err := store.RecordFeatures(output.result.Name, output.features); err != nil {
				return err
			}

			if _, err := store.WriteFeatures(output.result.Name, output.result.Strategy, folder); err != nil {
				return err
			}

			output.result.ResultFolder = folder
		}

		if err := store.RecordSummary(output.result.Stats); err != nil {
			return err
		}

		summary = append(summary, output.result.Stats...)
	}

	if summary == nil {
		summary = []types.RunStats{}
	}

	return store.WriteSummary(b.resultsFolder, summary)
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to generate schema", err)
	}

	return schema, nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		b.log.Error("Engine not initialized")

		return errors.New(errors.ErrCodeBacktestNotInitialized, "engine not initialized, call Initialize first")
	}

	if len(b.config.Strategies) == 0 {
		b.log.Error("No strategies configured")

		return errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies configured")
	}

	if len(b.dataPaths) == 0 {
		b.log.Error("No data paths loaded")

		return errors.New(errors.ErrCodeBacktestNoDataPaths, "no data paths loaded")
	}

	if b.resultsFolder == "" {
		b.log.Error("No results folder set")

		return errors.New(errors.ErrCodeBacktestNoResultsDir, "no results folder set")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	return nil
}
