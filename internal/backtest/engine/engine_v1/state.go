package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// insertBatchSize bounds the rows of a single multi-row INSERT.
const insertBatchSize = 500

const (
	TradesFileName   = "trades.parquet"
	EquityFileName   = "equity.parquet"
	FeaturesFileName = "features.parquet"
	SummaryFileName  = "metrics_summary.parquet"
	StatsFileName    = "stats.yaml"
)

var tradeColumns = []string{
	"run_name", "seq", "id", "direction", "entry_time", "entry_price", "qty",
	"exit_time", "exit_price", "exit_reason", "gross_pnl", "entry_fee", "exit_fee", "total_fee", "pnl",
}

var summaryColumns = []string{
	"seq", "run_id", "name", "symbol", "strategy", "hyperparams", "split", "data_path",
	"gross_pnl", "total_fees", "net_pnl", "equity_final", "total_return", "cagr",
	"volatility", "sharpe", "sortino", "max_drawdown", "calmar", "win_rate", "profit_factor",
	"trades", "best_trade", "worst_trade", "median_trade", "avg_win", "avg_loss", "expectancy",
	"exposure", "avg_holding", "median_holding", "max_win_streak", "max_loss_streak",
}

// RunFiles lists the files written for one run. Empty paths were not written.
type RunFiles struct {
	Trades   string
	Equity   string
	Features string
}

// ResultStore buffers the outputs of all runs in an in-memory DuckDB database
// and exports them to Parquet. It is safe for concurrent use.
type ResultStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	mu     sync.Mutex
	// summaryRows keeps the summary in insertion order.
	summaryRows int
}

func NewResultStore(logger *logger.Logger) (*ResultStore, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to open result database", err)
	}

	return &ResultStore{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize creates the result tables.
func (s *ResultStore) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createTables()
}

func (s *ResultStore) createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			run_name TEXT,
			seq INTEGER,
			id TEXT,
			direction TEXT,
			entry_time TIMESTAMP,
			entry_price DOUBLE,
			qty DOUBLE,
			exit_time TIMESTAMP,
			exit_price DOUBLE,
			exit_reason TEXT,
			gross_pnl DOUBLE,
			entry_fee DOUBLE,
			exit_fee DOUBLE,
			total_fee DOUBLE,
			pnl DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS equity (
			run_name TEXT,
			seq INTEGER,
			date TIMESTAMP,
			equity DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS features (
			run_name TEXT,
			seq INTEGER,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			long_signal DOUBLE,
			short_signal DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS metrics_summary (
			seq INTEGER,
			run_id TEXT,
			name TEXT,
			symbol TEXT,
			strategy TEXT,
			hyperparams TEXT,
			split TEXT,
			data_path TEXT,
			gross_pnl DOUBLE,
			total_fees DOUBLE,
			net_pnl DOUBLE,
			equity_final DOUBLE,
			total_return DOUBLE,
			cagr DOUBLE,
			volatility DOUBLE,
			sharpe DOUBLE,
			sortino DOUBLE,
			max_drawdown DOUBLE,
			calmar DOUBLE,
			win_rate DOUBLE,
			profit_factor DOUBLE,
			trades INTEGER,
			best_trade DOUBLE,
			worst_trade DOUBLE,
			median_trade DOUBLE,
			avg_win DOUBLE,
			avg_loss DOUBLE,
			expectancy DOUBLE,
			exposure DOUBLE,
			avg_holding DOUBLE,
			median_holding DOUBLE,
			max_win_streak INTEGER,
			max_loss_streak INTEGER
		)`,
	}

	// Using raw SQL as Squirrel doesn't support CREATE TABLE
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create result table", err)
		}
	}

	return nil
}

// RecordTrades stores the closed trades of a run.
func (s *ResultStore) RecordTrades(runName string, trades []types.Trade) error {
	return s.insertRows("trades", tradeColumns, len(trades), func(i int) []interface{} {
		t := trades[i]

		return []interface{}{
			runName, i, t.ID, string(t.Direction), t.EntryTime, t.EntryPrice, t.Quantity,
			t.ExitTime, t.ExitPrice, string(t.ExitReason), t.GrossPnL, t.EntryFee, t.ExitFee, t.TotalFees, t.NetPnL,
		}
	})
}

// RecordEquity stores the equity curve of a run.
func (s *ResultStore) RecordEquity(runName string, equity []types.EquitySample) error {
	return s.insertRows("equity", []string{"run_name", "seq", "date", "equity"}, len(equity), func(i int) []interface{} {
		return []interface{}{runName, i, equity[i].Time, equity[i].Equity}
	})
}

// RecordFeatures stores the signal-augmented bars a run was simulated on.
func (s *ResultStore) RecordFeatures(runName string, bars []types.Bar) error {
	columns := []string{
		"run_name", "seq", "time", "symbol", "open", "high", "low", "close", "volume", "long_signal", "short_signal",
	}

	return s.insertRows("features", columns, len(bars), func(i int) []interface{} {
		b := bars[i]

		return []interface{}{
			runName, i, b.Time, b.Symbol, b.Open, b.High, b.Low, b.Close, b.Volume, b.LongSignal, b.ShortSignal,
		}
	})
}

// RecordSummary appends rows to the grid summary. Rows keep the order they were recorded in.
func (s *ResultStore) RecordSummary(stats []types.RunStats) error {
	s.mu.Lock()
	offset := s.summaryRows
	s.summaryRows += len(stats)
	s.mu.Unlock()

	return s.insertRows("metrics_summary", summaryColumns, len(stats), func(i int) []interface{} {
		st := stats[i]
		m := st.Metrics

		return []interface{}{
			offset + i, st.ID, st.Name, st.Symbol, string(st.Strategy), st.Hyperparams, string(st.Split), st.DataPath,
			m.GrossPnL, m.TotalFees, m.NetPnL, m.EquityFinal, m.TotalReturn, m.CAGR,
			m.Volatility, m.Sharpe, m.Sortino, m.MaxDrawdown, m.Calmar, m.WinRate, m.ProfitFactor,
			m.Trades, m.BestTrade, m.WorstTrade, m.MedianTrade, m.AvgWin, m.AvgLoss, m.Expectancy,
			m.Exposure, m.AvgHolding, m.MedianHolding, m.MaxWinStreak, m.MaxLossStreak,
		}
	})
}

// insertRows writes n rows in one transaction, batching them into multi-row inserts.
func (s *ResultStore) insertRows(table string, columns []string, n int, row func(i int) []interface{}) error {
	if n == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin transaction", err)
	}

	for start := 0; start < n; start += insertBatchSize {
		end := min(start+insertBatchSize, n)

		query := s.sq.Insert(table).Columns(columns...)
		for i := start; i < end; i++ {
			query = query.Values(row(i)...)
		}

		if _, err := query.RunWith(tx).Exec(); err != nil {
			_ = tx.Rollback()

			return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to insert into %s", table)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit transaction", err)
	}

	return nil
}

// GetTrades returns the stored trades of a run in the order they closed.
func (s *ResultStore) GetTrades(runName string) ([]types.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := s.sq.
		Select(tradeColumns[2:]...).
		From("trades").
		Where(squirrel.Eq{"run_name": runName}).
		OrderBy("seq")

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	trades := []types.Trade{}

	for rows.Next() {
		var (
			trade      types.Trade
			direction  string
			exitReason string
		)

		err := rows.Scan(
			&trade.ID, &direction, &trade.EntryTime, &trade.EntryPrice, &trade.Quantity,
			&trade.ExitTime, &trade.ExitPrice, &exitReason, &trade.GrossPnL,
			&trade.EntryFee, &trade.ExitFee, &trade.TotalFees, &trade.NetPnL,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		trade.Direction = types.PositionType(direction)
		trade.ExitReason = types.ExitReason(exitReason)
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read trades", err)
	}

	return trades, nil
}

// SummaryCount returns the number of recorded summary rows.
func (s *ResultStore) SummaryCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int

	err := s.sq.Select("COUNT(*)").From("metrics_summary").RunWith(s.db).QueryRow().Scan(&count)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count summary rows", err)
	}

	return count, nil
}

// WriteRun exports the trades and equity curve of a run into folder.
func (s *ResultStore) WriteRun(runName string, folder string) (RunFiles, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return RunFiles{}, errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create run folder", err)
	}

	files := RunFiles{
		Trades: filepath.Join(folder, TradesFileName),
		Equity: filepath.Join(folder, EquityFileName),
	}

	tradesQuery := fmt.Sprintf(
		`SELECT %s FROM trades WHERE run_name = %s ORDER BY seq`,
		strings.Join(tradeColumns[2:], ", "), quoteLiteral(runName),
	)
	if err := s.copyToParquet(tradesQuery, files.Trades); err != nil {
		return RunFiles{}, err
	}

	equityQuery := fmt.Sprintf(`SELECT date, equity FROM equity WHERE run_name = %s ORDER BY seq`, quoteLiteral(runName))
	if err := s.copyToParquet(equityQuery, files.Equity); err != nil {
		return RunFiles{}, err
	}

	s.logger.Debug("Wrote run results",
		zap.String("run", runName),
		zap.String("trades", files.Trades),
		zap.String("equity", files.Equity),
	)

	return files, nil
}

// WriteFeatures exports the stored bars of a run. The signal columns are named
// after the strategy, e.g. EMA_CROSS_LONG_SIGNAL.
func (s *ResultStore) WriteFeatures(runName string, strategy types.StrategyName, folder string) (string, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create run folder", err)
	}

	longColumn, shortColumn := strategy.SignalColumns()
	path := filepath.Join(folder, FeaturesFileName)

	query := fmt.Sprintf(
		`SELECT time, symbol, open, high, low, close, volume, long_signal AS %s, short_signal AS %s
		FROM features WHERE run_name = %s ORDER BY seq`,
		quoteIdentifier(longColumn), quoteIdentifier(shortColumn), quoteLiteral(runName),
	)
	if err := s.copyToParquet(query, path); err != nil {
		return "", err
	}

	return path, nil
}

// WriteSummary exports the grid summary as Parquet and the full run stats as YAML.
func (s *ResultStore) WriteSummary(folder string, stats []types.RunStats) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create results folder", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM metrics_summary ORDER BY seq`, strings.Join(summaryColumns[1:], ", "))
	if err := s.copyToParquet(query, filepath.Join(folder, SummaryFileName)); err != nil {
		return err
	}

	if err := types.WriteRunStats(filepath.Join(folder, StatsFileName), stats); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write run stats", err)
	}

	s.logger.Info("Wrote backtest summary",
		zap.String("folder", folder),
		zap.Int("rows", len(stats)),
	)

	return nil
}

func (s *ResultStore) copyToParquet(query string, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Using raw SQL as Squirrel doesn't support COPY
	_, err := s.db.Exec(fmt.Sprintf(`COPY (%s) TO %s (FORMAT PARQUET)`, query, quoteLiteral(path)))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestWriteFailed, err, "failed to export %s", path)
	}

	return nil
}

// Cleanup drops every stored row.
func (s *ResultStore) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Use raw SQL for dropping tables - Squirrel doesn't have DROP syntax
	_, err := s.db.Exec(`
		DROP TABLE IF EXISTS trades;
		DROP TABLE IF EXISTS equity;
		DROP TABLE IF EXISTS features;
		DROP TABLE IF EXISTS metrics_summary;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to cleanup tables", err)
	}

	s.summaryRows = 0

	return s.createTables()
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
