package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MonthlyReturn is the percent change of month-end equity against the previous month-end.
type MonthlyReturn struct {
	Month  time.Time `yaml:"month" json:"month"`
	Return float64   `yaml:"return" json:"return"`
}

// Metrics is the statistics record of one simulation run.
// Percentages are expressed in percent (12.5 means 12.5%).
type Metrics struct {
	GrossPnL    float64 `yaml:"gross_pnl" json:"gross_pnl"`
	TotalFees   float64 `yaml:"total_fees" json:"total_fees"`
	NetPnL      float64 `yaml:"net_pnl" json:"net_pnl"`
	EquityFinal float64 `yaml:"equity_final" json:"equity_final"`
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	CAGR        float64 `yaml:"cagr" json:"cagr"`
	// Volatility is the annualized standard deviation of daily returns.
	Volatility  float64 `yaml:"volatility" json:"volatility"`
	Sharpe      float64 `yaml:"sharpe" json:"sharpe"`
	Sortino     float64 `yaml:"sortino" json:"sortino"`
	// MaxDrawdown is zero or negative.
	MaxDrawdown  float64 `yaml:"max_drawdown" json:"max_drawdown"`
	Calmar       float64 `yaml:"calmar" json:"calmar"`
	WinRate      float64 `yaml:"win_rate" json:"win_rate"`
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	Trades       int     `yaml:"trades" json:"trades"`
	BestTrade    float64 `yaml:"best_trade" json:"best_trade"`
	WorstTrade   float64 `yaml:"worst_trade" json:"worst_trade"`
	MedianTrade  float64 `yaml:"median_trade" json:"median_trade"`
	AvgWin       float64 `yaml:"avg_win" json:"avg_win"`
	AvgLoss      float64 `yaml:"avg_loss" json:"avg_loss"`
	Expectancy   float64 `yaml:"expectancy" json:"expectancy"`
	// Exposure approximates bars in market as trade duration divided by the
	// modal bar spacing. It is not a count of the bars actually traversed.
	Exposure float64 `yaml:"exposure" json:"exposure"`
	// Holding times in minutes.
	AvgHolding     float64         `yaml:"avg_holding" json:"avg_holding"`
	MedianHolding  float64         `yaml:"median_holding" json:"median_holding"`
	MaxWinStreak   int             `yaml:"max_win_streak" json:"max_win_streak"`
	MaxLossStreak  int             `yaml:"max_loss_streak" json:"max_loss_streak"`
	MonthlyReturns []MonthlyReturn `yaml:"monthly_returns" json:"monthly_returns"`
}

// RunStats is one row of the grid summary.
type RunStats struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when the run finished.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Name is <SYMBOL>_<interval>_<STRATEGY>_<hyperparams>.
	Name     string       `yaml:"name" json:"name"`
	Symbol   string       `yaml:"symbol" json:"symbol"`
	Strategy StrategyName `yaml:"strategy" json:"strategy"`
	// Hyperparams joined by "-" in sorted key order.
	Hyperparams string `yaml:"hyperparams" json:"hyperparams"`
	Split       Split  `yaml:"split" json:"split"`
	DataPath    string `yaml:"data_path" json:"data_path"`
	// Empty unless the ALL split produced trades.
	TradesFilePath string  `yaml:"trades_file_path,omitempty" json:"trades_file_path,omitempty"`
	EquityFilePath string  `yaml:"equity_file_path,omitempty" json:"equity_file_path,omitempty"`
	Metrics        Metrics `yaml:"metrics" json:"metrics"`
}

// Split names the window of the bar series a run was simulated on.
type Split string

const (
	SplitAll   Split = "ALL"
	SplitTrain Split = "TRAIN"
	SplitTest  Split = "TEST"
)

func WriteRunStats(path string, stats []RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}
