package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252

// Compute derives the statistics record of one run. Every ratio whose
// denominator is zero or undefined is reported as 0.
func Compute(trades []types.Trade, equity []types.EquitySample, initialCapital float64, bars []types.Bar) types.Metrics {
	m := types.Metrics{
		EquityFinal:    initialCapital,
		MonthlyReturns: []types.MonthlyReturn{},
	}

	if len(equity) > 0 {
		m.EquityFinal = equity[len(equity)-1].Equity
	}

	if initialCapital > 0 {
		m.TotalReturn = (m.EquityFinal - initialCapital) / initialCapital * 100
	}

	m.CAGR = cagr(m.EquityFinal, initialCapital, elapsedDays(bars, equity))

	daily := dailyEquity(equity)
	returns := pctChange(daily)

	if len(returns) >= 2 {
		mean, std := stat.MeanStdDev(returns, nil)
		m.Volatility = std * math.Sqrt(tradingDaysPerYear) * 100

		if std > 0 {
			m.Sharpe = mean / std * math.Sqrt(tradingDaysPerYear)
		}

		m.Sortino = sortino(mean, returns)
	}

	m.MaxDrawdown = maxDrawdown(equity)
	if m.MaxDrawdown != 0 {
		m.Calmar = m.CAGR / math.Abs(m.MaxDrawdown)
	}

	m.MonthlyReturns = monthlyReturns(daily)

	tradeStats(&m, trades)
	m.Exposure = exposure(trades, bars)

	return m
}

// dayValue is the last equity value observed on a calendar day.
type dayValue struct {
	day   time.Time
	value float64
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()

	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

// dailyEquity keeps the last sample of each calendar day and carries it
// forward over days without samples.
func dailyEquity(equity []types.EquitySample) []dayValue {
	if len(equity) == 0 {
		return nil
	}

	loc := equity[0].Time.Location()
	last := make(map[time.Time]float64, len(equity))

	for _, sample := range equity {
		last[truncateDay(sample.Time.In(loc))] = sample.Equity
	}

	first := truncateDay(equity[0].Time.In(loc))
	end := truncateDay(equity[len(equity)-1].Time.In(loc))

	days := []dayValue{}
	carry := equity[0].Equity

	for day := first; !day.After(end); day = day.AddDate(0, 0, 1) {
		if v, ok := last[day]; ok {
			carry = v
		}

		days = append(days, dayValue{day: day, value: carry})
	}

	return days
}

// pctChange returns the period over period change, dropping the first period
// and any period whose base is zero.
func pctChange(series []dayValue) []float64 {
	returns := []float64{}

	for i := 1; i < len(series); i++ {
		prev := series[i-1].value
		if prev == 0 {
			continue
		}

		returns = append(returns, series[i].value/prev-1)
	}

	return returns
}

func elapsedDays(bars []types.Bar, equity []types.EquitySample) int {
	var first, last time.Time

	switch {
	case len(bars) > 0:
		first, last = bars[0].Time, bars[len(bars)-1].Time
	case len(equity) > 0:
		first, last = equity[0].Time, equity[len(equity)-1].Time
	default:
		return 0
	}

	return int(last.Sub(first).Hours() / 24)
}

func cagr(final, initial float64, days int) float64 {
	if initial <= 0 {
		return 0
	}

	years := 1.0
	if days > 0 {
		years = float64(days) / 365.25
	}

	ratio := final / initial
	if ratio <= 0 {
		return -100
	}

	return (math.Pow(ratio, 1/years) - 1) * 100
}

// sortino annualizes twice, once in the downside deviation and once in the ratio.
func sortino(mean float64, returns []float64) float64 {
	negative := []float64{}

	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}

	if len(negative) < 2 {
		return 0
	}

	downside := stat.StdDev(negative, nil) * math.Sqrt(tradingDaysPerYear)
	if downside == 0 || math.IsNaN(downside) {
		return 0
	}

	return mean / downside * math.Sqrt(tradingDaysPerYear)
}

func maxDrawdown(equity []types.EquitySample) float64 {
	if len(equity) == 0 {
		return 0
	}

	peak := equity[0].Equity
	worst := 0.0

	for _, sample := range equity {
		if sample.Equity > peak {
			peak = sample.Equity
		}

		if peak <= 0 {
			continue
		}

		if dd := (sample.Equity - peak) / peak; dd < worst {
			worst = dd
		}
	}

	return worst * 100
}

// monthlyReturns takes the month-end value of the daily series and reports the
// percent change against the previous month-end. The first month is 0.
func monthlyReturns(daily []dayValue) []types.MonthlyReturn {
	months := []types.MonthlyReturn{}
	ends := []dayValue{}

	for _, d := range daily {
		y, mo, _ := d.day.Date()
		monthEnd := time.Date(y, mo+1, 0, 0, 0, 0, 0, d.day.Location())

		if n := len(ends); n > 0 && ends[n-1].day.Equal(monthEnd) {
			ends[n-1].value = d.value

			continue
		}

		ends = append(ends, dayValue{day: monthEnd, value: d.value})
	}

	for i, end := range ends {
		ret := 0.0
		if i > 0 && ends[i-1].value != 0 {
			ret = (end.value/ends[i-1].value - 1) * 100
		}

		months = append(months, types.MonthlyReturn{Month: end.day, Return: ret})
	}

	return months
}

func tradeStats(m *types.Metrics, trades []types.Trade) {
	m.Trades = len(trades)
	if len(trades) == 0 {
		return
	}

	pnls := make([]float64, len(trades))
	holdings := make([]float64, len(trades))
	wins := []float64{}
	losses := []float64{}

	for i, trade := range trades {
		m.GrossPnL += trade.GrossPnL
		m.TotalFees += trade.TotalFees

		pnls[i] = trade.NetPnL
		holdings[i] = trade.HoldingDuration().Minutes()

		switch {
		case trade.NetPnL > 0:
			wins = append(wins, trade.NetPnL)
		case trade.NetPnL < 0:
			losses = append(losses, trade.NetPnL)
		}
	}

	m.NetPnL = floats.Sum(pnls)
	m.BestTrade = floats.Max(pnls)
	m.WorstTrade = floats.Min(pnls)
	m.MedianTrade = median(pnls)
	m.AvgHolding = stat.Mean(holdings, nil)
	m.MedianHolding = median(holdings)

	winRate := float64(len(wins)) / float64(len(trades))
	m.WinRate = winRate * 100

	if len(wins) > 0 {
		m.AvgWin = stat.Mean(wins, nil)
	}

	if len(losses) > 0 {
		m.AvgLoss = stat.Mean(losses, nil)

		if lossSum := math.Abs(floats.Sum(losses)); lossSum > 0 {
			m.ProfitFactor = floats.Sum(wins) / lossSum
		}
	}

	m.Expectancy = winRate*m.AvgWin + (1-winRate)*m.AvgLoss
	m.MaxWinStreak, m.MaxLossStreak = streaks(pnls)
}

// streaks scans pnls in order. A zero pnl ends both streaks.
func streaks(pnls []float64) (int, int) {
	var maxWin, maxLoss, win, loss int

	for _, pnl := range pnls {
		switch {
		case pnl > 0:
			win++
			loss = 0
		case pnl < 0:
			loss++
			win = 0
		default:
			win, loss = 0, 0
		}

		maxWin = max(maxWin, win)
		maxLoss = max(maxLoss, loss)
	}

	return maxWin, maxLoss
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}

// modalSpacing is the most common gap between consecutive bars. Ties resolve
// to the smaller gap.
func modalSpacing(bars []types.Bar) time.Duration {
	counts := map[time.Duration]int{}

	for i := 1; i < len(bars); i++ {
		counts[bars[i].Time.Sub(bars[i-1].Time)]++
	}

	var (
		mode time.Duration
		best int
	)

	for gap, n := range counts {
		if n > best || (n == best && gap < mode) {
			mode, best = gap, n
		}
	}

	return mode
}

// exposure converts each trade's duration into bar equivalents using the modal
// spacing. A trade shorter than one spacing counts as one bar.
func exposure(trades []types.Trade, bars []types.Bar) float64 {
	if len(bars) == 0 || len(trades) == 0 {
		return 0
	}

	spacing := modalSpacing(bars)
	inMarket := 0.0

	for _, trade := range trades {
		held := 0.0
		if spacing > 0 {
			held = float64(trade.HoldingDuration()) / float64(spacing)
		}

		if held > 0 {
			inMarket += held
		} else {
			inMarket++
		}
	}

	return inMarket / float64(len(bars)) * 100
}
