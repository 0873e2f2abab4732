package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/utils"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// tradeNamespace seeds deterministic trade ids so repeated runs produce identical output.
var tradeNamespace = uuid.MustParse("6f1c2a0e-8a47-4a52-9a0c-3c1b8d5e7f21")

// SimulationResult is the output of one pass over a bar series.
type SimulationResult struct {
	Trades []types.Trade
	// Equity holds one sample per input bar.
	Equity []types.EquitySample
}

// Position is a snapshot of the open position. Side is FLAT when nothing is held.
type Position struct {
	Side        types.PositionType
	EntryTime   time.Time
	EntryPrice  float64
	Quantity    float64
	StopPrice   optional.Option[float64]
	TargetPrice optional.Option[float64]
	// TrailExtreme is the highest high since entry for longs and the lowest low for shorts.
	TrailExtreme float64
	BarsHeld     int
}

func (p Position) IsFlat() bool {
	return p.Side == types.PositionTypeFlat
}

func flatPosition() Position {
	return Position{
		Side:        types.PositionTypeFlat,
		StopPrice:   optional.None[float64](),
		TargetPrice: optional.None[float64](),
	}
}

// Simulator folds a signal-augmented bar series into trades and equity samples.
// It is single use and not safe for concurrent use.
type Simulator struct {
	bars         []types.Bar
	params       RiskParams
	fee          commission_fee.CommissionFee
	intradayOnly bool
	log          *logger.Logger

	capital    float64
	position   Position
	lastSignal types.SignalDirection
	trades     []types.Trade
	equity     []types.EquitySample
	next       int
}

// NewSimulator validates the inputs and returns a simulator positioned before the first bar.
func NewSimulator(
	bars []types.Bar,
	initialCapital float64,
	params RiskParams,
	fee commission_fee.CommissionFee,
	intradayOnly bool,
	log *logger.Logger,
) (*Simulator, error) {
	if err := validateCapital(initialCapital); err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := ValidateBars(bars); err != nil {
		return nil, err
	}

	if fee == nil {
		fee = commission_fee.NewZeroCommissionFee()
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Simulator{
		bars:         bars,
		params:       params,
		fee:          fee,
		intradayOnly: intradayOnly,
		log:          log,
		capital:      initialCapital,
		position:     flatPosition(),
		lastSignal:   types.SignalDirectionNone,
		trades:       []types.Trade{},
		equity:       make([]types.EquitySample, 0, len(bars)),
	}, nil
}

// Simulate runs the whole series with a no-op logger.
func Simulate(
	bars []types.Bar,
	initialCapital float64,
	params RiskParams,
	fee commission_fee.CommissionFee,
	intradayOnly bool,
) (SimulationResult, error) {
	sim, err := NewSimulator(bars, initialCapital, params, fee, intradayOnly, nil)
	if err != nil {
		return SimulationResult{}, err
	}

	return sim.Run(context.Background())
}

// Run processes every remaining bar. Cancellation is checked between bars and
// discards the partial result.
func (s *Simulator) Run(ctx context.Context) (SimulationResult, error) {
	for s.next < len(s.bars) {
		if err := ctx.Err(); err != nil {
			return SimulationResult{}, errors.Wrap(errors.ErrCodeBacktestCancelled, "simulation cancelled", err)
		}

		if err := s.Step(s.next); err != nil {
			return SimulationResult{}, err
		}
	}

	return s.Result(), nil
}

// Step processes bar i. Bars must be stepped in order starting at 0.
func (s *Simulator) Step(i int) error {
	if i >= len(s.bars) {
		return errors.Newf(errors.ErrCodeInvalidParameter, "bar %d is past the end of the series", i)
	}

	if i != s.next {
		return errors.Newf(errors.ErrCodeInvalidParameter, "bar %d stepped out of order, expected bar %d", i, s.next)
	}

	bar := s.bars[i]

	if s.position.IsFlat() {
		s.tryEnter(i, bar)
	} else {
		s.position.BarsHeld++

		if reason, price, ok := s.checkExit(i, bar); ok {
			s.exit(i, bar, price, reason)
		}
	}

	s.lastSignal = types.ResolveSignal(bar)
	s.equity = append(s.equity, types.EquitySample{Time: bar.Time, Equity: s.capital})
	s.next++

	return nil
}

// Position returns a copy of the current position.
func (s *Simulator) Position() Position {
	return s.position
}

// Capital is the running capital after the last stepped bar.
func (s *Simulator) Capital() float64 {
	return s.capital
}

// Result returns the trades and equity samples produced so far.
func (s *Simulator) Result() SimulationResult {
	trades := make([]types.Trade, len(s.trades))
	copy(trades, s.trades)

	equity := make([]types.EquitySample, len(s.equity))
	copy(equity, s.equity)

	return SimulationResult{Trades: trades, Equity: equity}
}

func (s *Simulator) tryEnter(i int, bar types.Bar) {
	// a position opened on the last bar of a session could never be closed within it
	if s.intradayOnly && s.isSessionEnd(i) {
		return
	}

	switch {
	case bar.IsLong() && s.lastSignal != types.SignalDirectionLong:
		s.enter(i, bar, types.PositionTypeLong)
	case bar.IsShort() && s.lastSignal != types.SignalDirectionShort:
		s.enter(i, bar, types.PositionTypeShort)
	}
}

func (s *Simulator) enter(i int, bar types.Bar, side types.PositionType) {
	long := side == types.PositionTypeLong
	entryPrice := utils.ApplySlippage(bar.Close, s.params.SlippagePct, long)

	qty := utils.CalculateEntryQuantity(s.capital, s.params.FillRate, entryPrice, s.params.ContractSize)
	if qty <= 0 {
		s.log.Debug("Skipping entry with zero quantity",
			zap.Int("bar", i),
			zap.String("side", string(side)),
			zap.Float64("capital", s.capital),
		)

		return
	}

	// longs put the stop below and the target above the entry, shorts the reverse
	direction := 1.0
	if !long {
		direction = -1.0
	}

	stop := optional.None[float64]()
	if pct, ok := enabledPct(s.params.StopLossPct); ok {
		stop = optional.Some(entryPrice * (1 - direction*pct))
	}

	target := optional.None[float64]()
	if pct, ok := enabledPct(s.params.TargetProfitPct); ok {
		target = optional.Some(entryPrice * (1 + direction*pct))
	}

	s.position = Position{
		Side:         side,
		EntryTime:    bar.Time,
		EntryPrice:   entryPrice,
		Quantity:     qty,
		StopPrice:    stop,
		TargetPrice:  target,
		TrailExtreme: entryPrice,
		BarsHeld:     0,
	}

	s.log.Debug("Entered position",
		zap.Int("bar", i),
		zap.Time("time", bar.Time),
		zap.String("side", string(side)),
		zap.Float64("price", entryPrice),
		zap.Float64("quantity", qty),
	)
}

// checkExit walks the exit chain: trailing update, stop, target, signal
// reversal, max hold and finally the end of day exit. The first hit wins.
func (s *Simulator) checkExit(i int, bar types.Bar) (types.ExitReason, float64, bool) {
	pos := &s.position
	long := pos.Side == types.PositionTypeLong
	// exits sell a long and buy back a short
	exitIsBuy := !long

	if pct, ok := enabledPct(s.params.TrailingStopLossPct); ok {
		var newStop float64

		if long {
			if bar.High > pos.TrailExtreme {
				pos.TrailExtreme = bar.High
			}

			newStop = pos.TrailExtreme * (1 - pct)
			if pos.StopPrice.IsNone() || newStop > pos.StopPrice.Unwrap() {
				pos.StopPrice = optional.Some(newStop)
			}
		} else {
			if bar.Low < pos.TrailExtreme {
				pos.TrailExtreme = bar.Low
			}

			newStop = pos.TrailExtreme * (1 + pct)
			if pos.StopPrice.IsNone() || newStop < pos.StopPrice.Unwrap() {
				pos.StopPrice = optional.Some(newStop)
			}
		}
	}

	if pos.StopPrice.IsSome() {
		stop := pos.StopPrice.Unwrap()
		if (long && bar.Low <= stop) || (!long && bar.High >= stop) {
			return types.ExitReasonStopLoss, utils.ApplySlippage(stop, s.params.SlippagePct, exitIsBuy), true
		}
	}

	if pos.TargetPrice.IsSome() {
		target := pos.TargetPrice.Unwrap()
		if (long && bar.High >= target) || (!long && bar.Low <= target) {
			return types.ExitReasonTarget, utils.ApplySlippage(target, s.params.SlippagePct, exitIsBuy), true
		}
	}

	closeExit := utils.ApplySlippage(bar.Close, s.params.SlippagePct, exitIsBuy)

	if pos.BarsHeld >= s.params.HoldMinBars {
		if long && !bar.IsLong() {
			return types.ExitReasonCrossDown, closeExit, true
		}

		if !long && !bar.IsShort() {
			return types.ExitReasonCrossUp, closeExit, true
		}
	}

	if holdMax, ok := s.params.holdMax(); ok && pos.BarsHeld >= holdMax {
		return types.ExitReasonMaxHold, closeExit, true
	}

	if s.intradayOnly && s.isSessionEnd(i) {
		return types.ExitReasonEndOfDay, closeExit, true
	}

	return "", 0, false
}

// isSessionEnd reports whether bar i is the last bar or the last bar of its calendar date.
func (s *Simulator) isSessionEnd(i int) bool {
	if i == len(s.bars)-1 {
		return true
	}

	return !types.SameDate(s.bars[i].Time, s.bars[i+1].Time)
}

func (s *Simulator) exit(i int, bar types.Bar, exitPrice float64, reason types.ExitReason) {
	pos := s.position

	entryFee := s.fee.Calculate(commission_fee.FeeRequest{
		Segment:  s.params.Segment,
		Side:     pos.Side.EntrySide(),
		Price:    pos.EntryPrice,
		Quantity: pos.Quantity,
		Exchange: s.params.Exchange,
	}).Total

	exitFee := s.fee.Calculate(commission_fee.FeeRequest{
		Segment:  s.params.Segment,
		Side:     pos.Side.ExitSide(),
		Price:    exitPrice,
		Quantity: pos.Quantity,
		Exchange: s.params.Exchange,
	}).Total

	gross := types.GrossPnLFor(pos.Side, pos.EntryPrice, exitPrice, pos.Quantity)
	net := gross - entryFee - exitFee

	trade := types.Trade{
		ID:         s.tradeID(pos),
		Direction:  pos.Side,
		EntryTime:  pos.EntryTime,
		EntryPrice: pos.EntryPrice,
		Quantity:   pos.Quantity,
		ExitTime:   bar.Time,
		ExitPrice:  exitPrice,
		ExitReason: reason,
		GrossPnL:   gross,
		EntryFee:   entryFee,
		ExitFee:    exitFee,
		TotalFees:  entryFee + exitFee,
		NetPnL:     net,
	}

	s.trades = append(s.trades, trade)
	s.capital += net
	s.position = flatPosition()

	s.log.Debug("Exited position",
		zap.Int("bar", i),
		zap.Time("time", bar.Time),
		zap.String("side", string(trade.Direction)),
		zap.String("reason", string(reason)),
		zap.Float64("price", exitPrice),
		zap.Float64("net_pnl", net),
		zap.Float64("capital", s.capital),
	)
}

func (s *Simulator) tradeID(pos Position) string {
	name := fmt.Sprintf("%d|%s|%s|%d", len(s.trades), pos.Side, pos.EntryTime.Format(time.RFC3339Nano), s.next)

	return uuid.NewSHA1(tradeNamespace, []byte(name)).String()
}
