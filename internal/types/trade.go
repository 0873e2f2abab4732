package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExitReason string

const (
	ExitReasonStopLoss  ExitReason = "STOP_LOSS"
	ExitReasonTarget    ExitReason = "TARGET"
	ExitReasonCrossDown ExitReason = "CROSS_DOWN"
	ExitReasonCrossUp   ExitReason = "CROSS_UP"
	ExitReasonMaxHold   ExitReason = "MAX_HOLD"
	ExitReasonEndOfDay  ExitReason = "END_OF_DAY"
)

// Trade is a closed round trip. It is only emitted once the exit leg is filled.
type Trade struct {
	ID         string       `csv:"id" yaml:"id" json:"id"`
	Direction  PositionType `csv:"direction" yaml:"direction" json:"direction"`
	EntryTime  time.Time    `csv:"entry_time" yaml:"entry_time" json:"entry_time"`
	EntryPrice float64      `csv:"entry_price" yaml:"entry_price" json:"entry_price"`
	Quantity   float64      `csv:"qty" yaml:"qty" json:"qty"`
	ExitTime   time.Time    `csv:"exit_time" yaml:"exit_time" json:"exit_time"`
	ExitPrice  float64      `csv:"exit_price" yaml:"exit_price" json:"exit_price"`
	ExitReason ExitReason   `csv:"exit_reason" yaml:"exit_reason" json:"exit_reason"`
	// GrossPnL is (exit - entry) * qty for longs and (entry - exit) * qty for shorts.
	GrossPnL  float64 `csv:"gross_pnl" yaml:"gross_pnl" json:"gross_pnl"`
	EntryFee  float64 `csv:"entry_fee" yaml:"entry_fee" json:"entry_fee"`
	ExitFee   float64 `csv:"exit_fee" yaml:"exit_fee" json:"exit_fee"`
	TotalFees float64 `csv:"total_fee" yaml:"total_fee" json:"total_fee"`
	// NetPnL is GrossPnL - EntryFee - ExitFee.
	NetPnL float64 `csv:"pnl" yaml:"pnl" json:"pnl"`
}

// HoldingDuration is the wall-clock time between entry and exit.
func (t Trade) HoldingDuration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// GrossPnLFor computes the gross pnl of a round trip in decimal arithmetic.
func GrossPnLFor(direction PositionType, entryPrice, exitPrice, quantity float64) float64 {
	entryDec := decimal.NewFromFloat(entryPrice).Mul(decimal.NewFromFloat(quantity))
	exitDec := decimal.NewFromFloat(exitPrice).Mul(decimal.NewFromFloat(quantity))

	// the way we calculate short pnl is the opposite of long pnl
	var result decimal.Decimal
	if direction == PositionTypeShort {
		result = entryDec.Sub(exitDec)
	} else {
		result = exitDec.Sub(entryDec)
	}

	pnl, _ := result.Float64()

	return pnl
}
