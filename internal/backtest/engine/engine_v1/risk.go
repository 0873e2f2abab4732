package engine

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// RiskParams holds the sizing and exit settings of one simulation.
// A None or zero percentage disables that exit. A None or zero HoldMaxBars disables the cap.
type RiskParams struct {
	StopLossPct         optional.Option[float64]
	TrailingStopLossPct optional.Option[float64]
	TargetProfitPct     optional.Option[float64]
	HoldMinBars         int
	HoldMaxBars         optional.Option[int]
	// FillRate is the fraction of capital deployed per entry.
	FillRate    float64
	SlippagePct float64
	// ContractSize is the lot size quantities are rounded down to.
	ContractSize float64
	Segment      types.Segment
	Exchange     types.Exchange
}

// enabledPct unwraps a percentage, treating zero as disabled.
func enabledPct(pct optional.Option[float64]) (float64, bool) {
	if pct.IsNone() || pct.Unwrap() == 0 {
		return 0, false
	}

	return pct.Unwrap(), true
}

func (p RiskParams) holdMax() (int, bool) {
	if p.HoldMaxBars.IsNone() || p.HoldMaxBars.Unwrap() == 0 {
		return 0, false
	}

	return p.HoldMaxBars.Unwrap(), true
}

// Validate rejects configurations the engine cannot run.
func (p RiskParams) Validate() error {
	pcts := []struct {
		name string
		pct  optional.Option[float64]
	}{
		{"stop_loss_pct", p.StopLossPct},
		{"trailing_stop_loss_pct", p.TrailingStopLossPct},
		{"target_profit_pct", p.TargetProfitPct},
	}

	for _, pct := range pcts {
		if pct.pct.IsNone() {
			continue
		}

		v := pct.pct.Unwrap()
		if math.IsNaN(v) || v < 0 || v >= 1 {
			return errors.Newf(errors.ErrCodeInvalidRiskParams, "%s must be within [0, 1), got %v", pct.name, v)
		}
	}

	if p.HoldMinBars < 0 {
		return errors.Newf(errors.ErrCodeInvalidRiskParams, "hold_min_bars must not be negative, got %d", p.HoldMinBars)
	}

	if p.HoldMaxBars.IsSome() && p.HoldMaxBars.Unwrap() < 0 {
		return errors.Newf(errors.ErrCodeInvalidRiskParams, "hold_max_bars must not be negative, got %d", p.HoldMaxBars.Unwrap())
	}

	if holdMax, ok := p.holdMax(); ok && p.HoldMinBars > holdMax {
		return errors.Newf(errors.ErrCodeInvalidRiskParams, "hold_min_bars (%d) must not exceed hold_max_bars (%d)", p.HoldMinBars, holdMax)
	}

	if math.IsNaN(p.FillRate) || p.FillRate < 0 || p.FillRate > 1 {
		return errors.Newf(errors.ErrCodeInvalidRiskParams, "fill_rate must be within [0, 1], got %v", p.FillRate)
	}

	if math.IsNaN(p.SlippagePct) || p.SlippagePct < 0 || p.SlippagePct >= 1 {
		return errors.Newf(errors.ErrCodeInvalidRiskParams, "slippage_pct must be within [0, 1), got %v", p.SlippagePct)
	}

	if math.IsNaN(p.ContractSize) || math.IsInf(p.ContractSize, 0) || p.ContractSize <= 0 {
		return errors.Newf(errors.ErrCodeInvalidRiskParams, "contract_size must be positive, got %v", p.ContractSize)
	}

	return nil
}
