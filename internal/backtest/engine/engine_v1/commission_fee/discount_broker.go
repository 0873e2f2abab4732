package commission_fee

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/utils"
	"github.com/shopspring/decimal"
)

var (
	rupeesPerCrore = decimal.NewFromInt(10_000_000)
	zero           = decimal.Zero
)

// DiscountBrokerCommissionFee prices a fill with a percentage tariff: brokerage,
// securities transaction tax, exchange transaction charges, SEBI turnover fee,
// stamp duty on buys and GST on brokerage plus exchange and SEBI charges.
// Each component is rounded to 2 decimals; the total is rounded from the unrounded sum.
type DiscountBrokerCommissionFee struct {
	schedule *FeeSchedule
}

func NewDiscountBrokerCommissionFee(schedule *FeeSchedule) CommissionFee {
	return &DiscountBrokerCommissionFee{schedule: schedule}
}

func (c *DiscountBrokerCommissionFee) Calculate(req FeeRequest) FeeBreakdown {
	seg, ok := c.schedule.Segment(req.Segment)
	if !ok {
		return FeeBreakdown{}
	}

	turnover := decimal.NewFromFloat(req.Price).Mul(decimal.NewFromFloat(req.Quantity))

	var brokerage decimal.Decimal
	if req.Segment == types.SegmentFnoOption {
		brokerage = decimal.NewFromFloat(seg.BrokerageCap)
	} else {
		brokerage = decimal.Min(turnover.Mul(decimal.NewFromFloat(seg.BrokeragePercent)), decimal.NewFromFloat(seg.BrokerageCap))
	}

	sttPercent := seg.STTPercentSell
	if req.Side == types.PurchaseTypeBuy {
		sttPercent = seg.STTPercentBuy
	}

	stt := turnover.Mul(decimal.NewFromFloat(sttPercent))

	txnPercent := seg.TxnPercentBSE
	if req.Exchange == types.ExchangeNSE {
		txnPercent = seg.TxnPercentNSE
	}

	txn := turnover.Mul(decimal.NewFromFloat(txnPercent))
	sebi := turnover.Mul(decimal.NewFromFloat(seg.SEBIPerCrore)).Div(rupeesPerCrore)

	stamp := zero
	if req.Side == types.PurchaseTypeBuy {
		stamp = turnover.Mul(decimal.NewFromFloat(seg.StampPercentBuy))
	}

	gst := brokerage.Add(txn).Add(sebi).Mul(decimal.NewFromFloat(c.schedule.GSTPercent))
	total := brokerage.Add(stt).Add(txn).Add(sebi).Add(stamp).Add(gst)

	return FeeBreakdown{
		Brokerage: utils.RoundHalfUp(brokerage, 2),
		STT:       utils.RoundHalfUp(stt, 2),
		Txn:       utils.RoundHalfUp(txn, 2),
		SEBI:      utils.RoundHalfUp(sebi, 2),
		Stamp:     utils.RoundHalfUp(stamp, 2),
		GST:       utils.RoundHalfUp(gst, 2),
		Total:     utils.RoundHalfUp(total, 2),
	}
}

