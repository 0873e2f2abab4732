package commission_fee

import "math"

const (
	interactiveBrokerPerShare = 0.005
	interactiveBrokerMinimum  = 1.0
)

type InteractiveBrokerCommissionFee struct {
}

func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

// Calculate charges a flat per-share rate with a minimum ticket.
func (c *InteractiveBrokerCommissionFee) Calculate(req FeeRequest) FeeBreakdown {
	fee := interactiveBrokerPerShare * math.Abs(req.Quantity)
	if fee < interactiveBrokerMinimum {
		fee = interactiveBrokerMinimum
	}

	return FeeBreakdown{
		Brokerage: fee,
		Total:     fee,
	}
}
