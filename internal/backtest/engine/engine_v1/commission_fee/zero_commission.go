package commission_fee

// ZeroCommissionFee implements CommissionFee interface with zero commission.
type ZeroCommissionFee struct{}

// NewZeroCommissionFee creates a new zero commission fee.
func NewZeroCommissionFee() CommissionFee {
	return &ZeroCommissionFee{}
}

// Calculate returns an all-zero breakdown for any fill.
func (c *ZeroCommissionFee) Calculate(req FeeRequest) FeeBreakdown {
	return FeeBreakdown{}
}
