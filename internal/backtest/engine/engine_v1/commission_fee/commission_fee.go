package commission_fee

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// FeeRequest describes one fill leg.
type FeeRequest struct {
	Segment  types.Segment
	Side     types.PurchaseType
	Price    float64
	Quantity float64
	Exchange types.Exchange
}

// Turnover is price * quantity.
func (r FeeRequest) Turnover() float64 {
	return r.Price * r.Quantity
}

// FeeBreakdown lists the charges of one fill. Total is what the engine deducts.
type FeeBreakdown struct {
	Brokerage float64 `yaml:"brokerage" json:"brokerage"`
	STT       float64 `yaml:"stt" json:"stt"`
	Txn       float64 `yaml:"txn" json:"txn"`
	SEBI      float64 `yaml:"sebi" json:"sebi"`
	Stamp     float64 `yaml:"stamp" json:"stamp"`
	GST       float64 `yaml:"gst" json:"gst"`
	Total     float64 `yaml:"total" json:"total"`
}

// CommissionFee is a pure function of a fill. Implementations must be safe for concurrent use.
type CommissionFee interface {
	Calculate(req FeeRequest) FeeBreakdown
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero             Broker = "zero_commission"
	BrokerDiscount         Broker = "discount_broker"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerZero,
	BrokerDiscount,
}

// GetCommissionFeeHandler returns the calculator for a broker.
// schedule is only read by the discount broker; a nil schedule falls back to the embedded default.
func GetCommissionFeeHandler(broker Broker, schedule *FeeSchedule) (CommissionFee, error) {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee(), nil
	case BrokerDiscount:
		if schedule == nil {
			defaultSchedule, err := DefaultFeeSchedule()
			if err != nil {
				return nil, err
			}

			schedule = defaultSchedule
		}

		return NewDiscountBrokerCommissionFee(schedule), nil
	case BrokerZero:
		return NewZeroCommissionFee(), nil
	default:
		return NewZeroCommissionFee(), nil
	}
}
