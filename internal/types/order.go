package types

type PurchaseType string

type PositionType string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	PositionTypeFlat  PositionType = "FLAT"
	PositionTypeLong  PositionType = "LONG"
	PositionTypeShort PositionType = "SHORT"
)

// EntrySide is the order side that opens a position of this type.
func (p PositionType) EntrySide() PurchaseType {
	if p == PositionTypeShort {
		return PurchaseTypeSell
	}

	return PurchaseTypeBuy
}

// ExitSide is the order side that closes a position of this type.
func (p PositionType) ExitSide() PurchaseType {
	if p == PositionTypeShort {
		return PurchaseTypeBuy
	}

	return PurchaseTypeSell
}

// Exchange is the venue a fill is routed to. It only affects transaction charges.
type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

// Segment is the market segment used to look up the fee schedule.
type Segment string

const (
	SegmentEquityDelivery Segment = "EQUITY_DELIVERY"
	SegmentEquityIntraday Segment = "EQUITY_INTRADAY"
	SegmentFnoFuture      Segment = "FNO_FUTURE"
	SegmentFnoOption      Segment = "FNO_OPTION"
)
