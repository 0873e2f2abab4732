package commission_fee

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default_fee_schedule.yaml
var defaultFeeScheduleYAML []byte

// SegmentSchedule holds the charge rates of one market segment. Rates are fractions of turnover.
type SegmentSchedule struct {
	BrokeragePercent float64 `yaml:"brokerage_percent" validate:"gte=0"`
	// BrokerageCap caps brokerage per order. FNO_OPTION charges it flat.
	BrokerageCap    float64 `yaml:"brokerage_cap" validate:"gte=0"`
	STTPercentBuy   float64 `yaml:"stt_percent_buy" validate:"gte=0"`
	STTPercentSell  float64 `yaml:"stt_percent_sell" validate:"gte=0"`
	TxnPercentNSE   float64 `yaml:"txn_percent_nse" validate:"gte=0"`
	TxnPercentBSE   float64 `yaml:"txn_percent_bse" validate:"gte=0"`
	SEBIPerCrore    float64 `yaml:"sebi_per_crore" validate:"gte=0"`
	StampPercentBuy float64 `yaml:"stamp_percent_buy" validate:"gte=0"`
}

// FeeSchedule is the full discount broker tariff. It is read-only once loaded.
type FeeSchedule struct {
	GSTPercent float64                           `yaml:"gst_percent" validate:"gte=0"`
	Segments   map[types.Segment]SegmentSchedule `yaml:"segments" validate:"required,dive"`
}

var requiredSegments = []types.Segment{
	types.SegmentEquityDelivery,
	types.SegmentEquityIntraday,
	types.SegmentFnoFuture,
	types.SegmentFnoOption,
}

// ParseFeeSchedule decodes and validates a YAML tariff.
func ParseFeeSchedule(data []byte) (*FeeSchedule, error) {
	var schedule FeeSchedule
	if err := yaml.Unmarshal(data, &schedule); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeeScheduleInvalid, "failed to parse fee schedule", err)
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	return &schedule, nil
}

// DefaultFeeSchedule returns a freshly parsed copy of the embedded tariff.
func DefaultFeeSchedule() (*FeeSchedule, error) {
	return ParseFeeSchedule(defaultFeeScheduleYAML)
}

func (s *FeeSchedule) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeFeeScheduleInvalid, "invalid fee schedule", err)
	}

	for _, segment := range requiredSegments {
		if _, ok := s.Segments[segment]; !ok {
			return errors.New(errors.ErrCodeFeeScheduleInvalid, fmt.Sprintf("fee schedule is missing segment %s", segment))
		}
	}

	return nil
}

// Segment returns the rates of a segment.
func (s *FeeSchedule) Segment(segment types.Segment) (SegmentSchedule, bool) {
	seg, ok := s.Segments[segment]

	return seg, ok
}
