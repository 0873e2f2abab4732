package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParamValues is the list of values a hyperparameter is swept over.
// In YAML it is either a scalar or a sequence.
type ParamValues []float64

func (p *ParamValues) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var values []float64
		if err := value.Decode(&values); err != nil {
			return err
		}

		*p = values

		return nil
	}

	var single float64
	if err := value.Decode(&single); err != nil {
		return err
	}

	*p = ParamValues{single}

	return nil
}

// StrategyConfig names a strategy and the grid of its hyperparameters.
// Keys may carry a "_list" suffix, e.g. fast_list: [5, 9].
type StrategyConfig struct {
	Name   types.StrategyName     `yaml:"name" json:"name" jsonschema:"title=Strategy,description=Signal provider to run,enum=EMA_CROSS,enum=SMA_CROSS,enum=RSI,enum=MACD,enum=BOLLINGER,enum=ADX,enum=AROON,enum=ATR,enum=CCI,enum=DEMA,enum=DONCHIAN,enum=KELTNER,enum=MFI,enum=MOMENTUM,enum=OBV,enum=PSAR,enum=ROC,enum=STOCHASTIC,enum=STOCH_RSI,enum=SUPER_TREND,enum=TEMA,enum=TRIX,enum=ULTIMATE_OSC,enum=WILLIAMS_R" validate:"required,oneof=EMA_CROSS SMA_CROSS RSI MACD BOLLINGER ADX AROON ATR CCI DEMA DONCHIAN KELTNER MFI MOMENTUM OBV PSAR ROC STOCHASTIC STOCH_RSI SUPER_TREND TEMA TRIX ULTIMATE_OSC WILLIAMS_R"`
	Params map[string]ParamValues `yaml:"params" json:"params" jsonschema:"title=Parameters,description=Hyperparameter values to sweep"`
}

// RiskConfig is the YAML form of RiskParams.
type RiskConfig struct {
	StopLossPct         optional.Option[float64] `yaml:"stop_loss_pct" json:"stop_loss_pct" jsonschema:"title=Stop Loss,description=Fractional stop distance from the entry price. Zero or absent disables it"`
	TrailingStopLossPct optional.Option[float64] `yaml:"trailing_stop_loss_pct" json:"trailing_stop_loss_pct" jsonschema:"title=Trailing Stop Loss,description=Fractional distance of the trailing stop from the best price since entry"`
	TargetProfitPct     optional.Option[float64] `yaml:"target_profit_pct" json:"target_profit_pct" jsonschema:"title=Target Profit,description=Fractional target distance from the entry price"`
	HoldMinBars         int                      `yaml:"hold_min_bars" json:"hold_min_bars" jsonschema:"title=Minimum Hold,description=Bars a position is held before a signal reversal may close it,minimum=0" validate:"gte=0"`
	HoldMaxBars         optional.Option[int]     `yaml:"hold_max_bars" json:"hold_max_bars" jsonschema:"title=Maximum Hold,description=Bars after which a position is closed. Zero or absent disables it"`
	FillRate            float64                  `yaml:"fill_rate" json:"fill_rate" jsonschema:"title=Fill Rate,description=Fraction of capital deployed per entry,minimum=0,maximum=1" validate:"gte=0,lte=1"`
	SlippagePct         float64                  `yaml:"slippage_pct" json:"slippage_pct" jsonschema:"title=Slippage,description=Fractional slippage applied against every fill,minimum=0" validate:"gte=0,lt=1"`
	ContractSize        float64                  `yaml:"contract_size" json:"contract_size" jsonschema:"title=Contract Size,description=Lot size quantities are rounded down to,minimum=1" validate:"gte=1"`
}

// UnmarshalYAML implements custom unmarshaling for RiskConfig
func (r *RiskConfig) UnmarshalYAML(value *yaml.Node) error {
	type Config struct {
		StopLossPct         *float64 `yaml:"stop_loss_pct"`
		TrailingStopLossPct *float64 `yaml:"trailing_stop_loss_pct"`
		TargetProfitPct     *float64 `yaml:"target_profit_pct"`
		HoldMinBars         int      `yaml:"hold_min_bars"`
		HoldMaxBars         *int     `yaml:"hold_max_bars"`
		FillRate            float64  `yaml:"fill_rate"`
		SlippagePct         float64  `yaml:"slippage_pct"`
		ContractSize        float64  `yaml:"contract_size"`
	}

	config := Config{
		HoldMinBars:  r.HoldMinBars,
		FillRate:     r.FillRate,
		SlippagePct:  r.SlippagePct,
		ContractSize: r.ContractSize,
	}
	if err := value.Decode(&config); err != nil {
		return err
	}

	r.StopLossPct = optionalFrom(config.StopLossPct)
	r.TrailingStopLossPct = optionalFrom(config.TrailingStopLossPct)
	r.TargetProfitPct = optionalFrom(config.TargetProfitPct)
	r.HoldMinBars = config.HoldMinBars
	r.HoldMaxBars = optionalFrom(config.HoldMaxBars)
	r.FillRate = config.FillRate
	r.SlippagePct = config.SlippagePct
	r.ContractSize = config.ContractSize

	return nil
}

// MarshalYAML writes absent options as missing keys so the output parses back.
func (r RiskConfig) MarshalYAML() (interface{}, error) {
	type Config struct {
		StopLossPct         *float64 `yaml:"stop_loss_pct,omitempty"`
		TrailingStopLossPct *float64 `yaml:"trailing_stop_loss_pct,omitempty"`
		TargetProfitPct     *float64 `yaml:"target_profit_pct,omitempty"`
		HoldMinBars         int      `yaml:"hold_min_bars"`
		HoldMaxBars         *int     `yaml:"hold_max_bars,omitempty"`
		FillRate            float64  `yaml:"fill_rate"`
		SlippagePct         float64  `yaml:"slippage_pct"`
		ContractSize        float64  `yaml:"contract_size"`
	}

	return Config{
		StopLossPct:         optionalPtr(r.StopLossPct),
		TrailingStopLossPct: optionalPtr(r.TrailingStopLossPct),
		TargetProfitPct:     optionalPtr(r.TargetProfitPct),
		HoldMinBars:         r.HoldMinBars,
		HoldMaxBars:         optionalPtr(r.HoldMaxBars),
		FillRate:            r.FillRate,
		SlippagePct:         r.SlippagePct,
		ContractSize:        r.ContractSize,
	}, nil
}

func optionalFrom[T any](v *T) optional.Option[T] {
	if v == nil {
		return optional.None[T]()
	}

	return optional.Some(*v)
}

func optionalPtr[T any](o optional.Option[T]) *T {
	if o.IsNone() {
		return nil
	}

	v := o.Unwrap()

	return &v
}

type BacktestEngineV1Config struct {
	Version         string                     `yaml:"version" json:"version" jsonschema:"title=Version,description=Engine version the config was written for"`
	InitialCapital  float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital of every run,minimum=0" validate:"gte=0"`
	Broker          commission_fee.Broker      `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The broker to use for commission calculations" validate:"required"`
	FeeSchedulePath optional.Option[string]    `yaml:"fee_schedule_path" json:"fee_schedule_path" jsonschema:"title=Fee Schedule,description=Optional YAML fee schedule replacing the embedded one"`
	Segment         types.Segment              `yaml:"segment" json:"segment" jsonschema:"title=Segment,enum=EQUITY_DELIVERY,enum=EQUITY_INTRADAY,enum=FNO_FUTURE,enum=FNO_OPTION" validate:"required,oneof=EQUITY_DELIVERY EQUITY_INTRADAY FNO_FUTURE FNO_OPTION"`
	Exchange        types.Exchange             `yaml:"exchange" json:"exchange" jsonschema:"title=Exchange,enum=NSE,enum=BSE" validate:"required,oneof=NSE BSE"`
	Symbol          string                     `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Overrides the symbol parsed from data file names"`
	Interval        string                     `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Overrides the interval parsed from data file names"`
	TrainSplit      float64                    `yaml:"train_split" json:"train_split" jsonschema:"title=Train Split,description=Fraction of bars in the TRAIN split. TEST is only run when below 1,exclusiveMinimum=0,maximum=1" validate:"gt=0,lte=1"`
	IntradayOnly    bool                       `yaml:"intraday_only" json:"intraday_only" jsonschema:"title=Intraday Only,description=Close every position before the date changes"`
	MaxParallel     int                        `yaml:"max_parallel" json:"max_parallel" jsonschema:"title=Max Parallel,description=Maximum concurrent runs. Zero uses the number of CPUs,minimum=0" validate:"gte=0"`
	SaveFeatures    bool                       `yaml:"save_features" json:"save_features" jsonschema:"title=Save Features,description=Write the signal-augmented bars of every run"`
	StartTime       optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime         optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	Risk            RiskConfig                 `yaml:"risk" json:"risk" jsonschema:"title=Risk,description=Sizing and exit settings"`
	Strategies      []StrategyConfig           `yaml:"strategies" json:"strategies" jsonschema:"title=Strategies,description=Strategies and hyperparameter grids to run" validate:"required,min=1,dive"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	type Config struct {
		Version         string                `yaml:"version"`
		InitialCapital  float64               `yaml:"initial_capital"`
		Broker          commission_fee.Broker `yaml:"broker"`
		FeeSchedulePath *string               `yaml:"fee_schedule_path"`
		Segment         types.Segment         `yaml:"segment"`
		Exchange        types.Exchange        `yaml:"exchange"`
		Symbol          string                `yaml:"symbol"`
		Interval        string                `yaml:"interval"`
		TrainSplit      float64               `yaml:"train_split"`
		IntradayOnly    bool                  `yaml:"intraday_only"`
		MaxParallel     int                   `yaml:"max_parallel"`
		SaveFeatures    bool                  `yaml:"save_features"`
		StartTime       *time.Time            `yaml:"start_time"`
		EndTime         *time.Time            `yaml:"end_time"`
		Risk            RiskConfig            `yaml:"risk"`
		Strategies      []StrategyConfig      `yaml:"strategies"`
	}

	// absent keys keep the receiver's values
	config := Config{
		Version:        c.Version,
		InitialCapital: c.InitialCapital,
		Broker:         c.Broker,
		Segment:        c.Segment,
		Exchange:       c.Exchange,
		Symbol:         c.Symbol,
		Interval:       c.Interval,
		TrainSplit:     c.TrainSplit,
		IntradayOnly:   c.IntradayOnly,
		MaxParallel:    c.MaxParallel,
		SaveFeatures:   c.SaveFeatures,
		Risk:           c.Risk,
		Strategies:     c.Strategies,
	}
	if err := value.Decode(&config); err != nil {
		return err
	}

	c.Version = config.Version
	c.InitialCapital = config.InitialCapital
	c.Broker = config.Broker
	c.Segment = config.Segment
	c.Exchange = config.Exchange
	c.Symbol = config.Symbol
	c.Interval = config.Interval
	c.TrainSplit = config.TrainSplit
	c.IntradayOnly = config.IntradayOnly
	c.MaxParallel = config.MaxParallel
	c.SaveFeatures = config.SaveFeatures
	c.Risk = config.Risk
	c.Strategies = config.Strategies

	if config.FeeSchedulePath != nil && *config.FeeSchedulePath != "" {
		c.FeeSchedulePath = optional.Some(*config.FeeSchedulePath)
	}

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// MarshalYAML is the inverse of UnmarshalYAML.
func (c BacktestEngineV1Config) MarshalYAML() (interface{}, error) {
	type Config struct {
		Version         string                `yaml:"version"`
		InitialCapital  float64               `yaml:"initial_capital"`
		Broker          commission_fee.Broker `yaml:"broker"`
		FeeSchedulePath *string               `yaml:"fee_schedule_path,omitempty"`
		Segment         types.Segment         `yaml:"segment"`
		Exchange        types.Exchange        `yaml:"exchange"`
		Symbol          string                `yaml:"symbol,omitempty"`
		Interval        string                `yaml:"interval,omitempty"`
		TrainSplit      float64               `yaml:"train_split"`
		IntradayOnly    bool                  `yaml:"intraday_only"`
		MaxParallel     int                   `yaml:"max_parallel"`
		SaveFeatures    bool                  `yaml:"save_features"`
		StartTime       *time.Time            `yaml:"start_time,omitempty"`
		EndTime         *time.Time            `yaml:"end_time,omitempty"`
		Risk            RiskConfig            `yaml:"risk"`
		Strategies      []StrategyConfig      `yaml:"strategies"`
	}

	return Config{
		Version:         c.Version,
		InitialCapital:  c.InitialCapital,
		Broker:          c.Broker,
		FeeSchedulePath: optionalPtr(c.FeeSchedulePath),
		Segment:         c.Segment,
		Exchange:        c.Exchange,
		Symbol:          c.Symbol,
		Interval:        c.Interval,
		TrainSplit:      c.TrainSplit,
		IntradayOnly:    c.IntradayOnly,
		MaxParallel:     c.MaxParallel,
		SaveFeatures:    c.SaveFeatures,
		StartTime:       optionalPtr(c.StartTime),
		EndTime:         optionalPtr(c.EndTime),
		Risk:            c.Risk,
		Strategies:      c.Strategies,
	}, nil
}

// ParseConfig decodes a YAML config on top of EmptyConfig and validates it.
func ParseConfig(content string) (BacktestEngineV1Config, error) {
	config := EmptyConfig()

	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return BacktestEngineV1Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return BacktestEngineV1Config{}, err
	}

	return config, nil
}

// Validate checks struct tags, cross-field rules and version compatibility.
func (c *BacktestEngineV1Config) Validate() error {
	if err := version.CheckConfigCompatibility(version.Version, c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeVersionMismatch, "config version is not supported", err)
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if !knownBroker(c.Broker) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown broker %q", c.Broker)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end_time is before start_time")
	}

	for _, strategy := range c.Strategies {
		for key, values := range strategy.Params {
			if len(values) == 0 {
				return errors.Newf(errors.ErrCodeInvalidConfiguration, "%s parameter %q has no values", strategy.Name, key)
			}
		}
	}

	return c.RiskParams().Validate()
}

func knownBroker(broker commission_fee.Broker) bool {
	for _, known := range commission_fee.AllBrokers {
		if known == broker {
			return true
		}
	}

	return false
}

// RiskParams converts the risk section into simulator parameters.
func (c *BacktestEngineV1Config) RiskParams() RiskParams {
	return RiskParams{
		StopLossPct:         c.Risk.StopLossPct,
		TrailingStopLossPct: c.Risk.TrailingStopLossPct,
		TargetProfitPct:     c.Risk.TargetProfitPct,
		HoldMinBars:         c.Risk.HoldMinBars,
		HoldMaxBars:         c.Risk.HoldMaxBars,
		FillRate:            c.Risk.FillRate,
		SlippagePct:         c.Risk.SlippagePct,
		ContractSize:        c.Risk.ContractSize,
		Segment:             c.Segment,
		Exchange:            c.Exchange,
	}
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch name := t.String(); {
			case name == "optional.Option[time.Time]":
				return &jsonschema.Schema{Type: "string", Format: "date-time"}
			case name == "optional.Option[float64]":
				return &jsonschema.Schema{Type: "number", Minimum: json.Number("0")}
			case name == "optional.Option[int]":
				return &jsonschema.Schema{Type: "integer", Minimum: json.Number("0")}
			case name == "optional.Option[string]":
				return &jsonschema.Schema{Type: "string"}
			case strings.Contains(name, "commission_fee.Broker"):
				return &jsonschema.Schema{Type: "string", Enum: commission_fee.AllBrokers}
			case strings.HasSuffix(name, "ParamValues"):
				return &jsonschema.Schema{
					OneOf: []*jsonschema.Schema{
						{Type: "number"},
						{Type: "array", Items: &jsonschema.Schema{Type: "number"}},
					},
				}
			}

			return nil
		},
	}

	// Generate schema from BacktestEngineV1Config struct
	schema := reflector.Reflect(c)

	// Set schema metadata
	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Version:         version.Version,
		InitialCapital:  0,
		Broker:          commission_fee.BrokerDiscount,
		FeeSchedulePath: optional.None[string](),
		Segment:         types.SegmentEquityIntraday,
		Exchange:        types.ExchangeNSE,
		TrainSplit:      1,
		IntradayOnly:    false,
		MaxParallel:     0,
		StartTime:       optional.None[time.Time](),
		EndTime:         optional.None[time.Time](),
		Risk: RiskConfig{
			StopLossPct:         optional.None[float64](),
			TrailingStopLossPct: optional.None[float64](),
			TargetProfitPct:     optional.None[float64](),
			HoldMaxBars:         optional.None[int](),
			FillRate:            1,
			ContractSize:        1,
		},
	}
}

// TestConfig returns a small valid config running EMA_CROSS 5/20.
func TestConfig(broker commission_fee.Broker) BacktestEngineV1Config {
	config := EmptyConfig()
	config.InitialCapital = 100000
	config.Broker = broker
	config.IntradayOnly = true
	config.TrainSplit = 0.7
	config.MaxParallel = 2
	config.Strategies = []StrategyConfig{
		{
			Name:   types.StrategyEMACross,
			Params: map[string]ParamValues{"fast": {5}, "slow": {20}},
		},
	}

	return config
}
