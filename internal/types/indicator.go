package types

import (
	"fmt"
	"sort"
	"strings"
)

// StrategyName tags a signal provider. Signal columns are named after it.
type StrategyName string

const (
	StrategyEMACross   StrategyName = "EMA_CROSS"
	StrategySMACross   StrategyName = "SMA_CROSS"
	StrategyRSI        StrategyName = "RSI"
	StrategyMACD       StrategyName = "MACD"
	StrategyBollinger  StrategyName = "BOLLINGER"
	StrategyADX        StrategyName = "ADX"
	StrategyAroon      StrategyName = "AROON"
	StrategyATR        StrategyName = "ATR"
	StrategyCCI        StrategyName = "CCI"
	StrategyDEMA       StrategyName = "DEMA"
	StrategyDonchian   StrategyName = "DONCHIAN"
	StrategyKeltner    StrategyName = "KELTNER"
	StrategyMFI        StrategyName = "MFI"
	StrategyMomentum   StrategyName = "MOMENTUM"
	StrategyOBV        StrategyName = "OBV"
	StrategyPSAR       StrategyName = "PSAR"
	StrategyROC        StrategyName = "ROC"
	StrategyStochastic StrategyName = "STOCHASTIC"
	StrategyStochRSI   StrategyName = "STOCH_RSI"
	StrategySuperTrend StrategyName = "SUPER_TREND"
	StrategyTEMA       StrategyName = "TEMA"
	StrategyTRIX       StrategyName = "TRIX"
	StrategyUltimate   StrategyName = "ULTIMATE_OSC"
	StrategyWilliamsR  StrategyName = "WILLIAMS_R"
)

// SignalColumns returns the long and short signal column names for a strategy.
func (s StrategyName) SignalColumns() (string, string) {
	prefix := strings.ToUpper(string(s))

	return prefix + "_LONG_SIGNAL", prefix + "_SHORT_SIGNAL"
}

// StrategyParams is one concrete hyperparameter set of a strategy, e.g. {"fast": 9, "slow": 21}.
type StrategyParams map[string]float64

// Int returns a parameter as an int and whether it was present.
func (p StrategyParams) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}

	return int(v), true
}

// Float returns a parameter and whether it was present.
func (p StrategyParams) Float(key string) (float64, bool) {
	v, ok := p[key]

	return v, ok
}

// Keys returns the parameter names in sorted order.
func (p StrategyParams) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// HyperparamString joins the parameter values by sorted key, e.g. "9-21".
func (p StrategyParams) HyperparamString() string {
	parts := make([]string, 0, len(p))
	for _, k := range p.Keys() {
		parts = append(parts, fmt.Sprintf("%g", p[k]))
	}

	return strings.Join(parts, "-")
}
