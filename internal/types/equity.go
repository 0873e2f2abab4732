package types

import "time"

// EquitySample is the running capital after the bar at Time has been processed.
type EquitySample struct {
	Time   time.Time `csv:"date" yaml:"date" json:"date"`
	Equity float64   `csv:"equity" yaml:"equity" json:"equity"`
}
