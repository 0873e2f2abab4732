package datasource

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

func getIntervalMinutes(interval Interval) (int, error) {
	var intervalMinutes int

	switch interval {
	case Interval1m:
		intervalMinutes = 1
	case Interval3m:
		intervalMinutes = 3
	case Interval5m:
		intervalMinutes = 5
	case Interval10m:
		intervalMinutes = 10
	case Interval15m:
		intervalMinutes = 15
	case Interval30m:
		intervalMinutes = 30
	case Interval1h:
		intervalMinutes = 60
	case Interval4h:
		intervalMinutes = 240
	case Interval1d:
		intervalMinutes = 1440
	case Interval1w:
		intervalMinutes = 10080
	default:
		return 0, fmt.Errorf("unsupported interval: %s", interval)
	}

	return intervalMinutes, nil
}

// intervalAliases maps broker style interval names to their short form.
var intervalAliases = map[string]Interval{
	"minute":   Interval1m,
	"3minute":  Interval3m,
	"5minute":  Interval5m,
	"10minute": Interval10m,
	"15minute": Interval15m,
	"30minute": Interval30m,
	"60minute": Interval1h,
	"day":      Interval1d,
	"week":     Interval1w,
}

// NormalizeInterval accepts either "5m" or "5minute" style names.
func NormalizeInterval(s string) (Interval, error) {
	if alias, ok := intervalAliases[strings.ToLower(s)]; ok {
		return alias, nil
	}

	interval := Interval(s)
	if _, err := getIntervalMinutes(interval); err != nil {
		return "", err
	}

	return interval, nil
}

// ParseDataFileName splits "<SYMBOL>_<interval>.<ext>" into its parts.
// ok is false when the name does not follow that layout.
func ParseDataFileName(path string) (symbol string, interval Interval, ok bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	idx := strings.LastIndex(base, "_")
	if idx <= 0 || idx == len(base)-1 {
		return base, "", false
	}

	interval, err := NormalizeInterval(base[idx+1:])
	if err != nil {
		return base, "", false
	}

	return base[:idx], interval, true
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}

	return v.Float64
}
