package engine

import (
	"sort"
	"strings"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const listSuffix = "_list"

// BuildParamGrid expands a strategy's parameter lists into their cartesian
// product. Keys are iterated in sorted order with the first key varying slowest.
// A "_list" suffix is stripped, so fast_list and fast name the same parameter
// and the list form wins when both are given.
// Moving average crosses only keep combinations with fast < slow.
func BuildParamGrid(name types.StrategyName, params map[string]ParamValues) []types.StrategyParams {
	normalized := map[string][]float64{}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		normalized[strings.TrimSuffix(key, listSuffix)] = dedupe(params[key])
	}

	names := make([]string, 0, len(normalized))
	for key := range normalized {
		names = append(names, key)
	}

	sort.Strings(names)

	grid := []types.StrategyParams{{}}

	for _, key := range names {
		next := make([]types.StrategyParams, 0, len(grid)*len(normalized[key]))

		for _, combo := range grid {
			for _, v := range normalized[key] {
				extended := make(types.StrategyParams, len(combo)+1)
				for k, existing := range combo {
					extended[k] = existing
				}

				extended[key] = v
				next = append(next, extended)
			}
		}

		grid = next
	}

	filtered := grid[:0]

	for _, combo := range grid {
		if validCombination(name, combo) {
			filtered = append(filtered, combo)
		}
	}

	return filtered
}

func validCombination(name types.StrategyName, combo types.StrategyParams) bool {
	switch name {
	case types.StrategyEMACross, types.StrategySMACross:
		fast, hasFast := combo["fast"]
		slow, hasSlow := combo["slow"]

		if hasFast && hasSlow {
			return fast < slow
		}
	}

	return true
}

func dedupe(values []float64) []float64 {
	seen := map[float64]bool{}
	out := make([]float64, 0, len(values))

	for _, v := range values {
		if seen[v] {
			continue
		}

		seen[v] = true
		out = append(out, v)
	}

	return out
}
