package engine

import (
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// RunName builds <SYMBOL>_<interval>_<STRATEGY>_<hyperparams>, skipping empty parts.
func RunName(symbol string, interval string, strategy types.StrategyName, params types.StrategyParams) string {
	parts := []string{}

	for _, part := range []string{symbol, interval, string(strategy), params.HyperparamString()} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, "_")
}

// getResultFolder returns the folder a run's files are written to.
func getResultFolder(resultsFolder string, runName string) string {
	// path separators in a symbol must not create nested folders
	name := strings.NewReplacer("/", "-", `\`, "-").Replace(runName)

	return filepath.Join(resultsFolder, name)
}
