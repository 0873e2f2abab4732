package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// progressCallbacks drives a progress bar from the engine's lifecycle callbacks.
func progressCallbacks(quiet bool) engine.LifecycleCallbacks {
	var bar *progressbar.ProgressBar

	onStart := engine.OnBacktestStartCallback(func(totalRuns int, totalStrategies int, totalDataFiles int) error {
		log.Printf("Running %d runs (%d strategies over %d data files)", totalRuns, totalStrategies, totalDataFiles)

		if !quiet {
			bar = progressbar.NewOptions(totalRuns,
				progressbar.OptionSetDescription("Backtesting"),
				progressbar.OptionShowCount(),
			)
		}

		return nil
	})

	onProcess := engine.OnProcessDataCallback(func(current int, total int) error {
		if bar == nil {
			return nil
		}

		return bar.Set(current)
	})

	onEnd := engine.OnBacktestEndCallback(func(err error) {
		if bar != nil {
			_ = bar.Finish()
			fmt.Println()
		}
	})

	return engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnProcessData:   &onProcess,
		OnBacktestEnd:   &onEnd,
	}
}

func printSummary(results []engine.RunResult) {
	failed := 0

	for _, result := range results {
		if result.Failed() {
			failed++

			fmt.Printf("%-40s FAILED %v\n", result.Name, result.Err)

			continue
		}

		for _, stats := range result.Stats {
			fmt.Printf("%-40s %-5s trades=%-4d net=%12.2f return=%7.2f%% sharpe=%6.2f\n",
				result.Name, stats.Split, stats.Metrics.Trades, stats.Metrics.NetPnL,
				stats.Metrics.TotalReturn, stats.Metrics.Sharpe)
		}
	}

	fmt.Printf("%d runs, %d failed\n", len(results), failed)
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	backtester := engine_v1.NewBacktestEngineV1()

	if err := backtester.SetConfigPath(cmd.String("config")); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := backtester.SetDataPath(cmd.String("data")); err != nil {
		return fmt.Errorf("failed to set data path: %w", err)
	}

	if err := backtester.SetResultsFolder(cmd.String("results")); err != nil {
		return fmt.Errorf("failed to set results folder: %w", err)
	}

	dataSource, err := datasource.NewDataSource(":memory:", logger.NewNopLogger())
	if err != nil {
		return fmt.Errorf("failed to create data source: %w", err)
	}
	defer dataSource.Close()

	if err := backtester.SetDataSource(dataSource); err != nil {
		return fmt.Errorf("failed to set data source: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := backtester.Run(ctx, progressCallbacks(cmd.Bool("quiet")))
	printSummary(results)

	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	log.Printf("Results written to %s", cmd.String("results"))

	return nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	config := engine_v1.EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schemaJSON)

	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "backtest",
		Usage: "Run signal strategy backtests over bar files",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run every strategy and hyperparameter combination over the data files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the backtest config `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Bar files to backtest, glob patterns allowed (e.g. data/*.parquet)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "results",
						Aliases: []string{"r"},
						Usage:   "Folder the results are written to",
						Value:   "results",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not show the progress bar",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the config",
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
