package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/feedshot/feedshot/internal/config"
	"github.com/feedshot/feedshot/internal/httptransport"
	"github.com/feedshot/feedshot/internal/logging"
	"github.com/feedshot/feedshot/internal/metrics"
	"github.com/feedshot/feedshot/internal/output"
	"github.com/feedshot/feedshot/internal/runner"
	"github.com/feedshot/feedshot/internal/threshold"
	"github.com/feedshot/feedshot/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracing shutdown incomplete", zap.Error(err))
		}
	}()

	transport := httptransport.New(
		httptransport.WithTracer(provider.Tracer()),
		httptransport.WithPropagation(provider.ShouldPropagate()),
	)

	steps, err := buildSteps(ctx, cfg, transport, log)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()

	var wrapped runner.Requester = newScenarioRequester(steps, collector)
	if cfg.Debug {
		wrapped = runner.WithLogging(wrapped, &stderrFailureLogger{})
	}

	opts := runner.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Total,
		Duration:      cfg.Duration,
		RatePerSecond: cfg.Rate,
		ArrivalModel:  toRunnerArrivalModel(cfg.ArrivalModel),
		Requester:     wrapped,
	}

	var progress *output.ProgressReporter
	if cfg.OutputFormat == config.OutputText || cfg.OutputFormat == "" {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stderr)
		progress.Start()
	}

	startedAt := time.Now()
	result := runner.New(opts).Run(ctx)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stderr)
	}

	stats := collector.Stats(result.Duration)
	report := output.NewReport(startedAt, stats)

	format := toOutputFormat(cfg.OutputFormat)
	if cfg.OutputFile != "" {
		if err := output.WriteFile(cfg.OutputFile, report, format); err != nil {
			return err
		}
	} else {
		if err := report.Render(os.Stdout, format); err != nil {
			return err
		}
	}

	failedThresholds, err := evaluateThresholds(cfg.Thresholds, stats)
	if err != nil {
		return err
	}

	if result.Errors > 0 {
		return fmt.Errorf("%d requests failed", result.Errors)
	}
	if failedThresholds > 0 {
		return fmt.Errorf("%d thresholds failed", failedThresholds)
	}
	return nil
}

// evaluateThresholds checks the configured assertions against the run
// statistics and prints one line per result.
func evaluateThresholds(specs []string, stats metrics.Stats) (failed int, err error) {
	thresholds, err := threshold.ParseMultiple(specs)
	if err != nil {
		return 0, err
	}
	results := threshold.Evaluate(thresholds, stats)
	if len(results) == 0 {
		return 0, nil
	}

	fmt.Fprintln(os.Stderr, "Thresholds:")
	for _, res := range results {
		fmt.Fprintf(os.Stderr, "  %s\n", res.Message)
		if !res.Pass {
			failed++
		}
	}
	return failed, nil
}

func toRunnerArrivalModel(model config.ArrivalModel) runner.ArrivalModel {
	switch strings.ToLower(string(model)) {
	case string(config.ArrivalModelPoisson):
		return runner.ArrivalModelPoisson
	default:
		return runner.ArrivalModelUniform
	}
}

func toOutputFormat(format config.OutputFormat) output.Format {
	switch format {
	case config.OutputJSON:
		return output.FormatJSON
	case config.OutputYAML:
		return output.FormatYAML
	default:
		return output.FormatText
	}
}
