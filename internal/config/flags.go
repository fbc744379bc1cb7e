package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "feedshot",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

func configureFlags(flags *pflag.FlagSet) {
	// Single-scenario quick mode; a config file replaces these.
	flags.String("target", "", "Target URL template for a single ad-hoc scenario")
	flags.String("method", "GET", "HTTP method to use")
	flags.StringSlice("header", nil, "Request header template in key=value form (repeatable)")
	flags.String("body", "", "Inline request body template")
	flags.String("body-file", "", "Path to file containing the request body template")
	flags.Int("expect-status", 0, "Expected HTTP status code (0 disables validation)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")

	// Data feeding for the ad-hoc scenario.
	flags.String("data-kind", "", "Data source kind: 'csv', 'json' or 'database'")
	flags.String("data-path", "", "Path to the CSV or JSON data file")
	flags.String("data-provider", "", "Database provider name (e.g. 'mysql')")
	flags.String("data-dsn", "", "Database connection string")
	flags.String("data-query", "", "Query producing the record set")
	flags.String("feed-strategy", "", "Feed strategy: 'random', 'circular' or 'constant'")

	// Load control.
	flags.IntP("concurrency", "c", 1, "Number of concurrent workers")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unlimited)")
	flags.DurationP("duration", "d", 0, "How long to run the test (e.g. 30s, 1m)")
	flags.IntP("total", "t", 0, "Total number of requests to send (0 means unlimited)")
	flags.String("arrival-model", string(ArrivalModelUniform), "Arrival model to use when pacing requests (uniform or poisson)")

	flags.StringSlice("threshold", nil, "Pass/fail assertion on run statistics, e.g. 'latency:p99 < 500' (repeatable)")

	// Output.
	flags.Bool("debug", false, "Enable debug logging of individual requests")
	flags.String("output", string(OutputText), "Report format: text, json or yaml")
	flags.String("output-file", "", "Write the report to a file instead of stdout")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values on top of the
// config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("duration") {
		val, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = val
	}
	if fs.Changed("total") {
		val, err := fs.GetInt("total")
		if err != nil {
			return err
		}
		cfg.Total = val
	}
	if fs.Changed("arrival-model") {
		val, err := fs.GetString("arrival-model")
		if err != nil {
			return err
		}
		cfg.ArrivalModel = ArrivalModel(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("debug") {
		val, err := fs.GetBool("debug")
		if err != nil {
			return err
		}
		cfg.Debug = val
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.OutputFormat = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("output-file") {
		val, err := fs.GetString("output-file")
		if err != nil {
			return err
		}
		cfg.OutputFile = strings.TrimSpace(val)
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	return nil
}

// adHocScenario builds a single scenario from quick-mode flags when no
// config file supplies one.
func adHocScenario(fs *pflag.FlagSet) (*Scenario, error) {
	target, err := fs.GetString("target")
	if err != nil {
		return nil, err
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, nil
	}

	sc := &Scenario{URL: target}

	if sc.Method, err = fs.GetString("method"); err != nil {
		return nil, err
	}
	if sc.Body, err = fs.GetString("body"); err != nil {
		return nil, err
	}
	if sc.BodyFile, err = fs.GetString("body-file"); err != nil {
		return nil, err
	}
	if sc.ExpectedStatus, err = fs.GetInt("expect-status"); err != nil {
		return nil, err
	}
	if sc.Timeout, err = fs.GetDuration("timeout"); err != nil {
		return nil, err
	}

	headerEntries, err := fs.GetStringSlice("header")
	if err != nil {
		return nil, err
	}
	if len(headerEntries) > 0 {
		sc.Headers = map[string]string{}
		for _, entry := range headerEntries {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("header must be in key=value format: %s", entry)
			}
			key := http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))
			if key == "" {
				return nil, fmt.Errorf("header key cannot be empty")
			}
			sc.Headers[key] = strings.TrimSpace(parts[1])
		}
	}

	kind, err := fs.GetString("data-kind")
	if err != nil {
		return nil, err
	}
	strategy, err := fs.GetString("feed-strategy")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(kind) != "" || strings.TrimSpace(strategy) != "" {
		data := &DataSource{Kind: strings.TrimSpace(kind), Strategy: strings.TrimSpace(strategy)}
		if data.Path, err = fs.GetString("data-path"); err != nil {
			return nil, err
		}
		if data.Provider, err = fs.GetString("data-provider"); err != nil {
			return nil, err
		}
		if data.DSN, err = fs.GetString("data-dsn"); err != nil {
			return nil, err
		}
		if data.Query, err = fs.GetString("data-query"); err != nil {
			return nil, err
		}
		sc.Data = data
	}

	return sc, nil
}
