package config

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line
// arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional config file into a
// Config. Flags override file settings.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Concurrency:  1,
		ArrivalModel: ArrivalModelUniform,
		OutputFormat: OutputText,
		ConfigFile:   configPath,
	}

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	if len(cfg.Scenarios) == 0 {
		sc, err := adHocScenario(flagSet)
		if err != nil {
			return nil, err
		}
		if sc != nil {
			cfg.Scenarios = []Scenario{*sc}
		}
	}

	return cfg, nil
}

func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}
	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}
	if raw, ok := lookupSetting(settings, "duration"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = dur
	}
	if raw, ok := lookupSetting(settings, "total"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("total: %w", err)
		}
		cfg.Total = val
	}
	if raw, ok := lookupSetting(settings, "arrivalmodel", "arrival_model", "arrival-model"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("arrivalModel: %w", err)
		}
		cfg.ArrivalModel = ArrivalModel(strings.ToLower(strings.TrimSpace(val)))
	}
	if raw, ok := lookupSetting(settings, "debug"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("debug: %w", err)
		}
		cfg.Debug = val
	}
	if raw, ok := lookupSetting(settings, "output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		cfg.OutputFormat = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if raw, ok := lookupSetting(settings, "outputfile", "output_file", "output-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("outputFile: %w", err)
		}
		cfg.OutputFile = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		vals, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = vals
	}
	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}
	if raw, ok := lookupSetting(settings, "scenarios"); ok {
		scenarios, err := parseScenarios(raw)
		if err != nil {
			return fmt.Errorf("scenarios: %w", err)
		}
		cfg.Scenarios = scenarios
	}

	return nil
}

func parseScenarios(value interface{}) ([]Scenario, error) {
	items, err := toInterfaceSlice(value)
	if err != nil {
		return nil, err
	}
	scenarios := make([]Scenario, 0, len(items))
	for idx, item := range items {
		entry, err := toStringKeyMap(item)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		sc, err := buildScenario(entry)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func buildScenario(settings map[string]interface{}) (Scenario, error) {
	sc := Scenario{Timeout: 30 * time.Second}

	if raw, ok := lookupSetting(settings, "name"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("name: %w", err)
		}
		sc.Name = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "method"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("method: %w", err)
		}
		sc.Method = strings.ToUpper(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(settings, "url", "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("url: %w", err)
		}
		sc.URL = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("headers: %w", err)
		}
		if len(hdrs) > 0 {
			sc.Headers = map[string]string{}
			for key, value := range hdrs {
				trimmedKey := strings.TrimSpace(key)
				if trimmedKey == "" {
					return Scenario{}, fmt.Errorf("headers: key cannot be empty")
				}
				sc.Headers[http.CanonicalHeaderKey(trimmedKey)] = value
			}
		}
	}
	if raw, ok := lookupSetting(settings, "body"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("body: %w", err)
		}
		sc.Body = val
	}
	if raw, ok := lookupSetting(settings, "bodyfile", "body_file", "body-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("bodyFile: %w", err)
		}
		sc.BodyFile = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "expectedstatus", "expected_status", "expected-status"); ok {
		val, err := asInt(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("expectedStatus: %w", err)
		}
		sc.ExpectedStatus = val
	}
	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("timeout: %w", err)
		}
		sc.Timeout = dur
	}
	if raw, ok := lookupSetting(settings, "data"); ok {
		data, err := parseDataSource(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("data: %w", err)
		}
		sc.Data = data
	}

	return sc, nil
}

func parseDataSource(value interface{}) (*DataSource, error) {
	if value == nil {
		return nil, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return nil, err
	}

	data := &DataSource{}
	if raw, ok := lookupSetting(entry, "kind", "type"); ok {
		val, err := asString(raw)
		if err != nil {
			return nil, fmt.Errorf("kind: %w", err)
		}
		data.Kind = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "path", "filepath", "file_path", "file-path"); ok {
		val, err := asString(raw)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		data.Path = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "provider", "providername", "provider_name", "provider-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return nil, fmt.Errorf("provider: %w", err)
		}
		data.Provider = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "dsn", "connectionstring", "connection_string", "connection-string"); ok {
		val, err := asString(raw)
		if err != nil {
			return nil, fmt.Errorf("dsn: %w", err)
		}
		data.DSN = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "query"); ok {
		val, err := asString(raw)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		data.Query = val
	}
	if raw, ok := lookupSetting(entry, "strategy", "feedstrategy", "feed_strategy", "feed-strategy"); ok {
		val, err := asString(raw)
		if err != nil {
			return nil, fmt.Errorf("strategy: %w", err)
		}
		data.Strategy = strings.ToLower(strings.TrimSpace(val))
	}

	return data, nil
}

func parseTracing(value interface{}) (TracingConfig, error) {
	if value == nil {
		return TracingConfig{}, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}

	var tracing TracingConfig
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("serviceName: %w", err)
		}
		tracing.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sampleRate: %w", err)
		}
		tracing.SampleRate = val
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	if raw, ok := lookupSetting(entry, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("propagate: %w", err)
		}
		tracing.Propagate = val
	}

	return tracing, nil
}
