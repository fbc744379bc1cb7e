package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/feedshot/feedshot/internal/config"
	"github.com/feedshot/feedshot/internal/datasource"
	"github.com/feedshot/feedshot/internal/feed"
	"github.com/feedshot/feedshot/internal/request"
)

// step is one runnable scenario: a validated executor plus the label it
// reports under.
type step struct {
	label    string
	executor *request.Executor
}

// buildSteps loads each scenario's record set, builds its feed and wires
// an executor around the shared transport.
func buildSteps(ctx context.Context, cfg *config.Config, transport request.Transport, log *zap.Logger) ([]step, error) {
	steps := make([]step, 0, len(cfg.Scenarios))
	for idx, sc := range cfg.Scenarios {
		tmpl, err := buildTemplate(sc)
		if err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", idx, err)
		}

		var f *feed.Feed
		if sc.Data != nil {
			set, err := datasource.Load(ctx, sc.Data.Descriptor())
			if err != nil {
				return nil, fmt.Errorf("scenarios[%d]: loading data: %w", idx, err)
			}
			f, err = feed.New(set, sc.Data.FeedStrategy())
			if err != nil {
				return nil, fmt.Errorf("scenarios[%d]: %w", idx, err)
			}
			log.Info("data source loaded",
				zap.String("scenario", tmpl.Label()),
				zap.String("source", set.Source()),
				zap.Int("records", set.Len()),
				zap.String("strategy", string(sc.Data.FeedStrategy())),
			)
		}

		executor, err := request.NewExecutor(tmpl, f, transport, log)
		if err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", idx, err)
		}
		steps = append(steps, step{label: tmpl.Label(), executor: executor})
	}
	return steps, nil
}

func buildTemplate(sc config.Scenario) (*request.Template, error) {
	body := sc.Body
	if sc.BodyFile != "" {
		data, err := os.ReadFile(sc.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		body = string(data)
	}

	return &request.Template{
		Name:           sc.Name,
		Method:         sc.Method,
		URL:            sc.URL,
		Headers:        sc.Headers,
		Body:           body,
		ExpectedStatus: sc.ExpectedStatus,
		Timeout:        sc.Timeout,
	}, nil
}
