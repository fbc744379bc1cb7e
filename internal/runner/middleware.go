package runner

import (
	"context"

	"github.com/feedshot/feedshot/internal/feed"
)

// FailureLogger logs failed requests.
type FailureLogger interface {
	LogFailure(err error)
}

// loggingRequester wraps a Requester with failure logging.
type loggingRequester struct {
	inner  Requester
	logger FailureLogger
}

// WithLogging wraps a Requester to log failures.
func WithLogging(req Requester, logger FailureLogger) Requester {
	if logger == nil {
		return req
	}
	return &loggingRequester{
		inner:  req,
		logger: logger,
	}
}

func (l *loggingRequester) Do(ctx context.Context, inv feed.Invocation) error {
	err := l.inner.Do(ctx, inv)
	if err != nil && l.logger != nil {
		l.logger.LogFailure(err)
	}
	return err
}
