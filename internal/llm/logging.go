package llm

import (
	"context"
	"time"

	"github.com/pathwise/tutorengine/internal/logger"
)

// LoggingProvider is a decorator that records every request's latency,
// token usage and estimated cost. Logging never fails the request.
type LoggingProvider struct {
	inner Provider
	log   *logger.Logger
}

// WithLogging wraps a Provider with structured request logging.
func WithLogging(p Provider, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, log: log.With("component", "llm")}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	if err != nil {
		l.log.Warn("llm request failed",
			"model", l.inner.ModelID(),
			"purpose", purpose,
			"latency_ms", latency.Milliseconds(),
			"error", err)
		return nil, err
	}

	fields := []any{
		"model", resp.Model,
		"purpose", purpose,
		"latency_ms", latency.Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	}
	if cost := LookupCost(resp.Model); cost != nil {
		fields = append(fields, "cost_usd", cost.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens))
	}
	l.log.Debug("llm request", fields...)

	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
