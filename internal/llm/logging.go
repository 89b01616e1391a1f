package llm

import (
	"context"
	"time"

	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/metrics"
	"github.com/abhisek/skilltrack/internal/store"
)

// RequestRecorder stores one row per model call.
type RequestRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider records every call in the request log and metrics.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder RequestRecorder
	log      *logger.Logger
}

// WithLogging wraps p. recorder may be nil to skip persistence.
func WithLogging(p Provider, providerName string, recorder RequestRecorder, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, provider: providerName, recorder: recorder, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		UserID:    UserFrom(ctx),
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		metrics.LLMTokens.WithLabelValues("input").Add(float64(resp.Usage.InputTokens))
		metrics.LLMTokens.WithLabelValues("output").Add(float64(resp.Usage.OutputTokens))
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		data.ErrorMessage = err.Error()
	}
	metrics.LLMRequests.WithLabelValues(data.Purpose, outcome).Inc()

	if l.recorder != nil {
		if logErr := l.recorder.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.log.Warn("failed to record llm request", "error", logErr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
