package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/abhisek/skilltrack/internal/logger"
)

// loggerAdapter routes watermill's internal logging through our logger.
// Trace lines are folded into debug.
type loggerAdapter struct {
	log    *logger.Logger
	fields watermill.LogFields
}

func newLoggerAdapter(log *logger.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{log: log}
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(a.kv(fields), "error", err)...)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, a.kv(fields)...)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, a.kv(fields)...)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, a.kv(fields)...)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{log: a.log, fields: a.fields.Add(fields)}
}

func (a *loggerAdapter) kv(fields watermill.LogFields) []any {
	all := a.fields.Add(fields)
	out := make([]any, 0, len(all)*2)
	for k, v := range all {
		out = append(out, k, v)
	}
	return out
}
