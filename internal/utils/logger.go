package utils

import (
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// WithRequestID stores the request id so services can tag their events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// LogEvent writes a standardized domain event with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(ctx context.Context, log logrus.FieldLogger, module, action, message string) {
	if log == nil {
		return
	}
	log.WithFields(logrus.Fields{
		"module":     strings.ToLower(module),
		"action":     action,
		"request_id": RequestID(ctx),
	}).Info(message)
}

// LogWarn is LogEvent for best-effort side effects that failed.
func LogWarn(ctx context.Context, log logrus.FieldLogger, module, action string, err error) {
	if log == nil {
		return
	}
	log.WithFields(logrus.Fields{
		"module":     strings.ToLower(module),
		"action":     action,
		"request_id": RequestID(ctx),
	}).WithError(err).Warn(action + " failed")
}

// Discard is a logger that drops everything. Handy for tests and optional deps.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
