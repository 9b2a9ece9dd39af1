package events

import (
	"context"
	"log/slog"
	"sort"

	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/ports"
)

// LogSink writes events to the context logger.
type LogSink struct{}

var _ ports.EventSink = LogSink{}

func NewLogSink() LogSink {
	return LogSink{}
}

func (LogSink) Emit(ctx context.Context, event ports.Event) error {
	keys := make([]string, 0, len(event.Attributes))
	for key := range event.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, slog.String(key, event.Attributes[key]))
	}

	logging.Info(ctx, "event emitted",
		slog.String("event_type", event.Type),
		slog.Group("attributes", attrs...),
	)
	return nil
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Emit(context.Context, ports.Event) error { return nil }
