package academic

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/errs"
	"academictoken/internal/ports"
)

var tracer = otel.Tracer("academictoken/usecase/academic")

// startSpan opens a span for op and tags the logger with its ids.
func startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "academic."+op, trace.WithAttributes(attrs...))
	ctx = logging.WithAttrs(ctx, slog.String("component", "usecase.academic"), slog.String("op", op))
	return logging.WithSpan(ctx), span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", string(errs.KindOf(err))))
	}
	span.End()
}

// emit reports a committed command. Sink failures are logged, never returned.
func (s *Service) emit(ctx context.Context, eventType string, attrs map[string]string) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, ports.Event{Type: eventType, Attributes: attrs, At: s.now()}); err != nil {
		logging.Warn(ctx, "emit event failed",
			slog.String("event_type", eventType),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		logging.Warn(ctx, "set cache failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
	}
}

// invalidateDegreeCacheTx drops every cached degree validation of a student.
// It runs inside the caller's unit of work.
func (s *Service) invalidateDegreeCacheTx(ctx context.Context, studentID string) error {
	if s.cache == nil {
		return nil
	}
	removed, err := s.cache.DeletePrefix(ctx, degreeCachePrefix(studentID))
	if err != nil {
		return errs.Storage(err, "invalidate degree cache")
	}
	if removed > 0 {
		logging.Debug(ctx, "degree cache invalidated",
			slog.String("student_id", studentID),
			slog.Int64("entries", removed),
		)
	}
	return nil
}

func degreeCachePrefix(studentID string) string {
	return "degree:" + studentID + ":"
}

func requireID(value string, sentinel error) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", sentinel
	}
	return value, nil
}

func normalizeIDs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
