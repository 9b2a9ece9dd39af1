package ports

import (
	"context"
	"time"
)

// Event is the attribute set a successful command reports.
type Event struct {
	Type       string
	Attributes map[string]string
	At         time.Time
}

type EventSink interface {
	Emit(ctx context.Context, event Event) error
}
