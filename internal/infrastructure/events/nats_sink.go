package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"academictoken/internal/errs"
	"academictoken/internal/ports"
)

type natsPayload struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	At         time.Time         `json:"at"`
}

type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSSink publishes each event on <prefix>.<event type>.
type NATSSink struct {
	conn   publisher
	closer func()
	prefix string
}

var _ ports.EventSink = (*NATSSink)(nil)

func DialNATS(url string, prefix string) (*NATSSink, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("nats url is required")
	}

	nc, err := nats.Connect(url, nats.Name("academictoken"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}
	return newNATSSink(nc, func() { _ = nc.Drain() }, prefix), nil
}

func newNATSSink(conn publisher, closer func(), prefix string) *NATSSink {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "academictoken"
	}
	return &NATSSink{conn: conn, closer: closer, prefix: prefix}
}

func (s *NATSSink) Subject(eventType string) string {
	return s.prefix + "." + eventType
}

func (s *NATSSink) Emit(ctx context.Context, event ports.Event) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(event.Type) == "" {
		return errors.New("event type is required")
	}

	payload, err := json.Marshal(natsPayload{Type: event.Type, Attributes: event.Attributes, At: event.At})
	if err != nil {
		return errs.Wrap(err, "marshal event")
	}
	if err := s.conn.Publish(s.Subject(event.Type), payload); err != nil {
		return errs.Wrapf(err, "publish event %s", event.Type)
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return errs.Wrap(err, "flush nats connection")
	}
	return nil
}

func (s *NATSSink) Close() {
	if s.closer != nil {
		s.closer()
	}
}
