package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/phrazzld/tasktracker/internal/events"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "tasktracker"

// Conn is the subset of *nats.Conn used by the publisher.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher is an events.EventHandler that forwards events to NATS.
type Publisher struct {
	conn   Conn
	prefix string
	logger *slog.Logger
}

var _ events.EventHandler = (*Publisher)(nil)

// NewPublisher creates a Publisher on conn. An empty prefix falls back to
// DefaultSubjectPrefix.
func NewPublisher(conn Conn, prefix string, l *slog.Logger) *Publisher {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if l == nil {
		l = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		logger: l.With(slog.String("component", "nats_publisher")),
	}
}

// Subject returns the subject an event of type t is published on.
func (p *Publisher) Subject(t events.EventType) string {
	return p.prefix + "." + string(t)
}

// HandleEvent publishes event as JSON.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := p.Subject(event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("published task event",
		slog.String("subject", subject),
		slog.String("event_id", event.ID.String()))
	return nil
}

// Connect dials the NATS server at url.
func Connect(url string, l *slog.Logger) (*nats.Conn, error) {
	if l == nil {
		l = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("tasktracker"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return nc, nil
}
