package natsadapter

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rotisserie/eris"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the condition stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, eris.Wrap(err, "nats: connect")
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, eris.Wrap(err, "nats: jetstream")
	}

	cfg := nats.StreamConfig{
		Name:      "ROAD_CONDITIONS",
		Subjects:  []string{SubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, eris.Wrapf(err, "nats: ensure stream %s", cfg.Name)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishConditionUpdated publishes e on the subject of the area the report
// was taken in.
func (p *Publisher) PublishConditionUpdated(ctx context.Context, e *domain.ConditionUpdated) error {
	data, err := EncodeConditionUpdated(e)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectFor(AreaOf(e.Location)), data, nats.Context(ctx))
	return eris.Wrap(err, "nats: publish condition update")
}

// Conn returns the underlying connection.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
