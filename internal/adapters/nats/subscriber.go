package natsadapter

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/rotisserie/eris"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

// Subscriber delivers condition updates from core NATS subscriptions.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber creates a subscriber on an existing connection.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// SubscribeConditions calls handler for each update published in area, or in
// every area when area is empty. The returned func cancels the subscription.
func (s *Subscriber) SubscribeConditions(area string, handler func(*domain.ConditionUpdated)) (func() error, error) {
	subject := SubjectFor(area)
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		e, err := DecodeConditionUpdated(msg.Data)
		if err != nil {
			slog.Warn("drop malformed condition update", "subject", msg.Subject, "error", err)
			return
		}
		handler(e)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "nats: subscribe %s", subject)
	}
	return sub.Unsubscribe, nil
}
