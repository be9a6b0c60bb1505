package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cwrk-planet/relay-service/internal/domain"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "notifications.create"

// Sink publishes notifications to NATS for the notification service to
// consume. Fire-and-forget: the relay never waits for delivery.
type Sink struct {
	nc      *nats.Conn
	subject string
}

func New(url, subject string) (*Sink, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name("relay-service"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Sink{nc: nc, subject: subject}, nil
}

func (s *Sink) CreateNotification(_ context.Context, n domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.nc.Publish(s.subject, data)
}

func (s *Sink) Close() {
	_ = s.nc.Drain()
}
