package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("buzzi-console"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, e Event) error {
	b, err := encode(e)
	if err != nil {
		return err
	}
	return p.conn.Publish(Subject(p.prefix, e), b)
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
