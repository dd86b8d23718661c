package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher keys messages by ticket id so one ticket's events stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	prefix string
}

func NewKafkaPublisher(brokers []string, prefix string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		prefix: prefix,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	b, err := encode(e)
	if err != nil {
		return err
	}
	key := e.TicketID
	if key == "" {
		key = e.QuoteID
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: Subject(p.prefix, e),
		Key:   []byte(key),
		Value: b,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
