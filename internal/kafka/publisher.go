package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/snackbar/internal/pos/ports"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher sends change events to Kafka. Each event type gets its own topic, prefixed with
// topicPrefix, and messages are keyed by entity id so one entity's events stay ordered.
type Publisher struct {
	writer      messageWriter
	topicPrefix string
}

func NewPublisher(brokers []string, topicPrefix string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	return newPublisher(&kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		RequiredAcks:           kafkago.RequireAll,
		Balancer:               &kafkago.Hash{},
		AllowAutoTopicCreation: true,
	}, topicPrefix), nil
}

func newPublisher(writer messageWriter, topicPrefix string) *Publisher {
	return &Publisher{writer: writer, topicPrefix: topicPrefix}
}

// Topic returns the topic events of the given type are written to.
func (p *Publisher) Topic(eventType ports.EventType) string {
	return p.topicPrefix + string(eventType)
}

func (p *Publisher) Publish(ctx context.Context, event ports.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: p.Topic(event.Type),
		Key:   []byte(event.EntityID),
		Value: payload,
		Time:  occurred,
	})
	if err != nil {
		return fmt.Errorf("write %s event: %w", event.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
