package producer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"event-admin-console/internal/telemetry/domain"
)

// ErrNoBrokers is returned by NewKafkaProducer when brokers or topic are missing.
var ErrNoBrokers = errors.New("producer: brokers and topic are required")

const writeTimeout = 5 * time.Second

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer implements Producer using segmentio/kafka-go.
type KafkaProducer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewKafkaProducer creates a Kafka producer that writes session events to topic.
// Messages are keyed by user id so one user's events stay ordered within a partition. Call Close when shutting down.
func NewKafkaProducer(brokers []string, topic string, logger *slog.Logger) (*KafkaProducer, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, ErrNoBrokers
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaProducer(writer, topic, logger), nil
}

func newKafkaProducer(w messageWriter, topic string, logger *slog.Logger) *KafkaProducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaProducer{writer: w, topic: topic, logger: logger}
}

// Emit serializes the event as JSON and writes it to the topic, bounded by a short timeout.
func (p *KafkaProducer) Emit(ctx context.Context, event *domain.SessionEvent) error {
	if p == nil || p.writer == nil || event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	msg := kafka.Message{
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	if event.UserID != "" {
		msg.Key = []byte(event.UserID)
	}
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.logger.Warn("producer: kafka write failed", "topic", p.topic, "event_type", event.EventType, "error", err)
		return err
	}
	return nil
}

// Close closes the Kafka writer. Safe to call on a nil producer.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
