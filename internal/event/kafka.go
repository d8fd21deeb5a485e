package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig holds producer settings for the activity stream.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// DefaultKafkaConfig returns producer defaults for the activity topic.
func DefaultKafkaConfig(brokers []string) KafkaConfig {
	return KafkaConfig{
		Brokers:      brokers,
		Topic:        "storefront.activity",
		BatchTimeout: 10 * time.Millisecond,
	}
}

// KafkaPublisher writes activity events to a Kafka topic. Writes are async;
// failures surface through the writer's completion callback as log lines.
type KafkaPublisher struct {
	writer  *kafka.Writer
	brokers []string
	logger  *slog.Logger
}

func NewKafkaPublisher(cfg KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		Async:        true,
		RequiredAcks: kafka.RequireOne,
	}
	p := &KafkaPublisher{writer: w, brokers: cfg.Brokers, logger: logger}
	w.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			logger.Warn("activity event delivery failed",
				slog.Int("count", len(messages)),
				slog.String("error", err.Error()),
			)
		}
	}
	return p
}

// Publish emits one activity event. Errors are logged, never returned: the
// activity stream is observability, not a dependency of the shopping flow.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, userID string, data any) {
	activity, err := NewActivity(eventType, userID, data)
	if err != nil {
		p.logger.Warn("marshal activity event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}

	value, err := activity.Marshal()
	if err != nil {
		p.logger.Warn("marshal activity envelope", slog.String("error", err.Error()))
		return
	}

	msg := kafka.Message{
		Key:   []byte(userID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "source", Value: []byte(activity.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("publish activity event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}

// Ping dials the configured brokers; nil when at least one is reachable.
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}

	var lastErr error
	for _, addr := range p.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", lastErr)
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
