package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/user/erp-api/internal/adapter/metrics"
	"github.com/user/erp-api/internal/usecase"
)

// KafkaPublisher publishes category audit events to a Kafka topic. Events
// are keyed by tenant id so one tenant's trail stays ordered within a
// partition.
type KafkaPublisher struct {
	writer  *kafka.Writer
	metrics *metrics.CategoryMetrics
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, m *metrics.CategoryMetrics) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		metrics: m,
	}
}

type envelope struct {
	usecase.AuditEvent
	OccurredAt time.Time `json:"occurred_at"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, event usecase.AuditEvent) error {
	payload, err := json.Marshal(envelope{AuditEvent: event, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TenantID),
		Value: payload,
	})
	if err != nil {
		if p.metrics != nil {
			p.metrics.AuditPublishFailures.Inc()
		}
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
