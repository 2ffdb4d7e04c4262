package message

import (
	"context"
	"encoding/json"
	"fmt"

	"token-scanner/internal/core"

	kafka "github.com/segmentio/kafka-go"
)

// KafkaAlertPublisher publishes alert events to Kafka. The
// notification-service consumes these events and delivers them via
// Telegram and Resend.
type KafkaAlertPublisher struct {
	writer *kafka.Writer
	chatID string
	email  string
}

// NewKafkaAlertPublisher creates a publisher that writes to the given Kafka
// brokers. chatID and recipientEmail are stamped onto every event so the
// consumer knows where to deliver.
func NewKafkaAlertPublisher(brokers []string, chatID, recipientEmail string) *KafkaAlertPublisher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaAlertPublisher{writer: w, chatID: chatID, email: recipientEmail}
}

// Close shuts down the underlying Kafka writer.
func (p *KafkaAlertPublisher) Close() error {
	return p.writer.Close()
}

// SendAlert publishes a token alert to its per-kind topic (alerts.mint or
// alerts.buy).
func (p *KafkaAlertPublisher) SendAlert(ctx context.Context, alert *core.TokenAlert) error {
	event := NewTokenAlertEvent(alert, p.chatID, p.email)
	return p.publish(ctx, event.Topic(), event)
}

func (p *KafkaAlertPublisher) publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal kafka event for topic %s: %w", topic, err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: data,
	})
}
