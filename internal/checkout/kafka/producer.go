// Package kafka streams checkout lifecycle events for downstream consumers
// (analytics, notifications).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"storefront/internal/logger"
	"storefront/internal/models"
)

type Producer struct {
	writer   *kafka.Writer
	topic    string
	logger   *logger.Logger
	mockMode bool
}

func NewProducer(brokers []string, topic string, log *logger.Logger, mockMode bool) *Producer {
	p := &Producer{topic: topic, logger: log, mockMode: mockMode}
	if !mockMode {
		p.writer = kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	}
	return p
}

// PublishCheckoutEvent writes one lifecycle event, keyed by session id so
// events of one checkout stay ordered within a partition. In mock mode the
// event is only logged.
func (p *Producer) PublishCheckoutEvent(event models.CheckoutEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.logger.LogKafka("PUBLISH", p.topic, fmt.Sprintf("%s session=%s", event.Type, event.SessionID))

	if p.mockMode {
		return nil
	}

	return p.writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(event.SessionID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
