package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// Writer is the subset of segmentio kafka.Writer the producer needs.
// Keeping it an interface makes the producer testable.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher is the interface the service layer uses to emit events.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Event types published by the shipping service.
const (
	EventRateComputed       = "rate.computed"
	EventAssignmentFallback = "assignment.fallback"
	EventShopUninstalled    = "shop.uninstalled"
)

// Event is the envelope written to the events topic.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	ShopDomain string      `json:"shop_domain"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload,omitempty"`
}

// FallbackPayload records one cart item that was assigned to the default
// location instead of an inventory-matched one.
type FallbackPayload struct {
	VariantID  string `json:"variant_id"`
	LocationID string `json:"location_id"`
	Reason     string `json:"reason"`
}

// RateComputedPayload summarizes one rate calculation.
type RateComputedPayload struct {
	ItemCount  int    `json:"item_count"`
	GroupCount int    `json:"group_count"`
	RateCount  int    `json:"rate_count"`
	Currency   string `json:"currency"`
}

// Producer is a thin wrapper around a kafka writer implementing Publisher.
type Producer struct {
	writer Writer
}

// NewProducer creates a Producer that writes to the given broker and topic.
func NewProducer(brokerURL, topic string) *Producer {
	w := &skafka.Writer{
		Addr:     skafka.TCP(brokerURL),
		Topic:    topic,
		Balancer: &skafka.LeastBytes{},
	}
	return &Producer{writer: w}
}

// NewProducerWithWriter allows injecting a test writer.
func NewProducerWithWriter(w Writer) *Producer {
	return &Producer{writer: w}
}

// Publish marshals the value to JSON and writes a kafka message keyed by key.
func (p *Producer) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		log.Println("failed to marshal kafka value:", err)
		return err
	}
	msg := skafka.Message{Key: []byte(key), Value: b}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Println("kafka write error:", err)
		return err
	}
	return nil
}

// Close closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
