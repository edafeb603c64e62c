package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/peterkyalo/stock-inventory-sub002/pkg/kafka"
)

// Event represents an event stored in the outbox for reliable delivery.
// Events are written in the same transaction as the state change they
// describe and published to Kafka by the background publisher.
type Event struct {
	ID            string          `bson:"_id" json:"id"`
	AggregateID   string          `bson:"aggregateId" json:"aggregateId"`
	AggregateType string          `bson:"aggregateType" json:"aggregateType"`
	EventType     string          `bson:"eventType" json:"eventType"`
	Topic         string          `bson:"topic" json:"topic"`
	Payload       json.RawMessage `bson:"payload" json:"payload"`
	CorrelationID string          `bson:"correlationId,omitempty" json:"correlationId,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	PublishedAt   *time.Time      `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	RetryCount    int             `bson:"retryCount" json:"retryCount"`
	LastError     string          `bson:"lastError,omitempty" json:"lastError,omitempty"`
	MaxRetries    int             `bson:"maxRetries" json:"maxRetries"`
}

// DomainEvent interface for domain events
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// NewEvent creates a new outbox event from a domain event
func NewEvent(aggregateType, topic, correlationID string, event DomainEvent) (*Event, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		AggregateID:   event.AggregateID(),
		AggregateType: aggregateType,
		EventType:     event.EventType(),
		Topic:         topic,
		Payload:       payload,
		CorrelationID: correlationID,
		CreatedAt:     time.Now().UTC(),
		RetryCount:    0,
		MaxRetries:    10,
	}, nil
}

// IsPublished checks if the event has been published
func (e *Event) IsPublished() bool {
	return e.PublishedAt != nil
}

// ShouldRetry checks if the event should be retried
func (e *Event) ShouldRetry() bool {
	return !e.IsPublished() && e.RetryCount < e.MaxRetries
}

// ToKafkaEvent converts the outbox event to the wire envelope
func (e *Event) ToKafkaEvent() *kafka.Event {
	return &kafka.Event{
		ID:            e.ID,
		Type:          e.EventType,
		Source:        "stockflow/" + e.AggregateType,
		Subject:       e.AggregateID,
		Time:          e.CreatedAt,
		CorrelationID: e.CorrelationID,
		Data:          e.Payload,
	}
}
